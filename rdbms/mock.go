package rdbms

import (
	"context"
	"fmt"
)

// MockConnector scripts query and exec responses for tests.
// Every statement issued is recorded in Statements.
type MockConnector struct {
	Statements []string
	QueryFn    func(query string) (Rows, error)
	ExecFn     func(query string) (Result, error)
}

func (m *MockConnector) Exec(query string, args ...interface{}) (Result, error) {
	return m.ExecContext(context.Background(), query, args...)
}

func (m *MockConnector) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	m.Statements = append(m.Statements, query)
	if m.ExecFn != nil {
		return m.ExecFn(query)
	}
	return MockResult{}, nil
}

func (m *MockConnector) Query(query string, args ...interface{}) (Rows, error) {
	return m.QueryContext(context.Background(), query, args...)
}

func (m *MockConnector) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	m.Statements = append(m.Statements, query)
	if m.QueryFn != nil {
		return m.QueryFn(query)
	}
	return &MockRows{}, nil
}

func (m *MockConnector) Close() {}

func (m *MockConnector) GetType() string {
	return "mock"
}

type MockResult struct {
	Rows int64
}

func (r MockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r MockResult) RowsAffected() (int64, error) {
	return r.Rows, nil
}

// MockRows plays back a fixed result set.
type MockRows struct {
	Cols    []string
	Data    [][]interface{}
	ScanErr error
	idx     int
}

func (r *MockRows) Columns() ([]string, error) {
	return r.Cols, nil
}

func (r *MockRows) Next() bool {
	return r.idx < len(r.Data)
}

func (r *MockRows) Scan(dest ...interface{}) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	if r.idx >= len(r.Data) {
		return fmt.Errorf("scan called past the end of the result set")
	}
	row := r.Data[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %v scan targets but got %v", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *interface{}:
			*d = v
		case *int64:
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("cannot scan %T into *int64", v)
			}
			*d = n
		case *string:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("cannot scan %T into *string", v)
			}
			*d = s
		default:
			return fmt.Errorf("unsupported scan target %T", dest[i])
		}
	}
	r.idx++
	return nil
}

func (r *MockRows) Err() error {
	return nil
}

func (r *MockRows) Close() error {
	return nil
}
