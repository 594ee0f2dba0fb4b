package rdbms

import (
	"fmt"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/aws/s3"
	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/pkg/errors"
)

// SnowflakeLoader copies staged parquet files into warehouse tables.
// The external stage must point at the bucket/prefix that objects are
// published to so object URIs can be rewritten as stage paths.
type SnowflakeLoader struct {
	Log       logger.Logger
	Db        Connector
	StageName string
	Bucket    string
	Prefix    string
}

func NewSnowflakeLoader(log logger.Logger, db Connector, stageName, bucket, prefix string) *SnowflakeLoader {
	return &SnowflakeLoader{
		Log:       log,
		Db:        db,
		StageName: stageName,
		Bucket:    bucket,
		Prefix:    prefix,
	}
}

// Load creates the target schema and table on demand, applies the write mode
// and executes COPY INTO from the staged object given by sourceUri.
func (l *SnowflakeLoader) Load(sourceUri string, schema string, table string, mode pipeline.WriteMode) (pipeline.LoadReport, error) {
	report := pipeline.LoadReport{}
	fail := func(err error) (pipeline.LoadReport, error) {
		return report, pipeline.LoadError{Table: table, Err: err}
	}
	stagePath, err := l.StagePath(sourceUri)
	if err != nil {
		return fail(err)
	}
	schemaTable := NewSchemaTable(schema, table)
	if err = l.ensureSchema(schema); err != nil {
		return fail(err)
	}
	if err = l.ensureFileFormat(schema); err != nil {
		return fail(err)
	}
	if err = l.ensureTable(schemaTable, schema, stagePath); err != nil {
		return fail(err)
	}
	force := false
	switch mode {
	case pipeline.WriteModeOverwrite:
		query := fmt.Sprintf("delete from %v", schemaTable.String()) // delete all rows!
		if _, err = l.exec(query); err != nil {
			return fail(err)
		}
		force = true // enable force load due to DML DELETE.
	case pipeline.WriteModeAppend:
		// COPY INTO skips files already loaded into the table.
	case pipeline.WriteModeFailIfExists:
		n, err := l.queryCount(fmt.Sprintf("select count(*) from %v", schemaTable.String()))
		if err != nil {
			return fail(err)
		}
		if n > 0 {
			return fail(fmt.Errorf("table %v already contains %v rows", schemaTable.String(), n))
		}
	default:
		return fail(fmt.Errorf("unsupported write mode %q", mode))
	}
	query := GetSqlSnowflakeCopyInto(schemaTable, schema, stagePath, force)
	if _, err = l.exec(query); err != nil {
		return fail(err)
	}
	report.Rows, err = l.queryCount(fmt.Sprintf("select count(*) from %v", schemaTable.String()))
	if err != nil {
		return fail(err)
	}
	l.Log.Info("Loaded ", schemaTable.String(), " from ", stagePath, ": ", report.Rows, " rows")
	return report, nil
}

// StagePath rewrites an s3:// object URI as a path on the external stage.
// The URI must sit under the bucket/prefix the stage was created on.
func (l *SnowflakeLoader) StagePath(sourceUri string) (string, error) {
	bucket, key, err := s3.ParseObjectURI(sourceUri)
	if err != nil {
		return "", err
	}
	if bucket != l.Bucket {
		return "", fmt.Errorf("object %v is not in the stage bucket %v", sourceUri, l.Bucket)
	}
	rest := key
	if l.Prefix != "" {
		prefix := strings.TrimRight(l.Prefix, "/") + "/"
		if !strings.HasPrefix(key, prefix) {
			return "", fmt.Errorf("object %v is not under the stage prefix %v", sourceUri, l.Prefix)
		}
		rest = strings.TrimPrefix(key, prefix)
	}
	return fmt.Sprintf("@%v/%v", l.StageName, rest), nil
}

func (l *SnowflakeLoader) ensureSchema(schema string) error {
	rows, err := l.Db.Query(fmt.Sprintf("show schemas like '%v'", schema))
	if err != nil {
		return errors.Wrap(err, "unable to list schemas")
	}
	found := rows.Next()
	_ = rows.Close()
	if found { // if the schema exists...
		return nil
	}
	_, err = l.exec(fmt.Sprintf("create schema %v", schema))
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists") {
		// Another run created it between the check and the create.
		return nil
	}
	return err
}

func (l *SnowflakeLoader) ensureFileFormat(schema string) error {
	_, err := l.exec(fmt.Sprintf("create file format if not exists %v.%v type = parquet",
		schema, constants.ParquetFormatName))
	return err
}

func (l *SnowflakeLoader) ensureTable(schemaTable SchemaTable, schema string, stagePath string) error {
	query := fmt.Sprintf(
		"create table if not exists %v using template ("+
			"select array_agg(object_construct(*)) "+
			"from table(infer_schema(location=>'%v', file_format=>'%v.%v')))",
		schemaTable.String(), stagePath, schema, constants.ParquetFormatName)
	_, err := l.exec(query)
	return err
}

func (l *SnowflakeLoader) exec(query string) (Result, error) {
	l.Log.Debug("executing query: ", query)
	res, err := l.Db.Exec(query)
	if err != nil {
		return nil, errors.Wrapf(err, "error while executing SQL: '%v'", query)
	}
	if res != nil {
		i, e := res.RowsAffected()
		if e == nil { // if we have the number of rows affected...
			l.Log.Debug("rows affected: ", i)
		} // else the error is only concerned with number of rows affected, which can be 0 for DDL.
	}
	return res, nil
}

func (l *SnowflakeLoader) queryCount(query string) (int64, error) {
	l.Log.Debug("executing query: ", query)
	rows, err := l.Db.Query(query)
	if err != nil {
		return 0, errors.Wrapf(err, "error while executing SQL: '%v'", query)
	}
	defer func() {
		_ = rows.Close()
	}()
	if !rows.Next() {
		return 0, fmt.Errorf("no rows returned by SQL: '%v'", query)
	}
	var n int64
	if err = rows.Scan(&n); err != nil {
		return 0, errors.Wrap(err, "error scanning row")
	}
	return n, rows.Err()
}

// GetSqlSnowflakeCopyInto generates SQL to copy parquet data from the supplied
// stage path into the given table, matching columns by name.
func GetSqlSnowflakeCopyInto(schemaTable SchemaTable, schema string, stagePath string, force bool) string {
	forceSql := ""
	if force { // if we should force load the data files...
		forceSql = " force=true"
	}
	return fmt.Sprintf(
		"copy into %v from '%v' file_format = (format_name = '%v.%v') match_by_column_name = case_insensitive%v",
		schemaTable.String(), stagePath, schema, constants.ParquetFormatName, forceSql)
}

// GetSqlSliceCreateStage generates the DDL for the external stage and its
// parquet file format. storageIntegration may be empty when credentials come
// from the environment.
func GetSqlSliceCreateStage(stageName, schema, bucket, prefix, storageIntegration string) []string {
	integrationSql := ""
	if storageIntegration != "" {
		integrationSql = fmt.Sprintf(" storage_integration = %v", storageIntegration)
	}
	return []string{
		fmt.Sprintf("create schema if not exists %v", schema),
		fmt.Sprintf("create file format if not exists %v.%v type = parquet", schema, constants.ParquetFormatName),
		fmt.Sprintf("create stage if not exists %v url='%v'%v file_format = %v.%v",
			stageName, s3.ObjectURI(bucket, prefix), integrationSql, schema, constants.ParquetFormatName),
	}
}
