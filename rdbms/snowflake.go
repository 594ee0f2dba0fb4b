package rdbms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	sf "github.com/snowflakedb/gosnowflake"
	"github.com/xo/dburl"
)

type SnowflakeConnectionDetails struct {
	Account   string `errorTxt:"Snowflake account" mandatory:"yes"`
	DBName    string `errorTxt:"Snowflake db name" mandatory:"yes"`
	Schema    string `errorTxt:"Snowflake schema"`
	User      string `errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `errorTxt:"Snowflake password" mandatory:"yes"`
	Warehouse string `errorTxt:"Snowflake warehouse"`
	RoleName  string `errorTxt:"Snowflake role name"`
	Dsn       string
}

func (d SnowflakeConnectionDetails) String() string {
	return fmt.Sprintf("%v:%v@%v/%v?schema=%v&warehouse=%v&role=%v",
		d.User,
		"xxxxxxx",
		d.Account,
		d.DBName,
		d.Schema,
		d.Warehouse,
		d.RoleName,
	)
}

// sqlConnection wraps Go native sql.DB behind the Connector interface.
type sqlConnection struct {
	dbSql  *sql.DB
	dbType string
}

func (c *sqlConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *sqlConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	res, err := c.dbSql.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *sqlConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *sqlConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := c.dbSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *sqlConnection) Close() {
	_ = c.dbSql.Close()
}

func (c *sqlConnection) GetType() string {
	return c.dbType
}

// NewSnowflakeConnection opens the Snowflake database connection specified by
// the 'snowflake://' DSN and pings it.
func NewSnowflakeConnection(log logger.Logger, dsn string) (Connector, error) {
	details, err := SnowflakeParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("bad Snowflake DSN: %v", err)
	}
	log.Debug("Connecting to Snowflake with ", details)
	u, err := dburl.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("bad Snowflake DSN: %v", err)
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful database connection to Snowflake.")
	return &sqlConnection{dbSql: db, dbType: "snowflake"}, nil
}

// SnowflakeParseDSN converts a Snowflake DSN into native connection details.
// The prefix 'snowflake://' is removed from the DSN if it exists.
func SnowflakeParseDSN(d string) (*SnowflakeConnectionDetails, error) {
	re := regexp.MustCompile("^snowflake://")
	if !re.MatchString(d) {
		return nil, errors.New("unsupported Snowflake DSN format")
	}
	d = strings.TrimPrefix(d, "snowflake://")
	cfg, err := sf.ParseDSN(d)
	if err != nil {
		return nil, err
	}
	retval := &SnowflakeConnectionDetails{
		User:      cfg.User,
		Password:  cfg.Password,
		Schema:    cfg.Schema,
		DBName:    cfg.Database,
		Account:   cfg.Account,
		RoleName:  cfg.Role,
		Warehouse: cfg.Warehouse,
		Dsn:       "snowflake://" + d,
	}
	if cfg.Region != "" { // if region exists in the parsed config...
		// Add it to our account settings.
		retval.Account = fmt.Sprintf("%v.%v", retval.Account, cfg.Region)
	}
	return retval, nil
}
