package actions

import (
	"errors"
	"fmt"

	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/rdbms"
)

type CreateStageConfig struct {
	StorageIntegration string
	ExecuteDDL         bool
	LogLevel           string
	StackDumpOnPanic   bool
}

// RunCreateStage prints the DDL for the external stage and its parquet file
// format, generated from the bucket configuration. With ExecuteDDL set it
// also runs each statement against the warehouse.
func RunCreateStage(cfg *CreateStageConfig) error {
	c, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		c.LogLevel = cfg.LogLevel
	}
	if c.Bucket == "" {
		return config.ConfigError{Err: errors.New("an S3 bucket is required to create a stage")}
	}
	ddl := rdbms.GetSqlSliceCreateStage(c.StageName, c.BronzeSchema, c.Bucket, c.Prefix, cfg.StorageIntegration)
	for _, stmt := range ddl {
		fmt.Println(stmt + ";")
	}
	if !cfg.ExecuteDDL { // if we are only printing the DDL...
		return nil
	}
	if c.SnowflakeDsn == "" {
		return config.ConfigError{Err: errors.New("a Snowflake DSN is required to execute DDL")}
	}
	log := logger.NewLogger("imdb", c.LogLevel, cfg.StackDumpOnPanic)
	db, err := rdbms.NewSnowflakeConnection(log, c.SnowflakeDsn)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, stmt := range ddl {
		if _, err = db.Exec(stmt); err != nil {
			return fmt.Errorf("error while executing DDL '%v': %w", stmt, err)
		}
		log.Info("executed: ", stmt)
	}
	return nil
}
