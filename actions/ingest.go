// Package actions implements the work behind each CLI command: it assembles
// the stage implementations from config and hands control to the pipeline.
package actions

import (
	"fmt"

	"github.com/Richard-GOZAN/imdb-analytics-platform/aws/s3"
	"github.com/Richard-GOZAN/imdb-analytics-platform/catalog"
	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/convert"
	"github.com/Richard-GOZAN/imdb-analytics-platform/fetch"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/Richard-GOZAN/imdb-analytics-platform/rdbms"
)

type IngestConfig struct {
	Tables           []string
	ForceDownload    bool
	SkipLoad         bool
	FailFast         bool
	Cleanup          bool
	KeepParquet      bool
	DryRun           bool
	LogLevel         string
	StackDumpOnPanic bool
}

// RunIngest executes a full ingestion run and returns the process exit code.
// Pre-flight failures (bad config, unknown tables, no warehouse connection)
// count as total failure since no table was processed.
func RunIngest(cfg *IngestConfig) int {
	c, err := config.FromEnv()
	if err != nil {
		fmt.Println("Error:", err)
		return pipeline.ExitTotalFailure
	}
	if cfg.LogLevel != "" {
		c.LogLevel = cfg.LogLevel
	}
	log := logger.NewLogger("imdb", c.LogLevel, cfg.StackDumpOnPanic)
	if err = c.RestrictTables(cfg.Tables); err != nil {
		fmt.Println("Error:", err)
		return pipeline.ExitTotalFailure
	}
	if err = c.Validate(cfg.SkipLoad); err != nil {
		fmt.Println("Error:", err)
		return pipeline.ExitTotalFailure
	}
	if cfg.DryRun { // if we should show the run setup without executing it...
		yaml, err := c.Yaml()
		if err != nil {
			fmt.Println("Error:", err)
			return pipeline.ExitTotalFailure
		}
		fmt.Print(yaml)
		return pipeline.ExitSuccess
	}
	if err = c.CreateDirectories(); err != nil {
		fmt.Println("Error:", err)
		return pipeline.ExitTotalFailure
	}
	tables, err := catalog.Select(c.Tables)
	if err != nil {
		fmt.Println("Error:", err)
		return pipeline.ExitTotalFailure
	}

	p := &pipeline.Pipeline{
		Log:       log,
		Cfg:       c,
		Fetcher:   fetch.NewFetcher(log),
		Converter: convert.NewConverter(log, c.Compression),
		Publisher: s3.NewPublisher(log, c.Bucket, c.Region),
	}
	if !cfg.SkipLoad { // if tables will be loaded into the warehouse...
		db, err := rdbms.NewSnowflakeConnection(log, c.SnowflakeDsn)
		if err != nil {
			fmt.Println("Error:", config.ConfigError{Err: err})
			return pipeline.ExitTotalFailure
		}
		defer db.Close()
		p.Loader = rdbms.NewSnowflakeLoader(log, db, c.StageName, c.Bucket, c.Prefix)
	}

	result := p.Run(tables, pipeline.Options{
		ForceDownload: cfg.ForceDownload,
		SkipLoad:      cfg.SkipLoad,
		FailFast:      cfg.FailFast,
		Cleanup:       cfg.Cleanup,
		KeepColumnar:  cfg.KeepParquet,
	})
	return result.ExitCode()
}
