package actions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/helper"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/rdbms"
	"golang.org/x/net/context"
)

type QueryConfig struct {
	Dsn              string
	Query            string
	PrintHeader      bool
	DryRun           bool
	LogLevel         string
	StackDumpOnPanic bool
}

// RunQuery executes SQL against the warehouse and writes the results to
// stdout as CSV lines.
func RunQuery(cfg *QueryConfig) error {
	if cfg.DryRun {
		fmt.Println(cfg.Query)
		return nil
	}
	if cfg.Dsn == "" {
		return config.ConfigError{Err: errors.New("a Snowflake DSN is required to run queries")}
	}
	log := logger.NewLogger("imdb", cfg.LogLevel, cfg.StackDumpOnPanic)
	db, err := rdbms.NewSnowflakeConnection(log, cfg.Dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	// Create context.
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()
	// Handle interrupts.
	chanQuit := make(chan os.Signal, 2)
	chanSql := make(chan rdbms.QueryResult, 1)
	signal.Notify(chanQuit, os.Interrupt, syscall.SIGTERM)
	// Start the SQL.
	go func() {
		chanSql <- rdbms.ExecuteQuery(ctx, log, db, cfg.Query)
	}()
	// Wait for SQL or interrupt.
	var res rdbms.QueryResult
	select {
	case <-chanQuit: // if we were interrupted...
		fmt.Println("\nUser abort. Stopping SQL execution...")
		cancelFn() // cancel the SQL.
		select {
		case <-time.After(5 * time.Second): // timeout.
			fmt.Println("Timeout waiting for SQL to end - aborted")
		case <-chanSql: // sql ended.
		}
		return nil
	case res = <-chanSql: // SQL ended.
	}
	if !res.Success {
		return errors.New(res.Err)
	}
	return writeCsv(os.Stdout, &res, cfg.PrintHeader)
}

func writeCsv(f *os.File, res *rdbms.QueryResult, printHeader bool) error {
	w := csv.NewWriter(f)
	if printHeader {
		if err := w.Write(res.Columns); err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
	}
	for _, row := range res.Rows {
		if err := w.Write(helper.InterfaceToString(row)); err != nil {
			return fmt.Errorf("error outputting SQL row: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}
