// Package pipeline drives each catalogue table through the four ingestion
// stages (fetch, convert to Parquet, publish to the blob store, load into the
// warehouse) and folds per-table outcomes into a single run result.
//
// Processing is single-threaded and fully sequential: one table runs through
// all stages before the next begins. There are no automatic retries - the
// local artifact cache is the manual retry path, because re-invoking the run
// skips stages whose outputs already exist.
package pipeline

import (
	"os"

	"github.com/Richard-GOZAN/imdb-analytics-platform/catalog"
	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/rs/xid"
)

// Pipeline sequences the stage implementations for one run.
type Pipeline struct {
	Log       logger.Logger
	Cfg       *config.Config
	Fetcher   Fetcher
	Converter Converter
	Publisher Publisher
	Loader    Loader
}

// Options are the per-run switches.
type Options struct {
	ForceDownload bool // bypass the fetch and convert caches
	SkipLoad      bool // stop after publish (testing/dry mode); tables still count as succeeded
	FailFast      bool // abort the whole run on the first table failure
	Cleanup       bool // delete local raw artifacts after a fully successful run
	KeepColumnar  bool // cleanup keeps the parquet artifacts (the cheaper cache to rebuild)
}

// ProcessTable drives one table through fetch, convert, publish and load.
// A nil return means the table reached its terminal state; any error has
// already been classified by the failing stage.
func (p *Pipeline) ProcessTable(t catalog.Table, opts Options) error {
	log := p.Log
	log.Info("Processing table ", t.Name())

	// Stage 1 - fetch (the fetcher itself skips on cache hit).
	rawPath := t.RawPath(p.Cfg.RawDir)
	if err := p.Fetcher.Fetch(t.URL(p.Cfg.BaseUrl), rawPath, opts.ForceDownload); err != nil {
		log.Error("table ", t.Name(), ": fetch stage failed: ", err)
		return err
	}

	// Stage 2 - convert, skipped when the columnar artifact is already cached.
	parquetPath := t.ParquetPath(p.Cfg.ParquetDir)
	if !opts.ForceDownload && fileExists(parquetPath) {
		log.Info("Skipping conversion (file exists): ", parquetPath)
	} else {
		report, err := p.Converter.ToParquet(rawPath, parquetPath)
		if err != nil {
			log.Error("table ", t.Name(), ": convert stage failed: ", err)
			return err
		}
		log.Info("Converted ", t.Name(), ": ", report.Rows, " rows, ", report.Columns,
			" columns, size reduction ", int(report.CompressionRatio*100), "%")
	}

	// Stage 3 - publish. Never skipped: re-running always re-uploads so the
	// blob object is known to match the local columnar artifact.
	uri, err := p.Publisher.Publish(parquetPath, t.BlobKey(p.Cfg.Prefix))
	if err != nil {
		log.Error("table ", t.Name(), ": publish stage failed: ", err)
		return err
	}
	log.Info("Published ", t.Name(), " to ", uri)

	// Stage 4 - load.
	if opts.SkipLoad {
		log.Info("Skipping warehouse load for ", t.Name())
		return nil
	}
	report, err := p.Loader.Load(uri, p.Cfg.BronzeSchema, t.TableID(), WriteModeOverwrite)
	if err != nil {
		log.Error("table ", t.Name(), ": load stage failed: ", err)
		return err
	}
	log.Info("Loaded ", t.Name(), ": ", report.Rows, " rows in ", p.Cfg.BronzeSchema, ".", t.TableID())
	return nil
}

// Run processes the tables in catalogue order and returns the accumulated
// result. Cleanup only ever runs after a fully successful run: a partial run
// keeps every local artifact so failed tables can retry from their caches.
func (p *Pipeline) Run(tables []catalog.Table, opts Options) *RunResult {
	log := p.Log
	guid := xid.New().String()
	log.Info("Starting ingestion run ", guid, ": ", len(tables), " table(s), bucket ", p.Cfg.Bucket,
		", schema ", p.Cfg.BronzeSchema, ", force download ", opts.ForceDownload)

	result := NewRunResult()
	for i, t := range tables {
		log.Info("[", i+1, "/", len(tables), "] ", t.Name())
		err := p.ProcessTable(t, opts)
		result.Set(t.Name(), err == nil)
		if err != nil && opts.FailFast { // if we should stop issuing new table-processing calls...
			log.Error("Stopping run ", guid, " on first failure (fail-fast)")
			break
		}
	}

	// Summary.
	successful := result.Successful()
	failed := result.Failed()
	log.Info("Run ", guid, " complete: ", len(successful), "/", result.Len(), " table(s) succeeded")
	for _, name := range successful {
		log.Info("  ok      ", name)
	}
	for _, name := range failed {
		log.Error("  failed  ", name)
	}

	if opts.Cleanup {
		if len(failed) > 0 { // if anything failed the artifacts may be needed for a retry...
			log.Warn("Skipping cleanup: ", len(failed), " table(s) failed")
		} else if err := Cleanup(log, p.Cfg, opts.KeepColumnar); err != nil {
			log.Warn("Cleanup failed: ", err)
		}
	}
	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
