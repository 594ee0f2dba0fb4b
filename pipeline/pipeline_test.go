package pipeline_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Richard-GOZAN/imdb-analytics-platform/catalog"
	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		BaseUrl:      "https://datasets.example.com",
		RawDir:       filepath.Join(dir, "raw"),
		ParquetDir:   filepath.Join(dir, "parquet"),
		Bucket:       "movies-dev",
		Region:       "eu-west-1",
		Prefix:       "imdb",
		BronzeSchema: "bronze",
		Compression:  "snappy",
	}
	if err := cfg.CreateDirectories(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestPipeline(cfg *config.Config) (*pipeline.Pipeline, *pipeline.MockFetcher, *pipeline.MockConverter, *pipeline.MockPublisher, *pipeline.MockLoader) {
	f := &pipeline.MockFetcher{Errors: map[string]error{}}
	c := &pipeline.MockConverter{Report: pipeline.ConversionReport{Rows: 10, Columns: 3, CompressionRatio: 0.5}, Errors: map[string]error{}}
	pub := &pipeline.MockPublisher{Errors: map[string]error{}}
	l := &pipeline.MockLoader{Report: pipeline.LoadReport{Rows: 10}, Errors: map[string]error{}}
	p := &pipeline.Pipeline{
		Log:       logger.NewLogger("imdb-test", "error", false),
		Cfg:       cfg,
		Fetcher:   f,
		Converter: c,
		Publisher: pub,
		Loader:    l,
	}
	return p, f, c, pub, l
}

func threeTables(t *testing.T) []catalog.Table {
	t.Helper()
	tables, err := catalog.Select([]string{"name.basics", "title.basics", "title.ratings"})
	if err != nil {
		t.Fatal(err)
	}
	return tables
}

func TestRunAllSuccess(t *testing.T) {
	cfg := newTestConfig(t)
	p, f, c, pub, l := newTestPipeline(cfg)
	tables := threeTables(t)

	result := p.Run(tables, pipeline.Options{})
	if result.ExitCode() != pipeline.ExitSuccess {
		t.Fatal("expected exit 0, got ", result.ExitCode())
	}
	if len(result.Successful()) != 3 || len(result.Failed()) != 0 {
		t.Fatal("expected 3 successes, got ", result.Successful(), result.Failed())
	}
	if len(f.Calls) != 3 || len(c.Calls) != 3 || len(pub.Calls) != 3 || len(l.Calls) != 3 {
		t.Fatal("expected every stage to run per table")
	}
	// Every load is a full reload.
	for _, m := range l.Modes {
		if m != pipeline.WriteModeOverwrite {
			t.Fatal("expected overwrite mode, got ", m)
		}
	}
	// Object keys follow the catalogue derivation.
	if pub.Calls[2] != "imdb/title_ratings/title_ratings.parquet" {
		t.Fatal("unexpected object key: ", pub.Calls[2])
	}
}

func TestRunPartialFailure(t *testing.T) {
	cfg := newTestConfig(t)
	p, f, _, _, l := newTestPipeline(cfg)
	tables := threeTables(t)

	f.Errors[tables[1].URL(cfg.BaseUrl)] = pipeline.TransferError{Op: "fetch", Target: "x", Err: errors.New("boom")}
	result := p.Run(tables, pipeline.Options{})
	if result.ExitCode() != pipeline.ExitPartial {
		t.Fatal("expected exit 1, got ", result.ExitCode())
	}
	if got := result.Failed(); len(got) != 1 || got[0] != "title.basics" {
		t.Fatal("unexpected failures: ", got)
	}
	// The failed table never reaches the later stages but others do.
	if len(l.Calls) != 2 {
		t.Fatal("expected 2 loads, got ", l.Calls)
	}
}

func TestRunTotalFailure(t *testing.T) {
	cfg := newTestConfig(t)
	p, f, _, _, _ := newTestPipeline(cfg)
	tables := threeTables(t)

	for _, tbl := range tables {
		f.Errors[tbl.URL(cfg.BaseUrl)] = errors.New("offline")
	}
	result := p.Run(tables, pipeline.Options{})
	if result.ExitCode() != pipeline.ExitTotalFailure {
		t.Fatal("expected exit 2, got ", result.ExitCode())
	}
}

func TestRunFailFast(t *testing.T) {
	cfg := newTestConfig(t)
	p, f, _, _, _ := newTestPipeline(cfg)
	tables := threeTables(t)

	f.Errors[tables[0].URL(cfg.BaseUrl)] = errors.New("boom")
	result := p.Run(tables, pipeline.Options{FailFast: true})
	// Only the first table was attempted, so the whole run failed.
	if result.Len() != 1 {
		t.Fatal("expected 1 attempted table, got ", result.Len())
	}
	if _, attempted := result.Get("title.basics"); attempted {
		t.Fatal("later tables must not be attempted after fail-fast")
	}
	if result.ExitCode() != pipeline.ExitTotalFailure {
		t.Fatal("expected exit 2, got ", result.ExitCode())
	}
}

func TestRunSkipLoad(t *testing.T) {
	cfg := newTestConfig(t)
	p, _, _, pub, l := newTestPipeline(cfg)
	tables := threeTables(t)

	result := p.Run(tables, pipeline.Options{SkipLoad: true})
	if result.ExitCode() != pipeline.ExitSuccess {
		t.Fatal("expected exit 0, got ", result.ExitCode())
	}
	if len(pub.Calls) != 3 {
		t.Fatal("publish still runs when the load is skipped")
	}
	if len(l.Calls) != 0 {
		t.Fatal("loader must not be called, got ", l.Calls)
	}
}

func TestRunConvertCache(t *testing.T) {
	cfg := newTestConfig(t)
	p, _, c, pub, l := newTestPipeline(cfg)
	tables, err := catalog.Select([]string{"title.ratings"})
	if err != nil {
		t.Fatal(err)
	}

	// A cached columnar artifact skips conversion but not publish or load.
	parquetPath := tables[0].ParquetPath(cfg.ParquetDir)
	if err := os.WriteFile(parquetPath, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := p.Run(tables, pipeline.Options{})
	if result.ExitCode() != pipeline.ExitSuccess {
		t.Fatal("expected exit 0, got ", result.ExitCode())
	}
	if len(c.Calls) != 0 {
		t.Fatal("conversion must be skipped for a cached artifact")
	}
	if len(pub.Calls) != 1 || len(l.Calls) != 1 {
		t.Fatal("publish and load must still run")
	}

	// Force bypasses the cache.
	p.Run(tables, pipeline.Options{ForceDownload: true})
	if len(c.Calls) != 1 {
		t.Fatal("force must re-convert, got ", c.Calls)
	}
}

func TestRunCleanupGuard(t *testing.T) {
	cfg := newTestConfig(t)
	p, f, _, _, _ := newTestPipeline(cfg)
	tables := threeTables(t)

	seedArtifacts := func() (string, string) {
		rawPath := tables[0].RawPath(cfg.RawDir)
		parquetPath := tables[0].ParquetPath(cfg.ParquetDir)
		for _, path := range []string{rawPath, parquetPath} {
			if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		return rawPath, parquetPath
	}

	// Test 1 - a failed run keeps every artifact for the retry.
	rawPath, parquetPath := seedArtifacts()
	f.Errors[tables[2].URL(cfg.BaseUrl)] = errors.New("boom")
	p.Run(tables, pipeline.Options{Cleanup: true})
	for _, path := range []string{rawPath, parquetPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatal("artifact must survive a failed run: ", path)
		}
	}

	// Test 2 - a successful run with KeepColumnar removes raw only.
	delete(f.Errors, tables[2].URL(cfg.BaseUrl))
	p.Run(tables, pipeline.Options{Cleanup: true, KeepColumnar: true})
	if _, err := os.Stat(rawPath); !os.IsNotExist(err) {
		t.Fatal("raw artifact must be removed: ", rawPath)
	}
	if _, err := os.Stat(parquetPath); err != nil {
		t.Fatal("parquet artifact must be kept: ", parquetPath)
	}

	// Test 3 - a successful run without KeepColumnar removes both.
	rawPath, parquetPath = seedArtifacts()
	p.Run(tables, pipeline.Options{Cleanup: true})
	for _, path := range []string{rawPath, parquetPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatal("artifact must be removed: ", path)
		}
	}
}
