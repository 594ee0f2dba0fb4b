package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/klauspost/compress/gzip"
)

// writeRawArtifact writes a .tsv.gz test file. Store mode (gzip level 0)
// keeps the raw artifact large so the compression-ratio assertions are
// stable regardless of how well the synthetic rows deflate.
func writeRawArtifact(t *testing.T, path string, contents string, level int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal("unable to create raw artifact: ", err)
	}
	gz, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		t.Fatal("unable to create gzip writer: ", err)
	}
	if _, err = gz.Write([]byte(contents)); err != nil {
		t.Fatal("unable to write raw artifact: ", err)
	}
	if err = gz.Close(); err != nil {
		t.Fatal("unable to close gzip writer: ", err)
	}
	if err = f.Close(); err != nil {
		t.Fatal("unable to close raw artifact: ", err)
	}
}

func TestToParquetReportAndTypes(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "title.ratings.tsv.gz")
	parquetPath := filepath.Join(dir, "title_ratings.parquet")

	b := strings.Builder{}
	b.WriteString("tconst\taverageRating\tnumVotes\n")
	for i := 0; i < 2000; i++ {
		b.WriteString(fmt.Sprintf("tt%07d\t%d.%d\t%d\n", i, i%9+1, i%10, i*3))
	}
	writeRawArtifact(t, rawPath, b.String(), gzip.NoCompression)

	c := NewConverter(log, "snappy")
	report, err := c.ToParquet(rawPath, parquetPath)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if report.Rows != 2000 {
		t.Fatal("expected 2000 data rows (header excluded), got ", report.Rows)
	}
	if report.Columns != 3 {
		t.Fatal("expected 3 columns, got ", report.Columns)
	}
	if report.CompressionRatio <= 0 || report.CompressionRatio >= 1 {
		t.Fatal("expected compression ratio strictly between 0 and 1, got ", report.CompressionRatio)
	}

	rows, err := ReadRows(parquetPath)
	if err != nil {
		t.Fatal("unable to read parquet back: ", err)
	}
	if len(rows) != 2000 {
		t.Fatal("expected 2000 rows back, got ", len(rows))
	}
	// Inferred types: string, float64, int64.
	if _, ok := rows[0]["tconst"].(string); !ok {
		t.Fatalf("expected tconst to be a string, got %T", rows[0]["tconst"])
	}
	if _, ok := rows[0]["averageRating"].(float64); !ok {
		t.Fatalf("expected averageRating to be a float64, got %T", rows[0]["averageRating"])
	}
	if _, ok := rows[0]["numVotes"].(int64); !ok {
		t.Fatalf("expected numVotes to be an int64, got %T", rows[0]["numVotes"])
	}
}

func TestToParquetRoundTripWithNulls(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "title.basics.tsv.gz")
	parquetPath := filepath.Join(dir, "title_basics.parquet")

	null := `\N`
	contents := "tconst\tprimaryTitle\truntimeMinutes\n" +
		"tt0000001\tCarmencita\t1\n" +
		"tt0000002\tLe clown et ses chiens\t" + null + "\n" +
		"tt0000003\t" + null + "\t4\n"
	writeRawArtifact(t, rawPath, contents, gzip.BestSpeed)

	c := NewConverter(log, "snappy")
	report, err := c.ToParquet(rawPath, parquetPath)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if report.Rows != 3 {
		t.Fatal("expected 3 rows, got ", report.Rows)
	}
	rows, err := ReadRows(parquetPath)
	if err != nil {
		t.Fatal("unable to read parquet back: ", err)
	}
	if len(rows) != 3 {
		t.Fatal("expected 3 rows back, got ", len(rows))
	}
	// Non-null values survive byte-identical.
	if got := rows[0]["primaryTitle"]; got != "Carmencita" {
		t.Fatal("unexpected title in row 0: ", got)
	}
	if got := rows[1]["primaryTitle"]; got != "Le clown et ses chiens" {
		t.Fatal("unexpected title in row 1: ", got)
	}
	if got := rows[0]["runtimeMinutes"]; got != int64(1) {
		t.Fatal("unexpected runtime in row 0: ", got)
	}
	// The null sentinel becomes an absent value, not a literal backslash-N.
	if v, ok := rows[1]["runtimeMinutes"]; ok && v != nil {
		t.Fatal("expected a null runtime in row 1, got: ", v)
	}
	if v, ok := rows[2]["primaryTitle"]; ok && v != nil {
		t.Fatal("expected a null title in row 2, got: ", v)
	}
}

func TestToParquetFormatErrors(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	dir := t.TempDir()
	c := NewConverter(log, "snappy")
	var fe pipeline.FormatError

	// Test 1 - ragged row.
	rawPath := filepath.Join(dir, "ragged.tsv.gz")
	writeRawArtifact(t, rawPath, "a\tb\n1\t2\t3\n", gzip.BestSpeed)
	_, err := c.ToParquet(rawPath, filepath.Join(dir, "ragged.parquet"))
	if err == nil || !errors.As(err, &fe) {
		t.Fatal("expected a FormatError for a ragged row, got: ", err)
	}

	// Test 2 - missing input file.
	_, err = c.ToParquet(filepath.Join(dir, "nope.tsv.gz"), filepath.Join(dir, "nope.parquet"))
	if err == nil || !errors.As(err, &fe) {
		t.Fatal("expected a FormatError for a missing file, got: ", err)
	}

	// Test 3 - not a gzip stream.
	rawPath = filepath.Join(dir, "plain.tsv.gz")
	if err := os.WriteFile(rawPath, []byte("a\tb\n1\t2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = c.ToParquet(rawPath, filepath.Join(dir, "plain.parquet"))
	if err == nil || !errors.As(err, &fe) {
		t.Fatal("expected a FormatError for a non-gzip input, got: ", err)
	}

	// Test 4 - empty input (no header).
	rawPath = filepath.Join(dir, "empty.tsv.gz")
	writeRawArtifact(t, rawPath, "", gzip.BestSpeed)
	_, err = c.ToParquet(rawPath, filepath.Join(dir, "empty.parquet"))
	if err == nil || !errors.As(err, &fe) {
		t.Fatal("expected a FormatError for an empty input, got: ", err)
	}
}
