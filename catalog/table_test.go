package catalog

import (
	"path/filepath"
	"testing"
)

func TestTableDerivations(t *testing.T) {
	tab := New("title.basics")
	if got := tab.SourceFile(); got != "title.basics.tsv.gz" {
		t.Fatal("unexpected source file: ", got)
	}
	if got := tab.TableID(); got != "title_basics" {
		t.Fatal("unexpected table ID: ", got)
	}
	if got := tab.URL("https://datasets.imdbws.com/"); got != "https://datasets.imdbws.com/title.basics.tsv.gz" {
		t.Fatal("unexpected URL: ", got)
	}
	if got := tab.RawPath("data/raw"); got != filepath.Join("data", "raw", "title.basics.tsv.gz") {
		t.Fatal("unexpected raw path: ", got)
	}
	if got := tab.ParquetPath("data/parquet"); got != filepath.Join("data", "parquet", "title_basics.parquet") {
		t.Fatal("unexpected parquet path: ", got)
	}
	if got := tab.BlobKey("imdb"); got != "imdb/title_basics/title_basics.parquet" {
		t.Fatal("unexpected blob key: ", got)
	}
	if got := tab.BlobKey("imdb/"); got != "imdb/title_basics/title_basics.parquet" {
		t.Fatal("expected trailing slash on the prefix to collapse: ", got)
	}
	if got := tab.BlobKey(""); got != "title_basics/title_basics.parquet" {
		t.Fatal("unexpected blob key without prefix: ", got)
	}
}

func TestSelect(t *testing.T) {
	// Test 1 - empty selection returns the full catalogue in order.
	all, err := Select(nil)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if len(all) != 7 {
		t.Fatal("expected the 7-table catalogue, got ", len(all))
	}
	if all[0].Name() != "name.basics" || all[6].Name() != "title.ratings" {
		t.Fatal("catalogue order not preserved: ", all)
	}
	// Test 2 - selection preserves catalogue order regardless of request order.
	some, err := Select([]string{"title.ratings", "title.basics"})
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if len(some) != 2 || some[0].Name() != "title.basics" || some[1].Name() != "title.ratings" {
		t.Fatal("unexpected selection: ", some)
	}
	// Test 3 - unknown names are rejected.
	if _, err = Select([]string{"title.basics", "title.bogus"}); err == nil {
		t.Fatal("expected an error for an unknown table name")
	}
}
