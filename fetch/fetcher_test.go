package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
)

func newTestServer(body string, status int, hits *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchDownloadsAndCaches(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	var hits int64
	srv := newTestServer("col1\tcol2\nv1\tv2\n", http.StatusOK, &hits)
	defer srv.Close()
	dest := filepath.Join(t.TempDir(), "title.basics.tsv.gz")
	f := NewFetcher(log)

	// Test 1 - cache miss downloads the file.
	if err := f.Fetch(srv.URL, dest, false); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal("expected the file to exist: ", err)
	}
	if string(got) != "col1\tcol2\nv1\tv2\n" {
		t.Fatal("unexpected file contents: ", string(got))
	}
	if hits != 1 {
		t.Fatal("expected 1 request, got ", hits)
	}

	// Test 2 - cache hit performs no request at all.
	if err := f.Fetch(srv.URL, dest, false); err != nil {
		t.Fatal("unexpected error on cache hit: ", err)
	}
	if hits != 1 {
		t.Fatal("expected the cache hit to skip the request, got ", hits, " requests")
	}

	// Test 3 - force bypasses the cache.
	if err := f.Fetch(srv.URL, dest, true); err != nil {
		t.Fatal("unexpected error on forced fetch: ", err)
	}
	if hits != 2 {
		t.Fatal("expected the forced fetch to hit the server, got ", hits, " requests")
	}
}

func TestFetchHTTPErrorLeavesNoFile(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	var hits int64
	srv := newTestServer("", http.StatusNotFound, &hits)
	defer srv.Close()
	dest := filepath.Join(t.TempDir(), "title.bogus.tsv.gz")
	f := NewFetcher(log)

	err := f.Fetch(srv.URL, dest, false)
	var te pipeline.TransferError
	if err == nil || !errors.As(err, &te) {
		t.Fatal("expected a TransferError, got: ", err)
	}
	if te.Op != "fetch" {
		t.Fatal("unexpected op in TransferError: ", te.Op)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("expected no file at dest after a failed download")
	}
	if _, statErr := os.Stat(dest + ".part"); !os.IsNotExist(statErr) {
		t.Fatal("expected no partial file after a failed download")
	}
}

func TestFetchNetworkErrorIsTransferError(t *testing.T) {
	log := logger.NewLogger("imdb-test", "error", false)
	f := NewFetcher(log)
	err := f.Fetch("http://127.0.0.1:1/nothing-here", filepath.Join(t.TempDir(), "x"), false)
	var te pipeline.TransferError
	if err == nil || !errors.As(err, &te) {
		t.Fatal("expected a TransferError, got: ", err)
	}
}
