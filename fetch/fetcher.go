// Package fetch downloads the remote IMDb dataset files to the local raw
// cache. A file already present locally is a cache hit and is not downloaded
// again unless forced - this is the run's primary idempotency mechanism.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/pkg/errors"
)

type Fetcher struct {
	Log    logger.Logger
	Client *http.Client
}

func NewFetcher(log logger.Logger) *Fetcher {
	return &Fetcher{Log: log, Client: http.DefaultClient}
}

// Fetch streams the remote content at url to dest in bounded chunks so memory
// stays constant regardless of file size. The body is written to a temporary
// ".part" path and renamed on success - an interrupted download can never be
// mistaken for a cache hit on retry.
func (f *Fetcher) Fetch(url string, dest string, force bool) error {
	if !force && fileExists(dest) { // if the raw artifact is already cached...
		f.Log.Info("Skipping download (file exists): ", dest)
		return nil
	}
	f.Log.Info("Downloading ", url, " to ", dest)
	resp, err := f.Client.Get(url)
	if err != nil {
		return pipeline.TransferError{Op: "fetch", Target: url, Err: errors.Wrap(err, "request failed")}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pipeline.TransferError{Op: "fetch", Target: url, Err: fmt.Errorf("unexpected HTTP status %v", resp.Status)}
	}
	partPath := dest + constants.DownloadPartSuffix
	if err := f.writeBody(resp, partPath); err != nil {
		_ = os.Remove(partPath) // never leave a partial file behind.
		return pipeline.TransferError{Op: "fetch", Target: url, Err: err}
	}
	if err := os.Rename(partPath, dest); err != nil {
		_ = os.Remove(partPath)
		return pipeline.TransferError{Op: "fetch", Target: url, Err: errors.Wrap(err, "unable to finalise download")}
	}
	f.Log.Info("Download complete: ", dest)
	return nil
}

// writeBody copies the response body to path, logging progress at a fixed
// byte cadence (with a percentage when the server sent a Content-Length).
func (f *Fetcher) writeBody(resp *http.Response, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create output file")
	}
	var downloaded, nextMark int64
	nextMark = constants.ProgressLogBytes
	buf := make([]byte, constants.DownloadChunkBytes)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				_ = out.Close()
				return errors.Wrap(writeErr, "unable to write output file")
			}
			downloaded += int64(n)
			if downloaded >= nextMark { // if we passed the progress cadence...
				f.logProgress(downloaded, resp.ContentLength)
				nextMark += constants.ProgressLogBytes
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = out.Close()
			return errors.Wrap(readErr, "download interrupted")
		}
	}
	return out.Close()
}

func (f *Fetcher) logProgress(downloaded, total int64) {
	if total > 0 { // if the server told us the full size...
		f.Log.Info("Progress: ", downloaded*100/total, "% (", downloaded/1024/1024, " MB)")
	} else {
		f.Log.Info("Progress: ", downloaded/1024/1024, " MB")
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
