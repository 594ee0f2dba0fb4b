package pipeline

import (
	"os"
	"path/filepath"

	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
)

// Cleanup deletes the local raw artifacts and, unless keepColumnar is set,
// the parquet artifacts too. Both folders are pure caches, so this only costs
// a re-fetch/re-convert on the next run. Callers must not invoke this after a
// partial failure; Run enforces that.
func Cleanup(log logger.Logger, cfg *config.Config, keepColumnar bool) error {
	log.Info("Cleaning up local files")
	if err := removeGlob(log, filepath.Join(cfg.RawDir, "*"+constants.RawFileExtension)); err != nil {
		return err
	}
	if !keepColumnar { // if the parquet cache should go as well...
		if err := removeGlob(log, filepath.Join(cfg.ParquetDir, "*"+constants.ParquetFileExtension)); err != nil {
			return err
		}
	}
	return nil
}

func removeGlob(log logger.Logger, pattern string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	for _, f := range matches {
		if err := os.Remove(f); err != nil {
			return err
		}
		log.Info("Deleted ", f)
	}
	return nil
}
