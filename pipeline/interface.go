package pipeline

// The four stage contracts. Production implementations live in fetch,
// convert, aws/s3 and rdbms; the pipeline only sequences them, so tests can
// swap in the mocks from mock.go.

// Fetcher downloads one remote artifact to a local path. A file already
// present at dest is a cache hit and must not be re-downloaded unless force
// is set. Failures are TransferError.
type Fetcher interface {
	Fetch(url string, dest string, force bool) error
}

// Converter turns a downloaded gzipped TSV artifact into a columnar file.
// Failures are FormatError.
type Converter interface {
	ToParquet(rawPath string, parquetPath string) (ConversionReport, error)
}

// Publisher uploads a local columnar file to the blob store, overwriting any
// existing object at key, and returns the canonical URI the loader consumes.
// Failures are TransferError.
type Publisher interface {
	Publish(localPath string, key string) (uri string, err error)
}

// Loader ensures the target schema exists and runs a load job from the blob
// URI into the named table, blocking until the job finishes. Failures are
// LoadError.
type Loader interface {
	Load(sourceUri string, schema string, table string, mode WriteMode) (LoadReport, error)
}
