package constants

const (
	EnvVarPrefix = "IMDB" // prefix for environment variables that feed config and flag defaults

	// Remote source defaults.
	DefaultBaseUrl = "https://datasets.imdbws.com/"

	// Local artifact folders are pure caches - safe to delete between runs.
	DefaultRawDir     = "data/raw"
	DefaultParquetDir = "data/parquet"

	// Blob store layout.
	DefaultBlobPrefix = "imdb"

	// Warehouse defaults.
	DefaultStageName    = "IMDB_STAGE"
	DefaultBronzeSchema = "bronze"
	ParquetFormatName   = "IMDB_PARQUET_FORMAT"

	// Download tuning.
	DownloadChunkBytes   = 64 * 1024
	ProgressLogBytes     = 10 * 1024 * 1024 // log download progress every 10 MiB
	DownloadPartSuffix   = ".part"
	RawFileExtension     = ".tsv.gz"
	ParquetFileExtension = ".parquet"

	// Conversion defaults.
	DefaultCompression = "snappy"
	NullSentinel       = `\N` // the IMDb dumps use a literal backslash-N for NULL

	DefaultLogLevel = "info"
)
