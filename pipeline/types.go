package pipeline

// WriteMode is the policy a load applies to pre-existing rows in the target
// warehouse table.
type WriteMode string

const (
	WriteModeOverwrite    WriteMode = "overwrite"    // replace all existing rows (the default)
	WriteModeAppend       WriteMode = "append"       // add rows to the existing table
	WriteModeFailIfExists WriteMode = "failIfExists" // error if the table already has rows
)

// ConversionReport summarises one TSV to Parquet conversion.
type ConversionReport struct {
	Rows             int64   // data rows written (the header is not a row)
	Columns          int     // column count taken from the header
	CompressionRatio float64 // 1 - parquetSize/rawSize
}

// LoadReport summarises one completed warehouse load.
type LoadReport struct {
	Rows int64 // rows in the target table after the load
}
