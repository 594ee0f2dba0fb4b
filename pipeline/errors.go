package pipeline

import "fmt"

// The per-table error taxonomy. Each type marks one table failed and lets the
// run continue (or abort under fail-fast); none of them is process-fatal.
// Pre-flight failures are config.ConfigError and never reach a table.

// TransferError denotes a network or storage failure while moving an artifact
// (fetch from the source site, publish to the blob store).
type TransferError struct {
	Op     string // "fetch" or "publish"
	Target string // URL, local path or object key
	Err    error
}

func (e TransferError) Error() string {
	return fmt.Sprintf("%v %v: %v", e.Op, e.Target, e.Err)
}

func (e TransferError) Unwrap() error {
	return e.Err
}

// FormatError denotes a source artifact that cannot be parsed as gzipped
// delimited text, e.g. ragged rows or a truncated download.
type FormatError struct {
	Path string
	Err  error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("convert %v: %v", e.Path, e.Err)
}

func (e FormatError) Unwrap() error {
	return e.Err
}

// LoadError wraps a warehouse load job failure. The load job's own atomicity
// guarantee means a failed overwrite never leaves a half-loaded table; no
// manual rollback is attempted here.
type LoadError struct {
	Table string
	Err   error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("load into %v: %v", e.Table, e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}
