// Package convert turns the downloaded gzipped TSV artifacts into Parquet.
// The IMDb dumps mark NULL with a literal backslash-N token; those cells
// become proper Parquet nulls. Column order is preserved and column types are
// inferred from the observed values (int64, then float64, then string).
package convert

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/pkg/errors"
)

const (
	scanBufBytes    = 1024 * 1024      // initial scanner buffer
	scanMaxBytes    = 16 * 1024 * 1024 // longest line we accept
	writeBatchRows  = 4096
	tmpPathSuffix   = ".tmp"
	parquetRootName = "imdb"
)

// Column kinds in promotion order: an int column seeing a float becomes
// float, any column seeing a non-numeric value becomes string.
const (
	kindUnknown = iota // all values null so far
	kindInt
	kindFloat
	kindString
)

type Converter struct {
	Log   logger.Logger
	Codec string // snappy|gzip|zstd|uncompressed
}

func NewConverter(log logger.Logger, codec string) *Converter {
	return &Converter{Log: log, Codec: codec}
}

// ToParquet reads the gzipped TSV at rawPath and writes a Parquet file to
// parquetPath, dropping no rows. The first line is the header. The output is
// written to a temporary path and renamed so the columnar cache is never
// half-written.
func (c *Converter) ToParquet(rawPath string, parquetPath string) (pipeline.ConversionReport, error) {
	c.Log.Info("Converting ", rawPath, " to ", parquetPath)
	header, rows, err := readTsv(rawPath)
	if err != nil {
		return pipeline.ConversionReport{}, pipeline.FormatError{Path: rawPath, Err: err}
	}
	kinds := inferKinds(header, rows)
	tmpPath := parquetPath + tmpPathSuffix
	if err := writeParquet(tmpPath, header, kinds, rows, c.codec()); err != nil {
		_ = os.Remove(tmpPath)
		return pipeline.ConversionReport{}, pipeline.FormatError{Path: rawPath, Err: err}
	}
	if err := os.Rename(tmpPath, parquetPath); err != nil {
		_ = os.Remove(tmpPath)
		return pipeline.ConversionReport{}, pipeline.FormatError{Path: rawPath, Err: errors.Wrap(err, "unable to finalise parquet file")}
	}
	report := pipeline.ConversionReport{Rows: int64(len(rows)), Columns: len(header)}
	rawInfo, err := os.Stat(rawPath)
	if err != nil {
		return report, pipeline.FormatError{Path: rawPath, Err: err}
	}
	parquetInfo, err := os.Stat(parquetPath)
	if err != nil {
		return report, pipeline.FormatError{Path: parquetPath, Err: err}
	}
	report.CompressionRatio = 1 - float64(parquetInfo.Size())/float64(rawInfo.Size())
	c.Log.Info("Conversion complete: ", parquetPath, " (", len(rows), " rows, ",
		len(header), " columns)")
	return report, nil
}

func (c *Converter) codec() compress.Codec {
	switch strings.ToLower(c.Codec) {
	case "gzip":
		return &parquet.Gzip
	case "zstd":
		return &parquet.Zstd
	case "uncompressed":
		return &parquet.Uncompressed
	default: // snappy - the fast general-purpose default.
		return &parquet.Snappy
	}
}

// readTsv loads the whole artifact: header first, then every data row split
// on tabs. A row whose column count differs from the header is a parse error.
func readTsv(rawPath string) ([]string, [][]string, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, errors.Wrap(err, "not a valid gzip stream")
	}
	defer func() {
		_ = gz.Close()
	}()
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, scanBufBytes), scanMaxBytes)
	if !scanner.Scan() { // if there is no header line...
		if err := scanner.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, errors.New("empty input - no header line")
	}
	header := strings.Split(scanner.Text(), "\t")
	rows := make([][]string, 0, 1024)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != len(header) { // if the row is ragged...
			return nil, nil, fmt.Errorf("inconsistent column count at line %v: got %v, header has %v",
				lineNo, len(fields), len(header))
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// inferKinds walks every cell once and promotes each column's kind as
// non-conforming values appear. Null cells carry no type information; a
// column that is entirely null stays string.
func inferKinds(header []string, rows [][]string) []int {
	kinds := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			if cell == constants.NullSentinel || kinds[i] == kindString {
				continue
			}
			switch {
			case isInt(cell):
				if kinds[i] == kindUnknown {
					kinds[i] = kindInt
				}
			case isFloat(cell):
				if kinds[i] == kindUnknown || kinds[i] == kindInt {
					kinds[i] = kindFloat
				}
			default:
				kinds[i] = kindString
			}
		}
	}
	for i := range kinds {
		if kinds[i] == kindUnknown {
			kinds[i] = kindString
		}
	}
	return kinds
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// buildSchema maps the inferred kinds onto an all-optional Parquet group so
// NULL cells round-trip as absent values.
func buildSchema(header []string, kinds []int) *parquet.Schema {
	group := parquet.Group{}
	for i, name := range header {
		var node parquet.Node
		switch kinds[i] {
		case kindInt:
			node = parquet.Int(64)
		case kindFloat:
			node = parquet.Leaf(parquet.DoubleType)
		default:
			node = parquet.String()
		}
		group[name] = parquet.Optional(node)
	}
	return parquet.NewSchema(parquetRootName, group)
}

func writeParquet(path string, header []string, kinds []int, rows [][]string, codec compress.Codec) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create parquet file")
	}
	schema := buildSchema(header, kinds)
	writer := parquet.NewGenericWriter[map[string]any](out, schema, parquet.Compression(codec))
	batch := make([]map[string]any, 0, writeBatchRows)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := writer.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}
	for _, row := range rows {
		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if cell == constants.NullSentinel { // null cells are simply absent...
				continue
			}
			switch kinds[i] {
			case kindInt:
				v, convErr := strconv.ParseInt(cell, 10, 64)
				if convErr != nil {
					_ = out.Close()
					return fmt.Errorf("internal type inference mismatch for column %v: %v", header[i], convErr)
				}
				rec[header[i]] = v
			case kindFloat:
				v, convErr := strconv.ParseFloat(cell, 64)
				if convErr != nil {
					_ = out.Close()
					return fmt.Errorf("internal type inference mismatch for column %v: %v", header[i], convErr)
				}
				rec[header[i]] = v
			default:
				rec[header[i]] = cell
			}
		}
		batch = append(batch, rec)
		if len(batch) == writeBatchRows {
			if err := flush(); err != nil {
				_ = out.Close()
				return err
			}
		}
	}
	if err := flush(); err != nil {
		_ = out.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ReadRows reads a Parquet file written by this package back into row maps,
// in row order. Null cells are absent from the maps.
func ReadRows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, err
	}
	// Map rows carry no schema of their own so the reader needs the file's.
	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer func() {
		_ = reader.Close()
	}()
	total := int(reader.NumRows())
	out := make([]map[string]any, 0, total)
	for len(out) < total {
		batch := make([]map[string]any, minInt(writeBatchRows, total-len(out)))
		for i := range batch {
			batch[i] = make(map[string]any)
		}
		n, readErr := reader.Read(batch)
		out = append(out, batch[:n]...)
		if readErr != nil {
			break
		}
	}
	if len(out) != total {
		return out, fmt.Errorf("short parquet read: got %v of %v rows", len(out), total)
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
