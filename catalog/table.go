// Package catalog holds the static list of IMDb table descriptors driven
// through the ingestion pipeline. Descriptors are pure data: all per-table
// file names, object keys and warehouse identifiers are derived from the
// logical dot-separated table name so no two tables ever share an artifact
// path within a run.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
)

// Table is an immutable descriptor for one logical IMDb table, e.g. "title.basics".
type Table struct {
	name string
}

// New builds a descriptor from the logical dot-separated name.
func New(name string) Table {
	return Table{name: name}
}

// DefaultTables returns the full catalogue in canonical order.
// These correspond to the files available at https://datasets.imdbws.com/.
func DefaultTables() []Table {
	return []Table{
		New("name.basics"),      // person information (actors, directors)
		New("title.akas"),       // alternative titles per language/region
		New("title.basics"),     // core title information
		New("title.crew"),       // director and writer assignments
		New("title.episode"),    // TV episode information
		New("title.principals"), // principal cast/crew per title
		New("title.ratings"),    // user ratings and vote counts
	}
}

// Select restricts the catalogue to the given logical names, preserving
// catalogue order. An unknown name is an error so that a typo fails the run
// before any table is processed.
func Select(names []string) ([]Table, error) {
	all := DefaultTables()
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.TrimSpace(n)] = struct{}{}
	}
	retval := make([]Table, 0, len(names))
	for _, t := range all {
		if _, ok := wanted[t.Name()]; ok {
			retval = append(retval, t)
			delete(wanted, t.Name())
		}
	}
	if len(wanted) > 0 { // if any requested names were not found in the catalogue...
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		return nil, fmt.Errorf("unknown table(s) %v - not in the IMDb catalogue", strings.Join(unknown, ", "))
	}
	return retval, nil
}

// Name returns the logical dot-separated table name.
func (t Table) Name() string {
	return t.name
}

// SourceFile returns the remote file name, e.g. "title.basics.tsv.gz".
func (t Table) SourceFile() string {
	return t.name + constants.RawFileExtension
}

// TableID converts the logical name to a warehouse-safe identifier.
// Warehouse table names cannot contain dots, so they become underscores.
func (t Table) TableID() string {
	return strings.ReplaceAll(t.name, ".", "_")
}

// URL returns the remote locator for the source file under baseUrl.
func (t Table) URL(baseUrl string) string {
	return strings.TrimRight(baseUrl, "/") + "/" + t.SourceFile()
}

// RawPath returns the local path of the downloaded source file.
func (t Table) RawPath(rawDir string) string {
	return filepath.Join(rawDir, t.SourceFile())
}

// ParquetPath returns the local path of the converted columnar file.
func (t Table) ParquetPath(parquetDir string) string {
	return filepath.Join(parquetDir, t.TableID()+constants.ParquetFileExtension)
}

// BlobKey returns the object key for the columnar file in the blob store,
// e.g. "imdb/title_basics/title_basics.parquet".
func (t Table) BlobKey(prefix string) string {
	id := t.TableID()
	key := fmt.Sprintf("%v/%v%v", id, id, constants.ParquetFileExtension)
	if prefix != "" {
		key = strings.TrimRight(prefix, "/") + "/" + key // ensure a single slash after the prefix.
	}
	return key
}

func (t Table) String() string {
	return t.name
}
