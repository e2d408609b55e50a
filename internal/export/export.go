// Package export writes EDL results to disk: the xlsx workbook the editors
// open, an optional CSV mirror, a CMX 3600 .edl for conform tools and a
// SQLite history of every run.
package export

import (
	"github.com/backmassage/resolve2edl/internal/edl"
)

// IndexColumn heads the optional leading row-index column.
const IndexColumn = "Index"

// Options control the shape of tabular exports.
type Options struct {
	IncludeIndex bool
}

// Header returns the header row for opts.
func Header(opts Options) []string {
	if !opts.IncludeIndex {
		return append([]string(nil), edl.Columns...)
	}
	return append([]string{IndexColumn}, edl.Columns...)
}

// cells returns a clip's row for opts; nil marks a null cell.
func cells(c edl.Clip, opts Options) []interface{} {
	vals := c.Values()
	row := make([]interface{}, 0, len(vals)+1)
	if opts.IncludeIndex {
		row = append(row, c.Index)
	}
	for _, v := range vals {
		if v.Valid {
			row = append(row, v.String)
		} else {
			row = append(row, nil)
		}
	}
	return row
}
