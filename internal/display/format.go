// Package display renders the console report: section titles, aligned
// fields, plain-text tables and human-readable sizes.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/backmassage/resolve2edl/internal/term"
)

// FieldWidth is the label column width of [Field].
const FieldWidth = 25

// FormatBytes returns a human-readable IEC size ("512 B", "1.5 KiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount groups thousands ("12,345").
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// Plural returns "1 clip" / "3 clips".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return FormatCount(n) + " " + noun + "s"
}

// Title prints a blank line, the upper-cased title and an underline of the
// same length, then a blank line.
func Title(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n%s\n\n", term.Paint(term.Bold, strings.ToUpper(s)), strings.Repeat("-", len(s)))
}

// Field prints label left-justified to FieldWidth followed by value.
func Field(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "%-*s%v\n", FieldWidth, label, value)
}

// Table prints header and rows as aligned columns separated by two spaces.
// Rows shorter than the header are padded.
func Table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
