package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/backmassage/resolve2edl/internal/edl"
)

// WriteCSV writes the same table as WriteXLSX as UTF-8 CSV. Nulls are empty
// fields.
func WriteCSV(path string, clips []edl.Clip, opts Options) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header(opts)); err != nil {
		return err
	}
	for _, c := range clips {
		rec := make([]string, 0, len(edl.Columns)+1)
		for _, v := range cells(c, opts) {
			switch v := v.(type) {
			case nil:
				rec = append(rec, "")
			case int:
				rec = append(rec, strconv.Itoa(v))
			case string:
				rec = append(rec, v)
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
