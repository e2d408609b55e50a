// Package table loads CSV exports into an in-memory table of named columns.
//
// Cells are sql.NullString: an empty CSV field is null, everything else is
// kept verbatim (no trimming, no type inference). The loader validates the
// encoding and nothing else; column checks belong to the callers that know
// which headers they need.
package table

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/backmassage/resolve2edl/internal/config"
)

// Sentinel errors returned by Load and Table lookups.
var (
	ErrMissingFile   = errors.New("input file not found")
	ErrDecoding      = errors.New("input does not match its declared encoding")
	ErrMissingColumn = errors.New("required column missing")
	ErrEmpty         = errors.New("input has no header row")
)

// sniffLen is how many leading bytes are checked for binary signatures.
const sniffLen = 262

// Table is a header plus rows. Every row has exactly len(Columns) cells.
type Table struct {
	Path    string
	Columns []string
	Rows    [][]sql.NullString
}

// Load reads path, decodes it from enc and parses it as CSV with a header row.
func Load(path string, enc config.Encoding) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	head := raw
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if filetype.IsArchive(head) || filetype.IsDocument(head) {
		kind, _ := filetype.Match(head)
		return nil, fmt.Errorf("%w: %s looks like a .%s file, not CSV", ErrDecoding, path, kind.Extension)
	}

	text, err := Decode(raw, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	t, err := Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Decode converts raw bytes in enc to a UTF-8 string, dropping a leading
// byte order mark. Bytes that are not valid in enc are an ErrDecoding.
func Decode(raw []byte, enc config.Encoding) (string, error) {
	var text []byte
	switch enc {
	case config.EncodingUTF8, config.EncodingUTF8BOM:
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%w: invalid UTF-8", ErrDecoding)
		}
		text = raw
	case config.EncodingUTF16, config.EncodingUTF16LE, config.EncodingUTF16BE:
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("%w: odd byte count for %s", ErrDecoding, enc)
		}
		decoded, err := utf16Encoding(enc).NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecoding, err)
		}
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			return "", fmt.Errorf("%w: invalid %s sequence", ErrDecoding, enc)
		}
		text = decoded
	default:
		return "", fmt.Errorf("%w: unsupported encoding %q", ErrDecoding, enc)
	}
	return strings.TrimPrefix(string(text), "\ufeff"), nil
}

func utf16Encoding(enc config.Encoding) encoding.Encoding {
	switch enc {
	case config.EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case config.EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	}
}

// Parse reads CSV with a header row. Short rows are padded with nulls and
// surplus cells are dropped so every row matches the header width.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]sql.NullString, len(header))
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = sql.NullString{String: rec[i], Valid: true}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, t.label())
}

// Indexes resolves several columns at once and reports every missing one.
func (t *Table) Indexes(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		j, err := t.Index(name)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
		idx[i] = j
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, strings.Join(missing, ", "), t.label())
	}
	return idx, nil
}

// Column returns every value of the named column in row order.
func (t *Table) Column(name string) ([]sql.NullString, error) {
	i, err := t.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]sql.NullString, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

func (t *Table) label() string {
	if t.Path == "" {
		return "table"
	}
	return t.Path
}
