package edl

import (
	"database/sql"
	"strings"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/naming"
	"github.com/backmassage/resolve2edl/internal/table"
)

// NormalizeEdits projects the Edit Index onto the configured columns and
// drops, in order: rows without a name, rows whose name contains a marker
// (case-sensitive substring, so compound titles go too) and rows on an
// excluded track. Row order is preserved.
func NormalizeEdits(t *table.Table, cfg *config.Config) ([]EditEvent, error) {
	cols := cfg.EditColumns
	idx, err := t.Indexes(cols.Name, cols.SourceIn, cols.SourceOut, cols.RecordIn, cols.RecordOut, cols.Track)
	if err != nil {
		return nil, err
	}

	var out []EditEvent
	for _, row := range t.Rows {
		name := row[idx[0]]
		if !name.Valid || name.String == "" {
			continue
		}
		if containsMarker(name.String, cfg.Markers) {
			continue
		}
		track := row[idx[5]]
		if track.Valid && cfg.ExcludesTrack(track.String) {
			continue
		}
		out = append(out, EditEvent{
			Name:      name.String,
			SourceIn:  row[idx[1]],
			SourceOut: row[idx[2]],
			RecordIn:  row[idx[3]],
			RecordOut: row[idx[4]],
			Track:     track,
		})
	}
	return out, nil
}

func containsMarker(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// NormalizeMedia projects the Media Pool onto the configured columns, renames
// them to the EDL vocabulary and splits the file name into a base name and
// extension so it matches Edit Index clip names.
func NormalizeMedia(t *table.Table, cfg *config.Config) ([]MediaAsset, error) {
	cols := cfg.MediaColumns
	idx, err := t.Indexes(cols.FileName, cols.Take, cols.Camera, cols.Scene, cols.Comments, cols.Keywords)
	if err != nil {
		return nil, err
	}

	out := make([]MediaAsset, 0, len(t.Rows))
	for _, row := range t.Rows {
		a := MediaAsset{
			Source:    row[idx[1]],
			Fonds:     row[idx[2]],
			Reference: row[idx[3]],
			Comments:  row[idx[4]],
			Keywords:  row[idx[5]],
		}
		if file := row[idx[0]]; file.Valid {
			base, ext := naming.SplitExt(file.String)
			a.Name = sql.NullString{String: base, Valid: true}
			a.Extension = sql.NullString{String: ext, Valid: true}
		}
		out = append(out, a)
	}
	return out, nil
}
