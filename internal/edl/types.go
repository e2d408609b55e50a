// Package edl turns a Resolve Edit Index and Media Pool into an Edit Decision
// List: each timeline event annotated with the metadata of its source media.
//
// Every stage is a function from values to values. Nothing here prints or
// touches the filesystem; the pipeline package loads inputs and hands the
// Result to exporters and reporters.
package edl

import (
	"database/sql"

	"github.com/backmassage/resolve2edl/internal/timecode"
)

// AudioKind marks clips placed on an audio track.
const AudioKind = "AUDIO"

// Columns is the header of every EDL export, in order.
var Columns = []string{
	"Name",
	"Source In",
	"Source Out",
	"Record In",
	"Record Out",
	"V",
	"Source",
	"Reference",
	"Fonds",
	"Comments",
	"Keywords",
	"Extension",
	"Duration",
	"Track",
}

// EditEvent is one row of the Edit Index after normalization. Name is never
// empty; the timecodes and track are kept as exported.
type EditEvent struct {
	Name      string
	SourceIn  sql.NullString
	SourceOut sql.NullString
	RecordIn  sql.NullString
	RecordOut sql.NullString
	Track     sql.NullString
}

// MediaAsset is one row of the Media Pool after normalization, already in the
// EDL vocabulary: Take is Source, Scene is Reference, Camera is Fonds.
type MediaAsset struct {
	Name      sql.NullString // File name without extension.
	Extension sql.NullString // Without the dot; empty (not null) when the file has none.
	Source    sql.NullString
	Reference sql.NullString
	Fonds     sql.NullString
	Comments  sql.NullString
	Keywords  sql.NullString
}

// Clip is an EditEvent left-joined with at most one MediaAsset. Duration and
// TrackKind are only derived for clips that have a source (Derived is true).
type Clip struct {
	Index     int // Position in the join output (no-source) or in the primary set before sorting.
	Edit      EditEvent
	Media     MediaAsset // Zero value when no asset matched.
	Derived   bool
	Duration  timecode.Timecode
	TrackKind string
}

// Matched reports whether a Media Pool asset was joined to the event.
func (c Clip) Matched() bool { return c.Media.Name.Valid }

// Values returns the clip's cells in [Columns] order. Underived clips have
// null Duration and Track cells.
func (c Clip) Values() []sql.NullString {
	duration, kind := sql.NullString{}, sql.NullString{}
	if c.Derived {
		duration = valid(c.Duration.String())
		kind = valid(c.TrackKind)
	}
	return []sql.NullString{
		valid(c.Edit.Name),
		c.Edit.SourceIn,
		c.Edit.SourceOut,
		c.Edit.RecordIn,
		c.Edit.RecordOut,
		c.Edit.Track,
		c.Media.Source,
		c.Media.Reference,
		c.Media.Fonds,
		c.Media.Comments,
		c.Media.Keywords,
		c.Media.Extension,
		duration,
		kind,
	}
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
