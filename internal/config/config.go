// Package config holds runtime configuration: defaults, production profiles,
// CLI flag binding, and validation. Defaults match the DaVinci Resolve export
// conventions the tool was first written against.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/resolve2edl/internal/naming"
)

// --- Enum types for validated string fields ---

// Encoding is the character encoding of an input CSV file.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"     // Edit Index default.
	EncodingUTF8BOM Encoding = "utf-8-sig" // UTF-8 with a leading byte order mark.
	EncodingUTF16   Encoding = "utf-16"    // Media Pool default (BOM decides endianness, LE otherwise).
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

// ParseEncoding maps user input (any case, "_" or "-") to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	e := Encoding(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	switch e {
	case EncodingUTF8, EncodingUTF8BOM, EncodingUTF16, EncodingUTF16LE, EncodingUTF16BE:
		return e, nil
	case "utf8":
		return EncodingUTF8, nil
	case "utf16":
		return EncodingUTF16, nil
	}
	return "", fmt.Errorf("invalid encoding %q (use utf-8, utf-8-sig, utf-16, utf-16le or utf-16be)", s)
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// EditColumns names the Edit Index headers the merge reads.
type EditColumns struct {
	Name      string `toml:"name"`
	SourceIn  string `toml:"source_in"`
	SourceOut string `toml:"source_out"`
	RecordIn  string `toml:"record_in"`
	RecordOut string `toml:"record_out"`
	Track     string `toml:"track"`
}

// List returns the headers in export order.
func (c EditColumns) List() []string {
	return []string{c.Name, c.SourceIn, c.SourceOut, c.RecordIn, c.RecordOut, c.Track}
}

// MediaColumns names the Media Pool headers kept for the merge. They are
// renamed on load: FileName->Name, Take->Source, Scene->Reference,
// Camera->Fonds.
type MediaColumns struct {
	FileName string `toml:"file_name"`
	Take     string `toml:"take"`
	Camera   string `toml:"camera"`
	Scene    string `toml:"scene"`
	Comments string `toml:"comments"`
	Keywords string `toml:"keywords"`
}

// List returns the headers in Media Pool keep-list order.
func (c MediaColumns) List() []string {
	return []string{c.FileName, c.Take, c.Camera, c.Scene, c.Comments, c.Keywords}
}

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by an optional profile ([LoadProfile]) and finally by explicit CLI flags
// ([Flags.Apply]) before being passed by pointer to the pipeline.
type Config struct {
	// Paths. MediaFile, EditFile and OutputBase are relative to WorkDir
	// unless absolute.
	WorkDir        string
	MediaFile      string   // Default: "MediaPool.csv".
	EditFile       string   // Default: "Montage.csv".
	MediaEncoding  Encoding // Default: utf-16.
	EditEncoding   Encoding // Default: utf-8.
	OutputBase     string   // Default: "edl" (-> edl.xlsx).
	NoSourceSuffix string   // Default: "-no-source".
	ProfilePath    string   // Optional TOML production profile.
	SQLitePath     string   // Optional SQLite database receiving each run.

	// Timecode.
	FPS int // Default: 25.

	// Export switches.
	IncludeIndex bool // Write a leading row-index column.
	WriteCSV     bool // Mirror the xlsx as CSV.
	WriteCMX     bool // Also write a CMX 3600 .edl.

	// Column vocabulary of the two exports.
	EditColumns  EditColumns
	MediaColumns MediaColumns

	// Filters.
	Markers        []string // Edit Index names containing any of these are dropped.
	ExcludedTracks []string // Video tracks dropped from the Edit Index.
	MaxVideoTrack  int      // When > 0, every Vn with n above it is dropped too.
	IgnoredSources []string // Media Pool sources removed after the merge.

	// Display and logging.
	PreviewRows int // 0 prints the whole table; otherwise head and tail rows.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	CheckOnly   bool      // Preflight the inputs and exit.
}

// DefaultMarkers are the Resolve generator and transition names that appear in
// an Edit Index without being media clips.
var DefaultMarkers = []string{
	"Fusion Title",
	"Cross Fade 0 dB",
	"Cross Dissolve",
	"Audio Process Stream",
	"Adjustment Clip",
	"Dip To Color Dissolve",
	"Solid Color",
}

// DefaultExcludedTracks are the upper video tracks reserved for offline
// references and temp graphics.
var DefaultExcludedTracks = []string{"V5", "V6", "V7", "V8", "V9", "V10", "V11", "V12"}

// DefaultIgnoredSources are Media Pool source labels that never need
// reconciling (library music, in-house sound effects, rights-managed audio).
var DefaultIgnoredSources = []string{
	"Sound FX Tal",
	"Tournage",
	"Musique Bibliothèque",
	"Musique Tal",
	"Musique sous droits",
}

// DefaultConfig returns a Config with every default set. Used as the base
// before a profile and CLI flags are applied.
func DefaultConfig() Config {
	return Config{
		WorkDir:        ".",
		MediaFile:      "MediaPool.csv",
		EditFile:       "Montage.csv",
		MediaEncoding:  EncodingUTF16,
		EditEncoding:   EncodingUTF8,
		OutputBase:     "edl",
		NoSourceSuffix: "-no-source",
		FPS:            25,
		EditColumns: EditColumns{
			Name:      "Name",
			SourceIn:  "Source In",
			SourceOut: "Source Out",
			RecordIn:  "Record In",
			RecordOut: "Record Out",
			Track:     "V",
		},
		MediaColumns: MediaColumns{
			FileName: "File Name",
			Take:     "Take",
			Camera:   "Camera #",
			Scene:    "Scene",
			Comments: "Comments",
			Keywords: "Keywords",
		},
		Markers:        append([]string(nil), DefaultMarkers...),
		ExcludedTracks: append([]string(nil), DefaultExcludedTracks...),
		IgnoredSources: append([]string(nil), DefaultIgnoredSources...),
		ColorMode:      ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, numeric ranges, column names and track
// filters. It does not touch the filesystem.
func (c *Config) Validate() error {
	mediaEnc, err := ParseEncoding(string(c.MediaEncoding))
	if err != nil {
		return err
	}
	editEnc, err := ParseEncoding(string(c.EditEncoding))
	if err != nil {
		return err
	}
	c.MediaEncoding, c.EditEncoding = mediaEnc, editEnc

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.FPS <= 0 {
		return fmt.Errorf("frame rate must be a positive whole number (got %d)", c.FPS)
	}
	if c.MaxVideoTrack < 0 {
		return errors.New("max video track must not be negative")
	}
	if c.PreviewRows < 0 {
		return errors.New("preview rows must not be negative")
	}
	if strings.TrimSpace(c.MediaFile) == "" || strings.TrimSpace(c.EditFile) == "" {
		return errors.New("need both a media pool file and an edit index file")
	}
	if strings.TrimSpace(c.OutputBase) == "" {
		return errors.New("output name must not be empty")
	}
	if c.NoSourceSuffix == "" {
		return errors.New("no-source suffix must not be empty")
	}

	for _, name := range c.EditColumns.List() {
		if strings.TrimSpace(name) == "" {
			return errors.New("edit index column names must not be empty")
		}
	}
	for _, name := range c.MediaColumns.List() {
		if strings.TrimSpace(name) == "" {
			return errors.New("media pool column names must not be empty")
		}
	}

	for _, t := range c.ExcludedTracks {
		if strings.HasPrefix(t, "A") {
			return fmt.Errorf("audio track %q cannot be excluded", t)
		}
	}
	return nil
}

// ExcludesTrack reports whether the Edit Index track is dropped, either by
// membership in ExcludedTracks or by the MaxVideoTrack cutoff. Audio tracks
// are never excluded.
func (c *Config) ExcludesTrack(track string) bool {
	if strings.HasPrefix(track, "A") {
		return false
	}
	for _, t := range c.ExcludedTracks {
		if t == track {
			return true
		}
	}
	if c.MaxVideoTrack > 0 && strings.HasPrefix(track, "V") {
		if n, err := strconv.Atoi(track[1:]); err == nil && n > c.MaxVideoTrack {
			return true
		}
	}
	return false
}

// MediaPath returns the Media Pool path resolved against WorkDir.
func (c *Config) MediaPath() string { return c.resolve(c.MediaFile) }

// EditPath returns the Edit Index path resolved against WorkDir.
func (c *Config) EditPath() string { return c.resolve(c.EditFile) }

// OutputPath returns the primary artifact path for ext ("xlsx", "csv", "edl").
func (c *Config) OutputPath(ext string) string {
	return naming.OutputPath(c.WorkDir, c.OutputBase, "", ext)
}

// NoSourcePath returns the xlsx path for clips without a source.
func (c *Config) NoSourcePath() string {
	return naming.OutputPath(c.WorkDir, c.OutputBase, c.NoSourceSuffix, "xlsx")
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || c.WorkDir == "" {
		return name
	}
	return filepath.Join(c.WorkDir, name)
}
