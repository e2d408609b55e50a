package config

// This file loads TOML production profiles. A profile carries the lists and
// names that change between productions (markers, ignored sources, column
// headers) so they don't need to be repeated as flags on every run.

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// profile mirrors the TOML layout. It is pre-filled from the current Config so
// keys absent from the file keep their value.
type profile struct {
	Media          string   `toml:"media"`
	MediaEncoding  Encoding `toml:"media_encoding"`
	Edit           string   `toml:"edit"`
	EditEncoding   Encoding `toml:"edit_encoding"`
	Output         string   `toml:"output"`
	NoSourceSuffix string   `toml:"no_source_suffix"`
	FPS            int      `toml:"fps"`
	IncludeIndex   bool     `toml:"include_index"`
	WriteCSV       bool     `toml:"write_csv"`
	WriteCMX       bool     `toml:"write_cmx"`
	SQLite         string   `toml:"sqlite"`
	MaxVideoTrack  int      `toml:"max_video_track"`
	PreviewRows    int      `toml:"preview_rows"`

	Columns struct {
		Edit  EditColumns  `toml:"edit"`
		Media MediaColumns `toml:"media"`
	} `toml:"columns"`

	Filters struct {
		Markers        []string `toml:"markers"`
		ExcludedTracks []string `toml:"excluded_tracks"`
		IgnoredSources []string `toml:"ignored_sources"`
	} `toml:"filters"`
}

// LoadProfile applies the TOML profile at path onto cfg. Keys missing from the
// file leave cfg untouched; unknown keys are an error so typos don't silently
// fall back to defaults.
func LoadProfile(path string, cfg *Config) error {
	p := profileFrom(cfg)
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("load profile %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	p.applyTo(cfg)
	cfg.ProfilePath = path
	return nil
}

func profileFrom(cfg *Config) profile {
	p := profile{
		Media:          cfg.MediaFile,
		MediaEncoding:  cfg.MediaEncoding,
		Edit:           cfg.EditFile,
		EditEncoding:   cfg.EditEncoding,
		Output:         cfg.OutputBase,
		NoSourceSuffix: cfg.NoSourceSuffix,
		FPS:            cfg.FPS,
		IncludeIndex:   cfg.IncludeIndex,
		WriteCSV:       cfg.WriteCSV,
		WriteCMX:       cfg.WriteCMX,
		SQLite:         cfg.SQLitePath,
		MaxVideoTrack:  cfg.MaxVideoTrack,
		PreviewRows:    cfg.PreviewRows,
	}
	p.Columns.Edit = cfg.EditColumns
	p.Columns.Media = cfg.MediaColumns
	p.Filters.Markers = cfg.Markers
	p.Filters.ExcludedTracks = cfg.ExcludedTracks
	p.Filters.IgnoredSources = cfg.IgnoredSources
	return p
}

func (p *profile) applyTo(cfg *Config) {
	cfg.MediaFile = p.Media
	cfg.MediaEncoding = p.MediaEncoding
	cfg.EditFile = p.Edit
	cfg.EditEncoding = p.EditEncoding
	cfg.OutputBase = p.Output
	cfg.NoSourceSuffix = p.NoSourceSuffix
	cfg.FPS = p.FPS
	cfg.IncludeIndex = p.IncludeIndex
	cfg.WriteCSV = p.WriteCSV
	cfg.WriteCMX = p.WriteCMX
	cfg.SQLitePath = p.SQLite
	cfg.MaxVideoTrack = p.MaxVideoTrack
	cfg.PreviewRows = p.PreviewRows
	cfg.EditColumns = p.Columns.Edit
	cfg.MediaColumns = p.Columns.Media
	cfg.Markers = p.Filters.Markers
	cfg.ExcludedTracks = p.Filters.ExcludedTracks
	cfg.IgnoredSources = p.Filters.IgnoredSources
}
