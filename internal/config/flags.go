package config

// This file binds CLI flags. Flags are grouped into inputs, output, filters,
// display and utility. Values land in a scratch Config and are copied into
// the real one only when the user set them, so the precedence stays
// defaults < profile < flags.

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags holds the bound flag set and the scratch values it parses into.
type Flags struct {
	fs  *pflag.FlagSet
	v   Config
	neg negatedFlags
}

// negatedFlags holds boolean flags that only make sense after Parse
// (color overrides).
type negatedFlags struct {
	forceColor bool
	noColor    bool
}

// BindFlags registers every flag on fs. Defaults shown in help come from
// [DefaultConfig].
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, v: DefaultConfig()}
	f.defineInputFlags()
	f.defineOutputFlags()
	f.defineFilterFlags()
	f.defineDisplayFlags()
	return f
}

// defineInputFlags registers --media, --edit, their encodings, --fps and --profile.
func (f *Flags) defineInputFlags() {
	fs, v := f.fs, &f.v
	fs.StringVar(&v.MediaFile, "media", v.MediaFile, "Media Pool CSV export")
	fs.Var(&encodingValue{&v.MediaEncoding}, "media-encoding", "Media Pool encoding: utf-8 | utf-8-sig | utf-16 | utf-16le | utf-16be")
	fs.StringVar(&v.EditFile, "edit", v.EditFile, "Edit Index CSV export")
	fs.Var(&encodingValue{&v.EditEncoding}, "edit-encoding", "Edit Index encoding")
	fs.IntVar(&v.FPS, "fps", v.FPS, "Timeline frame rate")
	fs.StringVarP(&v.ProfilePath, "profile", "p", "", "TOML production profile")
}

// defineOutputFlags registers -o/--output, --no-source-suffix and the export switches.
func (f *Flags) defineOutputFlags() {
	fs, v := f.fs, &f.v
	fs.StringVarP(&v.OutputBase, "output", "o", v.OutputBase, "Output base name (without extension)")
	fs.StringVar(&v.NoSourceSuffix, "no-source-suffix", v.NoSourceSuffix, "Suffix of the file listing clips without a source")
	fs.BoolVar(&v.IncludeIndex, "index", false, "Include a row-index column in exports")
	fs.BoolVar(&v.WriteCSV, "csv", false, "Also write <output>.csv")
	fs.BoolVar(&v.WriteCMX, "cmx", false, "Also write a CMX 3600 <output>.edl")
	fs.StringVar(&v.SQLitePath, "sqlite", "", "Append the run to a SQLite database")
}

// defineFilterFlags registers the marker, track and source filters.
func (f *Flags) defineFilterFlags() {
	fs, v := f.fs, &f.v
	fs.StringArrayVar(&v.Markers, "exclude-marker", v.Markers, "Edit Index names containing this are dropped (repeatable)")
	fs.StringArrayVar(&v.ExcludedTracks, "exclude-track", v.ExcludedTracks, "Video track to drop (repeatable)")
	fs.IntVar(&v.MaxVideoTrack, "max-video-track", 0, "Drop every video track above this number (0 = off)")
	fs.StringArrayVar(&v.IgnoredSources, "ignore-source", v.IgnoredSources, "Media Pool source to leave out of the EDL (repeatable)")
}

// defineDisplayFlags registers --preview-rows, --color, --no-color, verbose, --check, --log.
func (f *Flags) defineDisplayFlags() {
	fs, v := f.fs, &f.v
	fs.IntVar(&v.PreviewRows, "preview-rows", 0, "Print only this many head/tail rows of the EDL (0 = all)")
	fs.BoolVar(&f.neg.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.neg.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&v.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&v.CheckOnly, "check", "c", false, "Check the inputs and exit without writing")
	fs.StringVarP(&v.LogFile, "log", "l", "", "Append logs to file")
}

// Apply copies parsed values into cfg: the profile first (when --profile is
// set), then every flag the user passed explicitly, then positional args.
func (f *Flags) Apply(cfg *Config, args []string) error {
	if f.fs.Changed("profile") {
		if err := LoadProfile(f.v.ProfilePath, cfg); err != nil {
			return err
		}
	}

	for _, s := range f.setters() {
		if f.fs.Changed(s.name) {
			s.apply(cfg)
		}
	}

	if f.neg.noColor {
		cfg.ColorMode = ColorNever
	} else if f.neg.forceColor {
		cfg.ColorMode = ColorAlways
	}

	return parsePositionalArgs(args, cfg)
}

type flagSetter struct {
	name  string
	apply func(*Config)
}

func (f *Flags) setters() []flagSetter {
	v := &f.v
	return []flagSetter{
		{"media", func(c *Config) { c.MediaFile = v.MediaFile }},
		{"media-encoding", func(c *Config) { c.MediaEncoding = v.MediaEncoding }},
		{"edit", func(c *Config) { c.EditFile = v.EditFile }},
		{"edit-encoding", func(c *Config) { c.EditEncoding = v.EditEncoding }},
		{"fps", func(c *Config) { c.FPS = v.FPS }},
		{"output", func(c *Config) { c.OutputBase = v.OutputBase }},
		{"no-source-suffix", func(c *Config) { c.NoSourceSuffix = v.NoSourceSuffix }},
		{"index", func(c *Config) { c.IncludeIndex = v.IncludeIndex }},
		{"csv", func(c *Config) { c.WriteCSV = v.WriteCSV }},
		{"cmx", func(c *Config) { c.WriteCMX = v.WriteCMX }},
		{"sqlite", func(c *Config) { c.SQLitePath = v.SQLitePath }},
		{"exclude-marker", func(c *Config) { c.Markers = v.Markers }},
		{"exclude-track", func(c *Config) { c.ExcludedTracks = v.ExcludedTracks }},
		{"max-video-track", func(c *Config) { c.MaxVideoTrack = v.MaxVideoTrack }},
		{"ignore-source", func(c *Config) { c.IgnoredSources = v.IgnoredSources }},
		{"preview-rows", func(c *Config) { c.PreviewRows = v.PreviewRows }},
		{"verbose", func(c *Config) { c.Verbose = v.Verbose }},
		{"check", func(c *Config) { c.CheckOnly = v.CheckOnly }},
		{"log", func(c *Config) { c.LogFile = v.LogFile }},
	}
}

// parsePositionalArgs sets WorkDir from the optional directory argument.
func parsePositionalArgs(args []string, cfg *Config) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		cfg.WorkDir = NormalizeDirArg(args[0])
		return nil
	default:
		return fmt.Errorf("expected at most one directory argument, got %d", len(args))
	}
}

// pflag.Value adapter so Encoding can be used with fs.Var.

type encodingValue struct{ p *Encoding }

func (e *encodingValue) String() string { return string(*e.p) }
func (e *encodingValue) Type() string   { return "encoding" }
func (e *encodingValue) Set(s string) error {
	enc, err := ParseEncoding(s)
	if err != nil {
		return err
	}
	*e.p = enc
	return nil
}
