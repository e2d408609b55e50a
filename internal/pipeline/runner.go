// Package pipeline runs one conversion: load both exports, normalize, merge,
// write the artifacts and hand a Summary to the reporter.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/edl"
	"github.com/backmassage/resolve2edl/internal/export"
	"github.com/backmassage/resolve2edl/internal/logging"
	"github.com/backmassage/resolve2edl/internal/naming"
	"github.com/backmassage/resolve2edl/internal/table"
)

// Reporter observes a finished run. It never changes what was written.
type Reporter interface {
	Report(*Summary) error
}

// Artifact is a file written by a run.
type Artifact struct {
	Kind string // "xlsx", "no-source", "csv", "edl"
	Path string
	Size int64
}

// Summary is everything a reporter needs to describe a run.
type Summary struct {
	MediaPath string
	EditPath  string
	FPS       int

	Timeline    edl.Timeline
	TimelineErr error // Non-nil when the first or last record timecode is unusable.
	VideoTracks []string
	AudioTracks []string
	Extensions  []edl.Count

	Result   edl.Result
	Describe []edl.ColumnStats

	OutputPath   string
	NoSourcePath string // Empty when every clip has a source.
	Artifacts    []Artifact
	CMXSkipped   int
	RunID        string // SQLite run id, empty without --sqlite.

	PreviewRows int
	Stats       RunStats
}

// now is swapped in tests.
var now = time.Now

// Run executes the whole conversion. A fatal error aborts before any output
// is written; a failed write removes what the run had already written.
// reporter may be nil.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, reporter Reporter) (RunStats, error) {
	var stats RunStats

	mediaPath, editPath := cfg.MediaPath(), cfg.EditPath()
	for _, p := range []string{mediaPath, editPath} {
		if err := checkInput(p); err != nil {
			return stats, err
		}
	}

	// --- Load ---
	mediaTable, err := table.Load(mediaPath, cfg.MediaEncoding)
	if err != nil {
		return stats, fmt.Errorf("media pool: %w", err)
	}
	editTable, err := table.Load(editPath, cfg.EditEncoding)
	if err != nil {
		return stats, fmt.Errorf("edit index: %w", err)
	}
	log.Debug("Loaded %d media pool rows from %s (%s)", mediaTable.Len(), mediaPath, cfg.MediaEncoding)
	log.Debug("Loaded %d edit index rows from %s (%s)", editTable.Len(), editPath, cfg.EditEncoding)
	stats.MediaAssets, stats.EditRows = mediaTable.Len(), editTable.Len()

	// --- Normalize ---
	media, err := edl.NormalizeMedia(mediaTable, cfg)
	if err != nil {
		return stats, fmt.Errorf("media pool: %w", err)
	}
	edits, err := edl.NormalizeEdits(editTable, cfg)
	if err != nil {
		return stats, fmt.Errorf("edit index: %w", err)
	}
	stats.Events = len(edits)
	log.Debug("Kept %d of %d edit events", stats.Events, stats.EditRows)

	sum := &Summary{
		MediaPath:   mediaPath,
		EditPath:    editPath,
		FPS:         cfg.FPS,
		Extensions:  edl.ExtensionCounts(media),
		PreviewRows: cfg.PreviewRows,
	}
	if err := describeTimeline(editTable, cfg, sum); err != nil {
		return stats, fmt.Errorf("edit index: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	// --- Merge ---
	res := edl.Merge(edits, media, edl.OptionsFrom(cfg))
	sum.Result = res
	sum.Describe = edl.Describe(res.Clips)
	stats.Joined, stats.Ignored = res.Joined, res.Ignored
	stats.Clips, stats.NoSource = len(res.Clips), len(res.NoSource)
	stats.DurationIssues, stats.Fanout = len(res.DurationIssues), len(res.Fanout)
	for _, f := range res.Fanout {
		log.Warn("Clip %q matches %d media pool files; every match is kept", f.Name, f.Matches)
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	// --- Export ---
	if err := writeArtifacts(ctx, cfg, log, res, sum); err != nil {
		return stats, err
	}
	for _, a := range sum.Artifacts {
		stats.BytesWritten += a.Size
	}
	sum.Stats = stats

	// --- Report ---
	if reporter != nil {
		if err := reporter.Report(sum); err != nil {
			return stats, fmt.Errorf("report: %w", err)
		}
	}
	return stats, nil
}

// describeTimeline fills the timeline and track fields from the raw Edit
// Index, before any row is excluded.
func describeTimeline(t *table.Table, cfg *config.Config, sum *Summary) error {
	cols := cfg.EditColumns
	recordIn, err := t.Column(cols.RecordIn)
	if err != nil {
		return err
	}
	recordOut, err := t.Column(cols.RecordOut)
	if err != nil {
		return err
	}
	tracks, err := t.Column(cols.Track)
	if err != nil {
		return err
	}
	sum.Timeline, sum.TimelineErr = edl.TimelineSpan(recordIn, recordOut, cfg.FPS)
	sum.VideoTracks, sum.AudioTracks = edl.Tracks(tracks)
	return nil
}

// writeArtifacts writes every configured output. Inputs are claimed first so
// no artifact can overwrite them. On failure the files written so far are
// removed.
func writeArtifacts(ctx context.Context, cfg *config.Config, log *logging.Logger, res edl.Result, sum *Summary) (err error) {
	resolver := naming.NewCollisionResolver()
	resolver.Claim("media pool", sum.MediaPath)
	resolver.Claim("edit index", sum.EditPath)

	var written []string
	defer func() {
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
			sum.Artifacts = nil
		}
	}()

	add := func(kind, path string) {
		written = append(written, path)
		a := Artifact{Kind: kind, Path: path}
		if fi, statErr := os.Stat(path); statErr == nil {
			a.Size = fi.Size()
		}
		sum.Artifacts = append(sum.Artifacts, a)
	}
	resolve := func(kind, requested string) string {
		path := resolver.Resolve(kind, requested)
		if path != requested {
			log.Warn("%s would overwrite an input; writing %s instead", requested, path)
		}
		return path
	}
	opts := export.Options{IncludeIndex: cfg.IncludeIndex}

	sum.OutputPath = resolve("xlsx", cfg.OutputPath("xlsx"))
	if err := export.WriteXLSX(sum.OutputPath, res.Clips, opts); err != nil {
		return err
	}
	add("xlsx", sum.OutputPath)

	if len(res.NoSource) > 0 {
		sum.NoSourcePath = resolve("no-source", cfg.NoSourcePath())
		if err := export.WriteXLSX(sum.NoSourcePath, res.NoSource, opts); err != nil {
			return err
		}
		add("no-source", sum.NoSourcePath)
	}

	if cfg.WriteCSV {
		path := resolve("csv", cfg.OutputPath("csv"))
		if err := export.WriteCSV(path, res.Clips, opts); err != nil {
			return err
		}
		add("csv", path)
	}

	if cfg.WriteCMX {
		path := resolve("edl", cfg.OutputPath("edl"))
		skipped, err := export.WriteCMX3600(path, cfg.OutputBase, res.Clips, cfg.FPS)
		if err != nil {
			return err
		}
		add("edl", path)
		sum.CMXSkipped = skipped
		if skipped > 0 {
			log.Warn("%d clips left out of the CMX 3600 list (unusable record timecode)", skipped)
		}
	}

	for _, a := range sum.Artifacts {
		log.Debug("Wrote %s (%d bytes)", a.Path, a.Size)
	}

	if cfg.SQLitePath != "" {
		id, err := recordRun(ctx, cfg, res, sum)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		sum.RunID = id
		log.Debug("Recorded run %s in %s", id, cfg.SQLitePath)
	}
	return nil
}

func recordRun(ctx context.Context, cfg *config.Config, res edl.Result, sum *Summary) (string, error) {
	sink, err := export.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return "", err
	}
	defer sink.Close()

	return sink.WriteRun(ctx, export.Run{
		CreatedAt: now(),
		MediaFile: sum.MediaPath,
		EditFile:  sum.EditPath,
		Output:    sum.OutputPath,
		FPS:       cfg.FPS,
	}, res)
}
