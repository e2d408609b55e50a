// Package report prints a finished run to the console. It only reads the
// pipeline Summary; nothing it does reaches the written files.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/resolve2edl/internal/display"
	"github.com/backmassage/resolve2edl/internal/edl"
	"github.com/backmassage/resolve2edl/internal/pipeline"
	"github.com/backmassage/resolve2edl/internal/term"
)

// Console writes the run report as plain text sections.
type Console struct {
	w io.Writer
}

// NewConsole returns a reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Report prints, in order: timeline information, tracks, media file types,
// clip durations, fan-out warnings, null sources, the EDL itself, its column
// statistics, the output summary and "Done.".
func (c *Console) Report(s *pipeline.Summary) error {
	c.timeline(s)
	c.tracks(s)
	c.fileTypes(s)
	c.durations(s)
	c.fanout(s)
	c.noSource(s)
	if err := c.table(s); err != nil {
		return err
	}
	if err := c.describe(s); err != nil {
		return err
	}
	c.output(s)
	_, err := fmt.Fprintln(c.w, "\nDone.")
	return err
}

func (c *Console) timeline(s *pipeline.Summary) {
	display.Title(c.w, "timeline information")
	display.Field(c.w, "Frame rate", strconv.Itoa(s.FPS)+" fps")
	if s.TimelineErr != nil {
		display.Field(c.w, "Timeline", term.Paint(term.Yellow, "unknown ("+s.TimelineErr.Error()+")"))
	} else {
		display.Field(c.w, "Timeline start TC", s.Timeline.Start)
		display.Field(c.w, "Timeline end TC", s.Timeline.End)
		display.Field(c.w, "Timeline duration", s.Timeline.Duration)
		display.Field(c.w, "Timeline seconds", strconv.FormatFloat(s.Timeline.Duration.Seconds(), 'f', 2, 64))
	}
	fmt.Fprintln(c.w)
}

func (c *Console) tracks(s *pipeline.Summary) {
	display.Field(c.w, fmt.Sprintf("%d Video tracks", len(s.VideoTracks)), strings.Join(s.VideoTracks, " "))
	display.Field(c.w, fmt.Sprintf("%d Audio tracks", len(s.AudioTracks)), strings.Join(s.AudioTracks, " "))
}

func (c *Console) fileTypes(s *pipeline.Summary) {
	display.Title(c.w, "media pool file types")
	for _, e := range s.Extensions {
		ext := e.Value
		if ext == "" {
			ext = "(none)"
		}
		fmt.Fprintf(c.w, "%-10s%d\n", ext, e.N)
	}
}

func (c *Console) durations(s *pipeline.Summary) {
	display.Title(c.w, "clip durations")
	if !s.Result.HasIssues() {
		fmt.Fprintln(c.w, "No issues")
		return
	}
	for _, is := range s.Result.DurationIssues {
		fmt.Fprintln(c.w, term.Paint(term.Yellow, fmt.Sprintf(
			"Timecode problem in clip %s: IN %s OUT %s (duration set to zero)",
			is.Name, orDash(is.RecordIn), orDash(is.RecordOut))))
	}
}

func (c *Console) fanout(s *pipeline.Summary) {
	if len(s.Result.Fanout) == 0 {
		return
	}
	display.Title(c.w, "duplicate media names")
	for _, f := range s.Result.Fanout {
		fmt.Fprintf(c.w, "%s matches %d media pool files\n", f.Name, f.Matches)
	}
}

func (c *Console) noSource(s *pipeline.Summary) {
	if s.NoSourcePath == "" {
		return
	}
	display.Title(c.w, "null sources")
	fmt.Fprintf(c.w, "%s with no source assigned\n", display.Plural(len(s.Result.NoSource), "clip"))
	fmt.Fprintf(c.w, "Exported to separate file: %s\n", s.NoSourcePath)
}

func (c *Console) output(s *pipeline.Summary) {
	display.Title(c.w, "output")
	fmt.Fprintf(c.w, "Merged Media Pool '%s' and Edit Index '%s' to '%s'.\n",
		filepath.Base(s.MediaPath), filepath.Base(s.EditPath), filepath.Base(s.OutputPath))
	fmt.Fprintf(c.w, "(Total %s)\n", display.Plural(len(s.Result.Clips), "clip"))
	for _, a := range s.Artifacts {
		display.Field(c.w, "  "+a.Kind, fmt.Sprintf("%s (%s)", a.Path, display.FormatBytes(a.Size)))
	}
	if s.RunID != "" {
		display.Field(c.w, "  run id", s.RunID)
	}
}

func (c *Console) table(s *pipeline.Summary) error {
	clips := s.Result.Clips
	title := "edl"
	if s.PreviewRows > 0 && len(clips) > 2*s.PreviewRows {
		title = "head and tail of edl"
	}
	display.Title(c.w, title)

	header := append([]string{""}, edl.Columns...)
	var rows [][]string
	add := func(cl edl.Clip) {
		row := []string{strconv.Itoa(cl.Index)}
		for _, v := range cl.Values() {
			if v.Valid {
				row = append(row, v.String)
			} else {
				row = append(row, "NaN")
			}
		}
		rows = append(rows, row)
	}

	if title == "edl" {
		for _, cl := range clips {
			add(cl)
		}
	} else {
		for _, cl := range clips[:s.PreviewRows] {
			add(cl)
		}
		rows = append(rows, []string{"..."})
		for _, cl := range clips[len(clips)-s.PreviewRows:] {
			add(cl)
		}
	}
	if err := display.Table(c.w, header, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.w, "\n[%d rows x %d columns]\n", len(clips), len(edl.Columns))
	return err
}

func (c *Console) describe(s *pipeline.Summary) error {
	display.Title(c.w, "edl stats")
	header := []string{""}
	count, unique, top, freq := []string{"count"}, []string{"unique"}, []string{"top"}, []string{"freq"}
	for _, st := range s.Describe {
		header = append(header, st.Column)
		count = append(count, strconv.Itoa(st.Count))
		unique = append(unique, strconv.Itoa(st.Unique))
		if st.Count == 0 {
			top = append(top, "NaN")
			freq = append(freq, "NaN")
			continue
		}
		top = append(top, st.Top)
		freq = append(freq, strconv.Itoa(st.Freq))
	}
	return display.Table(c.w, header, [][]string{count, unique, top, freq})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
