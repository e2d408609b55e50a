package edl

import (
	"sort"
	"strings"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/timecode"
)

// Options are the merge parameters taken from a Config.
type Options struct {
	FPS            int
	IgnoredSources []string
}

// OptionsFrom extracts merge options from cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{FPS: cfg.FPS, IgnoredSources: cfg.IgnoredSources}
}

// DurationIssue records a clip whose Record In / Record Out pair could not be
// subtracted. The clip is kept with a zero duration.
type DurationIssue struct {
	Name      string
	RecordIn  string
	RecordOut string
	Err       error
}

// Fanout records an Edit Index name that matched more than one Media Pool
// asset. Every match is emitted; the duplicates are only flagged.
type Fanout struct {
	Name    string
	Matches int
}

// Result is the outcome of Merge. Joined counts the left-join rows; it equals
// len(Clips) + len(NoSource) + Ignored.
type Result struct {
	Clips          []Clip
	NoSource       []Clip
	DurationIssues []DurationIssue
	Fanout         []Fanout
	Joined         int
	Ignored        int
}

// HasIssues reports whether any duration defaulted to zero.
func (r Result) HasIssues() bool { return len(r.DurationIssues) > 0 }

// Merge left-joins edits with media on the clip name, drops ignored sources,
// splits off the clips without a source and derives Duration and TrackKind
// for the rest, which come back sorted by Record In.
func Merge(edits []EditEvent, media []MediaAsset, opts Options) Result {
	byName := make(map[string][]int, len(media))
	for i, a := range media {
		if a.Name.Valid {
			byName[a.Name.String] = append(byName[a.Name.String], i)
		}
	}

	ignored := make(map[string]bool, len(opts.IgnoredSources))
	for _, s := range opts.IgnoredSources {
		ignored[s] = true
	}

	var res Result
	flagged := make(map[string]bool)
	emit := func(c Clip) {
		c.Index = res.Joined
		res.Joined++
		switch {
		case c.Media.Source.Valid && ignored[c.Media.Source.String]:
			res.Ignored++
		case !c.Media.Source.Valid:
			res.NoSource = append(res.NoSource, c)
		default:
			res.Clips = append(res.Clips, c)
		}
	}

	for _, e := range edits {
		matches := byName[e.Name]
		if len(matches) == 0 {
			emit(Clip{Edit: e})
			continue
		}
		if len(matches) > 1 && !flagged[e.Name] {
			flagged[e.Name] = true
			res.Fanout = append(res.Fanout, Fanout{Name: e.Name, Matches: len(matches)})
		}
		for _, m := range matches {
			emit(Clip{Edit: e, Media: media[m]})
		}
	}

	for i := range res.Clips {
		c := &res.Clips[i]
		c.Index = i
		c.Derived = true
		c.TrackKind = TrackKind(c.Edit.Track.String)
		d, err := timecode.Sub(c.Edit.RecordOut.String, c.Edit.RecordIn.String, opts.FPS)
		if err != nil {
			c.Duration = timecode.FromFrames(0, opts.FPS)
			res.DurationIssues = append(res.DurationIssues, DurationIssue{
				Name:      c.Edit.Name,
				RecordIn:  c.Edit.RecordIn.String,
				RecordOut: c.Edit.RecordOut.String,
				Err:       err,
			})
			continue
		}
		c.Duration = d
	}

	SortByRecordIn(res.Clips, opts.FPS)
	return res
}

// TrackKind returns AudioKind for audio tracks and "" for everything else.
func TrackKind(track string) string {
	if strings.HasPrefix(track, "A") {
		return AudioKind
	}
	return ""
}

// SortByRecordIn stable-sorts clips by Record In frame count. Clips whose
// Record In does not parse go last, ordered by the raw value.
func SortByRecordIn(clips []Clip, fps int) {
	type keyed struct {
		clip   Clip
		frames int
		ok     bool
	}
	ks := make([]keyed, len(clips))
	for i, c := range clips {
		tc, err := timecode.Parse(c.Edit.RecordIn.String, fps)
		ks[i] = keyed{clip: c, frames: tc.Frames, ok: err == nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		switch {
		case a.ok && b.ok:
			return a.frames < b.frames
		case a.ok != b.ok:
			return a.ok
		default:
			return a.clip.Edit.RecordIn.String < b.clip.Edit.RecordIn.String
		}
	})
	for i := range ks {
		clips[i] = ks[i].clip
	}
}
