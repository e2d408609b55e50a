package edl

import (
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/backmassage/resolve2edl/internal/timecode"
)

// Count is one row of a frequency table.
type Count struct {
	Value string
	N     int
}

// Tracks splits the distinct track names of an Edit Index into video and
// audio, each in natural order (V2 before V10). Nulls are skipped.
func Tracks(values []sql.NullString) (video, audio []string) {
	seen := make(map[string]bool)
	for _, v := range values {
		if !v.Valid || seen[v.String] {
			continue
		}
		seen[v.String] = true
		if strings.HasPrefix(v.String, "A") {
			audio = append(audio, v.String)
		} else {
			video = append(video, v.String)
		}
	}
	SortTracks(video)
	SortTracks(audio)
	return video, audio
}

// SortTracks orders track names by prefix, then by the numeric part.
// Names without a numeric part sort after numbered ones with the same prefix.
func SortTracks(tracks []string) {
	sort.SliceStable(tracks, func(i, j int) bool {
		pi, ni, oki := splitTrack(tracks[i])
		pj, nj, okj := splitTrack(tracks[j])
		if pi != pj {
			return pi < pj
		}
		switch {
		case oki && okj:
			if ni != nj {
				return ni < nj
			}
			return tracks[i] < tracks[j]
		case oki != okj:
			return oki
		default:
			return tracks[i] < tracks[j]
		}
	})
}

func splitTrack(track string) (prefix string, n int, ok bool) {
	if track == "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(track[1:])
	return track[:1], n, err == nil
}

// ExtensionCounts is the frequency table of media file extensions, most
// frequent first, ties in alphabetical order. Assets without a file name are
// not counted.
func ExtensionCounts(media []MediaAsset) []Count {
	n := make(map[string]int)
	for _, a := range media {
		if a.Extension.Valid {
			n[a.Extension.String]++
		}
	}
	return sortedCounts(n)
}

func sortedCounts(n map[string]int) []Count {
	out := make([]Count, 0, len(n))
	for v, c := range n {
		out = append(out, Count{Value: v, N: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// ColumnStats describes one column of the primary EDL: non-null count,
// distinct values and the most frequent value with its frequency.
type ColumnStats struct {
	Column string
	Count  int
	Unique int
	Top    string
	Freq   int
}

// Describe computes ColumnStats for every column in [Columns] order. Top is
// empty and Freq zero for an all-null column; ties go to the smallest value.
func Describe(clips []Clip) []ColumnStats {
	counts := make([]map[string]int, len(Columns))
	for i := range counts {
		counts[i] = make(map[string]int)
	}
	for _, c := range clips {
		for i, v := range c.Values() {
			if v.Valid {
				counts[i][v.String]++
			}
		}
	}

	out := make([]ColumnStats, len(Columns))
	for i, col := range Columns {
		st := ColumnStats{Column: col, Unique: len(counts[i])}
		for v, n := range counts[i] {
			st.Count += n
			if n > st.Freq || (n == st.Freq && v < st.Top) {
				st.Top, st.Freq = v, n
			}
		}
		out[i] = st
	}
	return out
}

// Timeline is the extent of an Edit Index: the first Record In, the last
// Record Out and the difference between them.
type Timeline struct {
	Start    timecode.Timecode
	End      timecode.Timecode
	Duration timecode.Timecode
}

// TimelineSpan derives the timeline extent from the first Record In and last
// Record Out of the raw Edit Index rows. Null cells are skipped from either
// end.
func TimelineSpan(recordIn, recordOut []sql.NullString, fps int) (Timeline, error) {
	first := firstValid(recordIn, false)
	last := firstValid(recordOut, true)

	start, err := timecode.Parse(first, fps)
	if err != nil {
		return Timeline{}, err
	}
	end, err := timecode.Parse(last, fps)
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{Start: start, End: end, Duration: timecode.FromFrames(end.Frames-start.Frames, fps)}, nil
}

func firstValid(values []sql.NullString, fromEnd bool) string {
	for i := range values {
		j := i
		if fromEnd {
			j = len(values) - 1 - i
		}
		if values[j].Valid {
			return values[j].String
		}
	}
	return ""
}
