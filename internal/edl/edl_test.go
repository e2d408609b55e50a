package edl

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/table"
	"github.com/backmassage/resolve2edl/internal/timecode"
)

const editHeader = "#,Reel,Match,V,C,Dur,Source In,Source Out,Record In,Record Out,Name,Comments\n"

const mediaHeader = "File Name,Take,Camera #,Scene,Comments,Keywords,Clip Color\n"

func parse(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func defaults() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func edits(t *testing.T, cfg *config.Config, rows ...string) []EditEvent {
	t.Helper()
	ev, err := NormalizeEdits(parse(t, editHeader+strings.Join(rows, "\n")+"\n"), cfg)
	require.NoError(t, err)
	return ev
}

func media(t *testing.T, cfg *config.Config, rows ...string) []MediaAsset {
	t.Helper()
	ma, err := NormalizeMedia(parse(t, mediaHeader+strings.Join(rows, "\n")+"\n"), cfg)
	require.NoError(t, err)
	return ma
}

func names(ev []EditEvent) []string {
	out := make([]string, len(ev))
	for i, e := range ev {
		out[i] = e.Name + "@" + e.Track.String
	}
	return out
}

func TestNormalizeEdits_Exclusions(t *testing.T) {
	cfg := defaults()
	ev := edits(t, cfg,
		"1,,,V1,C,,00:00:00:00,00:00:02:00,01:00:00:00,01:00:02:00,Fusion Title,",
		"2,,,V1,C,,,,01:00:02:00,01:00:03:00,Fusion Title - Lower Third,",
		"3,,,V9,C,,,,01:00:00:00,01:00:02:00,Clip_01,",
		"4,,,A1,C,,,,01:00:00:00,01:00:02:00,Clip_01,",
		"5,,,V1,C,,,,01:00:02:00,01:00:04:00,,",
		"6,,,V2,C,,,,01:00:02:00,01:00:04:00,Clip_02,",
		"7,,,A2,C,,,,01:00:02:00,01:00:04:00,Cross Fade 0 dB,",
	)
	assert.Equal(t, []string{"Clip_01@A1", "Clip_02@V2"}, names(ev))
}

func TestNormalizeEdits_MaxVideoTrack(t *testing.T) {
	cfg := defaults()
	cfg.ExcludedTracks = nil
	cfg.MaxVideoTrack = 2
	ev := edits(t, cfg,
		"1,,,V1,C,,,,,,a,",
		"2,,,V3,C,,,,,,b,",
		"3,,,A7,C,,,,,,c,",
		"4,,,,C,,,,,,d,",
	)
	assert.Equal(t, []string{"a@V1", "c@A7", "d@"}, names(ev))
}

func TestNormalizeEdits_MissingColumn(t *testing.T) {
	_, err := NormalizeEdits(parse(t, "Name,V\nClip,V1\n"), defaults())
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestNormalizeMedia(t *testing.T) {
	ma := media(t, defaults(),
		"Clip_01.mov,3,A,12,,\"interview, exterior\",Orange",
		"NoExtension,,B,,,,",
		",,,,,,",
	)
	require.Len(t, ma, 3)

	assert.Equal(t, "Clip_01", ma[0].Name.String)
	assert.Equal(t, "mov", ma[0].Extension.String)
	assert.Equal(t, "3", ma[0].Source.String)
	assert.Equal(t, "12", ma[0].Reference.String)
	assert.Equal(t, "A", ma[0].Fonds.String)
	assert.Equal(t, "interview, exterior", ma[0].Keywords.String)

	assert.Equal(t, "NoExtension", ma[1].Name.String)
	assert.True(t, ma[1].Extension.Valid)
	assert.Equal(t, "", ma[1].Extension.String)
	assert.False(t, ma[1].Source.Valid)

	assert.False(t, ma[2].Name.Valid)
	assert.False(t, ma[2].Extension.Valid)
}

func TestNormalizeMedia_MissingColumn(t *testing.T) {
	_, err := NormalizeMedia(parse(t, "File Name,Take\nClip.mov,1\n"), defaults())
	require.ErrorIs(t, err, table.ErrMissingColumn)
	assert.Contains(t, err.Error(), `"Camera #"`)
}

func TestMerge_JoinDerivesDuration(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg, "1,,,V1,C,,,,01:00:00:00,01:00:02:00,Clip_01,"),
		media(t, cfg, "Clip_01.mov,3,,12,,,"),
		OptionsFrom(cfg),
	)
	require.Len(t, res.Clips, 1)
	assert.Empty(t, res.NoSource)
	assert.False(t, res.HasIssues())

	c := res.Clips[0]
	assert.Equal(t, "mov", c.Media.Extension.String)
	assert.Equal(t, "3", c.Media.Source.String)
	assert.Equal(t, "12", c.Media.Reference.String)
	assert.Equal(t, 50, c.Duration.Frames)
	assert.Equal(t, "", c.TrackKind)
	assert.True(t, c.Derived)

	vals := c.Values()
	require.Len(t, vals, len(Columns))
	assert.Equal(t, "00:00:02:00", vals[12].String)
	assert.True(t, vals[13].Valid)
}

func TestMerge_UnmatchedGoesToNoSource(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,01:00:00:00,01:00:02:00,Clip_01,",
			"2,,,V1,C,,,,01:00:02:00,01:00:03:00,Orphan,",
		),
		media(t, cfg, "Clip_01.mov,3,,12,,,"),
		OptionsFrom(cfg),
	)
	require.Len(t, res.Clips, 1)
	require.Len(t, res.NoSource, 1)

	orphan := res.NoSource[0]
	assert.Equal(t, "Orphan", orphan.Edit.Name)
	assert.Equal(t, 1, orphan.Index)
	assert.False(t, orphan.Matched())
	assert.False(t, orphan.Derived)
	vals := orphan.Values()
	for i := 6; i < len(vals); i++ {
		assert.False(t, vals[i].Valid, "column %s must be null", Columns[i])
	}
}

func TestMerge_MatchedWithoutSource(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg, "1,,,V1,C,,,,01:00:00:00,01:00:02:00,Clip_01,"),
		media(t, cfg, "Clip_01.mov,,A,12,,,"),
		OptionsFrom(cfg),
	)
	assert.Empty(t, res.Clips)
	require.Len(t, res.NoSource, 1)
	assert.True(t, res.NoSource[0].Matched())
}

func TestMerge_IgnoredSources(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,A1,C,,,,01:00:00:00,01:00:02:00,Track_03,",
			"2,,,V1,C,,,,01:00:00:00,01:00:02:00,Clip_01,",
		),
		media(t, cfg, "Track_03.wav,Musique Tal,,,,,", "Clip_01.mov,3,,,,,"),
		OptionsFrom(cfg),
	)
	assert.Equal(t, 2, res.Joined)
	assert.Equal(t, 1, res.Ignored)
	require.Len(t, res.Clips, 1)
	assert.Equal(t, "Clip_01", res.Clips[0].Edit.Name)
}

func TestMerge_FanoutIsFlagged(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,01:00:00:00,01:00:02:00,Clip_01,",
			"2,,,V1,C,,,,01:00:04:00,01:00:05:00,Clip_01,",
		),
		media(t, cfg, "Clip_01.mov,3,,,,,", "Clip_01.wav,4,,,,,"),
		OptionsFrom(cfg),
	)
	assert.Equal(t, []Fanout{{Name: "Clip_01", Matches: 2}}, res.Fanout)
	require.Len(t, res.Clips, 4)
	assert.Equal(t, "mov", res.Clips[0].Media.Extension.String)
	assert.Equal(t, "wav", res.Clips[1].Media.Extension.String)
}

func TestMerge_DurationIssues(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,01:00:02:00,01:00:00:00,Inverted,",
			"2,,,V1,C,,,,01:00:03:00,garbage,Malformed,",
			"3,,,A1,C,,,,01:00:04:00,01:00:04:00,Zero,",
		),
		media(t, cfg, "Inverted.mov,1,,,,,", "Malformed.mov,2,,,,,", "Zero.wav,3,,,,,"),
		OptionsFrom(cfg),
	)
	require.Len(t, res.Clips, 3)
	require.Len(t, res.DurationIssues, 2)
	assert.ErrorIs(t, res.DurationIssues[0].Err, timecode.ErrInverted)
	assert.ErrorIs(t, res.DurationIssues[1].Err, timecode.ErrMalformed)

	for _, c := range res.Clips {
		assert.Equal(t, 0, c.Duration.Frames, c.Edit.Name)
	}
	assert.Equal(t, AudioKind, res.Clips[2].TrackKind)
}

func TestMerge_SignedTimecodeIsMalformed(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,+1:00:00:00,01:00:02:00,Plus,",
			"2,,,V1,C,,,,01:00:03:00,01:00:04:+1,Frames,",
		),
		media(t, cfg, "Plus.mov,1,,,,,", "Frames.mov,2,,,,,"),
		OptionsFrom(cfg),
	)
	require.Len(t, res.Clips, 2)
	require.Len(t, res.DurationIssues, 2)
	for _, issue := range res.DurationIssues {
		assert.ErrorIs(t, issue.Err, timecode.ErrMalformed, issue.Name)
	}
	for _, c := range res.Clips {
		assert.Equal(t, 0, c.Duration.Frames, c.Edit.Name)
	}
}

func TestMerge_Partition(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,01:00:10:00,01:00:12:00,B,",
			"2,,,V1,C,,,,01:00:00:00,01:00:02:00,A,",
			"3,,,A1,C,,,,01:00:05:00,01:00:06:00,Nobody,",
			"4,,,A2,C,,,,01:00:01:00,01:00:06:00,Lib,",
			"5,,,V2,C,,,,01:00:01:00,01:00:02:00,A,",
		),
		media(t, cfg, "A.mov,1,,,,,", "B.mov,2,,,,,", "A.mxf,1b,,,,,", "Lib.wav,Sound FX Tal,,,,,"),
		OptionsFrom(cfg),
	)

	assert.Equal(t, res.Joined, len(res.Clips)+len(res.NoSource)+res.Ignored)
	for _, c := range res.Clips {
		assert.True(t, c.Media.Source.Valid)
	}
	for _, c := range res.NoSource {
		assert.False(t, c.Media.Source.Valid)
	}
	for i := 1; i < len(res.Clips); i++ {
		prev, _ := timecode.Parse(res.Clips[i-1].Edit.RecordIn.String, cfg.FPS)
		cur, _ := timecode.Parse(res.Clips[i].Edit.RecordIn.String, cfg.FPS)
		assert.LessOrEqual(t, prev.Frames, cur.Frames)
	}
}

func TestSortByRecordIn(t *testing.T) {
	mk := func(name, in string) Clip {
		return Clip{Edit: EditEvent{Name: name, RecordIn: sql.NullString{String: in, Valid: in != ""}}}
	}
	clips := []Clip{
		mk("late", "10:00:00:00"),
		mk("bad", "zz"),
		mk("early-a", "09:00:00:00"),
		mk("null", ""),
		mk("early-b", "09:00:00:00"),
		mk("wide", "100:00:00:00"),
	}
	SortByRecordIn(clips, 25)

	var got []string
	for _, c := range clips {
		got = append(got, c.Edit.Name)
	}
	assert.Equal(t, []string{"early-a", "early-b", "late", "wide", "null", "bad"}, got)
}

func TestTracks(t *testing.T) {
	vals := func(ss ...string) []sql.NullString {
		out := make([]sql.NullString, len(ss))
		for i, s := range ss {
			out[i] = sql.NullString{String: s, Valid: s != ""}
		}
		return out
	}
	video, audio := Tracks(vals("V10", "A2", "V2", "", "V1", "A10", "A1", "V2"))
	assert.Equal(t, []string{"V1", "V2", "V10"}, video)
	assert.Equal(t, []string{"A1", "A2", "A10"}, audio)
}

func TestExtensionCounts(t *testing.T) {
	ma := media(t, defaults(),
		"a.mov,,,,,,", "b.wav,,,,,,", "c.mov,,,,,,", "d,,,,,,", ",,,,,,", "e.wav,,,,,,", "f.mxf,,,,,,",
	)
	assert.Equal(t, []Count{{"mov", 2}, {"wav", 2}, {"", 1}, {"mxf", 1}}, ExtensionCounts(ma))
}

func TestDescribe(t *testing.T) {
	cfg := defaults()
	res := Merge(
		edits(t, cfg,
			"1,,,V1,C,,,,01:00:00:00,01:00:02:00,A,",
			"2,,,V1,C,,,,01:00:02:00,01:00:04:00,A,",
			"3,,,A1,C,,,,01:00:04:00,01:00:05:00,B,",
		),
		media(t, cfg, "A.mov,1,,,,,", "B.wav,2,,,,,"),
		OptionsFrom(cfg),
	)
	stats := Describe(res.Clips)
	require.Len(t, stats, len(Columns))

	byCol := make(map[string]ColumnStats)
	for _, s := range stats {
		byCol[s.Column] = s
	}
	assert.Equal(t, ColumnStats{Column: "Name", Count: 3, Unique: 2, Top: "A", Freq: 2}, byCol["Name"])
	assert.Equal(t, ColumnStats{Column: "Duration", Count: 3, Unique: 2, Top: "00:00:02:00", Freq: 2}, byCol["Duration"])
	assert.Equal(t, ColumnStats{Column: "Comments"}, byCol["Comments"])
}

func TestTimelineSpan(t *testing.T) {
	nv := func(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }
	tl, err := TimelineSpan(
		[]sql.NullString{nv(""), nv("01:00:00:00"), nv("01:00:10:00")},
		[]sql.NullString{nv("01:00:05:00"), nv("01:01:00:00"), nv("")},
		25,
	)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", tl.Start.String())
	assert.Equal(t, "01:01:00:00", tl.End.String())
	assert.Equal(t, "00:01:00:00", tl.Duration.String())

	_, err = TimelineSpan(nil, nil, 25)
	assert.ErrorIs(t, err, timecode.ErrMalformed)
}
