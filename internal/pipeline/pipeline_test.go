package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/export"
	"github.com/backmassage/resolve2edl/internal/logging"
	"github.com/backmassage/resolve2edl/internal/table"
)

const mediaPool = "File Name,Take,Camera #,Scene,Comments,Keywords,Clip Color\n" +
	"Clip_01.mov,3,A,12,,interview,Orange\n" +
	"Clip_02.mov,4,B,12,,,\n" +
	"Music_01.wav,Musique Tal,,,,,\n" +
	"NoTake.mov,,A,14,,,\n"

const editIndex = "#,Reel,Match,V,C,Dur,Source In,Source Out,Record In,Record Out,Name,Comments\n" +
	"1,,,V1,C,,00:00:00:00,00:00:02:00,01:00:00:00,01:00:02:00,Clip_01,\n" +
	"2,,,V1,C,,00:00:10:00,00:00:13:00,01:00:02:00,01:00:05:00,Clip_02,\n" +
	"3,,,V2,C,,,,01:00:00:00,01:00:05:00,Fusion Title,\n" +
	"4,,,V9,C,,,,01:00:00:00,01:00:05:00,Clip_01,\n" +
	"5,,,A1,C,,,,01:00:00:00,01:00:02:00,Clip_01,\n" +
	"6,,,A2,C,,,,01:00:00:00,01:00:05:00,Music_01,\n" +
	"7,,,V1,C,,,,01:00:05:00,01:00:06:00,NoTake,\n" +
	"8,,,V1,C,,,,01:00:06:00,01:00:07:00,Unknown,\n" +
	"9,,,V1,C,,,,01:00:08:00,01:00:07:00,Clip_02,\n"

type captureReporter struct{ got *Summary }

func (c *captureReporter) Report(s *Summary) error {
	c.got = s
	return nil
}

func setup(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(mediaPool)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MediaPool.csv"), []byte(utf16), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Montage.csv"), []byte(editIndex), 0o644))

	cfg := config.DefaultConfig()
	cfg.WorkDir = dir
	require.NoError(t, cfg.Validate())
	return &cfg
}

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger(&bytes.Buffer{}, true)
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := setup(t)
	rep := &captureReporter{}

	stats, err := Run(context.Background(), cfg, quietLogger(), rep)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.MediaAssets)
	assert.Equal(t, 9, stats.EditRows)
	assert.Equal(t, 7, stats.Events)
	assert.Equal(t, 2, stats.Excluded())
	assert.Equal(t, 1, stats.Ignored)
	assert.Equal(t, 4, stats.Clips)
	assert.Equal(t, 2, stats.NoSource)
	assert.Equal(t, 1, stats.DurationIssues)
	assert.Positive(t, stats.BytesWritten)

	require.NotNil(t, rep.got)
	s := rep.got
	assert.Equal(t, []string{"V1", "V2", "V9"}, s.VideoTracks)
	assert.Equal(t, []string{"A1", "A2"}, s.AudioTracks)
	assert.Equal(t, "01:00:00:00", s.Timeline.Start.String())
	assert.Equal(t, "01:00:07:00", s.Timeline.End.String())
	assert.Equal(t, filepath.Join(cfg.WorkDir, "edl.xlsx"), s.OutputPath)
	assert.Equal(t, filepath.Join(cfg.WorkDir, "edl-no-source.xlsx"), s.NoSourcePath)

	rows := readRows(t, s.OutputPath)
	require.Len(t, rows, 5)
	var names []string
	for _, r := range rows[1:] {
		names = append(names, r[0]+"@"+r[5])
	}
	assert.Equal(t, []string{"Clip_01@V1", "Clip_01@A1", "Clip_02@V1", "Clip_02@V1"}, names)
	assert.Equal(t, "00:00:02:00", rows[1][12])
	assert.Equal(t, "AUDIO", rows[2][13])

	noSource := readRows(t, s.NoSourcePath)
	require.Len(t, noSource, 3)
	assert.Equal(t, "NoTake", noSource[1][0])
	assert.Equal(t, "Unknown", noSource[2][0])
}

func TestRun_Extras(t *testing.T) {
	cfg := setup(t)
	cfg.WriteCSV = true
	cfg.WriteCMX = true
	cfg.SQLitePath = filepath.Join(cfg.WorkDir, "history.db")
	now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	rep := &captureReporter{}
	_, err := Run(context.Background(), cfg, quietLogger(), rep)
	require.NoError(t, err)

	var kinds []string
	for _, a := range rep.got.Artifacts {
		kinds = append(kinds, a.Kind)
		assert.FileExists(t, a.Path)
	}
	assert.Equal(t, []string{"xlsx", "no-source", "csv", "edl"}, kinds)
	assert.Len(t, rep.got.RunID, 36)
	assert.Equal(t, 1, rep.got.CMXSkipped, "the inverted clip has no usable record range")

	sink, err := export.OpenSQLite(context.Background(), cfg.SQLitePath)
	require.NoError(t, err)
	defer sink.Close()
	var n int
	require.NoError(t, sink.Conn().QueryRow("SELECT COUNT(*) FROM clips WHERE run_id = ?", rep.got.RunID).Scan(&n))
	assert.Equal(t, 6, n)
}

func TestRun_Idempotent(t *testing.T) {
	cfg := setup(t)
	cfg.WriteCSV = true

	_, err := Run(context.Background(), cfg, quietLogger(), nil)
	require.NoError(t, err)
	firstCSV, err := os.ReadFile(cfg.OutputPath("csv"))
	require.NoError(t, err)
	firstRows := readRows(t, cfg.OutputPath("xlsx"))

	_, err = Run(context.Background(), cfg, quietLogger(), nil)
	require.NoError(t, err)
	secondCSV, err := os.ReadFile(cfg.OutputPath("csv"))
	require.NoError(t, err)

	assert.Equal(t, firstCSV, secondCSV)
	assert.Equal(t, firstRows, readRows(t, cfg.OutputPath("xlsx")))
}

func TestRun_FatalErrorsWriteNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   error
	}{
		{"missing media", func(cfg *config.Config) { cfg.MediaFile = "Nope.csv" }, table.ErrMissingFile},
		{"wrong encoding", func(cfg *config.Config) { cfg.MediaEncoding = config.EncodingUTF8 }, table.ErrDecoding},
		{"missing column", func(cfg *config.Config) { cfg.EditColumns.Track = "Track" }, table.ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setup(t)
			tt.mutate(cfg)

			_, err := Run(context.Background(), cfg, quietLogger(), nil)
			require.ErrorIs(t, err, tt.want)
			assert.NoFileExists(t, cfg.OutputPath("xlsx"))
			assert.NoFileExists(t, cfg.NoSourcePath())
		})
	}
}

func TestRun_MissingInputListsCandidates(t *testing.T) {
	cfg := setup(t)
	cfg.EditFile = "montage.csv"
	_, err := Run(context.Background(), cfg, quietLogger(), nil)
	require.ErrorIs(t, err, table.ErrMissingFile)
	assert.Contains(t, err.Error(), "found: MediaPool.csv, Montage.csv")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, quietLogger(), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cfg.OutputPath("xlsx"))
}

func TestRun_OutputNeverOverwritesInput(t *testing.T) {
	cfg := setup(t)
	cfg.OutputBase = "Montage"
	cfg.WriteCSV = true

	rep := &captureReporter{}
	_, err := Run(context.Background(), cfg, quietLogger(), rep)
	require.NoError(t, err)

	got, err := os.ReadFile(cfg.EditPath())
	require.NoError(t, err)
	assert.Equal(t, editIndex, string(got))
	assert.FileExists(t, filepath.Join(cfg.WorkDir, "Montage - dup1.csv"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "A.CSV", "notes.txt", "edl.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.csv"), 0o755))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.CSV"), filepath.Join(dir, "b.csv")}, files)
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.Sheet)
	require.NoError(t, err)
	return rows
}
