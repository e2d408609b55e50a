package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/resolve2edl/internal/edl"
	"github.com/backmassage/resolve2edl/internal/naming"
	"github.com/backmassage/resolve2edl/internal/timecode"
)

// GenerateCMX3600 renders clips as a CMX 3600 EDL. Events keep the clips'
// order and record times; clips whose record times do not parse are left out
// and counted in skipped. A missing source range starts at 00:00:00:00 and
// lasts as long as the record range.
func GenerateCMX3600(title string, clips []edl.Clip, fps int) (text string, skipped int) {
	lines := []string{
		"TITLE: " + title,
		"FCM: NON-DROP FRAME",
		"",
	}

	event := 0
	for _, c := range clips {
		recIn, err := timecode.Parse(c.Edit.RecordIn.String, fps)
		if err != nil {
			skipped++
			continue
		}
		recOut, err := timecode.Parse(c.Edit.RecordOut.String, fps)
		if err != nil || recOut.Frames < recIn.Frames {
			skipped++
			continue
		}

		srcIn, err := timecode.Parse(c.Edit.SourceIn.String, fps)
		if err != nil {
			srcIn = timecode.FromFrames(0, fps)
		}
		srcOut, err := timecode.Parse(c.Edit.SourceOut.String, fps)
		if err != nil || srcOut.Frames < srcIn.Frames {
			srcOut = timecode.FromFrames(srcIn.Frames+recOut.Frames-recIn.Frames, fps)
		}

		event++
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s",
				event, naming.Reel(c.Media.Source.String), cmxTrack(c.Edit.Track.String),
				srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clipFile(c)),
		)
		if c.Media.Comments.Valid {
			lines = append(lines, fmt.Sprintf("* COMMENT:  %s", c.Media.Comments.String))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n"), skipped
}

// WriteCMX3600 writes GenerateCMX3600's output to path and returns the number
// of clips left out.
func WriteCMX3600(path, title string, clips []edl.Clip, fps int) (int, error) {
	text, skipped := GenerateCMX3600(title, clips, fps)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return skipped, nil
}

// cmxTrack maps an Edit Index track to the CMX channel field: A1 is "A",
// higher audio tracks keep their number, every video track is "V".
func cmxTrack(track string) string {
	if !strings.HasPrefix(track, "A") {
		return "V"
	}
	n, err := strconv.Atoi(track[1:])
	if err != nil || n <= 1 {
		return "A"
	}
	return "A" + strconv.Itoa(n)
}

func clipFile(c edl.Clip) string {
	if c.Media.Extension.String == "" {
		return c.Edit.Name
	}
	return c.Edit.Name + "." + c.Media.Extension.String
}
