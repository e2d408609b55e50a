// Package timecode parses and formats non-drop-frame SMPTE timecodes
// (HH:MM:SS:FF) at a whole-number frame rate and computes the difference
// between two of them.
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors returned by Parse and Sub.
var (
	ErrMalformed = errors.New("malformed timecode")
	ErrInverted  = errors.New("out point precedes in point")
	ErrRate      = errors.New("frame rate must be positive")
)

// Timecode is a frame count at a fixed rate. The zero value is 00:00:00:00
// at rate 0 and only useful as a placeholder.
type Timecode struct {
	Frames int
	Rate   int
}

// FromFrames builds a Timecode from a frame count.
func FromFrames(frames, rate int) Timecode {
	return Timecode{Frames: frames, Rate: rate}
}

// Parse reads "HH:MM:SS:FF". The frame separator may also be ';' or '.',
// as Resolve writes for drop-frame rates, but the value is always counted
// as non-drop-frame. Every field is at least two ASCII digits; the frame
// field may be wider at rates above 99.
func Parse(s string, rate int) (Timecode, error) {
	if rate <= 0 {
		return Timecode{}, ErrRate
	}
	raw := strings.TrimSpace(s)
	cut := strings.LastIndexAny(raw, ":;.")
	if cut < 0 {
		return Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	parts := strings.Split(raw[:cut], ":")
	if len(parts) != 3 {
		return Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	parts = append(parts, raw[cut+1:])

	var v [4]int
	for i, p := range parts {
		if len(p) < 2 || !digits(p) {
			return Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		v[i] = n
	}
	hh, mm, ss, ff := v[0], v[1], v[2], v[3]
	if mm > 59 || ss > 59 || ff >= rate {
		return Timecode{}, fmt.Errorf("%w: %q out of range at %d fps", ErrMalformed, s, rate)
	}
	frames := ((hh*60+mm)*60+ss)*rate + ff
	return Timecode{Frames: frames, Rate: rate}, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the timecode as HH:MM:SS:FF. Hours are zero-padded to two
// digits and grow past 99 rather than wrapping. Frames take three digits at
// rates above 100.
func (t Timecode) String() string {
	if t.Rate <= 0 {
		return "00:00:00:00"
	}
	frames := t.Frames
	sign := ""
	if frames < 0 {
		sign = "-"
		frames = -frames
	}
	ff := frames % t.Rate
	secs := frames / t.Rate
	width := len(strconv.Itoa(t.Rate - 1))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%s%02d:%02d:%02d:%0*d", sign, secs/3600, (secs/60)%60, secs%60, width, ff)
}

// Seconds returns the duration of the frame count in seconds.
func (t Timecode) Seconds() float64 {
	if t.Rate <= 0 {
		return 0
	}
	return float64(t.Frames) / float64(t.Rate)
}

// Sub returns out − in. Both strings are parsed at rate; a malformed value
// or an out point earlier than the in point is an error.
func Sub(out, in string, rate int) (Timecode, error) {
	tin, err := Parse(in, rate)
	if err != nil {
		return Timecode{}, err
	}
	tout, err := Parse(out, rate)
	if err != nil {
		return Timecode{}, err
	}
	if tout.Frames < tin.Frames {
		return Timecode{}, fmt.Errorf("%w: IN %s OUT %s", ErrInverted, tin, tout)
	}
	return Timecode{Frames: tout.Frames - tin.Frames, Rate: rate}, nil
}
