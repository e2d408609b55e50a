package naming

import (
	"strings"
	"unicode"
)

// ReelWidth is the reel name field width of a CMX 3600 event line.
const ReelWidth = 8

// AuxReel is used when a clip has no usable source label.
const AuxReel = "AX"

// Reel derives a CMX 3600 reel name from a source label: letters and digits
// are upper-cased, everything else becomes an underscore, and the result is
// truncated to ReelWidth.
func Reel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return AuxReel
	}
	var b strings.Builder
	for _, r := range label {
		if b.Len() >= ReelWidth {
			break
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
