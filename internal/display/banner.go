package display

import (
	"fmt"
	"io"

	"github.com/backmassage/resolve2edl/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Paint(term.Magenta, `                    _          ____          _ _
 _ __ ___  ___  ___ | |_   _____|___ \ ___  __| | |
| '__/ _ \/ __|/ _ \| \ \ / / _ \ __) / _ \/ _`+"`"+` | |
| | |  __/\__ \ (_) | |\ V /  __// __/  __/ (_| | |
|_|  \___||___/\___/|_| \_/ \___|_____\___|\__,_|_|
`))
	if version != "" {
		fmt.Fprintf(w, "%s\n", version)
	}
	fmt.Fprintln(w)
}
