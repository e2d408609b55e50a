package naming

import "strings"

// SplitExt splits file at its last extension separator. The extension is
// returned without the dot. A dot that only appears in a leading run of dots
// (".hidden", "..x") does not start an extension, and a file with no
// extension comes back unchanged with an empty extension.
func SplitExt(file string) (base, ext string) {
	sep := strings.LastIndex(file, "/")
	dot := strings.LastIndex(file, ".")
	if dot <= sep {
		return file, ""
	}
	for i := sep + 1; i < dot; i++ {
		if file[i] != '.' {
			return file[:dot], file[dot+1:]
		}
	}
	return file, ""
}
