package naming

import "path/filepath"

// OutputPath builds <dir>/<base><suffix>.<ext>. A relative base is resolved
// against dir; an absolute one is used as-is.
func OutputPath(dir, base, suffix, ext string) string {
	name := base + suffix + "." + ext
	if filepath.IsAbs(base) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}
