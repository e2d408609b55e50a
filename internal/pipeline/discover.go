package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/resolve2edl/internal/table"
)

// Discover lists the CSV files directly inside dir, sorted
// lexicographically. Subdirectories are not walked: Resolve exports sit next
// to each other.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// checkInput returns a table.ErrMissingFile error for a missing input,
// naming the CSV files that are present so a misspelt name is easy to spot.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", table.ErrMissingFile, path)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	found, _ := Discover(filepath.Dir(path))
	if len(found) == 0 {
		return fmt.Errorf("%w: %s (no CSV files in %s)", table.ErrMissingFile, path, filepath.Dir(path))
	}
	names := make([]string, len(found))
	for i, f := range found {
		names[i] = filepath.Base(f)
	}
	return fmt.Errorf("%w: %s (found: %s)", table.ErrMissingFile, path, strings.Join(names, ", "))
}
