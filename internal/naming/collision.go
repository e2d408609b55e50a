package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CollisionResolver tracks which paths a run has claimed and moves any
// artifact that would land on a claimed path to a " - dupN" variant. Inputs
// are claimed first so an export can never overwrite the CSVs it was built
// from.
type CollisionResolver struct {
	owners   map[string]string // path → owner label
	counters map[string]int    // requested path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim reserves path for owner without renaming it.
func (cr *CollisionResolver) Claim(owner, path string) {
	cr.owners[key(path)] = owner
}

// Resolve returns the path owner should write to. If requested is unclaimed
// (or already owned by owner) it is returned as-is; otherwise a " - dupN"
// variant is generated.
func (cr *CollisionResolver) Resolve(owner, requested string) string {
	k := key(requested)
	if o, exists := cr.owners[k]; !exists || o == owner {
		cr.owners[k] = owner
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[k]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		if o, exists := cr.owners[key(candidate)]; !exists || o == owner {
			cr.counters[k] = counter + 1
			cr.owners[key(candidate)] = owner
			return candidate
		}
		counter++
	}
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
