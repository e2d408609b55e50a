package pipeline

// RunStats tracks the row counts of each stage and the bytes written.
type RunStats struct {
	MediaAssets    int // Media Pool rows.
	EditRows       int // Edit Index rows before exclusion.
	Events         int // Edit Index rows kept after exclusion.
	Joined         int
	Ignored        int
	Clips          int
	NoSource       int
	DurationIssues int
	Fanout         int
	BytesWritten   int64
}

// Excluded returns how many Edit Index rows were dropped as markers, empty
// names or excluded tracks.
func (s *RunStats) Excluded() int {
	return s.EditRows - s.Events
}
