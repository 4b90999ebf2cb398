package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	RunID            string
	Total            int
	Current          int
	Converted        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Growth returns the aggregate byte difference between outputs and inputs.
// MP3 at a fixed bitrate is usually larger than the SILK source, so this is
// normally positive.
func (s *RunStats) Growth() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
