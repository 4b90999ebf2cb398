// Package display formats sizes, durations, and the end-of-run summary for
// console output.
package display

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (B, KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatRatio returns out as a percentage of in ("12%"), or "n/a" when in is
// zero.
func FormatRatio(in, out int64) string {
	if in <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", out*100/in)
}

// FormatElapsed rounds d for log lines: milliseconds under a second,
// otherwise tenths of a second.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
