package stats

import "time"

// Measure runs fn and returns the wall-clock time it took.
// The measurement includes the call overhead.
func Measure(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

// Millis truncates d to whole milliseconds
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
