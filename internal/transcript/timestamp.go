package transcript

import "fmt"

// FormatTimestamp converts elapsed seconds to HH:MM:SS. Hours are not wrapped
// at 24 and fractional seconds are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
