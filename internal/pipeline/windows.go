package pipeline

import "github.com/shopspring/decimal"

// Window is the [Start, End) time range of one chunk, in seconds.
type Window struct {
	Index int
	Start decimal.Decimal
	End   decimal.Decimal
}

// Windows splits duration into ceil(duration/chunkLength) consecutive,
// non-overlapping windows. The last window ends exactly at duration.
func Windows(duration decimal.Decimal, chunkLength int) []Window {
	if chunkLength <= 0 || !duration.IsPositive() {
		return nil
	}

	length := decimal.NewFromInt(int64(chunkLength))
	n := int(duration.Div(length).Ceil().IntPart())

	windows := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		start := length.Mul(decimal.NewFromInt(int64(i)))
		end := decimal.Min(start.Add(length), duration)
		windows = append(windows, Window{Index: i, Start: start, End: end})
	}
	return windows
}
