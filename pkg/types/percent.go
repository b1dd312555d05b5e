package types

import "math"

// Number covers the numeric kinds usage counters come in.
type Number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// UsagePercent returns used as a percentage of total. A zero total yields 0
// rather than a division panic; fresh counters and empty filesystems are
// routinely all-zero.
func UsagePercent[T Number](used, total T) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// UsagePercentRound is UsagePercent rounded to the given number of fractional
// digits.
func UsagePercentRound[T Number](used, total T, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(UsagePercent(used, total)*shift) / shift
}
