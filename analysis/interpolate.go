package analysis

import (
	"fmt"
	"math"

	"fflogs_phase_ranker/dataset"
)

const (
	// AboveRange is reported for rates above the table's top threshold.
	AboveRange float64 = 101
	// BelowRange is reported for rates below the table's bottom threshold.
	BelowRange float64 = -1
)

// Interpolate estimates the percentile of rate for role by inverse linear interpolation
// between the table's breakpoints. ok is false when the table has no row for role.
//
// Thresholds are expected in the breakpoints' descending order. A rate equal to a
// threshold yields that breakpoint exactly; on a flat segment (two equal thresholds)
// the higher breakpoint is used.
func Interpolate(rate float64, role string, t *dataset.Table) (estimate float64, ok bool) {
	if t == nil || math.IsNaN(rate) {
		return 0, false
	}

	thresholds, ok := t.Role(role)
	if !ok {
		return 0, false
	}

	breakpoints := t.Breakpoints
	n := len(thresholds)
	if n == 0 || n != len(breakpoints) {
		return 0, false
	}

	switch {
	case rate > thresholds[0]:
		return AboveRange, true
	case rate < thresholds[n-1]:
		return BelowRange, true
	}

	for i := 0; i < n; i++ {
		if rate == thresholds[i] {
			return breakpoints[i], true
		}
		if i+1 == n {
			break
		}

		hi, lo := thresholds[i], thresholds[i+1]
		if lo <= rate && rate <= hi {
			if hi == lo {
				return breakpoints[i], true
			}
			return breakpoints[i+1] + (rate-lo)/(hi-lo)*(breakpoints[i]-breakpoints[i+1]), true
		}
	}

	// thresholds out of order; the rate fell through every pair
	return 0, false
}

// Label renders an estimate the way the result tables show it.
func Label(estimate float64) string {
	switch {
	case estimate >= AboveRange:
		return "100+"
	case estimate <= BelowRange:
		return "0-"
	}
	return fmt.Sprintf("%.1f", estimate)
}

// LogColor returns the colour of the parse bracket the estimate falls in.
func LogColor(estimate float64) string {
	switch {
	case estimate >= 99.5:
		return "#e5cc80"
	case estimate >= 98.5:
		return "#e268a8"
	case estimate >= 94.5:
		return "#ff8000"
	case estimate >= 74.5:
		return "#a335ee"
	case estimate >= 49.5:
		return "#0070ff"
	case estimate >= 24.5:
		return "#1eff00"
	}
	return "#666"
}
