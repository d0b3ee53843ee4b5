// Package format provides presentation helpers for file listings.
package format

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Size renders a byte count in the largest unit (base 1024) that keeps the
// mantissa in [1, 1024), rounded to two decimals with trailing zeros trimmed.
// Size(0) is "0 B". Negative input is treated as zero.
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := math.Round(value*100) / 100
	// Rounding can carry the mantissa to 1024 (e.g. 1048575 B -> 1024 KB).
	if rounded >= 1024 && value < 1024 {
		if unit < len(sizeUnits)-1 {
			value /= 1024
			unit++
			rounded = math.Round(value*100) / 100
		} else {
			// No larger unit to carry into.
			rounded = math.Floor(value*100) / 100
		}
	}

	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
