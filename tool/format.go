package tool

import (
	"fmt"
	"math"
)

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders sizes like "0 B", "512 B", "1.5 KB", "12 MB".
// One decimal is kept below 10 of a unit, none above. Halves round up.
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(byteUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if value >= 10 || unitIndex == 0 {
		return fmt.Sprintf("%.0f %s", math.Floor(value+0.5), byteUnits[unitIndex])
	}
	return fmt.Sprintf("%.1f %s", math.Floor(value*10+0.5)/10, byteUnits[unitIndex])
}
