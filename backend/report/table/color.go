package table

import (
	"fmt"
	"math"
)

// ColorByPercentage shades from white (0) to a light red (1).
func ColorByPercentage(per float64) string {
	if math.IsNaN(per) || per < 0 {
		per = 0
	}
	if per > 1 {
		per = 1
	}
	gb := 255 - int(per*125)
	return fmt.Sprintf("#%02x%02x%02x", 255, gb, gb)
}

func ratio(value, max int64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(value) / float64(max)
}
