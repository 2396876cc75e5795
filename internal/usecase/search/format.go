package search

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the display format of created_at_formatted.
const DateLayout = "Jan 2, 2006"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units and one decimal: 1536 -> "1.5 KB".
func FormatFileSize(size int64) string {
	v := float64(size)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64) + " " + sizeUnits[unit]
}

// FormatDate renders t as "Jan 2, 2006".
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// RoundScore rounds a relevance score to 4 decimal places.
func RoundScore(score float64) float64 { return math.Round(score*1e4) / 1e4 }
