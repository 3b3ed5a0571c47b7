package odoo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FloatToTimeString renders an Odoo float_time value as "HH:MM" (8.5 -> "08:30").
// Minutes are rounded; a rounded value of 60 carries into the hour.
func FloatToTimeString(value float64) string {
	if value < 0 || math.IsNaN(value) {
		return "00:00"
	}
	hours := math.Floor(value)
	minutes := math.Round((value - hours) * 60)
	if minutes >= 60 {
		hours++
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", int(hours), int(minutes))
}

// TimeStringToFloat parses "HH:MM" into an Odoo float_time value ("14:45" -> 14.75).
// Malformed parts count as zero.
func TimeStringToFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parts := strings.SplitN(value, ":", 2)
	hours, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	minutes := 0
	if len(parts) > 1 {
		minutes, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return float64(hours) + float64(minutes)/60
}

// FormatTimeRange renders "HH:MM - HH:MM".
func FormatTimeRange(start, end float64) string {
	return FloatToTimeString(start) + " - " + FloatToTimeString(end)
}

// DurationMinutes returns the rounded number of minutes between two float_time values.
func DurationMinutes(start, end float64) int {
	return int(math.Round((end - start) * 60))
}

// TimesOverlap reports whether [start1,end1) and [start2,end2) intersect.
func TimesOverlap(start1, end1, start2, end2 float64) bool {
	return start1 < end2 && end1 > start2
}
