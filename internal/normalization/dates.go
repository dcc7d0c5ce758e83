package normalization

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical transaction date format.
const DateLayout = "2006-01-02"

// dateSentinels are placeholder values sources use for a missing date.
var dateSentinels = []string{"--", "N/A", "null", "None"}

// IsBlankDate reports whether s is empty or a placeholder.
func IsBlankDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, v := range dateSentinels {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// NormalizeDate rewrites M/D/YYYY into YYYY-MM-DD.
// Blank and placeholder values become "". Anything else is returned trimmed
// and otherwise unchanged so that lexical comparison still works for ISO input.
func NormalizeDate(s string) string {
	if IsBlankDate(s) {
		return ""
	}
	s = strings.TrimSpace(s)
	if iso, ok := parseSlashDate(s); ok {
		return iso
	}
	return s
}

func parseSlashDate(s string) (string, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return "", false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// WindowCutoff returns the inclusive lower bound of a trailing window of the
// given number of days ending at runDate, formatted as YYYY-MM-DD.
// Calendar arithmetic is done in runDate's location.
func WindowCutoff(runDate time.Time, days int) string {
	y, m, d := runDate.Date()
	return time.Date(y, m, d-days, 0, 0, 0, 0, runDate.Location()).Format(DateLayout)
}

// InWindow reports whether date is lexically at or after cutoff.
// Blank dates are always outside the window.
func InWindow(date, cutoff string) bool {
	if date == "" {
		return false
	}
	return date >= cutoff
}
