package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Age band parameters: fixed-width 5-unit right-open intervals over [0,100).
const (
	bandWidth = 5
	bandMax   = 100
)

// DeriveAgeBand returns the age band label for an age, e.g. 27 -> "25-29".
// Ages outside [0,100) have no band and return the empty string; such
// records stay in the table but contribute no age-band axis entry.
func DeriveAgeBand(age float64) string {
	if age < 0 || age >= bandMax {
		return ""
	}
	lower := (int(age) / bandWidth) * bandWidth
	return fmt.Sprintf("%d-%d", lower, lower+bandWidth-1)
}

// AllBands returns every age band label in order: "0-4" through "95-99".
func AllBands() []string {
	bands := make([]string, 0, bandMax/bandWidth)
	for lower := 0; lower < bandMax; lower += bandWidth {
		bands = append(bands, fmt.Sprintf("%d-%d", lower, lower+bandWidth-1))
	}
	return bands
}

// BandLowerBound returns the numeric lower bound of a band label, used for
// ordering the column axis. Unparseable labels sort last.
func BandLowerBound(label string) int {
	idx := strings.IndexByte(label, '-')
	if idx <= 0 {
		return bandMax
	}
	lower, err := strconv.Atoi(label[:idx])
	if err != nil {
		return bandMax
	}
	return lower
}

// IsValidBand reports whether the label names one of the fixed bands.
func IsValidBand(label string) bool {
	lower := BandLowerBound(label)
	if lower < 0 || lower >= bandMax || lower%bandWidth != 0 {
		return false
	}
	return label == fmt.Sprintf("%d-%d", lower, lower+bandWidth-1)
}
