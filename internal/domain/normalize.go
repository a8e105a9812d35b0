package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// firstFilmYear is the year of the earliest surviving motion picture.
	firstFilmYear = 1888

	// maxYearsAhead bounds placeholder years the provider uses for titles still in production.
	maxYearsAhead = 20

	notAvailable = "N/A"
)

// seriesYearsPattern matches a running span such as "1998–2005" (en dash).
var seriesYearsPattern = regexp.MustCompile(`^(19|20)[0-9]{2}–(19|20)[0-9]{2}$`)

// NormalizeRuntime converts a provider runtime like "136 min" into display form.
// Up to 59 minutes stays "<n> min", longer runtimes become hours with one
// decimal ("2.3h"). Anything else is Unknown.
func NormalizeRuntime(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return Unknown
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || parts[1] != "min" {
		return Unknown
	}

	digits := strings.NewReplacer(",", "", ".", "").Replace(parts[0])
	minutes, err := strconv.Atoi(digits)
	if err != nil || minutes <= 0 {
		return Unknown
	}

	if minutes <= 59 {
		return strconv.Itoa(minutes) + " min"
	}

	hours := math.Round(float64(minutes)/60*10) / 10

	return strconv.FormatFloat(hours, 'f', -1, 64) + "h"
}

// NormalizeYear validates a provider year against the current calendar year.
func NormalizeYear(raw string) string {
	return normalizeYear(raw, time.Now().Year())
}

func normalizeYear(raw string, currentYear int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}

	if seriesYearsPattern.MatchString(raw) {
		return raw
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return Unknown
	}
	if year < firstFilmYear || year > currentYear+maxYearsAhead {
		return Unknown
	}

	return strconv.Itoa(year)
}

// CleanPlaceholder trims s and blanks out the provider's "N/A" marker.
func CleanPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}

	return s
}
