// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

// MediaType represents the kind of title a caller is looking for.
type MediaType string

const (
	MediaTypeMovie    MediaType = "movie"
	MediaTypeTVSeries MediaType = "tv-series"
)

// Unknown replaces year and runtime values the provider sent in a shape we can't trust.
const Unknown = "Unknown"

// ParseMediaType converts a raw route value into a MediaType.
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeTVSeries:
		return MediaType(s), true
	default:
		return "", false
	}
}

// IsValid reports whether t is one of the supported media types.
func (t MediaType) IsValid() bool {
	_, ok := ParseMediaType(string(t))
	return ok
}

// String returns the route form of the media type.
func (t MediaType) String() string {
	return string(t)
}

// Media is the normalized metadata returned to callers.
// Every field is already cleaned: missing or garbage upstream values become
// an empty string or Unknown, never a raw provider artifact.
type Media struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Year    string `json:"year"`
	Plot    string `json:"plot"`
	Runtime string `json:"runtime"`
}

// LookupRequest is a single caller lookup.
type LookupRequest struct {
	Type MediaType
	Name string
}
