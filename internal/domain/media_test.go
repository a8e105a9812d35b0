package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		raw      string
		expected MediaType
		ok       bool
	}{
		{"movie", MediaTypeMovie, true},
		{"tv-series", MediaTypeTVSeries, true},
		{"series", "", false},
		{"Movie", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseMediaType(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseMediaType(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseMediaType(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("searching: %w", &UpstreamError{
		Op:     "omdb lookup",
		Method: "GET",
		URL:    "http://omdb.example.com/?t=matrix",
		Err:    cause,
	})

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatal("expected errors.As to find UpstreamError")
	}
	if !errors.Is(err, cause) {
		t.Error("expected UpstreamError to unwrap to its cause")
	}

	want := "omdb lookup [GET http://omdb.example.com/?t=matrix]: connection refused"
	if upstreamErr.Error() != want {
		t.Errorf("Error() = %q, want %q", upstreamErr.Error(), want)
	}
}

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("name has too few characters", "a")

	if err.Error() != "name has too few characters" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Value != "a" {
		t.Errorf("expected offending value 'a', got %q", err.Value)
	}
}
