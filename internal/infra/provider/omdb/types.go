package omdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"media-search-service/internal/domain"
)

// Classification failures. They are wrapped into domain.UpstreamError by the client.
var (
	ErrInvalidShape  = errors.New("invalid response shape")
	ErrProviderError = errors.New("provider reported an error")
	ErrMissingTitle  = errors.New("response has no title")
)

// notFoundSuffix is how the provider words "no match" inside its generic
// Error field ("Movie not found!", "Series not found!").
// If the wording changes, misses will surface as upstream errors.
const notFoundSuffix = "not found!"

// Response represents the JSON response from the provider.
// Every field is optional and tolerant of type drift, see Field.
type Response struct {
	Response Field `json:"Response"`
	Error    Field `json:"Error"`
	Title    Field `json:"Title"`
	Year     Field `json:"Year"`
	Plot     Field `json:"Plot"`
	Runtime  Field `json:"Runtime"`
	IMDbID   Field `json:"imdbID"`
}

// Field is a provider value decoded as text. Strings are kept as-is,
// numbers and booleans keep their literal form, null and objects become empty.
type Field string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
	case '{', '[':
		*f = ""
	default:
		*f = Field(data)
	}

	return nil
}

// String returns the raw text.
func (f Field) String() string {
	return string(f)
}

// IsBlank reports whether the field is empty or whitespace.
func (f Field) IsBlank() bool {
	return strings.TrimSpace(string(f)) == ""
}

// ToDomain classifies the response. It returns the normalized media on
// success, (nil, nil) when the provider has no such title, or a
// classification error for anything it can't trust.
func (r *Response) ToDomain() (*domain.Media, error) {
	if r.Response.IsBlank() {
		return nil, ErrInvalidShape
	}

	if !r.Error.IsBlank() {
		msg := strings.ToLower(strings.TrimSpace(r.Error.String()))
		if strings.HasSuffix(msg, notFoundSuffix) {
			return nil, nil
		}

		return nil, errors.Join(ErrProviderError, errors.New(r.Error.String()))
	}

	if r.Title.IsBlank() {
		return nil, ErrMissingTitle
	}

	if !strings.EqualFold(strings.TrimSpace(r.Response.String()), "true") {
		return nil, nil
	}

	return &domain.Media{
		ID:      r.IMDbID.String(),
		Name:    domain.CleanPlaceholder(r.Title.String()),
		Year:    domain.NormalizeYear(r.Year.String()),
		Plot:    domain.CleanPlaceholder(r.Plot.String()),
		Runtime: domain.NormalizeRuntime(r.Runtime.String()),
	}, nil
}
