// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"net/url"

	"media-search-service/internal/domain"
)

// LookupRequest holds the route parameters of a title lookup.
// Name is checked by the search service, which owns the name rules.
type LookupRequest struct {
	Type string `params:"type" validate:"required,oneof=movie tv-series"`
	Name string `params:"name"`
}

// NewLookupRequest builds a LookupRequest from raw route values, decoding
// percent-escapes in the name.
func NewLookupRequest(rawType, rawName string) LookupRequest {
	name, err := url.PathUnescape(rawName)
	if err != nil {
		name = rawName
	}

	return LookupRequest{Type: rawType, Name: name}
}

// MediaType returns the validated media type.
func (r *LookupRequest) MediaType() domain.MediaType {
	return domain.MediaType(r.Type)
}
