package dto

import (
	"time"

	"media-search-service/internal/app/service"
	"media-search-service/internal/domain"
)

// MediaResponse is the body of a successful lookup.
type MediaResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Year    string `json:"year"`
	Plot    string `json:"plot"`
	Runtime string `json:"runtime"`
}

// FromDomainMedia converts domain.Media to MediaResponse.
func FromDomainMedia(m *domain.Media) MediaResponse {
	return MediaResponse{
		ID:      m.ID,
		Name:    m.Name,
		Year:    m.Year,
		Plot:    m.Plot,
		Runtime: m.Runtime,
	}
}

// WarmResultResponse is the outcome of warming one title.
type WarmResultResponse struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Outcome  string `json:"outcome"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// WarmupResponse is the body of a manual warm-up run.
type WarmupResponse struct {
	Results []WarmResultResponse `json:"results"`
	Summary WarmupSummary        `json:"summary"`
}

// WarmupSummary counts warm-up outcomes.
type WarmupSummary struct {
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Failed   int `json:"failed"`
}

// FromWarmResults converts service.WarmResult slice to WarmupResponse.
func FromWarmResults(results []service.WarmResult) WarmupResponse {
	resp := WarmupResponse{
		Results: make([]WarmResultResponse, len(results)),
	}

	for i, r := range results {
		errMsg := ""
		switch {
		case r.Error != nil:
			errMsg = r.Error.Error()
			resp.Summary.Failed++
		case r.Outcome == "not_found":
			resp.Summary.NotFound++
		default:
			resp.Summary.Found++
		}

		resp.Results[i] = WarmResultResponse{
			Type:     r.Type.String(),
			Name:     r.Name,
			Outcome:  r.Outcome,
			Duration: r.Duration.Round(time.Millisecond).String(),
			Error:    errMsg,
		}
	}

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
