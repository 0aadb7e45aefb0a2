package api

import "encoding/json"

type (
	// GraphQLRequest is a single query sent to the remote services
	GraphQLRequest struct {
		Variables map[string]any `json:"variables,omitempty"`
		Query     string         `json:"query"`
	}

	// GraphQLResponse is the envelope returned for a GraphQLRequest
	GraphQLResponse struct {
		Data   json.RawMessage `json:"data,omitempty"`
		Errors []GraphQLError  `json:"errors,omitempty"`
	}

	// GraphQLError is a single error reported by the remote services
	GraphQLError struct {
		Message string `json:"message"`
	}

	// AttemptsListResponse contains the journaled payment attempts
	AttemptsListResponse struct {
		Attempts []*AttemptRecord `json:"attempts"`
		Count    int              `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
