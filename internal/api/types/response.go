// internal/api/types/response.go
package types

// ErrorResponse is the uniform error payload returned by the API.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ListResponse wraps a collection result for display purposes.
// T is the record type contained in Data.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}
