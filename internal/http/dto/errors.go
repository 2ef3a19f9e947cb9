package dto

// Stable error codes returned in ErrorResponse.Code.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeInternal          = "internal_error"
)

type ErrorDetail struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code"`
	RequestID string        `json:"request_id,omitempty"`
	Details   []ErrorDetail `json:"details,omitempty"`
}
