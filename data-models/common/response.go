package common

// APIResponse is the standard API envelope.
type APIResponse[T any] struct {
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Message string `json:"message" doc:"Human-readable message"`
	Data    *T     `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error detail"`
}

// SuccessResponse wraps a successful payload.
func SuccessResponse[T any](message string, data *T) *APIResponse[T] {
	return &APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorResponse wraps a failure.
func ErrorResponse[T any](message string, errorMsg string) *APIResponse[T] {
	return &APIResponse[T]{
		Success: false,
		Message: message,
		Error:   errorMsg,
	}
}
