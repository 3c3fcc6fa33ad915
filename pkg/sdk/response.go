package sdk

import "encoding/json"

// ErrorResponse is the uniform error envelope for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	code    int
}

// NewErrorResponse creates an error envelope carrying the HTTP status code.
// The message is what the client sees; underlying error detail stays in the
// server logs.
func NewErrorResponse(code int, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   message,
		code:    code,
	}
}

// AsGinResponse converts the response to a (status, body) pair for gin
func (r ErrorResponse) AsGinResponse() (int, any) {
	return r.code, r
}

// AsJSON serializes the response body
func (r ErrorResponse) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MessageResponse is the envelope for successful requests that only carry a
// human-readable message
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// NewSuccess creates a success envelope with a message
func NewSuccess(message string) MessageResponse {
	return MessageResponse{
		Success: true,
		Message: message,
	}
}
