package objects

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Error is the wire form of a failure. Type mirrors the HTTP status text so
// clients can branch on it without parsing the message.
type Error struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError carries one per-field message of a rejected input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse builds the envelope for a plain type and message pair.
func NewErrorResponse(errType, message string) ErrorResponse {
	return ErrorResponse{Error: Error{Type: errType, Message: message}}
}
