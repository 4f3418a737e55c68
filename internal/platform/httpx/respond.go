package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload written for failed requests.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageBody acknowledges a write without echoing the record.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error payload titled by the status text.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Message sends a message-only payload.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
