package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

const contentTypeJSON = "application/json"

// ExtractErrorMessage returns the message a failed downstream response carries.
// The "error" field of a JSON object body wins; otherwise the status text is used.
func ExtractErrorMessage(body []byte, statusCode int) string {
	if len(body) > 0 {
		var envelope struct {
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
			var message string
			if err := json.Unmarshal(envelope.Error, &message); err == nil {
				if message != "" {
					return message
				}
			} else if raw := strings.TrimSpace(string(envelope.Error)); raw != "null" {
				return raw
			}
		}
	}

	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// WriteJSON encodes v as the response body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes a {"error": message} body with the given status code
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{"error": message})
}

// WritePayload writes a stored body with its original content type and status 200
func WritePayload(w http.ResponseWriter, contentType string, body []byte) error {
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}
