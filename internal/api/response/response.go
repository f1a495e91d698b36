package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/caseylessard/hilljump-sub001/internal/api/middleware"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// Success sends a successful response with data
func Success(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Timestamp: time.Now(),
		},
	})
}

// SuccessWithMessage sends a successful response with data and message
func SuccessWithMessage(w http.ResponseWriter, r *http.Request, data interface{}, message string) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Timestamp: time.Now(),
			Message:   message,
		},
	})
}

// SuccessList sends a successful response with list data and count
func SuccessList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Timestamp: time.Now(),
			Count:     count,
		},
	})
}

// Accepted sends a 202 Accepted response for long-running work
func Accepted(w http.ResponseWriter, r *http.Request, data interface{}, message string) {
	writeJSON(w, http.StatusAccepted, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Timestamp: time.Now(),
			Message:   message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
