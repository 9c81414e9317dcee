package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the response body. Scores and rankings move on every
// submission, so responses are marked uncacheable.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response for a newly recorded session or score
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}
