package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes caps request bodies, gameplay_data included
const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewInvalidRequestError("request body too large")
		}
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
