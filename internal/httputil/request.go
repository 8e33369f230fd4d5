package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes leaves room for a few drawn signatures per request
const maxBodyBytes = 4 << 20

// ErrEmptyBody is returned by ParseJSON when the request has no body
var ErrEmptyBody = errors.New("request body is empty")

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are allowed; contract variables are free-form.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ParseOptionalJSON decodes the body when one is present; an empty body leaves dest unchanged
func ParseOptionalJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	if err := ParseJSON(w, r, dest); err != nil && !errors.Is(err, ErrEmptyBody) {
		return err
	}
	return nil
}
