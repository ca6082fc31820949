package http

import (
	"encoding/json"
	"net/http"

	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

// maxBodyBytes caps request bodies; prompts are short and nothing else here
// is large.
const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst, writing a 400 and returning
// false when the body is not valid JSON for the target shape.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON.")
		return false
	}
	return true
}
