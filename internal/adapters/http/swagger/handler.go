// Package swagger serves the OpenAPI description of the HTTP API.
package swagger

import (
	"net/http"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Register attaches the OpenAPI document route to mux.
//
//	GET /openapi.yaml -> embedded OpenAPI document
//
// Responses carry an ETag derived from the document, so clients holding the
// current copy get 304 Not Modified.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	etag := `"` + strconv.FormatUint(xxh3.Hash(OpenAPI), 16) + `"`
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}
