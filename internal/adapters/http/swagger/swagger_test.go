package swagger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldStartWith, "openapi: 3.0.3")
				convey.So(w.Header().Get("ETag"), convey.ShouldNotBeEmpty)

				convey.Convey("And a request with the current ETag is not modified", func() {
					again := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
					again.Header.Set("If-None-Match", w.Header().Get("ETag"))
					rec := httptest.NewRecorder()
					mux.ServeHTTP(rec, again)

					convey.So(rec.Code, convey.ShouldEqual, http.StatusNotModified)
					convey.So(rec.Body.Len(), convey.ShouldEqual, 0)
				})
			})

			convey.Convey("And the document should describe every route", func() {
				doc := string(OpenAPI)
				for _, path := range []string{
					"/v1/guilds/{guild}/actions:", "/v1/guilds/{guild}:", "/v1/participants:",
					"/v1/participants/{id}:", "/v1/standings:", "/v1/matches:", "/healthz:", "/stats:",
				} {
					convey.So(strings.Contains(doc, path), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When the mux is nil", func() {
			convey.So(func() { Register(nil) }, convey.ShouldPanic)
		})
	})
}
