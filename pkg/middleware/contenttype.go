package middleware

import (
	"mime"
	"net/http"

	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/httputil"
)

// ContentTypeJSON answers 415 when a request with a body is not
// application/json. Requests without a body pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			httputil.WriteError(w, r, apperrors.New(http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE", "content type must be application/json", apperrors.ErrInvalidInput), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
