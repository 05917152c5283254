package middleware

import (
	"net/http"

	"donutsmp-market-api/pkg/apierror"
	"donutsmp-market-api/pkg/response"
)

// RequireAuth rejects requests that carry no Authorization header. The
// header value itself is never inspected here: it is forwarded verbatim to
// the upstream API, which owns authentication.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			response.Error(w, apierror.Unauthorized("Authorization token is missing"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
