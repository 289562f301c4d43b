package middleware

import (
	"net/http"
	"strconv"

	"forever-us/pkg/common"
)

// EditMode reads the ?edit= query flag into the request context. It only
// tells the page which controls to show; it does not guard any route.
func EditMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enabled, _ := strconv.ParseBool(r.URL.Query().Get("edit"))
		next.ServeHTTP(w, r.WithContext(common.WithEditMode(r.Context(), enabled)))
	})
}
