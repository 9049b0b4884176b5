package middleware

import (
	"net/http"

	"github.com/SREYASABU/integration-platform/userctx"
)

// Identify extracts the user/org form fields into the request context so
// downstream handlers and the audit logger know who is acting. There is no
// authentication here: the backend trusts its frontend, which supplies the
// identifiers with every call.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ParseForm is idempotent; handlers parsing again get cached values.
		if err := r.ParseForm(); err == nil {
			ctx := r.Context()
			if userID := r.FormValue("user_id"); userID != "" {
				ctx = userctx.SetUserID(ctx, userID)
			}
			if orgID := r.FormValue("org_id"); orgID != "" {
				ctx = userctx.SetOrgID(ctx, orgID)
			}
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}
