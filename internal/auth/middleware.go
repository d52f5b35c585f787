package auth

import (
	"net/http"

	"github.com/vsbilling/vsbilling/internal/platform/httpx"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// RequireUser rejects requests without a valid bearer token and stores the
// caller's principal in the request context.
func RequireUser(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := svc.Authenticate(r.Context(), BearerToken(r.Header.Get("Authorization")))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="billing"`)
				httpx.RespondError(w, err)
				return
			}
			principal := token.Principal
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), &principal)))
		})
	}
}
