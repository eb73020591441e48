package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudcrate/filegate/pkg/principal"
)

type principalKey struct{}

// WithPrincipal attaches pr to ctx.
func WithPrincipal(ctx context.Context, pr principal.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, pr)
}

// PrincipalFromContext returns the request's acting principal, defaulting
// to Anonymous when none was attached (unauthenticated public-share access
// is a legitimate request shape, not a bug).
func PrincipalFromContext(ctx context.Context) principal.Principal {
	pr, ok := ctx.Value(principalKey{}).(principal.Principal)
	if !ok {
		return principal.Anonymous()
	}
	return pr
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	return ""
}

// Authenticate builds middleware that resolves a bearer token into a
// Principal via jwt and attaches it to the request context. A missing or
// invalid token falls through as Anonymous rather than rejecting the
// request outright; individual handlers enforce their own required
// authority through FileSystem/ShareRecordService, which already reject
// Anonymous for anything beyond public-share access.
func Authenticate(jwt *principal.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pr := principal.Anonymous()
			if jwt != nil {
				if tok := bearerToken(r); tok != "" {
					if resolved, err := jwt.Authenticate(tok); err == nil {
						pr = resolved
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), pr)))
		})
	}
}
