package rbac

import (
	"context"
	"net/http"
)

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns "" when no role was set.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}

// Require guards a route with DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return DefaultPolicy.Require(perm)
}

// Require answers 403 unless the request's role holds perm.
func (p Policy) Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.Allows(RoleFromContext(r.Context()), perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
