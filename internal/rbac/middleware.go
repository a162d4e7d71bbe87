package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/companyhub/internal/shared"
)

const deniedMessage = "You do not have access to that page."

// Middleware wires role checks for HTTP handlers. It runs after auth has
// established a signed-in session.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePage lets the request through only when the user's role may open page.
// Denied users are sent back to their landing page with a flash.
func (m Middleware) RequirePage(page string) func(http.Handler) http.Handler {
	return m.require(page, func(role string) bool { return shared.CanAccess(role, page) })
}

// RequireAdmin guards admin-only views such as the archives.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.require("admin", shared.IsAdmin)
}

func (m Middleware) require(name string, allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.CurrentUser(r.Context())
			if !ok {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			if allowed(user.Role) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.String("user", user.Username),
					slog.String("role", user.Role),
					slog.String("guard", name),
					slog.String("path", r.URL.Path))
			}
			landing := shared.LandingPath(user.Role)
			if landing == r.URL.Path {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			shared.AddFlash(r.Context(), shared.FlashError, deniedMessage)
			http.Redirect(w, r, landing, http.StatusSeeOther)
		})
	}
}
