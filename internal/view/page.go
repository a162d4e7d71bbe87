package view

import (
	"net/http"

	"github.com/odyssey-erp/companyhub/internal/shared"
)

// NewPage assembles TemplateData for r: the CSRF token, the pending flash and
// the navigation visible to the signed-in user.
func NewPage(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess == nil {
		return td
	}
	if csrf != nil {
		td.CSRFToken, _ = csrf.EnsureToken(r.Context(), sess)
	}
	td.Flash = sess.PopFlash()
	if user, ok := sess.User(); ok {
		td.User = &user
		td.Nav = shared.Navigation(user.Role)
	}
	return td
}
