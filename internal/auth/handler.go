package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MsgNoAccess is shown when an account's role has no page in the console.
const MsgNoAccess = "Your account has no access to this console"

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

var loginFieldMessages = map[string]string{
	"Username": "Username is required",
	"Password": "Password is required",
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if user, ok := sess.User(); ok && sess.Authenticated() {
		if shared.KnownRole(user.Role) {
			http.Redirect(w, r, shared.LandingPath(user.Role), http.StatusSeeOther)
			return
		}
		sess.SignOut()
	}
	h.render(w, r, loginPageData{Errors: map[string]string{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs[fieldErr.Field()] = loginFieldMessages[fieldErr.Field()]
			}
		}
	}

	if len(errs) == 0 {
		identity, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			if sess == nil {
				h.logger.Error("session missing during login")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			h.sessionManager.Renew(sess)
			sess.SignIn(identity.Token, identity.User)
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Welcome back, " + identity.User.DisplayName()})
			h.logger.Info("user signed in", slog.String("username", identity.User.Username), slog.String("role", identity.User.Role))
			http.Redirect(w, r, shared.LandingPath(identity.User.Role), http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs["general"] = "Invalid credentials"
		case errors.Is(err, ErrUnknownRole):
			h.logger.Warn("sign in refused", slog.String("username", form.Username), slog.Any("error", err))
			errs["general"] = MsgNoAccess
		case errors.Is(err, ErrTokenExpired):
			errs["general"] = "The backend issued an expired session. Please try again."
		default:
			h.logger.Error("login failed", slog.Any("error", err))
			errs["general"] = shared.UserSafeMessage(err)
		}
	}

	form.Password = ""
	h.render(w, r, loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	page := view.NewPage(r, h.csrfManager, "Sign in", data)
	if err := h.templates.RenderStatus(w, status, "pages/login.html", page); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

// RequireAuth redirects anonymous visitors to the login page and attaches the
// session's bearer token to the request context for backend calls.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if !sess.Authenticated() {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		if h.service.Expired(sess.Token()) {
			sess.SignOut()
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashInfo, Message: "Your session has expired. Please sign in again."})
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		ctx := backend.WithToken(r.Context(), sess.Token())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EndSessionIfUnauthorized signs the user out and redirects to login when err
// says the backend rejected the token. It reports whether it responded.
func EndSessionIfUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SignOut()
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashInfo, Message: "Your session has expired. Please sign in again."})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	return true
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
