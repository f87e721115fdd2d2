package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// UserLoader resolves a session's user id.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

type Middleware struct {
	sessions *Sessions
	users    UserLoader
	logger   logging.Logger
}

func NewMiddleware(sessions *Sessions, users UserLoader, logger logging.Logger) *Middleware {
	return &Middleware{sessions: sessions, users: users, logger: logger.With("module", "auth")}
}

// CurrentUser returns the logged-in user of r. A session whose user no
// longer exists counts as logged out.
func (m *Middleware) CurrentUser(r *http.Request) (*models.User, error) {
	id, err := m.sessions.UserID(r)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	u, err := m.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return u, nil
}

// RequireAuth redirects to the login page unless the request carries a
// valid session, and stores the user in the request context otherwise.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.CurrentUser(r)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				m.sessions.Logout(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			m.logger.Error(r.Context(), "session user lookup failed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
