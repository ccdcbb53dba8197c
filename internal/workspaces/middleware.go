package workspaces

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/httpx"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Middleware resolves workspace membership for scoped routes.
type Middleware struct {
	Repo   Repository
	Logger *slog.Logger
}

// RequireMember validates the session user against the {workspaceID} URL
// parameter and injects a shared.Scope into the request context.
func (m Middleware) RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := CurrentUserID(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		workspaceID, err := strconv.ParseInt(chi.URLParam(r, "workspaceID"), 10, 64)
		if err != nil || workspaceID <= 0 {
			httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "workspace inválido")
			return
		}
		level, err := m.Repo.MemberLevel(r.Context(), workspaceID, userID)
		if err != nil {
			if errors.Is(err, shared.ErrForbidden) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("resolve member level", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		scope := shared.Scope{WorkspaceID: workspaceID, UserID: userID, Level: level}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithScope(r.Context(), scope)))
	})
}

// RequireLevel gates a route behind a minimum permission level. It must
// run after RequireMember.
func (m Middleware) RequireLevel(level int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := shared.ScopeFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if scope.Level < level {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests without an authenticated session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUserID(r); !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUserID extracts the authenticated user from the session.
func CurrentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
