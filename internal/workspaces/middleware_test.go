package workspaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type levelRepo struct {
	Repository
	levels map[int64]map[int64]int // workspace -> user -> level
}

func (r levelRepo) MemberLevel(ctx context.Context, workspaceID, userID int64) (int, error) {
	if members, ok := r.levels[workspaceID]; ok {
		if level, ok := members[userID]; ok {
			return level, nil
		}
	}
	return 0, shared.ErrForbidden
}

func sessionRequest(target string, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess := &shared.Session{}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func scopedRouter(mw Middleware, minLevel int, capture *shared.Scope) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/workspace/{workspaceID}", func(sr chi.Router) {
		sr.Use(mw.RequireMember)
		if minLevel > 0 {
			sr.Use(mw.RequireLevel(minLevel))
		}
		sr.Get("/", func(w http.ResponseWriter, req *http.Request) {
			if scope, ok := shared.ScopeFromContext(req.Context()); ok && capture != nil {
				*capture = scope
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func TestRequireMemberInjectsScope(t *testing.T) {
	repo := levelRepo{levels: map[int64]map[int64]int{7: {42: shared.LevelEditor}}}
	var captured shared.Scope
	router := scopedRouter(Middleware{Repo: repo}, 0, &captured)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest("/api/workspace/7/", "42"))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(7), captured.WorkspaceID)
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, shared.LevelEditor, captured.Level)
	assert.True(t, captured.CanEdit())
	assert.False(t, captured.CanAdminister())
}

func TestRequireMemberRejectsNonMembers(t *testing.T) {
	repo := levelRepo{levels: map[int64]map[int64]int{7: {42: shared.LevelOwner}}}
	router := scopedRouter(Middleware{Repo: repo}, 0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest("/api/workspace/7/", "99"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireMemberRejectsAnonymous(t *testing.T) {
	router := scopedRouter(Middleware{Repo: levelRepo{}}, 0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspace/7/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireMemberRejectsBadWorkspaceID(t *testing.T) {
	router := scopedRouter(Middleware{Repo: levelRepo{}}, 0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest("/api/workspace/abc/", "42"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireLevelBlocksViewers(t *testing.T) {
	repo := levelRepo{levels: map[int64]map[int64]int{7: {42: shared.LevelViewer}}}
	router := scopedRouter(Middleware{Repo: repo}, shared.LevelEditor, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest("/api/workspace/7/", "42"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
