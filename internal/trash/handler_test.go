package trash

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

func newTestRouter(repo Repository) chi.Router {
	logger := slog.New(slog.NewTextHandler(testWriter{}, nil))
	handler := NewHandler(logger, NewService(repo, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithScope(req.Context(), testScope())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/lixeira", handler.MountRoutes)
	return r
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestHandlerListReturnsItems(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: time.Now()}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lixeira?search=joao", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "João", body.Items[0].Name)
	assert.Equal(t, KindCliente, body.Items[0].Kind)
}

func TestHandlerListRejectsUnknownType(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lixeira?type=fornecedores", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDeletePermanentlyConflictPayload(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: time.Now()}
	repo.orcamentos[2] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1 - João"}, clienteID: int64Ptr(1)}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lixeira/delete-permanently",
		strings.NewReader(`{"id":1,"type":"cliente"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error   string         `json:"error"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeClientHasBudgets, body.Error)
	assert.NotEmpty(t, body.Message)
	assert.EqualValues(t, 1, body.Details["totalBudgets"])
	assert.EqualValues(t, 1, body.Details["activeBudgets"])
}

func TestHandlerDeletePermanentlyWithForce(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: time.Now()}
	repo.orcamentos[2] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1 - João"}, clienteID: int64Ptr(1)}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lixeira/delete-permanently",
		strings.NewReader(`{"id":1,"type":"cliente","force":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.clientes)
	assert.Empty(t, repo.orcamentos)
}

func TestHandlerRestoreUnknownIDIs404(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lixeira/restore",
		strings.NewReader(`{"id":5,"type":"produto"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerEmptyReportsCount(t *testing.T) {
	repo := newFakeRepo()
	repo.orcamentos[1] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1", trashed: true, deletedAt: time.Now()}}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lixeira/empty", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		DeletedCount int `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.DeletedCount)
}

func TestHandlerStats(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: time.Now()}
	repo.produtos[2] = &fakeProduto{fakeRow: fakeRow{name: "Tomada", trashed: true, deletedAt: time.Now()}}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lixeira/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.Clientes)
	assert.Equal(t, 1, stats.Produtos)
}
