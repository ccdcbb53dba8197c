package trash

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/httpx"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type lifecycleRequest struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Force bool   `json:"force"`
}

// MountRoutes registers the lixeira endpoints under a workspace scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Post("/restore", h.Restore)
	r.Post("/delete-permanently", h.DeletePermanently)
	r.Post("/empty", h.Empty)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	search := r.URL.Query().Get("search")
	kindFilter := r.URL.Query().Get("type")

	items, err := h.service.List(r.Context(), scope, search, kindFilter)
	if err != nil {
		h.logger.Error("list trash", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), scope)
	if err != nil {
		h.logger.Error("trash stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	req, kind, ok := h.decodeLifecycle(w, r)
	if !ok {
		return
	}
	if err := h.service.Restore(r.Context(), scope, kind, req.ID); err != nil {
		h.logError("restore trash item", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "item restaurado"})
}

func (h *Handler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	req, kind, ok := h.decodeLifecycle(w, r)
	if !ok {
		return
	}
	err := h.service.DeletePermanently(r.Context(), scope, kind, req.ID, req.Force)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			httpx.ErrorWithDetails(w, http.StatusBadRequest, conflict.Code, conflict.Message, conflict.Details)
			return
		}
		h.logError("delete permanently", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "item excluído permanentemente"})
}

func (h *Handler) Empty(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	count, err := h.service.EmptyTrash(r.Context(), scope)
	if err != nil {
		h.logError("empty trash", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":      "lixeira esvaziada",
		"deletedCount": count,
	})
}

func (h *Handler) decodeLifecycle(w http.ResponseWriter, r *http.Request) (lifecycleRequest, Kind, bool) {
	var req lifecycleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return req, "", false
	}
	kind, err := ParseKind(req.Type)
	if err != nil {
		httpx.RespondError(w, err)
		return req, "", false
	}
	if req.ID <= 0 {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id inválido")
		return req, "", false
	}
	return req, kind, true
}

func (h *Handler) logError(msg string, err error) {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrValidation) {
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
}
