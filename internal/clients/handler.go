package clients

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/httpx"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
	"github.com/sky-orcamentos/sky-orcamentos/internal/trash"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	trash    *trash.Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, trashService *trash.Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, trash: trashService, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	items, pagination, err := h.service.List(r.Context(), ListRequest{
		Scope:   scope,
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clientes": items, "pagination": pagination})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	client, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	client, err := h.service.Create(r.Context(), scope, form)
	if err != nil {
		h.logger.Error("create client", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	client, err := h.service.Update(r.Context(), scope, id, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete moves the client to the trash; hard removal only happens via
// the lixeira endpoints.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.trash.SoftDelete(r.Context(), scope, trash.KindCliente, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "cliente movido para a lixeira"})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id inválido")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (ClientForm, bool) {
	var form ClientForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return form, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return form, false
	}
	return form, true
}
