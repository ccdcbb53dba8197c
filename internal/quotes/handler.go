package quotes

import (
	"fmt"
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
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Get("/{id}/pdf", h.ExportPDF)
	r.Post("/{id}/email", h.SendEmail)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	req := ListRequest{
		Scope:   scope,
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		if !ValidStatus(status) {
			httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "status inválido")
			return
		}
		req.Status = &status
	}
	if raw := r.URL.Query().Get("clienteId"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "clienteId inválido")
			return
		}
		req.ClientID = &clientID
	}

	items, pagination, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orcamentos": items, "pagination": pagination})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Create(r.Context(), scope, form)
	if err != nil {
		h.logger.Error("create quote", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
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
	quote, err := h.service.Update(r.Context(), scope, id, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form StatusForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	quote, err := h.service.UpdateStatus(r.Context(), scope, id, form.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Delete moves the quote to the trash; hard removal only happens via
// the lixeira endpoints.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.trash.SoftDelete(r.Context(), scope, trash.KindOrcamento, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "orçamento movido para a lixeira"})
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	pdf, quote, err := h.service.ExportPDF(r.Context(), scope, id)
	if err != nil {
		h.logger.Error("export quote pdf", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="orcamento-%d.pdf"`, quote.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form EmailForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := h.service.SendEmail(r.Context(), scope, id, form); err != nil {
		h.logger.Error("send quote email", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"message": "envio do orçamento agendado"})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id inválido")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (QuoteForm, bool) {
	var form QuoteForm
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
