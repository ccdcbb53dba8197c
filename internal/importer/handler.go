package importer

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Upload)
	r.Get("/{id}", h.Status)
}

// Upload accepts a multipart form with the CSV under "file" and the
// import kind under "tipo".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "formulário multipart inválido")
		return
	}
	kind, err := ParseKind(r.FormValue("tipo"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "arquivo CSV ausente")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "falha ao ler o arquivo")
		return
	}

	job, err := h.service.Upload(r.Context(), scope, kind, header.Filename, payload)
	if err != nil {
		h.logger.Error("upload import", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, job)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	scope, _ := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "id inválido")
		return
	}
	job, err := h.service.Status(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}
