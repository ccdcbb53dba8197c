package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/httpx"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, validate: validate}
}

type registerForm struct {
	Name         string `json:"nome" validate:"required,min=2,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"senha" validate:"required,min=8,max=72"`
	CaptchaToken string `json:"captchaToken"`
}

type loginForm struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"senha" validate:"required"`
	CaptchaToken string `json:"captchaToken"`
}

type googleForm struct {
	IDToken string `json:"idToken" validate:"required"`
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/google", h.Google)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	user, err := h.service.Register(r.Context(), form.Name, form.Email, form.Password, form.CaptchaToken, r.RemoteAddr)
	if err != nil {
		h.logger.Warn("register failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.openSession(w, r, user)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password, form.CaptchaToken, r.RemoteAddr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.openSession(w, r, user)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) Google(w http.ResponseWriter, r *http.Request) {
	var form googleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	user, err := h.service.AuthenticateGoogle(r.Context(), form.IDToken)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.openSession(w, r, user)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session record", slog.Any("error", err))
		}
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "sessão encerrada"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request, user *User) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	expiresAt := time.Now().Add(h.sessions.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session record", slog.Any("error", err))
	}
}
