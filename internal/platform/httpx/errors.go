package httpx

import (
	"errors"
	"net/http"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Unexpected errors
// collapse to a generic 500 so internals never leak to callers.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", "recurso não encontrado")
	case errors.Is(err, shared.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão inválida ou expirada")
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, "FORBIDDEN", "sem permissão para esta operação")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "email ou senha inválidos")
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno do servidor")
	}
}
