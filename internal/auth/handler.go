package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsbilling/vsbilling/internal/platform/httpx"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// Handler exposes sign-in and sign-out for the front end.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session", h.signIn)
	r.Delete("/session", h.signOut)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.SignIn(r.Context(), BearerToken(r.Header.Get("Authorization")))
	if err != nil {
		h.respondFailure(w, "sign in", err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), BearerToken(r.Header.Get("Authorization"))); err != nil {
		h.respondFailure(w, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondFailure(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, shared.ErrUnauthorized) {
		h.logger.Warn(action+" rejected", slog.Any("error", err))
	} else {
		h.logger.Error(action+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
