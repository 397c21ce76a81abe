package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/3025972301/scratch-viwe/internal/httputil"
	"github.com/3025972301/scratch-viwe/internal/metrics"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Get("/auth/verify", h.Verify)
}

// Login authenticates the admin and returns a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("admin logged in", "username", req.Username)
	h.metrics.RecordAdminLogin(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Verify reports whether the presented bearer token is still valid. Unlike
// the admin routes it answers 401 with {valid:false} rather than an error
// message, which is what the SPA polls on startup.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		httputil.RespondWithJSON(w, http.StatusUnauthorized, VerifyResponse{Valid: false})
		return
	}

	claims, err := h.service.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
	if err != nil {
		httputil.RespondWithJSON(w, http.StatusUnauthorized, VerifyResponse{Valid: false})
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: claims})
}
