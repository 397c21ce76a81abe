package project

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/3025972301/scratch-viwe/internal/httputil"
	"github.com/3025972301/scratch-viwe/internal/metrics"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes mounts the read routes and the anonymous visitor actions
// (view, like) on the public router and the mutating routes on the
// admin-gated one.
func (h *Handler) RegisterRoutes(public, admin chi.Router) {
	public.Get("/projects", h.GetAllProjects)
	public.Get("/projects/{id}", h.GetProject)
	public.Get("/projects/student/{studentId}", h.GetStudentProjects)
	public.Post("/projects/{id}/view", h.IncrementView)
	public.Post("/projects/{id}/like", h.ToggleLike)
	admin.Post("/projects", h.CreateProject)
	admin.Put("/projects/{id}", h.UpdateProject)
	admin.Delete("/projects/{id}", h.DeleteProject)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "studentId and title are required")
		return
	}

	h.logger.Info("creating project", "title", req.Title, "student_id", int(req.StudentID))
	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordProjectCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created.ToResponse())
}

func (h *Handler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, ToResponses(projects))
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	project, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, project.ToResponse())
}

// GetStudentProjects lists a student's projects. A student with no projects
// yields an empty array, not a 404.
func (h *Handler) GetStudentProjects(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "studentId"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	projects, err := h.service.GetByStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, ToResponses(projects))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("updating project", "id", id)
	updated, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated.ToResponse())
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	h.logger.Info("deleting project", "id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// IncrementView is public: anonymous visitors count. Dedup is the client's
// problem (session-scoped tracking); the server just counts.
func (h *Handler) IncrementView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	views, err := h.service.IncrementViews(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordProjectViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, CounterResponse{Success: true, Views: &views})
}

// ToggleLike is public; like-state lives in the visitor's browser storage,
// the server only keeps the aggregate count.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	// A missing or empty body counts as a like
	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	likes, err := h.service.ToggleLike(r.Context(), id, req.Unlike)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordProjectLiked(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, CounterResponse{Success: true, Likes: &likes})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrProjectNotFound) {
		httputil.RespondWithError(w, http.StatusNotFound, "project not found")
		return
	}
	if errors.Is(err, ErrStudentMissing) || errors.Is(err, ErrInvalidInput) {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
}
