package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/3025972301/scratch-viwe/internal/config"
	"github.com/3025972301/scratch-viwe/internal/httputil"
	"github.com/3025972301/scratch-viwe/internal/metrics"
)

// urlPrefix is the public path uploads are served under.
const urlPrefix = "/uploads"

// Subdirectories per upload kind.
const (
	thumbnailsDir = "thumbnails"
	projectsDir   = "projects"
	avatarsDir    = "avatars"
)

type Handler struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(cfg config.UploadConfig, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxUploadMB * 1024 * 1024,
		logger:   logger,
		metrics:  metrics,
	}
}

// EnsureDirs creates the uploads directory tree at startup.
func (h *Handler) EnsureDirs() error {
	for _, sub := range []string{thumbnailsDir, projectsDir, avatarsDir} {
		if err := os.MkdirAll(filepath.Join(h.dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create upload dir %s: %w", sub, err)
		}
	}
	return nil
}

func (h *Handler) RegisterRoutes(admin chi.Router) {
	admin.Post("/upload/thumbnail", h.UploadThumbnail)
	admin.Post("/upload/sb3", h.UploadSb3)
	admin.Post("/upload/avatar", h.UploadAvatar)
	admin.Delete("/upload/file", h.DeleteFile)
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func (h *Handler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "thumbnail", thumbnailsDir, validateImage)
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "avatar", avatarsDir, validateImage)
}

func (h *Handler) UploadSb3(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "sb3File", projectsDir, validateSb3)
}

// validateImage allows anything with an image/* content type.
func validateImage(header *multipart.FileHeader) error {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return errors.New("only image files are allowed")
	}
	return nil
}

// validateSb3 allows only Scratch project archives, by extension.
func validateSb3(header *multipart.FileHeader) error {
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".sb3") {
		return errors.New("only .sb3 files are allowed")
	}
	return nil
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, field, subdir string, validate func(*multipart.FileHeader) error) {
	// Reject oversized bodies before buffering the whole upload
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.RespondWithError(w, http.StatusBadRequest, "file too large")
			return
		}
		httputil.RespondWithError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if err := validate(header); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := generateFilename(field, header.Filename)
	dst, err := os.Create(filepath.Join(h.dir, subdir, filename))
	if err != nil {
		h.logger.Error("failed to create upload file", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(file); err != nil {
		h.logger.Error("failed to write upload file", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("file uploaded", "field", field, "name", filename, "size", header.Size)
	h.metrics.RecordFileUploaded(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		URL:     fmt.Sprintf("%s/%s/%s", urlPrefix, subdir, filename),
	})
}

// generateFilename combines a timestamp with a random suffix so concurrent
// uploads of the same file cannot collide. The original extension survives.
func generateFilename(field, original string) string {
	return fmt.Sprintf("%s-%d-%d%s",
		field,
		time.Now().UnixMilli(),
		rand.IntN(1_000_000_000),
		filepath.Ext(original),
	)
}

type deleteRequest struct {
	URL string `json:"url"`
}

// DeleteFile removes a previously uploaded file. The path must resolve
// inside the uploads root; anything else is rejected.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !strings.HasPrefix(req.URL, urlPrefix+"/") {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid file path")
		return
	}

	rel := filepath.Clean(strings.TrimPrefix(req.URL, urlPrefix+"/"))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid file path")
		return
	}

	path := filepath.Join(h.dir, rel)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			httputil.RespondWithError(w, http.StatusNotFound, "file not found")
			return
		}
		h.logger.Error("failed to delete file", "path", path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("file deleted", "path", path)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
