package upload_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3025972301/scratch-viwe/internal/config"
	"github.com/3025972301/scratch-viwe/internal/metrics"
	"github.com/3025972301/scratch-viwe/internal/upload"
)

func setup(t *testing.T) (chi.Router, string) {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := upload.NewHandler(config.UploadConfig{Dir: dir, MaxUploadMB: 1}, logger, metrics.NewMock())
	require.NoError(t, handler.EnsureDirs())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, dir
}

// multipartBody builds a single-file multipart form with an explicit part
// content type, the way browsers send uploads.
func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		`form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func postFile(t *testing.T, router chi.Router, path, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, formContentType := multipartBody(t, field, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formContentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func TestUploadSb3(t *testing.T) {
	router, dir := setup(t)

	t.Run("AcceptsSb3", func(t *testing.T) {
		w := postFile(t, router, "/upload/sb3", "sb3File", "x.sb3", "application/octet-stream", []byte("sb3 data"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp uploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.True(t, strings.HasPrefix(resp.URL, "/uploads/projects/"), resp.URL)
		assert.True(t, strings.HasSuffix(resp.URL, ".sb3"), resp.URL)

		// The file actually landed on disk
		stored := filepath.Join(dir, "projects", filepath.Base(resp.URL))
		data, err := os.ReadFile(stored)
		require.NoError(t, err)
		assert.Equal(t, []byte("sb3 data"), data)
	})

	t.Run("RejectsWrongExtension", func(t *testing.T) {
		w := postFile(t, router, "/upload/sb3", "sb3File", "x.txt", "text/plain", []byte("nope"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsOversizedFile", func(t *testing.T) {
		// 2 MB body against the 1 MB cap configured in setup
		w := postFile(t, router, "/upload/sb3", "sb3File", "big.sb3", "application/octet-stream",
			bytes.Repeat([]byte("x"), 2<<20))
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "file too large", resp["error"])
	})

	t.Run("RejectsMissingFile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload/sb3", strings.NewReader(""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadImages(t *testing.T) {
	router, _ := setup(t)

	t.Run("ThumbnailAcceptsImage", func(t *testing.T) {
		w := postFile(t, router, "/upload/thumbnail", "thumbnail", "cat.png", "image/png", []byte("png data"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp uploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, strings.HasPrefix(resp.URL, "/uploads/thumbnails/"), resp.URL)
	})

	t.Run("AvatarAcceptsImage", func(t *testing.T) {
		w := postFile(t, router, "/upload/avatar", "avatar", "me.jpg", "image/jpeg", []byte("jpg data"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp uploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, strings.HasPrefix(resp.URL, "/uploads/avatars/"), resp.URL)
	})

	t.Run("RejectsNonImage", func(t *testing.T) {
		w := postFile(t, router, "/upload/thumbnail", "thumbnail", "doc.pdf", "application/pdf", []byte("pdf"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UniqueFilenames", func(t *testing.T) {
		first := postFile(t, router, "/upload/thumbnail", "thumbnail", "cat.png", "image/png", []byte("a"))
		second := postFile(t, router, "/upload/thumbnail", "thumbnail", "cat.png", "image/png", []byte("b"))
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)

		var r1, r2 uploadResponse
		require.NoError(t, json.NewDecoder(first.Body).Decode(&r1))
		require.NoError(t, json.NewDecoder(second.Body).Decode(&r2))
		assert.NotEqual(t, r1.URL, r2.URL)
	})
}

func TestDeleteFile(t *testing.T) {
	router, dir := setup(t)

	deleteFile := func(url string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"url": url})
		req := httptest.NewRequest(http.MethodDelete, "/upload/file", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("DeletesExisting", func(t *testing.T) {
		path := filepath.Join(dir, "thumbnails", "old.png")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		w := deleteFile("/uploads/thumbnails/old.png")
		require.Equal(t, http.StatusOK, w.Code)

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("MissingFile", func(t *testing.T) {
		w := deleteFile("/uploads/thumbnails/gone.png")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("RejectsOutsideUploads", func(t *testing.T) {
		w := deleteFile("/etc/passwd")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsTraversal", func(t *testing.T) {
		w := deleteFile("/uploads/../secrets.txt")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
