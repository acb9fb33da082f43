package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

// maxBodyBytes bounds request bodies; file content is the largest payload.
const maxBodyBytes = 4 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	files       driven.FileStore
	analysis    *application.AnalysisService
	suggestions *application.SuggestionService
	imports     *application.ImportService
	credentials *application.CredentialService
	generator   *application.Generator
	providers   *application.ProviderHolder
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. imports and
// credentials may be nil, which disables their endpoints.
func NewHandler(
	files driven.FileStore,
	analysis *application.AnalysisService,
	suggestions *application.SuggestionService,
	imports *application.ImportService,
	credentials *application.CredentialService,
	generator *application.Generator,
	providers *application.ProviderHolder,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		files:       files,
		analysis:    analysis,
		suggestions: suggestions,
		imports:     imports,
		credentials: credentials,
		generator:   generator,
		providers:   providers,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("POST /api/v1/projects/{project}/files", h.CreateFile)
	mux.HandleFunc("GET /api/v1/projects/{project}/files", h.ListFiles)
	mux.HandleFunc("GET /api/v1/files/{id}", h.GetFile)
	mux.HandleFunc("PUT /api/v1/files/{id}", h.UpdateFile)

	mux.HandleFunc("POST /api/v1/files/{id}/analyze", h.AnalyzeFile)
	mux.HandleFunc("POST /api/v1/analyze/quick", h.QuickAnalyze)

	mux.HandleFunc("GET /api/v1/projects/{project}/suggestions", h.ListSuggestions)
	mux.HandleFunc("GET /api/v1/suggestions/{id}", h.GetSuggestion)
	mux.HandleFunc("POST /api/v1/suggestions/{id}/apply", h.ApplySuggestion)
	mux.HandleFunc("POST /api/v1/suggestions/{id}/reject", h.RejectSuggestion)
	mux.HandleFunc("POST /api/v1/suggestions/{id}/undo", h.UndoSuggestion)

	mux.HandleFunc("POST /api/v1/projects/{project}/import", h.ImportRepository)

	mux.HandleFunc("GET /api/v1/credentials", h.ListCredentials)
	mux.HandleFunc("PUT /api/v1/credentials/{provider}", h.SetCredential)
	mux.HandleFunc("DELETE /api/v1/credentials/{provider}", h.DeleteCredential)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if h.providers != nil {
		resp.AIProvider = h.providers.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateFile adds a file to a project. The file type is inferred from the
// path extension when the request leaves it empty.
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	var req CreateFileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	path := strings.TrimPrefix(strings.TrimSpace(req.Path), "/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	fileType := strings.TrimSpace(req.FileType)
	if fileType == "" {
		if c := rules.ResolveCategory("", path); c != model.CategoryUnknown {
			fileType = string(c)
		}
	}

	created, err := h.files.Create(r.Context(), model.ProjectFile{
		ProjectID: project,
		Path:      path,
		FileType:  fileType,
		Content:   req.Content,
	})
	if err != nil {
		if errors.Is(err, driven.ErrFileAlreadyExists) {
			writeError(w, http.StatusConflict, "file already exists")
			return
		}
		h.logger.Error("failed to create file", "project", project, "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toFileResponse(created))
}

// ListFiles returns the files of a project without their content.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	files, err := h.files.ListByProject(r.Context(), project)
	if err != nil {
		h.logger.Error("failed to list files", "project", project, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]FileSummaryResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, toFileSummaryResponse(f))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetFile returns a single file with its content.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(w, r)
	if !ok {
		return
	}

	file, err := h.files.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get file", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(*file))
}

// UpdateFile replaces a file's content with a user edit.
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(w, r)
	if !ok {
		return
	}

	var req UpdateFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.files.UpdateContent(r.Context(), id, *req.Content); err != nil {
		if errors.Is(err, driven.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		h.logger.Error("failed to update file", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	file, err := h.files.GetByID(r.Context(), id)
	if err != nil || file == nil {
		h.logger.Error("failed to reload file after update", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(*file))
}

// writeServiceError maps application and port errors to HTTP status codes.
// Unrecognized errors are logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, application.ErrSuggestionNotFound):
		writeError(w, http.StatusNotFound, "suggestion not found")
	case errors.Is(err, application.ErrFileNotFound), errors.Is(err, driven.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "file not found")
	case errors.Is(err, application.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, driven.ErrEncryptionKeyNotSet.Error())
	default:
		h.logger.Error(msg, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody for endpoints whose body may be omitted.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func fileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return 0, false
	}
	return id, true
}
