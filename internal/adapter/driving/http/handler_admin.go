package httphandler

import (
	"net/http"
	"strings"
)

// ImportRepository pulls supported files from a GitHub repository into the project.
func (h *Handler) ImportRepository(w http.ResponseWriter, r *http.Request) {
	if h.imports == nil {
		writeError(w, http.StatusNotImplemented, "repository import is not configured")
		return
	}

	var req ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !isValidRepoName(req.Repository) {
		writeError(w, http.StatusBadRequest, "invalid repository name: expected owner/repo format")
		return
	}

	result, err := h.imports.Import(r.Context(), r.PathValue("project"), req.Repository, req.Ref, req.Dir)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to import repository")
		return
	}

	writeJSON(w, http.StatusOK, toImportResponse(result))
}

// ListCredentials reports which provider keys are stored and which provider
// is live. Key values are never returned.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusNotImplemented, "credential storage is not configured")
		return
	}

	status, err := h.credentials.Status(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list credentials")
		return
	}

	writeJSON(w, http.StatusOK, CredentialsResponse{
		ActiveProvider: status.ActiveProvider,
		Stored:         status.StoredServices,
	})
}

// SetCredential stores a provider API key and makes that provider live.
func (h *Handler) SetCredential(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusNotImplemented, "credential storage is not configured")
		return
	}

	var req SetCredentialRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.credentials.SetProviderKey(r.Context(), r.PathValue("provider"), req.APIKey); err != nil {
		h.writeServiceError(w, r, err, "failed to store credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredential removes a stored provider key.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusNotImplemented, "credential storage is not configured")
		return
	}

	if err := h.credentials.RemoveProviderKey(r.Context(), r.PathValue("provider")); err != nil {
		h.writeServiceError(w, r, err, "failed to delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// isValidRepoName validates that name is in owner/repo format where each part
// contains only alphanumeric characters, hyphens, dots, or underscores.
func isValidRepoName(name string) bool {
	parts := strings.SplitN(name, "/", 3)
	if len(parts) != 2 {
		return false
	}

	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if !isValidRepoChar(ch) {
				return false
			}
		}
	}

	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
