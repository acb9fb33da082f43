package httphandler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// AnalyzeFile runs detection over a stored file and returns the persisted
// pending suggestions.
func (h *Handler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(w, r)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	drafts, err := h.analysis.AnalyzeFile(r.Context(), application.AnalyzeRequest{
		UserID: req.UserID,
		FileID: id,
		UseAI:  req.UseAI,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to analyze file")
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponses(drafts))
}

// QuickAnalyze runs the local heuristic over posted content. Nothing is
// persisted and no model is consulted.
func (h *Handler) QuickAnalyze(w http.ResponseWriter, r *http.Request) {
	var req QuickAnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.FileType) == "" {
		writeError(w, http.StatusBadRequest, "file_type is required")
		return
	}

	writeJSON(w, http.StatusOK, toQuickAnalysisResponse(h.generator.AnalyzeFileContent(req.Content, req.FileType)))
}

// ListSuggestions returns a project's suggestions, newest first, optionally
// filtered by status and paginated with limit and offset.
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SuggestionFilter{
		ProjectID: r.PathValue("project"),
		Status:    model.SuggestionStatus(q.Get("status")),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	list, err := h.suggestions.ListSuggestions(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list suggestions")
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponses(list))
}

// GetSuggestion returns a single suggestion.
func (h *Handler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	sug, err := h.suggestions.GetSuggestion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get suggestion")
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(sug))
}

// ApplySuggestion writes a pending suggestion into its target file. The body
// is optional; edited_code replaces the suggested code. A missing anchor
// answers 409 with the conflict payload and changes nothing.
func (h *Handler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	result, err := h.suggestions.ApplySuggestion(r.Context(), r.PathValue("id"), req.EditedCode)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to apply suggestion")
		return
	}

	h.writeLifecycleResult(w, result)
}

// RejectSuggestion marks a pending suggestion rejected.
func (h *Handler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	sug, err := h.suggestions.RejectSuggestion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to reject suggestion")
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(sug))
}

// UndoSuggestion reverts an applied or edited suggestion.
func (h *Handler) UndoSuggestion(w http.ResponseWriter, r *http.Request) {
	result, err := h.suggestions.UndoSuggestion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to undo suggestion")
		return
	}

	h.writeLifecycleResult(w, result)
}

func (h *Handler) writeLifecycleResult(w http.ResponseWriter, result application.LifecycleResult) {
	if result.Conflict != nil {
		writeJSON(w, http.StatusConflict, toConflictResponse(*result.Conflict))
		return
	}
	writeJSON(w, http.StatusOK, toSuggestionResponse(result.Suggestion))
}

// intParam parses an optional non-negative query integer; "" is 0.
func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
