package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// FileResponse is the JSON representation of a project file.
type FileResponse struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`
	Path      string `json:"path"`
	FileType  string `json:"file_type"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// FileSummaryResponse is a project file without its content, used in listings.
type FileSummaryResponse struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	FileType  string `json:"file_type"`
	Size      int    `json:"size"`
	UpdatedAt string `json:"updated_at"`
}

// SuggestionResponse is the JSON representation of a suggestion.
type SuggestionResponse struct {
	ID              string   `json:"id"`
	ProjectID       string   `json:"project_id"`
	UserID          string   `json:"user_id"`
	Source          string   `json:"source"`
	Scope           string   `json:"scope"`
	Status          string   `json:"status"`
	FilePaths       []string `json:"file_paths"`
	OriginalCode    string   `json:"original_code"`
	SuggestedCode   string   `json:"suggested_code"`
	AppliedCode     *string  `json:"applied_code"`
	Explanation     string   `json:"explanation"`
	ExplanationHTML string   `json:"explanation_html"`
	CreatedAt       string   `json:"created_at"`
	AppliedAt       *string  `json:"applied_at"`
	RejectedAt      *string  `json:"rejected_at"`
}

// ConflictResponse is returned with 409 when a suggestion's anchor text is no
// longer present in the target file.
type ConflictResponse struct {
	Conflict ConflictDetail `json:"conflict"`
}

// ConflictDetail carries the file as it is now and the code that could not be placed.
type ConflictDetail struct {
	CurrentContent   string `json:"current_content"`
	SuggestedContent string `json:"suggested_content"`
}

// QuickSuggestionResponse is one unsaved finding of the local heuristic preview.
type QuickSuggestionResponse struct {
	OriginalCode    string `json:"original_code"`
	SuggestedCode   string `json:"suggested_code"`
	Explanation     string `json:"explanation"`
	ExplanationHTML string `json:"explanation_html"`
	Scope           string `json:"scope"`
}

// QuickAnalysisResponse is the body of the local heuristic preview.
type QuickAnalysisResponse struct {
	Source      string                    `json:"source"`
	Suggestions []QuickSuggestionResponse `json:"suggestions"`
}

// CredentialsResponse reports stored provider keys by name only.
type CredentialsResponse struct {
	ActiveProvider string   `json:"active_provider"`
	Stored         []string `json:"stored"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Time       string `json:"time"`
	AIProvider string `json:"ai_provider"`
}

// CreateFileRequest is the JSON body for creating a project file.
type CreateFileRequest struct {
	Path     string `json:"path"`
	FileType string `json:"file_type"`
	Content  string `json:"content"`
}

// UpdateFileRequest is the JSON body for a user edit of file content.
type UpdateFileRequest struct {
	Content *string `json:"content"`
}

// AnalyzeRequest is the JSON body for analyzing a stored file.
type AnalyzeRequest struct {
	UserID string `json:"user_id"`
	UseAI  bool   `json:"use_ai"`
}

// QuickAnalyzeRequest is the JSON body for the local heuristic preview.
type QuickAnalyzeRequest struct {
	Content  string `json:"content"`
	FileType string `json:"file_type"`
}

// ApplyRequest is the optional JSON body for applying a suggestion.
type ApplyRequest struct {
	EditedCode *string `json:"edited_code"`
}

// ImportRequest is the JSON body for importing files from a GitHub repository.
type ImportRequest struct {
	Repository string `json:"repository"`
	Ref        string `json:"ref"`
	Dir        string `json:"dir"`
}

// ImportResponse summarizes a completed import.
type ImportResponse struct {
	Repository string   `json:"repository"`
	Ref        string   `json:"ref"`
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	Paths      []string `json:"paths"`
}

// SetCredentialRequest is the JSON body for storing a provider API key.
type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// toFileResponse converts a domain ProjectFile to its JSON representation.
func toFileResponse(f model.ProjectFile) FileResponse {
	return FileResponse{
		ID:        f.ID,
		ProjectID: f.ProjectID,
		Path:      f.Path,
		FileType:  f.FileType,
		Content:   f.Content,
		CreatedAt: formatTime(f.CreatedAt),
		UpdatedAt: formatTime(f.UpdatedAt),
	}
}

func toFileSummaryResponse(f model.ProjectFile) FileSummaryResponse {
	return FileSummaryResponse{
		ID:        f.ID,
		Path:      f.Path,
		FileType:  f.FileType,
		Size:      len(f.Content),
		UpdatedAt: formatTime(f.UpdatedAt),
	}
}

// toSuggestionResponse converts a domain Suggestion to its JSON representation.
// FilePaths is always a non-nil array.
func toSuggestionResponse(s model.Suggestion) SuggestionResponse {
	paths := s.FilePaths
	if paths == nil {
		paths = []string{}
	}

	return SuggestionResponse{
		ID:              s.ID,
		ProjectID:       s.ProjectID,
		UserID:          s.UserID,
		Source:          string(s.Source),
		Scope:           string(s.Scope),
		Status:          string(s.Status),
		FilePaths:       paths,
		OriginalCode:    s.OriginalCode,
		SuggestedCode:   s.SuggestedCode,
		AppliedCode:     s.AppliedCode,
		Explanation:     s.Explanation,
		ExplanationHTML: renderMarkdown(s.Explanation),
		CreatedAt:       formatTime(s.CreatedAt),
		AppliedAt:       formatOptionalTime(s.AppliedAt),
		RejectedAt:      formatOptionalTime(s.RejectedAt),
	}
}

func toSuggestionResponses(list []model.Suggestion) []SuggestionResponse {
	resp := make([]SuggestionResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, toSuggestionResponse(s))
	}
	return resp
}

func toConflictResponse(c application.Conflict) ConflictResponse {
	return ConflictResponse{Conflict: ConflictDetail{
		CurrentContent:   c.CurrentContent,
		SuggestedContent: c.SuggestedContent,
	}}
}

func toQuickAnalysisResponse(r application.AIResult) QuickAnalysisResponse {
	out := QuickAnalysisResponse{
		Source:      string(r.Source),
		Suggestions: make([]QuickSuggestionResponse, 0, len(r.Suggestions)),
	}
	for _, s := range r.Suggestions {
		out.Suggestions = append(out.Suggestions, QuickSuggestionResponse{
			OriginalCode:    s.OriginalCode,
			SuggestedCode:   s.SuggestedCode,
			Explanation:     s.Explanation,
			ExplanationHTML: renderMarkdown(s.Explanation),
			Scope:           string(s.Scope),
		})
	}
	return out
}

func toImportResponse(r model.ImportResult) ImportResponse {
	paths := r.Paths
	if paths == nil {
		paths = []string{}
	}
	return ImportResponse{
		Repository: r.Repository,
		Ref:        r.Ref,
		Imported:   r.Imported,
		Skipped:    r.Skipped,
		Paths:      paths,
	}
}
