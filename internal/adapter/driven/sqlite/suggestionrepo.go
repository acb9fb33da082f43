package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SuggestionStore = (*SuggestionRepo)(nil)

// SuggestionRepo is the SQLite implementation of the SuggestionStore port
// interface. file_paths is stored as a JSON array.
type SuggestionRepo struct {
	reader querier
	writer querier
}

// NewSuggestionRepo creates a new SuggestionRepo backed by the given DB.
func NewSuggestionRepo(db *DB) *SuggestionRepo {
	return &SuggestionRepo{reader: db.Reader, writer: db.Writer}
}

const suggestionColumns = `id, project_id, user_id, source, scope, status, file_paths,
	original_code, suggested_code, applied_code, explanation, created_at, applied_at, rejected_at`

// Create inserts a draft. A random UUID is assigned when s.ID is empty and
// created_at defaults to now.
func (r *SuggestionRepo) Create(ctx context.Context, s model.Suggestion) (model.Suggestion, error) {
	const query = `INSERT INTO suggestions (` + suggestionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if len(s.FilePaths) == 0 {
		return model.Suggestion{}, errors.New("create suggestion: at least one file path is required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	paths, err := json.Marshal(s.FilePaths)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("encode file paths: %w", err)
	}

	_, err = r.writer.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.UserID, s.Source, s.Scope, s.Status, string(paths),
		s.OriginalCode, s.SuggestedCode, nullString(s.AppliedCode), s.Explanation,
		formatTime(s.CreatedAt), formatNullTime(s.AppliedAt), formatNullTime(s.RejectedAt),
	)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("create suggestion %s: %w", s.ID, err)
	}

	return s, nil
}

// GetByID returns the suggestion with the given ID, or nil, nil when absent.
func (r *SuggestionRepo) GetByID(ctx context.Context, id string) (*model.Suggestion, error) {
	const query = `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = ?`

	s, err := scanSuggestion(r.reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get suggestion %s: %w", id, err)
	}
	return s, nil
}

// List returns suggestions matching filter, newest first. Ties on
// created_at fall back to insertion order, newest first.
func (r *SuggestionRepo) List(ctx context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + suggestionColumns + ` FROM suggestions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	// SQLite requires LIMIT before OFFSET; -1 means unbounded.
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := r.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []model.Suggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}

// UpdateLifecycle persists status, applied_code, applied_at and rejected_at
// when the row is still in status from. Every other column is immutable
// after Create.
func (r *SuggestionRepo) UpdateLifecycle(ctx context.Context, s model.Suggestion, from model.SuggestionStatus) error {
	const query = `UPDATE suggestions
		SET status = ?, applied_code = ?, applied_at = ?, rejected_at = ?
		WHERE id = ? AND status = ?`

	res, err := r.writer.ExecContext(ctx, query,
		s.Status, nullString(s.AppliedCode), formatNullTime(s.AppliedAt), formatNullTime(s.RejectedAt), s.ID, from)
	if err != nil {
		return fmt.Errorf("update suggestion %s: %w", s.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update suggestion %s: rows affected: %w", s.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update suggestion %s from %s: %w", s.ID, from, driven.ErrStatusChanged)
	}
	return nil
}

func scanSuggestion(sc scanner) (*model.Suggestion, error) {
	var (
		s                     model.Suggestion
		paths, createdAt      string
		appliedCode           sql.NullString
		appliedAt, rejectedAt sql.NullString
	)

	err := sc.Scan(
		&s.ID, &s.ProjectID, &s.UserID, &s.Source, &s.Scope, &s.Status, &paths,
		&s.OriginalCode, &s.SuggestedCode, &appliedCode, &s.Explanation,
		&createdAt, &appliedAt, &rejectedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(paths), &s.FilePaths); err != nil {
		return nil, fmt.Errorf("decode file_paths: %w", err)
	}
	if appliedCode.Valid {
		code := appliedCode.String
		s.AppliedCode = &code
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.AppliedAt, err = parseNullTime(appliedAt); err != nil {
		return nil, fmt.Errorf("parse applied_at: %w", err)
	}
	if s.RejectedAt, err = parseNullTime(rejectedAt); err != nil {
		return nil, fmt.Errorf("parse rejected_at: %w", err)
	}

	return &s, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
