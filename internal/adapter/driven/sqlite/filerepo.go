package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FileStore = (*FileRepo)(nil)

// FileRepo is the SQLite implementation of the FileStore port interface.
type FileRepo struct {
	reader querier
	writer querier
}

// NewFileRepo creates a new FileRepo backed by the given DB.
func NewFileRepo(db *DB) *FileRepo {
	return &FileRepo{reader: db.Reader, writer: db.Writer}
}

const fileColumns = `id, project_id, path, file_type, content, created_at, updated_at`

// Create inserts a new file. Returns driven.ErrFileAlreadyExists when the
// project already has a file at that path.
func (r *FileRepo) Create(ctx context.Context, file model.ProjectFile) (model.ProjectFile, error) {
	const query = `INSERT INTO project_files (project_id, path, file_type, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	res, err := r.writer.ExecContext(ctx, query,
		file.ProjectID, file.Path, file.FileType, file.Content, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return model.ProjectFile{}, fmt.Errorf("create file %s: %w", file.Path, driven.ErrFileAlreadyExists)
		}
		return model.ProjectFile{}, fmt.Errorf("create file %s: %w", file.Path, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ProjectFile{}, fmt.Errorf("create file %s: last insert id: %w", file.Path, err)
	}

	file.ID = id
	file.CreatedAt = now
	file.UpdatedAt = now
	return file, nil
}

// Upsert inserts the file or, when (project_id, path) already exists,
// replaces its content and type. The original created_at is kept.
func (r *FileRepo) Upsert(ctx context.Context, file model.ProjectFile) (model.ProjectFile, error) {
	const query = `INSERT INTO project_files (project_id, path, file_type, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, path) DO UPDATE SET
			file_type  = excluded.file_type,
			content    = excluded.content,
			updated_at = excluded.updated_at
		RETURNING ` + fileColumns

	now := formatTime(time.Now())
	row := r.writer.QueryRowContext(ctx, query,
		file.ProjectID, file.Path, file.FileType, file.Content, now, now)

	stored, err := scanFile(row)
	if err != nil {
		return model.ProjectFile{}, fmt.Errorf("upsert file %s: %w", file.Path, err)
	}
	return *stored, nil
}

// GetByID returns the file with the given ID, or nil, nil when absent.
func (r *FileRepo) GetByID(ctx context.Context, id int64) (*model.ProjectFile, error) {
	const query = `SELECT ` + fileColumns + ` FROM project_files WHERE id = ?`

	file, err := scanFile(r.reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}
	return file, nil
}

// GetByPath returns the project's file at path, or nil, nil when absent.
func (r *FileRepo) GetByPath(ctx context.Context, projectID, path string) (*model.ProjectFile, error) {
	const query = `SELECT ` + fileColumns + ` FROM project_files WHERE project_id = ? AND path = ?`

	file, err := scanFile(r.reader.QueryRowContext(ctx, query, projectID, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file %s/%s: %w", projectID, path, err)
	}
	return file, nil
}

// ListByProject returns every file of a project ordered by path.
func (r *FileRepo) ListByProject(ctx context.Context, projectID string) ([]model.ProjectFile, error) {
	const query = `SELECT ` + fileColumns + ` FROM project_files WHERE project_id = ? ORDER BY path`

	rows, err := r.reader.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list files for %s: %w", projectID, err)
	}
	defer rows.Close()

	files := []model.ProjectFile{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// UpdateContent replaces the content of the file. Returns
// driven.ErrFileNotFound when no row has that ID.
func (r *FileRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	const query = `UPDATE project_files SET content = ?, updated_at = ? WHERE id = ?`

	res, err := r.writer.ExecContext(ctx, query, content, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update file %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update file %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update file %d: %w", id, driven.ErrFileNotFound)
	}
	return nil
}

func scanFile(s scanner) (*model.ProjectFile, error) {
	var file model.ProjectFile
	var createdAt, updatedAt string

	if err := s.Scan(&file.ID, &file.ProjectID, &file.Path, &file.FileType, &file.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if file.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if file.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &file, nil
}
