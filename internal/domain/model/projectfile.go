package model

import "time"

// ProjectFile is a source file owned by a project. Content is the mutable
// shared text that suggestions are applied to.
type ProjectFile struct {
	ID        int64
	ProjectID string
	Path      string
	FileType  string // Declared type, e.g. "javascript"; may be empty.
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
