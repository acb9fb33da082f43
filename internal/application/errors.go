package application

import "errors"

// Sentinel errors returned by the application services. Callers match them
// with errors.Is.
var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidState       = errors.New("invalid suggestion state transition")
	ErrInvalidInput       = errors.New("invalid input")
)
