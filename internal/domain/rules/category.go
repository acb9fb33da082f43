package rules

import (
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// categoryByName maps declared file types and file extensions to categories.
var categoryByName = map[string]model.FileCategory{
	"javascript": model.CategoryJavaScript,
	"typescript": model.CategoryJavaScript,
	"js":         model.CategoryJavaScript,
	"ts":         model.CategoryJavaScript,
	"jsx":        model.CategoryJavaScript,
	"tsx":        model.CategoryJavaScript,
	"css":        model.CategoryCSS,
	"scss":       model.CategoryCSS,
	"sass":       model.CategoryCSS,
	"less":       model.CategoryCSS,
	"liquid":     model.CategoryLiquid,
}

// ResolveCategory tries the declared fileType first, then the extension of
// fileName. Anything unrecognized is CategoryUnknown.
func ResolveCategory(fileType, fileName string) model.FileCategory {
	if c, ok := categoryByName[normalizeType(fileType)]; ok {
		return c
	}

	ext := normalizeType(filepath.Ext(fileName))
	if c, ok := categoryByName[ext]; ok {
		return c
	}

	return model.CategoryUnknown
}

// IsSupported reports whether a path would be analyzed by any check.
func IsSupported(path string) bool {
	return ResolveCategory("", path) != model.CategoryUnknown
}

func normalizeType(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
}
