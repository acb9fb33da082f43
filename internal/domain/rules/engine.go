// Package rules implements the deterministic, line-oriented detectors for
// script, stylesheet and Liquid template files. Every function here is pure
// and synchronous; an unrecognized file category yields no violations.
package rules

import (
	"sort"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// Check is a single detector over the full content of one file.
type Check func(content string) []model.RuleViolation

// Engine routes a file to the checks registered for its category.
type Engine struct {
	checks map[model.FileCategory][]Check
}

// NewEngine creates an engine with every built-in check registered.
func NewEngine() *Engine {
	return &Engine{
		checks: map[model.FileCategory][]Check{
			model.CategoryJavaScript: {
				CheckConsoleLog,
				CheckNoVar,
				CheckLooseEquality,
			},
			model.CategoryCSS: {
				CheckImportant,
				CheckDuplicateProperties,
				CheckUniversalSelector,
			},
			model.CategoryLiquid: {
				CheckDeprecatedFilters,
				CheckDeepNesting,
				CheckMissingAlt,
			},
		},
	}
}

// NewQuickEngine creates an engine with the reduced check set used as the
// zero-latency heuristic fallback: console/var/loose equality for scripts,
// !important for stylesheets and nesting depth for Liquid.
func NewQuickEngine() *Engine {
	return &Engine{
		checks: map[model.FileCategory][]Check{
			model.CategoryJavaScript: {CheckConsoleLog, CheckNoVar, CheckLooseEquality},
			model.CategoryCSS:        {CheckImportant},
			model.CategoryLiquid:     {CheckDeepNesting},
		},
	}
}

// AnalyzeFile resolves the file's category and runs its checks. Violations
// are ordered by line; within a line, checks keep their registration order.
// It never fails: an unknown category returns an empty slice.
func (e *Engine) AnalyzeFile(content, fileType, fileName string) []model.RuleViolation {
	category := ResolveCategory(fileType, fileName)

	violations := []model.RuleViolation{}
	for _, check := range e.checks[category] {
		violations = append(violations, check(content)...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Line < violations[j].Line
	})

	return violations
}

// splitLines splits content into lines without their "\n" or "\r\n"
// terminators, so each line is a verbatim substring of content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// position converts a byte offset in content to a 1-based line and column.
func position(content string, offset int) (line, column int) {
	before := content[:offset]
	line = strings.Count(before, "\n") + 1
	column = offset - strings.LastIndex(before, "\n")
	return line, column
}

// lineAt returns the full line of content containing offset.
func lineAt(content string, offset int) string {
	start := strings.LastIndex(content[:offset], "\n") + 1
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		return strings.TrimSuffix(content[start:], "\r")
	}
	return strings.TrimSuffix(content[start:offset+end], "\r")
}

// leadingWhitespace returns the indentation prefix of line.
func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
