package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

const (
	RuleNoImportant           = "css/no-important"
	RuleNoDuplicateProperties = "css/no-duplicate-properties"
	RuleNoUniversalSelector   = "css/no-universal-selector"
)

var (
	importantPattern = regexp.MustCompile(`\s*!important`)

	// blockPattern matches innermost brace-delimited blocks.
	blockPattern       = regexp.MustCompile(`\{([^{}]*)\}`)
	declarationPattern = regexp.MustCompile(`(?:^|[;\n])[ \t\r]*(-{0,2}[A-Za-z][A-Za-z0-9-]*)[ \t]*:`)

	cssCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// universalTokenPattern matches "*" standing alone as a selector token.
	universalTokenPattern = regexp.MustCompile(`(?:^|[\s,>+~(])(\*)(?:$|[\s,>+~.:\[#)])`)
)

// CheckImportant flags !important and proposes the declaration without it.
func CheckImportant(content string) []model.RuleViolation {
	var violations []model.RuleViolation
	for i, line := range splitLines(content) {
		idx := strings.Index(line, "!important")
		if idx < 0 {
			continue
		}
		violations = append(violations, model.RuleViolation{
			Line:          i + 1,
			Column:        idx + 1,
			Rule:          RuleNoImportant,
			Message:       "Avoid !important; raise selector specificity instead",
			OriginalCode:  line,
			SuggestedCode: importantPattern.ReplaceAllString(line, ""),
			Severity:      model.SeverityWarning,
		})
	}
	return violations
}

// CheckDuplicateProperties scans every brace-delimited block and flags each
// property declared again after its first occurrence in the same block.
func CheckDuplicateProperties(content string) []model.RuleViolation {
	var violations []model.RuleViolation

	for _, block := range blockPattern.FindAllStringSubmatchIndex(content, -1) {
		bodyStart, bodyEnd := block[2], block[3]
		body := content[bodyStart:bodyEnd]

		firstSeen := make(map[string]int)
		for _, decl := range declarationPattern.FindAllStringSubmatchIndex(body, -1) {
			name := strings.ToLower(body[decl[2]:decl[3]])
			offset := bodyStart + decl[2]

			if first, ok := firstSeen[name]; ok {
				declaration := declarationText(content, offset, bodyEnd)
				line, column := position(content, offset)
				firstLine, _ := position(content, first)
				violations = append(violations, model.RuleViolation{
					Line:          line,
					Column:        column,
					Rule:          RuleNoDuplicateProperties,
					Message:       fmt.Sprintf("Duplicate property %q (first declared on line %d)", name, firstLine),
					OriginalCode:  declaration,
					SuggestedCode: "/* " + declaration + " */",
					Severity:      model.SeverityWarning,
				})
				continue
			}
			firstSeen[name] = offset
		}
	}

	return violations
}

// declarationText returns the declaration starting at offset, through its
// terminating semicolon, the end of the line or the end of the block.
func declarationText(content string, offset, limit int) string {
	rest := content[offset:limit]
	if i := strings.IndexAny(rest, ";\n"); i >= 0 {
		if rest[i] == ';' {
			return rest[:i+1]
		}
		return strings.TrimRight(rest[:i], " \t\r")
	}
	return strings.TrimRight(rest, " \t\r")
}

// CheckUniversalSelector flags a bare "*" used as a selector token. Values
// such as repeat(3, 1fr) or calc(2 * 1rem) live inside blocks and are never
// inspected.
func CheckUniversalSelector(content string) []model.RuleViolation {
	var violations []model.RuleViolation

	// Blank out comments without shifting offsets.
	masked := cssCommentPattern.ReplaceAllStringFunc(content, func(c string) string {
		return strings.Repeat(" ", len(c))
	})

	selectorStart := 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '}', ';':
			selectorStart = i + 1
		case '{':
			if v, ok := universalInSelector(content, masked, selectorStart, i); ok {
				violations = append(violations, v)
			}
			selectorStart = i + 1
		}
	}

	return violations
}

func universalInSelector(content, masked string, start, end int) (model.RuleViolation, bool) {
	loc := universalTokenPattern.FindStringSubmatchIndex(masked[start:end])
	if loc == nil {
		return model.RuleViolation{}, false
	}

	offset := start + loc[2]
	line, column := position(content, offset)
	text := lineAt(content, offset)
	star := column - 1

	return model.RuleViolation{
		Line:          line,
		Column:        column,
		Rule:          RuleNoUniversalSelector,
		Message:       "Universal selector (*) matches every element; scope it to a container",
		OriginalCode:  text,
		SuggestedCode: text[:star] + "body *" + text[star+1:],
		Severity:      model.SeverityInfo,
	}, true
}
