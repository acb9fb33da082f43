package rules

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

const (
	RuleNoConsoleLog = "js/no-console-log"
	RuleNoVar        = "js/no-var"
	RuleEqEqEq       = "js/eqeqeq"
)

var (
	consoleLogPattern = regexp.MustCompile(`\bconsole\.log\(`)
	varPattern        = regexp.MustCompile(`\bvar\s+`)

	// looseEqualityPattern needs lookaround so "===" and "!==" never match;
	// RE2 cannot express that, hence regexp2.
	looseEqualityPattern = regexp2.MustCompile(`(?<![=!<>])(==|!=)(?!=)`, regexp2.None)
)

// scriptLines calls fn for every script line that is neither blank nor a
// "//" comment. lineNo is 1-based.
func scriptLines(content string, fn func(lineNo int, line string)) {
	for i, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		fn(i+1, line)
	}
}

// CheckConsoleLog flags console.log calls and proposes commenting them out.
func CheckConsoleLog(content string) []model.RuleViolation {
	var violations []model.RuleViolation
	scriptLines(content, func(lineNo int, line string) {
		loc := consoleLogPattern.FindStringIndex(line)
		if loc == nil {
			return
		}
		violations = append(violations, model.RuleViolation{
			Line:          lineNo,
			Column:        loc[0] + 1,
			Rule:          RuleNoConsoleLog,
			Message:       "Unexpected console.log call; remove debug logging before shipping",
			OriginalCode:  line,
			SuggestedCode: leadingWhitespace(line) + "// " + strings.TrimSpace(line),
			Severity:      model.SeverityWarning,
		})
	})
	return violations
}

// CheckNoVar flags var declarations and proposes const.
func CheckNoVar(content string) []model.RuleViolation {
	var violations []model.RuleViolation
	scriptLines(content, func(lineNo int, line string) {
		loc := varPattern.FindStringIndex(line)
		if loc == nil {
			return
		}
		violations = append(violations, model.RuleViolation{
			Line:          lineNo,
			Column:        loc[0] + 1,
			Rule:          RuleNoVar,
			Message:       "Use const or let instead of var",
			OriginalCode:  line,
			SuggestedCode: line[:loc[0]] + "const " + line[loc[1]:],
			Severity:      model.SeverityWarning,
		})
	})
	return violations
}

// CheckLooseEquality flags == and != (but not === or !==) and proposes the
// strict operators for every loose comparison on the line.
func CheckLooseEquality(content string) []model.RuleViolation {
	var violations []model.RuleViolation
	scriptLines(content, func(lineNo int, line string) {
		m, err := looseEqualityPattern.FindStringMatch(line)
		if err != nil || m == nil {
			return
		}
		strict, err := looseEqualityPattern.Replace(line, "${1}=", -1, -1)
		if err != nil {
			return
		}
		violations = append(violations, model.RuleViolation{
			Line:          lineNo,
			Column:        m.Index + 1,
			Rule:          RuleEqEqEq,
			Message:       "Expected '===' or '!==' instead of loose equality",
			OriginalCode:  line,
			SuggestedCode: strict,
			Severity:      model.SeverityWarning,
		})
	})
	return violations
}
