package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

const (
	RuleDeprecatedFilter = "liquid/deprecated-filter"
	RuleDeepNesting      = "liquid/deep-nesting"
	RuleMissingAlt       = "liquid/missing-alt"
)

// maxNestingDepth is the deepest if/unless nesting that is not flagged.
const maxNestingDepth = 3

const extractSnippetNote = " {%- comment -%} extract into a snippet {%- endcomment -%}"

// deprecatedFilter describes a Liquid colour filter that modern CSS colour
// functions replace. Template placeholders: {value} is the filtered
// expression re-wrapped in an output tag, {amount} the filter's numeric
// argument (or fallback when absent).
type deprecatedFilter struct {
	template string
	fallback string
}

var deprecatedFilters = map[string]deprecatedFilter{
	"color_lighten":    {template: "color-mix(in srgb, {value}, white {amount}%)", fallback: "10"},
	"color_darken":     {template: "color-mix(in srgb, {value}, black {amount}%)", fallback: "10"},
	"color_saturate":   {template: "hsl(from {value} h calc(s + {amount}) l)", fallback: "10"},
	"color_desaturate": {template: "hsl(from {value} h calc(s - {amount}) l)", fallback: "10"},
	"color_modify":     {template: "rgb(from {value} r g b / {amount})", fallback: "1"},
	"color_mix":        {template: "color-mix(in srgb, {value} {amount}%, white)", fallback: "50"},
	"hex_to_rgba":      {template: "rgb(from {value} r g b / {amount})", fallback: "1"},
	"color_to_rgb":     {template: "rgb(from {value} r g b)"},
	"color_to_hsl":     {template: "hsl(from {value} h s l)"},
}

var (
	outputTagPattern  = regexp.MustCompile(`\{\{-?(.*?)-?\}\}`)
	filterNamePattern = regexp.MustCompile(`^\s*([a-z_]+)\s*(?::(.*))?$`)
	numberPattern     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	blockTagPattern = regexp.MustCompile(`\{%-?\s*(if|unless|endif|endunless)\b`)

	imgTagPattern  = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altAttrPattern = regexp.MustCompile(`(?i)\balt\s*=`)
)

// CheckDeprecatedFilters flags output tags that pipe through a deprecated
// colour filter and proposes the equivalent CSS colour function. Filters
// chained after the deprecated one are dropped from the suggestion.
func CheckDeprecatedFilters(content string) []model.RuleViolation {
	var violations []model.RuleViolation

	for i, line := range splitLines(content) {
		for _, tag := range outputTagPattern.FindAllStringSubmatchIndex(line, -1) {
			inner := line[tag[2]:tag[3]]
			segments := strings.Split(inner, "|")

			for s := 1; s < len(segments); s++ {
				m := filterNamePattern.FindStringSubmatch(segments[s])
				if m == nil {
					continue
				}
				filter, ok := deprecatedFilters[m[1]]
				if !ok {
					continue
				}

				value := "{{ " + strings.TrimSpace(strings.Join(segments[:s], "|")) + " }}"
				amount := filter.fallback
				if n := numberPattern.FindAllString(m[2], -1); len(n) > 0 {
					amount = n[len(n)-1]
				}
				replacement := strings.NewReplacer("{value}", value, "{amount}", amount).Replace(filter.template)

				violations = append(violations, model.RuleViolation{
					Line:          i + 1,
					Column:        tag[0] + 1,
					Rule:          RuleDeprecatedFilter,
					Message:       fmt.Sprintf("Filter %q is deprecated; use the CSS colour function instead", m[1]),
					OriginalCode:  line[tag[0]:tag[1]],
					SuggestedCode: replacement,
					Severity:      model.SeverityWarning,
				})
				break
			}
		}
	}

	return violations
}

// CheckDeepNesting tracks if/unless depth across the file and flags every
// non-blank line that sits deeper than maxNestingDepth. A line is deeper when
// an opening tag on it pushes the depth past the limit or when the depth is
// still past the limit once the line's tags are counted. Blank lines are
// skipped because they offer nothing to anchor a suggestion on.
func CheckDeepNesting(content string) []model.RuleViolation {
	var violations []model.RuleViolation

	depth := 0
	for i, line := range splitLines(content) {
		peak, pushedAt := 0, -1
		for _, m := range blockTagPattern.FindAllStringSubmatchIndex(line, -1) {
			switch line[m[2]:m[3]] {
			case "if", "unless":
				depth++
				if depth > maxNestingDepth && pushedAt < 0 {
					pushedAt = m[0]
				}
				peak = max(peak, depth)
			default:
				if depth > 0 {
					depth--
				}
			}
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case pushedAt >= 0:
			violations = append(violations, model.RuleViolation{
				Line:          i + 1,
				Column:        pushedAt + 1,
				Rule:          RuleDeepNesting,
				Message:       fmt.Sprintf("if/unless nesting depth %d exceeds %d; extract the inner logic into a snippet", peak, maxNestingDepth),
				OriginalCode:  line,
				SuggestedCode: line + extractSnippetNote,
				Severity:      model.SeverityWarning,
			})
		case depth > maxNestingDepth:
			violations = append(violations, model.RuleViolation{
				Line:          i + 1,
				Column:        len(leadingWhitespace(line)) + 1,
				Rule:          RuleDeepNesting,
				Message:       fmt.Sprintf("line sits at if/unless nesting depth %d, deeper than %d; move this block into a snippet", depth, maxNestingDepth),
				OriginalCode:  line,
				SuggestedCode: line + extractSnippetNote,
				Severity:      model.SeverityWarning,
			})
		}
	}

	return violations
}

// CheckMissingAlt flags <img> tags without an alt attribute. Missing alt text
// is an accessibility defect, so this is the one error-severity check.
func CheckMissingAlt(content string) []model.RuleViolation {
	var violations []model.RuleViolation

	for i, line := range splitLines(content) {
		for _, loc := range imgTagPattern.FindAllStringIndex(line, -1) {
			tag := line[loc[0]:loc[1]]
			if altAttrPattern.MatchString(tag) {
				continue
			}
			violations = append(violations, model.RuleViolation{
				Line:          i + 1,
				Column:        loc[0] + 1,
				Rule:          RuleMissingAlt,
				Message:       "<img> is missing an alt attribute",
				OriginalCode:  tag,
				SuggestedCode: tag[:4] + ` alt=""` + tag[4:],
				Severity:      model.SeverityError,
			})
		}
	}

	return violations
}
