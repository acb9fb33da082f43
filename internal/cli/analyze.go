package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

// errFindings is returned by analyze --fail-on-findings when anything was flagged.
var errFindings = errors.New("findings reported")

type analyzeOptions struct {
	fileType       string
	quick          bool
	jsonOut        bool
	failOnFindings bool
}

// findingJSON is the machine-readable form of one rule violation.
type findingJSON struct {
	Line          int    `json:"line"`
	Column        int    `json:"column"`
	Rule          string `json:"rule"`
	Severity      string `json:"severity"`
	Message       string `json:"message"`
	OriginalCode  string `json:"original_code"`
	SuggestedCode string `json:"suggested_code"`
}

type analyzeReport struct {
	File     string        `json:"file"`
	Category string        `json:"category"`
	Findings []findingJSON `json:"findings"`
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Run the rule checks over local files",
		Long: `Analyze runs the deterministic rule checks over one or more local files
without touching the database or any model provider. The category is taken
from --type or, by default, from each file's extension.

With --quick only the reduced heuristic check set is run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.fileType, "type", "", "File type override: javascript, css or liquid (or an alias such as js)")
	cmd.Flags().BoolVar(&opts.quick, "quick", false, "Run only the reduced heuristic check set")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.failOnFindings, "fail-on-findings", false, "Exit non-zero when anything is flagged")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, paths []string) error {
	engine := rules.NewEngine()
	if opts.quick {
		engine = rules.NewQuickEngine()
	}

	reports := make([]analyzeReport, 0, len(paths))
	total := 0
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		violations := engine.AnalyzeFile(string(content), opts.fileType, filepath.Base(p))
		reports = append(reports, newReport(p, rules.ResolveCategory(opts.fileType, p), violations))
		total += len(violations)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		st := newStyles(colorEnabled(out, root.noColor))
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, renderReport(r, st))
		}
	}

	if opts.failOnFindings && total > 0 {
		return fmt.Errorf("%d %s: %w", total, plural(total, "finding", "findings"), errFindings)
	}
	return nil
}

func newReport(path string, category model.FileCategory, violations []model.RuleViolation) analyzeReport {
	r := analyzeReport{
		File:     path,
		Category: string(category),
		Findings: make([]findingJSON, 0, len(violations)),
	}
	for _, v := range violations {
		r.Findings = append(r.Findings, findingJSON{
			Line:          v.Line,
			Column:        v.Column,
			Rule:          v.Rule,
			Severity:      string(v.Severity),
			Message:       v.Message,
			OriginalCode:  v.OriginalCode,
			SuggestedCode: v.SuggestedCode,
		})
	}
	return r
}

func renderReport(r analyzeReport, st styles) string {
	var sb strings.Builder

	sb.WriteString(st.header.Render(r.File))
	sb.WriteString(st.muted.Render(" (" + r.Category + ")"))
	sb.WriteString("\n")

	if r.Category == string(model.CategoryUnknown) {
		sb.WriteString(st.muted.Render("unsupported file type; nothing checked"))
		sb.WriteString("\n")
		return sb.String()
	}
	if len(r.Findings) == 0 {
		sb.WriteString(st.success.Render("no findings"))
		sb.WriteString("\n")
		return sb.String()
	}

	t := newTable("LINE", "COL", "SEVERITY", "RULE", "MESSAGE")
	for _, f := range r.Findings {
		sev := model.Severity(f.Severity)
		t.addRow(
			cell{text: strconv.Itoa(f.Line)},
			cell{text: strconv.Itoa(f.Column)},
			cell{text: f.Severity, style: func(s string) string { return st.severity(sev, s) }},
			cell{text: f.Rule},
			cell{text: f.Message},
		)
	}
	sb.WriteString(t.render(st))
	sb.WriteString(st.muted.Render(fmt.Sprintf("%d %s", len(r.Findings), plural(len(r.Findings), "finding", "findings"))))
	sb.WriteString("\n")
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
