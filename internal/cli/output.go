package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// Color constants for consistent styling across the CLI.
var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorError   = lipgloss.Color("#ef5350")
	colorWarning = lipgloss.Color("#fff59d")
	colorMuted   = lipgloss.Color("#888888")
	colorSuccess = lipgloss.Color("#66bb6a")
)

// styles is the set of renderers for one output stream. Plain styles are used
// when color is disabled.
type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	bySev   map[model.Severity]lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			header:  plain,
			muted:   plain,
			success: plain,
			bySev:   map[model.Severity]lipgloss.Style{},
		}
	}

	return styles{
		header:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		bySev: map[model.Severity]lipgloss.Style{
			model.SeverityError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
			model.SeverityWarning: lipgloss.NewStyle().Foreground(colorWarning),
			model.SeverityInfo:    lipgloss.NewStyle().Foreground(colorMuted),
		},
	}
}

func (s styles) severity(sev model.Severity, text string) string {
	if st, ok := s.bySev[sev]; ok {
		return st.Render(text)
	}
	return text
}

// colorEnabled reports whether w is a terminal and color was not turned off.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// table is a simple column-aligned renderer. Cells are padded on their plain
// width and styled afterwards so ANSI codes never break alignment.
type table struct {
	headers []string
	rows    [][]cell
	widths  []int
}

type cell struct {
	text  string
	style func(string) string
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(cells ...cell) {
	row := make([]cell, len(t.headers))
	for i := range t.headers {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if w := lipgloss.Width(row[i].text); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) render(st styles) string {
	var sb strings.Builder

	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(st.header.Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(st.muted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		for i, c := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			text := c.text
			// The last column is left unpadded to avoid trailing spaces.
			if i < len(row)-1 {
				text = pad(text, t.widths[i])
			}
			if c.style != nil {
				text = c.style(text)
			}
			sb.WriteString(text)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// pad right-pads s to the given display width.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
