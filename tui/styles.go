package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/canonhost/result"
)

// maxTableRows caps how many records the summary table shows.
const maxTableRows = 20

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	blockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cellStyle     = lipgloss.NewStyle()
)

// categoryOrder defines the display order for error categories.
var categoryOrder = []result.ErrorCategory{
	result.CategoryInvalidInput,
	result.CategoryDecode,
	result.CategoryCanceled,
	result.CategoryUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of a batch result.
func RenderSummary(res *result.Result) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	if len(res.Records) == 0 {
		builder.WriteString(dimStyle.Render("No URLs to canonicalize."))
		builder.WriteString("\n")
		return builder.String()
	}

	builder.WriteString(renderRecords(res.Records))
	builder.WriteString("\n")

	// Group failures by error category
	grouped := make(map[result.ErrorCategory][]result.Record)
	for _, rec := range res.Records {
		if !rec.Failed() {
			continue
		}
		cat := rec.ErrorCategory
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], rec)
	}

	for _, cat := range categoryOrder {
		recs := grouped[cat]
		if len(recs) == 0 {
			continue
		}
		lines := make([]string, 0, len(recs))
		for _, rec := range recs {
			lines = append(lines, strconv.Itoa(rec.Line))
		}
		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(recs))))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render("  lines: " + strings.Join(lines, ", ")))
		builder.WriteString("\n")
	}

	summary := fmt.Sprintf(
		"Canonicalized %d URLs (%d unique), %d failed, %d blocked (%s)",
		res.Stats.Total,
		res.Stats.Unique,
		res.Stats.Failed,
		res.Stats.Blocked,
		res.Stats.Duration.Round(1_000_000), // round to ms
	)
	if res.Stats.Failed == 0 && res.Stats.Blocked == 0 {
		builder.WriteString(successStyle.Render(summary))
	} else {
		builder.WriteString(titleStyle.Render(summary))
	}
	builder.WriteString("\n")

	return builder.String()
}

func renderRecords(records []result.Record) string {
	shown := records
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}

	rows := make([][]string, 0, len(shown))
	for _, rec := range shown {
		status := "ok"
		switch {
		case rec.Failed():
			status = string(rec.ErrorCategory)
		case rec.Blocked:
			status = "blocked"
		}
		rows = append(rows, []string{strconv.Itoa(rec.Line), rec.Canonical, rec.Domain, status})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Line", "Canonical", "Domain", "Status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(rows) && rows[row][3] != "ok" {
				return blockedStyle
			}
			return cellStyle
		}).
		Rows(rows...)

	out := tbl.Render()
	if hidden := len(records) - len(shown); hidden > 0 {
		out += "\n" + dimStyle.Render(fmt.Sprintf("  ... %d more", hidden))
	}
	return out
}
