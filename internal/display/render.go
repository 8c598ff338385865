package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/outreach-crafter/internal/outreach"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	bandStyles = map[Band]lipgloss.Style{
		BandStrong: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		BandFair:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		BandWeak:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

// Render formats the view for a terminal.
func Render(v *View) string {
	var b strings.Builder

	if v.Variant == outreach.VariantEmail {
		b.WriteString(titleStyle.Render("Generated Email"))
	} else {
		b.WriteString(titleStyle.Render("Generated Message"))
	}
	b.WriteString("\n")

	for _, f := range v.Fields() {
		b.WriteString(labelStyle.Render(f.Label + ":"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(f.Value))
		b.WriteString("\n\n")
	}

	b.WriteString(RenderReview(v))
	return b.String()
}

// RenderReview formats the resume review part of the view.
func RenderReview(v *View) string {
	r := v.Review
	band := ScoreBand(r.ATSScore)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Resume Review"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("ATS score:"),
		bandStyles[band].Render(fmt.Sprintf("%.0f/100 (%s)", r.ATSScore, band)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Keyword match:"),
		valueStyle.Render(fmt.Sprintf("%.0f%%", r.KeywordAnalysis.MatchPercentage)))

	if r.OverallSummary != "" {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(r.OverallSummary))
		b.WriteString("\n")
	}

	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Areas for improvement", r.AreasForImprovement)
	writeList(&b, "Recommendations", r.Recommendations)
	writeList(&b, "Matched keywords", r.KeywordAnalysis.MatchedKeywords)
	writeList(&b, "Missing keywords", r.KeywordAnalysis.MissingKeywords)

	if len(r.KeywordAnalysis.KeywordSuggestions) > 0 {
		keys := make([]string, 0, len(r.KeywordAnalysis.KeywordSuggestions))
		for k := range r.KeywordAnalysis.KeywordSuggestions {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		items := make([]string, 0, len(keys))
		for _, k := range keys {
			items = append(items, k+": "+r.KeywordAnalysis.KeywordSuggestions[k])
		}
		writeList(&b, "Keyword suggestions", items)
	}

	return b.String()
}

// StepHeader formats the "Step n of total" banner of an input step.
func StepHeader(generator string, n, total int, title string) string {
	return titleStyle.Render(fmt.Sprintf("%s: Step %d of %d", generator, n, total)) + "\n" +
		labelStyle.Render(title)
}

func Hint(text string) string {
	return hintStyle.Render(text)
}

// RenderError formats a failure for the results step.
func RenderError(err error) string {
	return errorStyle.Render("Error: ") + valueStyle.Render(err.Error())
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(label + ":"))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(valueStyle.Render(item))
		b.WriteString("\n")
	}
}
