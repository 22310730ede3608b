package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/replylab/replyrank/internal/score"
)

// Score thresholds for color-coding the summary.
const (
	scoreGoodThreshold = 7.0
	scoreWarnThreshold = 4.0
)

// Summary color palette.
var (
	summaryTitleStyle = lipgloss.NewStyle(). //nolint:gochecknoglobals
				Bold(true).
				Foreground(lipgloss.Color("33"))

	summaryLabelStyle = lipgloss.NewStyle().Bold(true) //nolint:gochecknoglobals

	scoreGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  //nolint:gochecknoglobals
	scoreWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) //nolint:gochecknoglobals
	scoreBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) //nolint:gochecknoglobals
)

// styleForScore picks a color style from the score's magnitude.
func styleForScore(s float64) lipgloss.Style {
	switch {
	case s >= scoreGoodThreshold:
		return scoreGoodStyle
	case s >= scoreWarnThreshold:
		return scoreWarnStyle
	default:
		return scoreBadStyle
	}
}

// renderSummary writes the aggregate statistics block for a completed (or
// partially completed) scoring session.
func renderSummary(w io.Writer, sum score.Summary, jobCount int) {
	p := message.NewPrinter(language.English)

	fmt.Fprintln(w, summaryTitleStyle.Render("SCORING SUMMARY"))
	fmt.Fprintf(w, "%s %s across %s\n",
		summaryLabelStyle.Render("Processed:"),
		p.Sprintf("%d replies", sum.TotalProcessed),
		p.Sprintf("%d jobs", jobCount))
	fmt.Fprintf(w, "%s %s\n",
		summaryLabelStyle.Render("Average:  "),
		styleForScore(sum.AverageScore).Render(p.Sprintf("%.2f", sum.AverageScore)))
	fmt.Fprintf(w, "%s %s\n",
		summaryLabelStyle.Render("Highest:  "),
		styleForScore(sum.HighestScore).Render(p.Sprintf("%.2f", sum.HighestScore)))
	fmt.Fprintf(w, "%s %s\n",
		summaryLabelStyle.Render("Lowest:   "),
		styleForScore(sum.LowestScore).Render(p.Sprintf("%.2f", sum.LowestScore)))
}
