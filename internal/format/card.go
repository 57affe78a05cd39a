package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/soltrack/soltrack/internal/pnl"
)

var (
	green = lipgloss.Color("#2AFFAA")
	red   = lipgloss.Color("#FF5555")
	muted = lipgloss.Color("#6C7280")
	text  = lipgloss.Color("#ECEFF4")

	cardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(text)
	labelStyle = lipgloss.NewStyle().Foreground(muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(text)
)

// Card renders the PnL report as a bordered terminal card, the
// text-mode successor of the shareable image card.
func Card(report *pnl.Report, holder string) string {
	pnlColor := green
	if report.TotalPnL < 0 {
		pnlColor = red
	}
	pnlStyle := lipgloss.NewStyle().Bold(true).Foreground(pnlColor)

	title := report.TokenName
	if report.TokenSymbol != "" {
		title = "$" + report.TokenSymbol
	}

	profitUSD := report.TotalPnL * report.SolPriceUSD

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(pnlStyle.Render(Percent(report.ROIPercentage)))
	b.WriteString("\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Bought", Amount(report.TotalCostSOL) + " SOL"},
		{"Profit", SignedSOL(report.TotalPnL)},
		{"", SignedUSD(profitUSD)},
		{"Holding", Amount(report.CurrentBalance)},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(valueStyle.Render(row.value))
		b.WriteString("\n")
	}
	if holder != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(holder))
	}

	return cardBorder.Render(strings.TrimRight(b.String(), "\n"))
}

// DetailTable renders the per-transfer breakdown under the card.
func DetailTable(report *pnl.Report) string {
	if len(report.Transfers) == 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	inStyle := lipgloss.NewStyle().Foreground(green)
	outStyle := lipgloss.NewStyle().Foreground(red)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %-4s %14s %14s %12s", "TIME", "FLOW", "AMOUNT", "VALUE USD", "SOL")))
	b.WriteString("\n")

	for _, detail := range report.Transfers {
		line := fmt.Sprintf("%-20s %-4s %14s %14s %12s",
			detail.Timestamp,
			detail.Flow,
			Amount(detail.Amount),
			Amount(detail.TokenValueUSD),
			Amount(detail.SolValue))
		if detail.Flow == "in" {
			b.WriteString(inStyle.Render(line))
		} else {
			b.WriteString(outStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
