package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/claudewatch/claudewatch/internal/manager"
	"github.com/claudewatch/claudewatch/internal/quota"
	"github.com/claudewatch/claudewatch/internal/usage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	critStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const gaugeWidth = 24

func (m Model) View() string {
	if !m.hasSnap {
		return dimStyle.Render("\n  loading usage data...\n")
	}

	sections := []string{
		m.quotaSection(),
		m.spendSection(),
		m.predictionSection(),
	}
	if len(m.projects) > 0 {
		sections = append(sections, m.projectsSection())
	}
	if m.hasHeatmap {
		sections = append(sections, m.heatmapSection())
	}
	sections = append(sections, m.footer())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) quotaSection() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Rate Limits"))
	b.WriteString("  ")
	b.WriteString(statusBadge(m.snap.LimitStatus))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  resets in %s\n",
		labelStyle.Render("5h "),
		gauge(m.snap.Utilization5h),
		valueStyle.Render(formatCountdown(m.snap.ResetIn5h, m.snap.LastUpdated)),
	))
	b.WriteString(fmt.Sprintf("%s %s  resets in %s",
		labelStyle.Render("7d "),
		gauge(m.snap.Utilization7d),
		valueStyle.Render(formatCountdown(m.snap.ResetIn7d, m.snap.LastUpdated)),
	))
	return borderStyle.Render(b.String())
}

func (m Model) spendSection() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Spend (estimated)"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("5h"), valueStyle.Render(fmt.Sprintf("$%.2f", m.snap.Cost5h)),
		labelStyle.Render("today"), valueStyle.Render(fmt.Sprintf("$%.2f", m.snap.CostDay)),
		labelStyle.Render("7d"), valueStyle.Render(fmt.Sprintf("$%.2f", m.snap.Cost7d)),
	))
	b.WriteString(labelStyle.Render("tokens 5h ") + valueStyle.Render(fmt.Sprintf(
		"in %s · out %s · cache r %s · cache w %s",
		formatTokens(m.snap.TokensIn5h),
		formatTokens(m.snap.TokensOut5h),
		formatTokens(m.snap.TokensCacheRead5h),
		formatTokens(m.snap.TokensCacheCreate5h),
	)))
	return borderStyle.Render(b.String())
}

func (m Model) predictionSection() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Forecast"))
	b.WriteString("\n")
	if !m.hasPred {
		b.WriteString(dimStyle.Render("no forecast yet"))
		return borderStyle.Render(b.String())
	}

	if m.pred.BurnRateUSDPerHour > 0 {
		b.WriteString(labelStyle.Render("burn rate ") +
			valueStyle.Render(fmt.Sprintf("$%.2f/h", m.pred.BurnRateUSDPerHour)) + "\n")
	} else {
		b.WriteString(dimStyle.Render("burn rate: insufficient recent activity") + "\n")
	}

	if m.pred.ExhaustionInSeconds != nil {
		style := okStyle
		if !m.pred.SafeToStartHeavyTask {
			style = critStyle
		}
		b.WriteString(labelStyle.Render("window exhaustion ") +
			style.Render("in "+formatDuration(*m.pred.ExhaustionInSeconds)) + "\n")
	}
	if m.pred.BudgetRemaining != nil {
		b.WriteString(labelStyle.Render("budget left ") +
			valueStyle.Render(fmt.Sprintf("$%.2f", *m.pred.BudgetRemaining)) + "\n")
	}
	b.WriteString(recommendationStyle(m.pred.SafeToStartHeavyTask).Render(m.pred.Recommendation))
	return borderStyle.Render(b.String())
}

func (m Model) projectsSection() string {
	var b strings.Builder
	total := lo.SumBy(m.projects, func(p usage.ProjectCost) float64 { return p.CostToday })
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  today $%.2f total", total)))
	b.WriteString("\n")

	for i, p := range m.projects {
		if i >= 6 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… and %d more", len(m.projects)-i)))
			break
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			valueStyle.Render(padRight(p.ProjectName, 20)),
			labelStyle.Render(fmt.Sprintf("today $%6.2f", p.CostToday)),
			labelStyle.Render(fmt.Sprintf("7d $%7.2f", p.Cost7d)),
			dimStyle.Render(fmt.Sprintf("%d sessions", p.SessionCount)),
		))
	}
	return borderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// heatmapSection renders the trailing daily series as a shaded strip,
// most recent day on the right.
func (m Model) heatmapSection() string {
	daily := m.heatmap.Daily
	days := 30
	if len(daily) < days {
		days = len(daily)
	}
	window := daily[len(daily)-days:]

	maxCost := 0.0
	for _, d := range window {
		if d.Cost > maxCost {
			maxCost = d.Cost
		}
	}

	var cells []string
	for _, d := range window {
		cells = append(cells, heatCell(d.Cost, maxCost))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Activity · last %d days", days)))
	b.WriteString("\n")
	b.WriteString(strings.Join(cells, ""))
	return borderStyle.Render(b.String())
}

func (m Model) footer() string {
	src := string(m.snap.DataSource)
	age := ""
	if m.snap.DataSource == manager.SourceCache || m.snap.DataSource == manager.SourceStale {
		age = fmt.Sprintf(" (%.0fs old)", m.snap.CacheAgeSeconds)
	}
	state := ""
	if m.refreshing {
		state = "  refreshing…"
	}
	return dimStyle.Render(fmt.Sprintf("  source: %s%s%s  ·  r refresh · q quit", src, age, state))
}

func gauge(ratio float64) string {
	clamped := ratio
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 1 {
		clamped = 1
	}
	filled := int(clamped*gaugeWidth + 0.5)

	style := okStyle
	switch {
	case ratio >= 0.9:
		style = critStyle
	case ratio >= 0.75:
		style = warnStyle
	}
	bar := style.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", gaugeWidth-filled))
	return bar + " " + valueStyle.Render(fmt.Sprintf("%5.1f%%", ratio*100))
}

func statusBadge(status quota.LimitStatus) string {
	switch status {
	case quota.StatusDenied:
		return critStyle.Render("● denied")
	case quota.StatusAllowedWarning:
		return warnStyle.Render("● near limit")
	default:
		return okStyle.Render("● allowed")
	}
}

func recommendationStyle(safe bool) lipgloss.Style {
	if safe {
		return okStyle
	}
	return warnStyle
}

func heatCell(cost, maxCost float64) string {
	if cost == 0 || maxCost == 0 {
		return dimStyle.Render("·")
	}
	shades := []string{"░", "▒", "▓", "█"}
	idx := int(cost / maxCost * float64(len(shades)))
	if idx >= len(shades) {
		idx = len(shades) - 1
	}
	return okStyle.Render(shades[idx])
}

// formatCountdown shows the reset countdown relative to when the
// snapshot was taken, continuing to tick down between refreshes.
func formatCountdown(resetInSeconds float64, lastUpdated time.Time) string {
	remaining := resetInSeconds - time.Since(lastUpdated).Seconds()
	if remaining < 0 {
		remaining = 0
	}
	return formatDuration(remaining)
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func padRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
