package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/overview"
	"github.com/Dicklesworthstone/sfh/internal/tui/layout"
)

// maxErrorLines bounds the wrapped error text in the detail pane
const maxErrorLines = 8

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}
	if m.bannerVisible() {
		sections = append(sections, m.renderBanner())
	}
	footer := m.renderFooter()
	used := len(sections) + lipgloss.Height(footer)
	sections = append(sections, m.renderBody(m.height-used), footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	parts := []string{m.styles.Header.Render("sfh")}

	total := m.counts.Total()
	parts = append(parts, m.styles.Bold.Render(fmt.Sprintf("%d %s", total, plural(total, "account", "accounts"))))

	for _, c := range []struct {
		kinds []account.Kind
		label string
	}{
		{[]account.Kind{account.KindIdle}, overview.LabelActive},
		{[]account.Kind{account.KindBusy}, "Busy"},
		{[]account.Kind{account.KindLoggingIn, account.KindLoggingInAgain}, overview.LabelLoggingIn},
		{[]account.Kind{account.KindFatalError}, "Error"},
	} {
		n := 0
		for _, k := range c.kinds {
			n += m.counts[k]
		}
		if n == 0 {
			continue
		}
		text := fmt.Sprintf("%s %d %s", m.icons.StateIcon(c.kinds[0]), n, strings.ToLower(c.label))
		parts = append(parts, m.styles.State(c.kinds[0]).Render(text))
	}

	if m.paused {
		parts = append(parts, m.styles.Warning.Render("PAUSED"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderBanner() string {
	text := fmt.Sprintf("%s Update available: %s (current %s)", m.icons.Update, m.update.NewVersion, m.update.CurrentVer)
	if m.update.ReleaseURL != "" {
		text += "  " + m.update.ReleaseURL
	}
	text += "  [i] ignore"
	return m.styles.Banner.Render(layout.Truncate(text, m.width-2))
}

func (m Model) renderBody(height int) string {
	if height < 1 {
		height = 1
	}
	if len(m.rows) == 0 {
		return m.styles.Dim.Render("  No accounts. Add [[accounts]] to the config or run with --simulate.")
	}

	if m.tier >= layout.TierSplit {
		left, right := layout.SplitProportions(m.width)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTable(left, height),
			"  ",
			m.renderDetail(right),
		)
	}
	if m.showDetail {
		return m.renderDetail(m.width - 2)
	}
	return m.renderTable(m.width, height)
}

// renderTable draws the server groups and account rows, scrolled so the
// cursor stays visible.
func (m Model) renderTable(width, height int) string {
	cols := layout.ColumnsForWidth(width - 2)

	lines := []string{m.renderColumnHeader(cols)}
	cursorLine := 0
	idx := 0
	for _, s := range m.summaries {
		serverLine := fmt.Sprintf("%s %s  %s", m.icons.Server, s.Code, s.Ident.Key)
		crawl := fmt.Sprintf("  %s %s", m.icons.Crawl, s.Progress)
		lines = append(lines, m.styles.ServerLine.Render(layout.Truncate(serverLine, width-lipgloss.Width(crawl)))+m.styles.Dim.Render(crawl))

		for _, row := range s.Rows {
			selected := idx == m.cursor
			if selected {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderRow(row, selected, cols))
			idx++
		}
	}

	start := 0
	if cursorLine >= height {
		start = cursorLine - height + 1
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderColumnHeader(cols layout.Columns) string {
	cells := []string{layout.Fit("STATUS", cols.Status)}
	if cols.Server > 0 {
		cells = append(cells, layout.Fit("SRV", cols.Server))
	}
	cells = append(cells, layout.Fit("NAME", cols.Name), layout.FitLeft("FIGHT", cols.Countdown))
	if cols.AutoBattle > 0 {
		cells = append(cells, layout.Fit("AUTO", cols.AutoBattle))
	}
	if cols.Progress > 0 {
		cells = append(cells, layout.FitLeft("CRAWL", cols.Progress))
	}
	return m.styles.Dim.Render("  " + strings.Join(cells, " "))
}

func (m Model) renderRow(row overview.AccountRow, selected bool, cols layout.Columns) string {
	pointer := "  "
	if selected {
		pointer = m.styles.Cursor.Render(layout.Fit(m.icons.Pointer, 2))
	}

	status := m.styles.State(row.Facts.Kind).Render(
		layout.Fit(m.icons.StateIcon(row.Facts.Kind)+" "+row.Facts.Label, cols.Status))

	var rest []string
	if cols.Server > 0 {
		rest = append(rest, layout.Fit(row.ServerCode, cols.Server))
	}
	rest = append(rest,
		layout.Fit(row.DisplayName, cols.Name),
		layout.FitLeft(m.icons.Indicator(row.Facts.Countdown), cols.Countdown))
	if cols.AutoBattle > 0 {
		rest = append(rest, layout.Fit(m.icons.Indicator(row.Facts.AutoBattle), cols.AutoBattle))
	}
	if cols.Progress > 0 {
		rest = append(rest, layout.FitLeft(row.Progress, cols.Progress))
	}

	style := m.styles.Row
	if selected {
		style = m.styles.RowSelected
	}
	return pointer + status + " " + style.Render(strings.Join(rest, " "))
}

// renderDetail shows everything known about the selected account.
func (m Model) renderDetail(width int) string {
	row, ok := m.Selected()
	if !ok {
		return ""
	}
	inner := width - 4 // border + padding
	if inner < 10 {
		inner = 10
	}

	field := func(name, value string) string {
		return m.styles.Dim.Render(layout.Fit(name, 12)) + m.styles.Normal.Render(layout.Truncate(value, inner-12))
	}

	lines := []string{
		m.styles.BoxTitle.Render(layout.Truncate(row.DisplayName, inner-9)) + " " + m.styles.Dim.Render(row.Ident.Short()),
		field("Server", row.ServerCode+" "+row.ServerKey),
		m.styles.Dim.Render(layout.Fit("Status", 12)) + m.styles.State(row.Facts.Kind).Render(row.Facts.Label),
	}

	var errText string
	var updated, crawlSince time.Time
	if m.opts.Source != nil {
		if srv, acc, err := m.opts.Source.Lookup(row.Ident); err == nil {
			crawlSince = srv.Crawl.ChangedAt()
			updated = acc.Status.UpdatedAt()
			st, serr := acc.Status.Snapshot()
			switch s := account.Normalize(st).(type) {
			case account.Busy:
				lines = append(lines, field("Action", s.Reason))
			case account.FatalError:
				errText = s.Error()
			}
			if serr != nil {
				errText = serr.Error()
			}
			if game, ok := account.GameStateOf(st); ok && serr == nil && game.Character.Name != "" {
				lines = append(lines, field("Character", fmt.Sprintf("%s (level %d)", game.Character.Name, game.Character.Level)))
			}
		}
	}

	lines = append(lines,
		field("Next fight", m.icons.Indicator(row.Facts.Countdown)),
		field("Auto-battle", m.icons.Indicator(row.Facts.AutoBattle)),
	)
	crawlLine := row.Progress
	if !crawlSince.IsZero() {
		crawlLine += " since " + crawlSince.Local().Format("15:04:05")
	}
	lines = append(lines, field("Crawl", crawlLine))
	if !updated.IsZero() {
		age := m.lastRefresh.Sub(updated).Truncate(time.Second)
		if age < 0 {
			age = 0
		}
		lines = append(lines, field("Updated", age.String()+" ago"))
	}

	if errText != "" {
		wrapped := strings.Split(wordwrap.String(errText, inner), "\n")
		if len(wrapped) > maxErrorLines {
			wrapped = append(wrapped[:maxErrorLines-1], "…")
		}
		lines = append(lines, "", m.styles.Error.Render("Error"))
		for _, l := range wrapped {
			lines = append(lines, m.styles.Normal.Render(l))
		}
	}

	return m.styles.Box.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	status := fmt.Sprintf("updated %s  every %s", m.lastRefresh.Format("15:04:05"), m.interval)
	if m.paused {
		status += "  paused"
	}
	if n := m.counts.Unhealthy(); n > 0 && m.keys.Revive.Enabled() {
		status += fmt.Sprintf("  %d failed", n)
	}
	bar := m.styles.StatusBar.Render(status)
	if m.notice != "" {
		style := m.styles.Dim
		if m.noticeErr {
			style = m.styles.Error
		}
		bar += "  " + style.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		bar,
		m.help.View(m.keys),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
