// Package dashboard is the live account overview: one row per account,
// grouped by server, redrawn on a fixed interval from the status cells.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/overview"
	"github.com/Dicklesworthstone/sfh/internal/server"
	"github.com/Dicklesworthstone/sfh/internal/tui/icons"
	"github.com/Dicklesworthstone/sfh/internal/tui/layout"
	"github.com/Dicklesworthstone/sfh/internal/tui/theme"
	"github.com/Dicklesworthstone/sfh/internal/updater"
)

// DefaultRefreshInterval is the default redraw interval
const DefaultRefreshInterval = 250 * time.Millisecond

// Source is what the dashboard reads. *server.Registry satisfies it.
type Source interface {
	Servers() []*server.Server
	Lookup(id account.Ident) (*server.Server, *account.Account, error)
}

// Controller is implemented by sources that can act on accounts. The revive
// and log out keys stay disabled for sources without it.
type Controller interface {
	Revive(id account.Ident) error
	Logout(id account.Ident) error
}

// tickMsg drives the periodic refresh
type tickMsg time.Time

// updateMsg carries the result of the background release check
type updateMsg struct {
	info *updater.UpdateInfo
}

// ReloadMsg applies a changed configuration to a running dashboard.
type ReloadMsg struct {
	Styles          *theme.Styles
	Icons           icons.IconSet
	RefreshInterval time.Duration
}

// Options configures a dashboard Model.
type Options struct {
	Source          Source
	RefreshInterval time.Duration
	// Styles defaults to theme.DefaultStyles
	Styles *theme.Styles
	Icons  icons.IconSet

	// Updates delivers at most one release check result; nil disables the banner
	Updates <-chan *updater.UpdateInfo
	// IgnoredVersion suppresses the banner for that release and older ones
	IgnoredVersion string
	// OnIgnore is called with the version the user chose to ignore
	OnIgnore func(version string)

	// Now returns the current time; tests pin it
	Now func() time.Time
}

// Model is the dashboard model
type Model struct {
	opts Options
	keys KeyMap
	help help.Model

	styles   theme.Styles
	icons    icons.IconSet
	interval time.Duration

	width  int
	height int
	tier   layout.Tier

	summaries   []overview.ServerSummary
	rows        []overview.AccountRow
	counts      overview.Counts
	cursor      int
	selected    account.Ident
	lastRefresh time.Time

	showDetail bool
	paused     bool
	quitting   bool

	// notice is the result of the last account action
	notice    string
	noticeErr bool

	update *updater.UpdateInfo
}

// New creates a dashboard model
func New(opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Styles == nil {
		s := theme.DefaultStyles()
		opts.Styles = &s
	}
	if opts.Icons == (icons.IconSet{}) {
		opts.Icons = icons.Detect("auto")
	}

	h := help.New()
	h.Styles.ShortKey = opts.Styles.Cursor
	h.Styles.ShortDesc = opts.Styles.Help
	h.Styles.FullKey = opts.Styles.Cursor
	h.Styles.FullDesc = opts.Styles.Help

	m := Model{
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     h,
		styles:   *opts.Styles,
		icons:    opts.Icons,
		interval: opts.RefreshInterval,
		width:    80,
		height:   24,
		tier:     layout.TierForWidth(80),
	}
	if _, ok := opts.Source.(Controller); ok {
		m.keys.Revive.SetEnabled(true)
		m.keys.Logout.SetEnabled(true)
	}
	m.refresh(opts.Now())
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForUpdate())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForUpdate() tea.Cmd {
	ch := m.opts.Updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		info, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg{info: info}
	}
}

// refresh rebuilds the summaries at now and keeps the cursor on the same
// account when it still exists.
func (m *Model) refresh(now time.Time) {
	var servers []*server.Server
	if m.opts.Source != nil {
		servers = m.opts.Source.Servers()
	}
	m.summaries = overview.Summarize(servers, now)
	m.rows = overview.Rows(m.summaries)
	m.counts = overview.CountStates(m.summaries)
	m.lastRefresh = now

	if m.selected != (account.Ident{}) {
		for i, r := range m.rows {
			if r.Ident == m.selected {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.rows) == 0 {
		m.selected = account.Ident{}
		m.showDetail = false
		return
	}
	m.selected = m.rows[m.cursor].Ident
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// Selected returns the row under the cursor.
func (m Model) Selected() (overview.AccountRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return overview.AccountRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) bannerVisible() bool {
	return updater.ShouldNotify(m.update, m.opts.IgnoredVersion)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tier = layout.TierForWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.paused {
			m.refresh(m.opts.Now())
		}
		return m, m.tick()

	case updateMsg:
		m.update = msg.info
		m.keys.Ignore.SetEnabled(m.bannerVisible())
		return m, nil

	case ReloadMsg:
		if msg.Styles != nil {
			m.styles = *msg.Styles
		}
		if msg.Icons != (icons.IconSet{}) {
			m.icons = msg.Icons
		}
		if msg.RefreshInterval > 0 {
			m.interval = msg.RefreshInterval
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.clampCursor()

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.rows) - 1
		m.clampCursor()

	case key.Matches(msg, m.keys.Detail):
		if len(m.rows) > 0 {
			m.showDetail = !m.showDetail
		}

	case key.Matches(msg, m.keys.Back):
		if m.showDetail {
			m.showDetail = false
		} else if m.help.ShowAll {
			m.help.ShowAll = false
		}

	case key.Matches(msg, m.keys.Refresh):
		m.refresh(m.opts.Now())

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, m.keys.Ignore):
		if m.bannerVisible() {
			m.opts.IgnoredVersion = m.update.NewVersion
			if m.opts.OnIgnore != nil {
				m.opts.OnIgnore(m.update.NewVersion)
			}
			m.keys.Ignore.SetEnabled(false)
		}

	case key.Matches(msg, m.keys.Revive):
		m.act("revived", Controller.Revive)

	case key.Matches(msg, m.keys.Logout):
		m.act("logged out", Controller.Logout)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// act applies fn to the selected account and redraws at once.
func (m *Model) act(done string, fn func(Controller, account.Ident) error) {
	ctl, ok := m.opts.Source.(Controller)
	row, selected := m.Selected()
	if !ok || !selected {
		return
	}
	if err := fn(ctl, row.Ident); err != nil {
		m.notice, m.noticeErr = err.Error(), true
	} else {
		m.notice, m.noticeErr = row.DisplayName+" "+done, false
	}
	m.refresh(m.opts.Now())
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
// The returned program handle is delivered to ready before the UI starts so
// callers can Send ReloadMsg.
func Run(ctx context.Context, opts Options, ready func(*tea.Program)) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if ready != nil {
		ready(p)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
