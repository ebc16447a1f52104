package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/internal/player"
	"github.com/rescp17/tunePlayer/internal/style"
	"github.com/rescp17/tunePlayer/internal/util"
)

const (
	maxToasts   = 3
	titleWidth  = 40
	tableHeight = 10
	barWidth    = 30
)

var columns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Title", Width: titleWidth},
}

// Model is the bubbletea model for the player screen. It renders the latest
// snapshot and turns key presses into app events through submit; it never
// touches app state directly.
type Model struct {
	submit     func(appevents.AppEvent)
	sleepTimer time.Duration

	state   player.RootViewModelState
	keys    keyMap
	help    help.Model
	table   table.Model
	spinner spinner.Model
	bar     progress.Model
	toasts  []string
	err     error
}

// NewModel returns a model that submits events with submit. sleepTimer is
// the duration armed by the sleep key.
func NewModel(submit func(appevents.AppEvent), sleepTimer time.Duration) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	t.SetStyles(style.NewTableStyles())

	return Model{
		submit:     submit,
		sleepTimer: sleepTimer,
		keys:       defaultKeyMap(),
		help:       help.New(),
		table:      t,
		spinner:    style.NewSpinner(),
		bar:        style.NewProgress(barWidth),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.applySnapshot(msg.root)
		return m, nil
	case toastMsg:
		m.toasts = append(m.toasts, msg.text)
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}
		return m, nil
	case errorMsg:
		m.err = msg.err
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			m.err = nil
			return m, cmd
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKey reports false for keys the table should handle.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Play):
		if len(m.table.Rows()) == 0 {
			return nil, true
		}
		m.submit(appevents.PlayTrack{Index: m.table.Cursor()})
	case key.Matches(msg, m.keys.Toggle):
		m.submit(appevents.TogglePlay{})
	case key.Matches(msg, m.keys.Next):
		m.submit(appevents.NextTrack{})
	case key.Matches(msg, m.keys.Prev):
		m.submit(appevents.PrevTrack{})
	case key.Matches(msg, m.keys.Increase):
		m.submit(appevents.Increase{})
	case key.Matches(msg, m.keys.Decrease):
		m.submit(appevents.Decrease{})
	case key.Matches(msg, m.keys.Sleep):
		after := m.sleepTimer
		if m.state.Player != nil && m.state.Player.SleepArmed {
			after = 0
		}
		m.submit(appevents.StartSleepTimer{After: after})
	case key.Matches(msg, m.keys.Rescan):
		if m.state.Library == nil {
			return nil, true
		}
		m.submit(appevents.LoadLibrary{Dir: m.state.Library.Dir})
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) applySnapshot(root player.RootViewModelState) {
	m.state = root
	if root.Player == nil {
		return
	}
	rows := make([]table.Row, len(root.Player.Titles))
	for i, title := range root.Player.Titles {
		rows[i] = table.Row{strconv.Itoa(i + 1), title}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("tunePlayer"))
	b.WriteString("\n\n")

	if lib := m.state.Library; lib != nil {
		if lib.Loading {
			fmt.Fprintf(&b, "%s Scanning %s...\n", m.spinner.View(), lib.Dir)
		} else {
			fmt.Fprintf(&b, "Library: %s (%d tracks)\n", lib.Dir, lib.Count)
		}
		if lib.Err != "" {
			b.WriteString(style.ErrorStyle.Render("Scan failed: "+lib.Err) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(style.BaseStyle.Render(m.table.View()))
	b.WriteString("\n\n")
	b.WriteString(m.nowPlayingView())

	if c := m.state.Counter; c != nil {
		fmt.Fprintf(&b, "Counter: %d\n", c.N)
	}
	for _, t := range m.toasts {
		b.WriteString(style.ToastStyle.Render(t) + "\n")
	}
	if m.err != nil {
		b.WriteString(style.ErrorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return style.DocStyle.Render(b.String())
}

func (m Model) nowPlayingView() string {
	p := m.state.Player
	if p == nil || p.Title == "" {
		return style.PausedStyle.Render("Nothing playing") + "\n"
	}

	var b strings.Builder
	status := style.PausedStyle.Render("paused ")
	if p.Playing {
		status = style.PlayingStyle.Render("playing")
	}
	fmt.Fprintf(&b, "%s %s %s\n",
		status,
		style.HighlightFontStyle.Render(util.PadRight(p.Title, titleWidth)),
		util.FormatDuration(p.Elapsed))

	if p.SleepArmed && m.sleepTimer > 0 {
		left := float64(p.SleepLeft) / float64(m.sleepTimer)
		fmt.Fprintf(&b, "Sleep in %s %s\n",
			util.FormatDuration(p.SleepLeft),
			m.bar.ViewAs(min(max(left, 0), 1)))
	}
	return b.String()
}
