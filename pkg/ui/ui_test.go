package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/internal/player"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

type recorder struct {
	events []appevents.AppEvent
}

func (r *recorder) submit(e appevents.AppEvent) { r.events = append(r.events, e) }

func newTestModel(t *testing.T) (Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewModel(rec.submit, 10*time.Minute), rec
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func snapshot(titles ...string) snapshotMsg {
	return snapshotMsg{root: player.RootViewModelState{
		Player:  &player.VPlayer{Titles: titles},
		Library: &player.VLibrary{Dir: "/music", Count: len(titles)},
	}}
}

func TestModel_SnapshotFillsTable(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, snapshot("Intro", "Outro"))

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "Outro", rows[1][1])
	assert.Contains(t, m.View(), "/music (2 tracks)")
}

func TestModel_KeysSubmitEvents(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want appevents.AppEvent
	}{
		{"toggle", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, appevents.TogglePlay{}},
		{"next", runeKey('n'), appevents.NextTrack{}},
		{"prev", runeKey('p'), appevents.PrevTrack{}},
		{"increase", runeKey('+'), appevents.Increase{}},
		{"decrease", runeKey('-'), appevents.Decrease{}},
		{"sleep", runeKey('s'), appevents.StartSleepTimer{After: 10 * time.Minute}},
		{"rescan", runeKey('r'), appevents.LoadLibrary{Dir: "/music"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, rec := newTestModel(t)
			m, _ = update(t, m, snapshot("a", "b"))

			_, cmd := update(t, m, tt.msg)

			assert.Nil(t, cmd)
			assert.Equal(t, []appevents.AppEvent{tt.want}, rec.events)
		})
	}
}

func TestModel_EnterPlaysSelectedRow(t *testing.T) {
	m, rec := newTestModel(t)
	m, _ = update(t, m, snapshot("a", "b", "c"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []appevents.AppEvent{appevents.PlayTrack{Index: 1}}, rec.events)
}

func TestModel_EnterWithEmptyLibrary(t *testing.T) {
	m, rec := newTestModel(t)

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, rec.events)
}

func TestModel_SleepKeyCancelsArmedTimer(t *testing.T) {
	m, rec := newTestModel(t)
	m, _ = update(t, m, snapshotMsg{root: player.RootViewModelState{
		Player: &player.VPlayer{Titles: []string{"a"}, Title: "a", Playing: true, SleepArmed: true, SleepLeft: 5 * time.Minute},
	}})

	assert.Contains(t, m.View(), "Sleep in 5:00")

	_, _ = update(t, m, runeKey('s'))
	assert.Equal(t, []appevents.AppEvent{appevents.StartSleepTimer{}}, rec.events)
}

func TestModel_Quit(t *testing.T) {
	m, rec := newTestModel(t)

	_, cmd := update(t, m, runeKey('q'))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, rec.events)
}

func TestModel_ToastsAndErrors(t *testing.T) {
	m, _ := newTestModel(t)

	for _, text := range []string{"one", "two", "three", "four"} {
		m, _ = update(t, m, toastMsg{text: text})
	}
	m, _ = update(t, m, errorMsg{err: errors.New("boom")})

	assert.Equal(t, []string{"two", "three", "four"}, m.toasts)
	view := m.View()
	assert.NotContains(t, view, "one")
	assert.Contains(t, view, "Error: boom")
}

func TestHost_BuffersUntilAttached(t *testing.T) {
	h := NewHost()

	h.HandleNotify(player.RootViewModelState{Counter: &player.VCounter{N: 3}})
	h.Show("hello")
	h.HandleError(errors.New("bad"))

	require.Len(t, h.msgs, 3)
	assert.Equal(t, snapshotMsg{root: player.RootViewModelState{Counter: &player.VCounter{N: 3}}}, <-h.msgs)
	assert.Equal(t, toastMsg{text: "hello"}, <-h.msgs)
	assert.Equal(t, errorMsg{err: errors.New("bad")}, <-h.msgs)
}

func TestHost_DropsWhenFull(t *testing.T) {
	h := NewHost()

	for range hostQueueSize + 5 {
		h.Show("x")
	}

	assert.Len(t, h.msgs, hostQueueSize)
}

func TestHost_CoalescesSnapshotsWhenFull(t *testing.T) {
	h := NewHost()
	total := hostQueueSize + 5
	for i := range total {
		h.HandleNotify(player.RootViewModelState{Counter: &player.VCounter{N: i}})
	}
	require.Len(t, h.msgs, hostQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan tea.Msg, total)
	go h.forward(ctx, func(msg tea.Msg) { got <- msg })

	var seen []int
	for range hostQueueSize + 1 {
		select {
		case msg := <-got:
			snap, ok := msg.(snapshotMsg)
			require.True(t, ok)
			seen = append(seen, snap.root.Counter.N)
		case <-time.After(time.Second):
			t.Fatalf("only %d snapshots delivered", len(seen))
		}
	}

	assert.Equal(t, 0, seen[0])
	assert.Equal(t, hostQueueSize-1, seen[hostQueueSize-1])
	assert.Equal(t, total-1, seen[hostQueueSize], "newest snapshot is delivered last")

	h.HandleNotify(player.RootViewModelState{Counter: &player.VCounter{N: -1}})
	select {
	case msg := <-got:
		assert.Equal(t, -1, msg.(snapshotMsg).root.Counter.N)
	case <-time.After(time.Second):
		t.Fatal("snapshot after drain was not delivered")
	}
}
