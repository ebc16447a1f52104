package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rescp17/tunePlayer/internal/player"
)

type snapshotMsg struct {
	root player.RootViewModelState
}

type toastMsg struct {
	text string
}

type errorMsg struct {
	err error
}

// Host carries the app's host-facing capabilities into the bubbletea
// program: snapshots, toasts and view-model errors all become tea messages,
// delivered in order. Messages produced before Attach are buffered. It is
// safe for use from any goroutine and never blocks the caller.
//
// When the queue is full, snapshots are coalesced into a single pending
// slot holding the newest one, delivered once the queue drains. Toasts and
// errors that do not fit are dropped.
type Host struct {
	msgs chan tea.Msg
	wake chan struct{}

	mu     sync.Mutex
	latest *snapshotMsg
}

const hostQueueSize = 256

func NewHost() *Host {
	return &Host{
		msgs: make(chan tea.Msg, hostQueueSize),
		wake: make(chan struct{}, 1),
	}
}

// Attach forwards queued and future messages to p until ctx is done.
func (h *Host) Attach(ctx context.Context, p *tea.Program) {
	go h.forward(ctx, p.Send)
}

func (h *Host) forward(ctx context.Context, deliver func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.msgs:
			deliver(msg)
			continue
		default:
		}

		if snap, ok := h.takeLatest(); ok {
			deliver(snap)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case msg := <-h.msgs:
			deliver(msg)
		case <-h.wake:
		}
	}
}

func (h *Host) takeLatest() (snapshotMsg, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return snapshotMsg{}, false
	}
	snap := *h.latest
	h.latest = nil
	return snap, true
}

func (h *Host) sendSnapshot(msg snapshotMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		select {
		case h.msgs <- msg:
			return
		default:
		}
	}
	h.latest = &msg
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *Host) send(msg tea.Msg) {
	select {
	case h.msgs <- msg:
	default:
		slog.Warn("UI message queue full, dropping message", "msg_type", fmt.Sprintf("%T", msg))
	}
}

// HandleNotify implements viewstate.Sink.
func (h *Host) HandleNotify(root player.RootViewModelState) {
	h.sendSnapshot(snapshotMsg{root: root})
}

// Show implements player.Toast.
func (h *Host) Show(message string) {
	slog.Info("Toast", "message", message)
	h.send(toastMsg{text: message})
}

// HandleError implements app.ErrorSink.
func (h *Host) HandleError(err error) {
	slog.Error("View-model error", "error", err)
	h.send(errorMsg{err: err})
}
