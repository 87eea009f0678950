package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/leaddesk/internal/workspace"
)

// maxToasts caps the toast queue; the oldest are dropped first.
const maxToasts = 5

type toast struct {
	id     int
	notice workspace.Notice
}

type toastExpiredMsg int

// pushToast queues a notice and schedules its removal.
func (m Model) pushToast(n workspace.Notice) (Model, tea.Cmd) {
	if n.Message == "" {
		return m, nil
	}
	if n.At.IsZero() {
		n.At = m.now()
	}
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, notice: n})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	if m.ws != nil {
		m.snapshot = m.ws.Snapshot()
	}
	return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg(id)
	})
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m Model) latestToast() (toast, bool) {
	if len(m.toasts) == 0 {
		return toast{}, false
	}
	return m.toasts[len(m.toasts)-1], true
}
