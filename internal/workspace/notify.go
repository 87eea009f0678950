package workspace

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-facing message, shown by the TUI as a toast.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }

type logNotifier struct {
	logger *slog.Logger
}

func (l logNotifier) Notify(n Notice) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, n.Message, "notice", n.Level.String())
}
