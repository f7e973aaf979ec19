package modlog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

// Entry is one moderation-log event. RecordID cross-references the
// punishment record a log line belongs to, when there is one.
type Entry struct {
	Level       string
	UserID      string
	ModeratorID string
	Event       string
	RecordID    string
	Details     string
	CreatedAt   time.Time
}

// Logger emits moderation events to the process log and, through the
// notifier, to the mod-log channel. The notifier is attached by the bot
// after the session exists.
type Logger struct {
	logger *zap.Logger
	notify func(context.Context, Entry)
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) SetNotifier(notify func(context.Context, Entry)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, level, userID, moderatorID, event, recordID, details string) {
	entry := Entry{
		Level:       level,
		UserID:      userID,
		ModeratorID: moderatorID,
		Event:       event,
		RecordID:    recordID,
		Details:     details,
		CreatedAt:   time.Now(),
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("modlog",
		zap.String("level", level),
		zap.String("user_id", userID),
		zap.String("moderator_id", moderatorID),
		zap.String("event", event),
		zap.String("record_id", recordID),
		zap.String("details", details))
}
