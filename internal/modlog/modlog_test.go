package modlog

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLogInvokesNotifier(t *testing.T) {
	logger := NewLogger(zap.NewNop())

	var got Entry
	logger.SetNotifier(func(ctx context.Context, entry Entry) {
		got = entry
	})

	logger.Log(context.Background(), LevelWarn, "u1", "m1", "mute", "rec-1", "duration=2h")
	if got.Level != LevelWarn || got.UserID != "u1" || got.Event != "mute" {
		t.Fatalf("entry = %+v", got)
	}
	if got.RecordID != "rec-1" {
		t.Fatalf("record id = %q", got.RecordID)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestLogWithoutNotifierDoesNotPanic(t *testing.T) {
	logger := NewLogger(zap.NewNop())
	logger.Log(context.Background(), LevelInfo, "u1", "", "note", "", "")
}
