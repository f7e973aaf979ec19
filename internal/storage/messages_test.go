package storage

import (
	"testing"
	"time"
)

func TestPreviousContent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := ArchivedMessage{Content: "original"}

	if got := msg.PreviousContent(); got != "original" {
		t.Fatalf("unedited message: %q", got)
	}

	msg.Edits = append(msg.Edits, MessageEdit{Content: "first edit", Timestamp: at})
	if got := msg.PreviousContent(); got != "original" {
		t.Fatalf("after first edit: %q, want create-time content", got)
	}

	msg.Edits = append(msg.Edits, MessageEdit{Content: "second edit", Timestamp: at.Add(time.Minute)})
	if got := msg.PreviousContent(); got != "first edit" {
		t.Fatalf("after second edit: %q, want the first edit", got)
	}
}
