package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/config"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/storage"
)

func TestClampFieldKeepsValidUTF8(t *testing.T) {
	long := strings.Repeat("日", embedFieldLimit+50)
	got := clampField(long)
	if !utf8.ValidString(got) {
		t.Fatalf("clamped field is not valid UTF-8")
	}
	if utf8.RuneCountInString(got) != embedFieldLimit {
		t.Fatalf("rune count = %d, want %d", utf8.RuneCountInString(got), embedFieldLimit)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("missing ellipsis: %q", got[len(got)-8:])
	}

	short := "短い"
	if clampField(short) != short {
		t.Fatalf("short value changed")
	}
}

func TestClampReasonDefaultsAndClamps(t *testing.T) {
	if got := clampReason("", 80); got == "" {
		t.Fatalf("empty reason not defaulted")
	}
	got := clampReason(strings.Repeat("é", 100), 80)
	if !utf8.ValidString(got) || utf8.RuneCountInString(got) != 80 {
		t.Fatalf("clamped reason invalid: %d runes", utf8.RuneCountInString(got))
	}
}

func TestEditEmbedShowsPreviousVersion(t *testing.T) {
	b := &Bot{cfg: config.DefaultConfig()}
	msg := storage.ArchivedMessage{
		AuthorID:  "u1",
		ChannelID: "c1",
		Content:   "original",
		Edits: []storage.MessageEdit{
			{Content: "first edit"},
			{Content: "second edit"},
		},
	}

	embed := b.buildMessageEditEmbed(msg, "second edit")
	var before, after string
	for _, field := range embed.Fields {
		switch field.Name {
		case "Before":
			before = field.Value
		case "After":
			after = field.Value
		}
	}
	if before != "first edit" {
		t.Fatalf("before = %q, want the previous edit", before)
	}
	if after != "second edit" {
		t.Fatalf("after = %q", after)
	}
}
