package chronicle

import (
	"testing"
	"time"
)

func TestTokenize_BracketedFormat(t *testing.T) {
	t.Parallel()

	content := "[24/08/2024, 21:35:29] Alice: hello there\n[24/08/2024, 21:35:40] Bob: hello there too"
	msgs := Tokenize(content, nil)
	if len(msgs) != 2 {
		t.Fatalf("len(msgs)=%d, want 2", len(msgs))
	}
	if msgs[0].Sender != "Alice" || msgs[1].Sender != "Bob" {
		t.Fatalf("senders=%q,%q, want Alice,Bob", msgs[0].Sender, msgs[1].Sender)
	}
	want := time.Date(2024, 8, 24, 21, 35, 29, 0, time.UTC)
	if !msgs[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp=%v, want %v", msgs[0].Timestamp, want)
	}
	if msgs[0].Text != "hello there" {
		t.Fatalf("text=%q, want %q", msgs[0].Text, "hello there")
	}
}

func TestTokenize_DashedFormats(t *testing.T) {
	t.Parallel()

	content := "8/24/24, 9:35 PM - Alice: good evening\n24/08/24, 21:36 - Bob: indeed"
	msgs := Tokenize(content, nil)
	if len(msgs) != 2 {
		t.Fatalf("len(msgs)=%d, want 2", len(msgs))
	}
	if msgs[0].Timestamp.Hour() != 21 || msgs[0].Timestamp.Minute() != 35 {
		t.Fatalf("12h timestamp=%v, want 21:35", msgs[0].Timestamp)
	}
	if msgs[1].Timestamp.Hour() != 21 || msgs[1].Timestamp.Minute() != 36 {
		t.Fatalf("24h timestamp=%v, want 21:36", msgs[1].Timestamp)
	}
}

func TestTokenize_MultiLineContinuation(t *testing.T) {
	t.Parallel()

	content := "[24/08/2024, 21:35:29] Alice: first line\nsecond line\nthird line\n[24/08/2024, 21:36:00] Bob: ok"
	msgs := Tokenize(content, nil)
	if len(msgs) != 2 {
		t.Fatalf("len(msgs)=%d, want 2", len(msgs))
	}
	want := "first line second line third line"
	if msgs[0].Text != want {
		t.Fatalf("text=%q, want %q", msgs[0].Text, want)
	}
}

func TestTokenize_LeadingNoiseDiscarded(t *testing.T) {
	t.Parallel()

	// A non-matching line before any message has nothing to continue.
	content := "not a chat line\n[24/08/2024, 21:35:29] Alice: hi there friend"
	msgs := Tokenize(content, nil)
	if len(msgs) != 1 {
		t.Fatalf("len(msgs)=%d, want 1", len(msgs))
	}
	if msgs[0].Text != "hi there friend" {
		t.Fatalf("text=%q", msgs[0].Text)
	}
}

func TestTokenize_UnparsableTimestampDropped(t *testing.T) {
	t.Parallel()

	content := "[99/99/2024, 25:61:61] Alice: broken\n[24/08/2024, 21:35:29] Bob: fine"
	msgs := Tokenize(content, nil)
	if len(msgs) != 1 {
		t.Fatalf("len(msgs)=%d, want 1", len(msgs))
	}
	if msgs[0].Sender != "Bob" {
		t.Fatalf("sender=%q, want Bob", msgs[0].Sender)
	}
}

func TestTokenize_ControlCharactersStripped(t *testing.T) {
	t.Parallel()

	content := "\u200E[24/08/2024, 21:35:29] \u200FAlice: h\u200Bi there"
	msgs := Tokenize(content, nil)
	if len(msgs) != 1 {
		t.Fatalf("len(msgs)=%d, want 1", len(msgs))
	}
	if msgs[0].Sender != "Alice" || msgs[0].Text != "hi there" {
		t.Fatalf("sender=%q text=%q", msgs[0].Sender, msgs[0].Text)
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "\n\n\n", "no grammar matches here"} {
		if msgs := Tokenize(content, nil); len(msgs) != 0 {
			t.Fatalf("Tokenize(%q)=%d messages, want 0", content, len(msgs))
		}
	}
}

func TestTokenize_NonDecreasingTimestamps(t *testing.T) {
	t.Parallel()

	content := "[24/08/2024, 21:35:29] Alice: one two three\n" +
		"[24/08/2024, 21:35:29] Bob: same second\n" +
		"[24/08/2024, 21:36:00] Carol: later on"
	msgs := Tokenize(content, nil)
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("timestamps decreased at %d", i)
		}
	}
}
