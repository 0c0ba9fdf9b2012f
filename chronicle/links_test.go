package chronicle

import (
	"testing"
	"time"
)

func TestAggregateLinks_FirstOccurrenceContext(t *testing.T) {
	t.Parallel()

	msgs := []Message{
		contentMsg(0, "Alice", "check this out https://example.com/talk 🎉"),
		contentMsg(time.Minute, "Bob", "again https://example.com/talk 🔥🔥"),
	}
	links := AggregateLinks(msgs)
	if len(links) != 1 {
		t.Fatalf("len(links)=%d, want 1", len(links))
	}
	l := links[0]
	if l.URL != "https://example.com/talk" {
		t.Fatalf("url=%q", l.URL)
	}
	if l.Context != "check this out https://example.com/talk 🎉" {
		t.Fatalf("context=%q, want the first mention's text", l.Context)
	}
}

func TestAggregateLinks_WindowReplies(t *testing.T) {
	t.Parallel()

	msgs := []Message{
		contentMsg(0, "Alice", "read https://blog.example/post"),
		contentMsg(10*time.Minute, "Bob", "great article 👏"),
		contentMsg(20*time.Minute, "Carol", "agreed"),
		contentMsg(5*time.Hour, "Dan", "too late to count"),
	}
	links := AggregateLinks(msgs)
	if len(links) != 1 {
		t.Fatalf("len(links)=%d, want 1", len(links))
	}
	if links[0].Replies != 2 {
		t.Fatalf("replies=%d, want 2 (window excludes the late message)", links[0].Replies)
	}
	if links[0].Reactions != 1 {
		t.Fatalf("reactions=%d, want 1", links[0].Reactions)
	}
}

func TestAggregateLinks_RepeatMentionDoubleCounts(t *testing.T) {
	t.Parallel()

	// The same URL mentioned twice gets window contributions per mention.
	// This mirrors the aggregator's documented long-standing behavior.
	msgs := []Message{
		contentMsg(0, "Alice", "see https://example.com/x"),
		contentMsg(time.Minute, "Bob", "nice find"),
		contentMsg(2*time.Minute, "Carol", "bump https://example.com/x"),
	}
	links := AggregateLinks(msgs)
	if len(links) != 1 {
		t.Fatalf("len(links)=%d, want 1", len(links))
	}
	// Mention 1 window: nice find + bump = 2 replies; mention 2 window: 0.
	if links[0].Replies != 2 {
		t.Fatalf("replies=%d, want 2", links[0].Replies)
	}
}

func TestAggregateLinks_TopTenByEngagement(t *testing.T) {
	t.Parallel()

	var msgs []Message
	offset := time.Duration(0)
	for i := 0; i < 12; i++ {
		url := "https://site.example/page" + string(rune('a'+i))
		msgs = append(msgs, contentMsg(offset, "Alice", "look "+url))
		// Give later links more replies.
		for j := 0; j <= i; j++ {
			offset += time.Minute
			msgs = append(msgs, contentMsg(offset, "Bob", "reply number whatever"))
		}
		offset += engagementWindow + time.Hour
	}

	links := AggregateLinks(msgs)
	if len(links) != topLinks {
		t.Fatalf("len(links)=%d, want %d", len(links), topLinks)
	}
	for i := 1; i < len(links); i++ {
		if links[i].Engagement() > links[i-1].Engagement() {
			t.Fatalf("links not sorted by engagement at %d", i)
		}
	}
}

func TestAggregateLinks_IgnoresNonContent(t *testing.T) {
	t.Parallel()

	msgs := []Message{
		{Timestamp: baseTime, Sender: "x", Text: "check https://spam.example now", Kind: KindSystem},
	}
	if links := AggregateLinks(msgs); len(links) != 0 {
		t.Fatalf("len(links)=%d, want 0", len(links))
	}
}
