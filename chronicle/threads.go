package chronicle

import (
	"sort"
	"strings"
	"time"
)

// engagementWindow bounds how long a thread (or a shared link) keeps
// accumulating engagement after its seed.
const engagementWindow = 4 * time.Hour

// A message with fewer tokens than this never starts or joins a thread.
// Two tokens is the floor: the shared-token relatedness rule needs two tokens
// to fire at all, so anything shorter is conversational noise ("ok", "yes").
const minThreadTokens = 2

// Only the most engaging threads are surfaced.
const topThreads = 3

// Thread is a reconstructed sequence of temporally- and topically-related
// content messages treated as one engagement unit. Members includes the seed.
type Thread struct {
	Seed      Message   `json:"seed"`
	Members   []Message `json:"members"`
	Reactions int       `json:"reactions"`
}

// Replies is the thread's member count; with Reactions it forms the
// engagement score used for ranking.
func (t Thread) Replies() int { return len(t.Members) }

// Engagement is replies + reactions.
func (t Thread) Engagement() int { return len(t.Members) + t.Reactions }

// BuildThreads reconstructs engagement threads from content messages with a
// single-pass sliding window: exactly one thread accumulates at a time, a
// non-joining message closes it (emitted only with >= 2 members) and seeds
// the next one. Returns the top threads by engagement, descending.
func BuildThreads(msgs []Message) []Thread {
	var (
		emitted []Thread
		active  *Thread
	)

	closeActive := func() {
		if active != nil && len(active.Members) >= 2 {
			emitted = append(emitted, *active)
		}
		active = nil
	}

	for _, m := range msgs {
		if !m.IsContent() {
			continue
		}
		if len(strings.Fields(m.Text)) < minThreadTokens {
			continue
		}

		if active == nil {
			active = seedThread(m)
			continue
		}

		within := m.Timestamp.Sub(active.Seed.Timestamp) <= engagementWindow
		if within && related(active.Seed, m) {
			active.Members = append(active.Members, m)
			active.Reactions += CountEmojis(m.Text)
			continue
		}

		closeActive()
		active = seedThread(m)
	}
	closeActive()

	sort.SliceStable(emitted, func(i, j int) bool {
		return emitted[i].Engagement() > emitted[j].Engagement()
	})
	if len(emitted) > topThreads {
		emitted = emitted[:topThreads]
	}
	return emitted
}

func seedThread(m Message) *Thread {
	return &Thread{Seed: m, Members: []Message{m}, Reactions: CountEmojis(m.Text)}
}

// related is the thread-relatedness rule bag: a candidate joins when any one
// rule matches. The rules are deliberately kept exactly as enumerated, since
// ranking depends on their precise recall/precision characteristics.
func related(seed, candidate Message) bool {
	candText := strings.ToLower(candidate.Text)
	seedText := strings.ToLower(seed.Text)

	if strings.HasPrefix(candidate.Text, "@") {
		return true
	}
	if strings.Contains(candidate.Text, "replied to") {
		return true
	}
	if strings.Contains(candText, seedText) {
		return true
	}
	if sharesContentTokens(seedText, candText) {
		return true
	}
	// Question/answer pairing: short replies to a question join the thread.
	if strings.Contains(seed.Text, "?") && len(strings.Fields(candidate.Text)) <= 10 {
		return true
	}
	return false
}

// sharesContentTokens reports whether two lowercased texts share at least two
// whitespace-split tokens that are not all stop words.
func sharesContentTokens(a, b string) bool {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(a) {
		set[tok] = struct{}{}
	}

	var shared []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(b) {
		if _, dup := seen[tok]; dup {
			continue
		}
		if _, ok := set[tok]; ok {
			shared = append(shared, tok)
			seen[tok] = struct{}{}
		}
	}
	if len(shared) < 2 {
		return false
	}
	for _, tok := range shared {
		if _, ok := stopWords[tok]; !ok {
			return true
		}
	}
	return false
}
