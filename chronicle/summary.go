package chronicle

import (
	"fmt"
	"sort"
	"strings"
)

const (
	topActiveUsers  = 5
	topMediaSharers = 5
	topReactedMedia = 5
	// The insight prompt is built from at most this many time-stratified
	// messages.
	insightSampleSize = 100
)

// UserActivity is one sender with a count, used for active-user and
// media-sharer rankings.
type UserActivity struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ThreadStat is the surfaced form of a reconstructed thread.
type ThreadStat struct {
	Starter      string `json:"starter"`
	FirstMessage string `json:"first_message"`
	Replies      int    `json:"replies"`
	Reactions    int    `json:"reactions"`
}

// MediaTypeStat is the per-subtype share of all media.
type MediaTypeStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MediaStats summarizes all detected media shares.
type MediaStats struct {
	Total      int                      `json:"total"`
	PerType    map[string]MediaTypeStat `json:"per_type"`
	TopSharers []UserActivity           `json:"top_sharers"`
	TopReacted []MediaItem              `json:"top_reacted"`
}

// Insights is the structured bundle returned by the external text-generation
// collaborator. Missing optional fields default to empty values.
type Insights struct {
	PopularTopics     []string            `json:"popular_topics"`
	MemorableMoments  []string            `json:"memorable_moments"`
	HolidayGreeting   string              `json:"holiday_greeting"`
	Poem              string              `json:"poem"`
	MessageCategories map[string][]string `json:"message_categories"`
}

// Summary is the full computed analytics document for one transcript.
type Summary struct {
	MostActiveUsers   []UserActivity      `json:"most_active_users"`
	PopularTopics     []string            `json:"popular_topics"`
	MemorableMoments  []string            `json:"memorable_moments"`
	EmojiStats        map[string]int      `json:"emoji_stats"`
	ActivityByDate    map[string]int      `json:"activity_by_date"`
	WordCloudData     []WordCount         `json:"word_cloud_data"`
	HolidayGreeting   string              `json:"holiday_greeting"`
	Poem              string              `json:"poem"`
	SentimentByDate   []SentimentResult   `json:"sentiment_by_date"`
	HappiestDays      []SentimentResult   `json:"happiest_days"`
	SaddestDays       []SentimentResult   `json:"saddest_days"`
	ViralThreads      []ThreadStat        `json:"viral_threads"`
	SharedLinks       []LinkRecord        `json:"shared_links"`
	MediaStats        MediaStats          `json:"media_stats"`
	MessageCategories map[string][]string `json:"message_categories"`
}

// MostActiveSenders ranks senders of non-system messages by message count,
// descending, ties broken by first appearance.
func MostActiveSenders(msgs []Message) []UserActivity {
	return topCounts(msgs, topActiveUsers, func(m Message) (string, bool) {
		return m.Sender, m.Kind != KindSystem
	})
}

// ActivityByDate counts non-system messages per calendar date.
func ActivityByDate(msgs []Message) map[string]int {
	out := make(map[string]int)
	for _, m := range msgs {
		if m.Kind == KindSystem {
			continue
		}
		out[m.DateKey()]++
	}
	return out
}

// BuildMediaStats aggregates totals, per-type shares, top sharers and the
// most reacted-to items. Reaction counts must already be attributed.
func BuildMediaStats(items []MediaItem) MediaStats {
	stats := MediaStats{Total: len(items), PerType: make(map[string]MediaTypeStat)}
	if len(items) == 0 {
		return stats
	}

	typeCounts := make(map[string]int)
	sharerCounts := make(map[string]int)
	var sharerOrder []string
	for _, it := range items {
		typeCounts[string(it.Type)]++
		if _, ok := sharerCounts[it.Sender]; !ok {
			sharerOrder = append(sharerOrder, it.Sender)
		}
		sharerCounts[it.Sender]++
	}

	for t, c := range typeCounts {
		stats.PerType[t] = MediaTypeStat{
			Count:   c,
			Percent: 100 * float64(c) / float64(len(items)),
		}
	}

	for _, s := range sharerOrder {
		stats.TopSharers = append(stats.TopSharers, UserActivity{Name: s, Count: sharerCounts[s]})
	}
	sort.SliceStable(stats.TopSharers, func(i, j int) bool {
		return stats.TopSharers[i].Count > stats.TopSharers[j].Count
	})
	if len(stats.TopSharers) > topMediaSharers {
		stats.TopSharers = stats.TopSharers[:topMediaSharers]
	}

	reacted := append([]MediaItem(nil), items...)
	sort.SliceStable(reacted, func(i, j int) bool { return reacted[i].Reactions > reacted[j].Reactions })
	if len(reacted) > topReactedMedia {
		reacted = reacted[:topReactedMedia]
	}
	stats.TopReacted = reacted

	return stats
}

// ThreadStats converts ranked threads to their surfaced form.
func ThreadStats(threads []Thread) []ThreadStat {
	out := make([]ThreadStat, 0, len(threads))
	for _, t := range threads {
		out = append(out, ThreadStat{
			Starter:      t.Seed.Sender,
			FirstMessage: t.Seed.Text,
			Replies:      t.Replies(),
			Reactions:    t.Reactions,
		})
	}
	return out
}

// BuildInsightPrompt assembles the text-generation prompt from a
// time-stratified sample of up to 100 content messages.
func BuildInsightPrompt(msgs []Message) string {
	var content []Message
	for _, m := range msgs {
		if m.IsContent() {
			content = append(content, m)
		}
	}

	sample := content
	if len(content) > insightSampleSize {
		sample = make([]Message, 0, insightSampleSize)
		stride := float64(len(content)) / float64(insightSampleSize)
		for i := 0; i < insightSampleSize; i++ {
			sample = append(sample, content[int(float64(i)*stride)])
		}
	}

	var b strings.Builder
	b.WriteString("Analyze this group chat and provide insights:\n")
	b.WriteString("1. Key topics discussed (max 5)\n")
	b.WriteString("2. Three most memorable moments\n")
	b.WriteString("3. A festive holiday greeting based on the chat context\n")
	b.WriteString("4. A short rhyming poem about the group\n")
	b.WriteString("5. Free-form categorized message groups\n\n")
	b.WriteString("Chat sample:\n")
	for _, m := range sample {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Sender, m.Text)
	}
	return b.String()
}

func topCounts(msgs []Message, limit int, key func(Message) (string, bool)) []UserActivity {
	counts := make(map[string]int)
	var order []string
	for _, m := range msgs {
		k, ok := key(m)
		if !ok || k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]UserActivity, 0, len(order))
	for _, k := range order {
		out = append(out, UserActivity{Name: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
