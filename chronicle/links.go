package chronicle

import (
	"regexp"
	"sort"
	"strings"
)

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Only the most engaging links are surfaced.
const topLinks = 10

// LinkRecord accumulates engagement for one distinct shared URL, keyed by the
// exact URL string. Context is the text of the first message that shared it.
type LinkRecord struct {
	URL       string `json:"url"`
	Context   string `json:"context"`
	Replies   int    `json:"replies"`
	Reactions int    `json:"reactions"`
}

// Engagement is replies + reactions.
func (l LinkRecord) Engagement() int { return l.Replies + l.Reactions }

// AggregateLinks extracts every URL shared in content messages and attributes
// engagement to it in two passes.
//
// Pass 1 registers each distinct URL with the emoji count of every message
// that mentions it; the context is set on first occurrence and never reset.
// Pass 2 counts, for every mention of the URL, all messages in the following
// engagement window as replies and sums their emoji counts as reactions.
// A URL mentioned more than once therefore gets window contributions counted
// once per mention; that double-counting is long-standing behavior the
// rankings are calibrated against, so it is kept as is.
//
// Returns the top links by engagement, descending.
func AggregateLinks(msgs []Message) []LinkRecord {
	records := make(map[string]*LinkRecord)
	var order []string

	for _, m := range msgs {
		if !m.IsContent() {
			continue
		}
		for _, url := range urlRe.FindAllString(m.Text, -1) {
			if rec, ok := records[url]; ok {
				rec.Reactions += CountEmojis(m.Text)
				continue
			}
			records[url] = &LinkRecord{
				URL:       url,
				Context:   m.Text,
				Reactions: CountEmojis(m.Text),
			}
			order = append(order, url)
		}
	}

	for _, url := range order {
		rec := records[url]
		needle := strings.ToLower(url)
		for i, m := range msgs {
			if !m.IsContent() || !strings.Contains(strings.ToLower(m.Text), needle) {
				continue
			}
			deadline := m.Timestamp.Add(engagementWindow)
			for _, follow := range msgs[i+1:] {
				if follow.Timestamp.After(deadline) {
					break
				}
				rec.Replies++
				rec.Reactions += CountEmojis(follow.Text)
			}
		}
	}

	out := make([]LinkRecord, 0, len(order))
	for _, url := range order {
		out = append(out, *records[url])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Engagement() > out[j].Engagement()
	})
	if len(out) > topLinks {
		out = out[:topLinks]
	}
	return out
}
