package chronicle

import (
	"sort"
	"strings"
	"unicode"
)

// Emoji extraction covers the main emoji block. Skin-tone modifier code
// points are excluded so a toned emoji counts once, not twice.
const (
	emojiRangeLo     = 0x1F300
	emojiRangeHi     = 0x1F9FF
	skinToneRangeLo  = 0x1F3FB
	skinToneRangeHi  = 0x1F3FF
	wordCloudSize    = 50
	minWordRuneCount = 4
)

func isEmojiRune(r rune) bool {
	if r < emojiRangeLo || r > emojiRangeHi {
		return false
	}
	return r < skinToneRangeLo || r > skinToneRangeHi
}

// ExtractEmojis returns every emoji rune in s, in order, one entry per
// occurrence.
func ExtractEmojis(s string) []string {
	var out []string
	for _, r := range s {
		if isEmojiRune(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// CountEmojis returns the number of emoji runes in s. This is the pipeline's
// "reaction" measure for engagement scoring.
func CountEmojis(s string) int {
	n := 0
	for _, r := range s {
		if isEmojiRune(r) {
			n++
		}
	}
	return n
}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "then": {}, "than": {}, "them": {}, "they": {},
	"their": {}, "there": {}, "these": {}, "those": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "with": {}, "would": {}, "could": {},
	"should": {}, "about": {}, "after": {}, "again": {}, "because": {},
	"been": {}, "before": {}, "being": {}, "between": {}, "both": {},
	"does": {}, "doing": {}, "down": {}, "during": {}, "each": {}, "from": {},
	"have": {}, "having": {}, "here": {}, "into": {}, "just": {}, "like": {},
	"more": {}, "most": {}, "only": {}, "other": {}, "over": {}, "same": {},
	"some": {}, "such": {}, "thanks": {}, "very": {}, "were": {}, "will": {},
	"your": {}, "yours": {}, "also": {}, "dont": {}, "cant": {}, "yeah": {},
	"okay": {}, "going": {}, "know": {}, "think": {}, "really": {}, "want": {},
	"good": {}, "well": {}, "much": {}, "need": {}, "time": {},
}

// mediaTerms are export artifacts that leak through word tokenization; they
// never belong in a word cloud.
var mediaTerms = map[string]struct{}{
	"omitted": {}, "image": {}, "video": {}, "sticker": {}, "audio": {},
	"document": {}, "media": {}, "attached": {}, "deleted": {}, "message": {},
	"shared": {},
}

var contractionSuffixes = []string{"'ll", "'re", "'ve", "'d", "'m", "n't"}

// NormalizeWord lowercases a candidate token, strips surrounding punctuation,
// a trailing possessive 's and the common contraction suffixes. It returns
// the empty string when the word should be discarded from frequency counting:
// too short, purely numeric, URL-ish, a stop word, or media terminology.
func NormalizeWord(w string) string {
	w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
	w = strings.TrimSuffix(w, "'s")
	for _, suf := range contractionSuffixes {
		w = strings.TrimSuffix(w, suf)
	}

	if len([]rune(w)) < minWordRuneCount {
		return ""
	}
	if isNumeric(w) {
		return ""
	}
	if strings.Contains(w, "http") {
		return ""
	}
	if _, ok := stopWords[w]; ok {
		return ""
	}
	if _, ok := mediaTerms[w]; ok {
		return ""
	}
	return w
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// WordCount is one word-cloud entry.
type WordCount struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// ContentStats accumulates the global emoji and word frequencies of all
// content messages.
type ContentStats struct {
	EmojiCounts map[string]int
	WordCloud   []WordCount
}

// AnalyzeContent computes emoji and word frequencies over content messages
// only; system notices and media placeholders are skipped. The word cloud is
// the top entries by frequency, ties broken by first-encountered order.
func AnalyzeContent(msgs []Message) ContentStats {
	emoji := make(map[string]int)
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, m := range msgs {
		if !m.IsContent() {
			continue
		}
		for _, e := range ExtractEmojis(m.Text) {
			emoji[e]++
		}
		for _, tok := range strings.Fields(m.Text) {
			w := NormalizeWord(tok)
			if w == "" {
				continue
			}
			if _, ok := firstSeen[w]; !ok {
				firstSeen[w] = len(firstSeen)
			}
			counts[w]++
		}
	}

	words := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		words = append(words, WordCount{Text: w, Value: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Value != words[j].Value {
			return words[i].Value > words[j].Value
		}
		return firstSeen[words[i].Text] < firstSeen[words[j].Text]
	})
	if len(words) > wordCloudSize {
		words = words[:wordCloudSize]
	}

	return ContentStats{EmojiCounts: emoji, WordCloud: words}
}
