package chronicle

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// lineGrammar is one accepted transcript line shape. Grammars are tried in
// slice order per line and the first match wins, so the more specific
// bracketed form must stay ahead of the dashed forms.
type lineGrammar struct {
	name string
	re   *regexp.Regexp
}

// Every grammar captures exactly (timestampText, sender, messageText).
var lineGrammars = []lineGrammar{
	{"bracketed-24h", regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{4},\s\d{1,2}:\d{2}:\d{2})\]\s(.*?):\s(.*)$`)},
	{"dashed-12h", regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}(?::\d{2})?\s(?:AM|PM)) - (.*?): (.*)$`)},
	{"dashed-24h", regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}(?::\d{2})?) - (.*?): (.*)$`)},
}

// Timestamp layouts are tried in order until one parses. The day/month
// ambiguity between locales is resolved by ordering, same as layout lists in
// locale-tolerant exporters: the four-digit-year form is day-first, the
// two-digit-year AM/PM forms are month-first.
var timestampLayouts = []string{
	"2/1/2006, 15:04:05",
	"1/2/06, 3:04:05 PM",
	"1/2/06, 3:04 PM",
	"2/1/06, 15:04:05",
	"2/1/06, 15:04",
}

// Tokenize converts a raw transcript into ordered Message candidates.
//
// Lines that match no grammar are treated as continuations of the previous
// message (space-joined) when one exists, and discarded otherwise. Lines whose
// timestamp cannot be parsed by any layout are logged and dropped; parsing
// always continues. All produced messages are KindContent; classification is
// a separate pass.
func Tokenize(content string, log *slog.Logger) []Message {
	if log == nil {
		log = slog.Default()
	}

	var msgs []Message
	for n, raw := range strings.Split(content, "\n") {
		line := NormalizeLine(raw)
		if line == "" {
			continue
		}

		g, groups := matchGrammar(line)
		if groups == nil {
			// Continuation of the previous message, if any.
			if len(msgs) > 0 {
				last := &msgs[len(msgs)-1]
				last.Text = last.Text + " " + line
			}
			continue
		}

		ts, ok := parseTimestamp(groups[1])
		if !ok {
			log.Warn("line_dropped", "reason", "unparsable_timestamp", "line", n+1, "timestamp", groups[1], "grammar", g.name)
			continue
		}

		msgs = append(msgs, Message{
			Timestamp: ts,
			Sender:    strings.TrimSpace(groups[2]),
			Text:      strings.TrimSpace(groups[3]),
			Kind:      KindContent,
		})
	}
	return msgs
}

func matchGrammar(line string) (lineGrammar, []string) {
	for _, g := range lineGrammars {
		if groups := g.re.FindStringSubmatch(line); groups != nil {
			return g, groups
		}
	}
	return lineGrammar{}, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
