package chronicle

import "strings"

// Exported WhatsApp transcripts are littered with bidirectional and zero-width
// format characters, often interleaved inside ordinary words. They are deleted
// outright; the non-breaking space variants are folded to a plain space so
// timestamp tokens still split correctly.
var lineNormalizer = strings.NewReplacer(
	"\u200E", "", // left-to-right mark
	"\u200F", "", // right-to-left mark
	"\u202A", "", // left-to-right embedding
	"\u202B", "", // right-to-left embedding
	"\u202C", "", // pop directional formatting
	"\u202D", "", // left-to-right override
	"\u202E", "", // right-to-left override
	"\u200B", "", // zero width space
	"\u200C", "", // zero width non-joiner
	"\u200D", "", // zero width joiner
	"\uFEFF", "", // byte order mark
	"\u00A0", " ", // no-break space
	"\u202F", " ", // narrow no-break space
)

// NormalizeLine removes the fixed set of bidi/zero-width control characters
// from a raw transcript line and trims surrounding whitespace. It is a pure
// function; the output never contains a character from the removal set, no
// matter how many occurred or where.
func NormalizeLine(line string) string {
	return strings.TrimSpace(lineNormalizer.Replace(line))
}
