package chronicle

import (
	"strings"
	"testing"
)

var removalSet = []string{
	"\u200E", "\u200F", "\u202A", "\u202B", "\u202C", "\u202D", "\u202E",
	"\u200B", "\u200C", "\u200D", "\uFEFF",
}

func TestNormalizeLine_RemovesControlCharacters(t *testing.T) {
	t.Parallel()

	in := "\u200E[24/08/2024, 21:35:29] \u200F+1 (917) 488-2434: \u202AAlice created this group\u202C"
	want := "[24/08/2024, 21:35:29] +1 (917) 488-2434: Alice created this group"
	if got := NormalizeLine(in); got != want {
		t.Fatalf("NormalizeLine=%q, want %q", got, want)
	}
}

func TestNormalizeLine_InterleavedInsideWords(t *testing.T) {
	t.Parallel()

	in := "A\u200Bl\u200Ci\u200Dce created this group"
	want := "Alice created this group"
	if got := NormalizeLine(in); got != want {
		t.Fatalf("NormalizeLine=%q, want %q", got, want)
	}
}

func TestNormalizeLine_ConsecutiveAndMixed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"\u200E\u200B\u202A[24/08/2024, 21:35:29] Bob: hi\u202C\u202C\u202C",
		"\u200E\u200Fplain \uFEFFtext",
		strings.Repeat("\u200B", 10) + "x",
	}
	for _, in := range cases {
		got := NormalizeLine(in)
		for _, c := range removalSet {
			if strings.Contains(got, c) {
				t.Fatalf("NormalizeLine(%q) kept control char %U", in, []rune(c)[0])
			}
		}
	}
}

func TestNormalizeLine_FoldsNonBreakingSpaces(t *testing.T) {
	t.Parallel()

	in := "9:35\u202FPM\u00A0hello"
	want := "9:35 PM hello"
	if got := NormalizeLine(in); got != want {
		t.Fatalf("NormalizeLine=%q, want %q", got, want)
	}
}

func TestNormalizeLine_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	if got := NormalizeLine("   hello  "); got != "hello" {
		t.Fatalf("NormalizeLine=%q, want %q", got, "hello")
	}
}
