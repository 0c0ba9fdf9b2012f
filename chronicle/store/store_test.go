package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
)

func sampleSummary() *chronicle.Summary {
	return &chronicle.Summary{
		MostActiveUsers: []chronicle.UserActivity{{Name: "Alice", Count: 12}},
		Poem:            "a short poem",
		EmojiStats:      map[string]int{"😂": 3},
		ActivityByDate:  map[string]int{"2024-08-24": 4},
		SentimentByDate: []chronicle.SentimentResult{{Date: "2024-08-24", Score: 0.4}},
		MessageCategories: map[string][]string{
			"funny": {"nice picture"},
		},
	}
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open("", nil)
	require.Error(t, err)
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := Open(filepath.Join(t.TempDir(), "results"), nil)
	require.NoError(t, err)
	defer cache.Close()

	want := sampleSummary()
	cache.Put("abc123", want)

	got, ok := cache.Get("abc123")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestGetMiss(t *testing.T) {
	t.Parallel()

	cache, err := Open(filepath.Join(t.TempDir(), "results"), nil)
	require.NoError(t, err)
	defer cache.Close()

	got, ok := cache.Get("missing")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestReopenPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results")

	cache, err := Open(path, nil)
	require.NoError(t, err)
	cache.Put("abc123", sampleSummary())
	require.NoError(t, cache.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("abc123")
	require.True(t, ok)
	require.Equal(t, sampleSummary(), got)
}
