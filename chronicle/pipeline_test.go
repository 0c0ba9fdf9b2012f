package chronicle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

const sampleTranscript = `[24/8/2024, 21:35:46] Alice: hello there everyone
[24/8/2024, 21:36:02] Bob: hello there too, great evening
[24/8/2024, 21:40:10] Carol: image omitted
[24/8/2024, 21:41:00] Dan: nice picture 😂
[25/8/2024, 09:12:00] Alice: check https://example.com/launch today
[25/8/2024, 09:13:30] Bob: looks promising indeed
[25/8/2024, 09:14:00] Carol: Dave joined using this group's invite link
`

// fakeInsights counts Generate calls and returns a fixed bundle.
type fakeInsights struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeInsights) Generate(_ context.Context, prompt string) (Insights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Insights{}, f.err
	}
	return Insights{
		PopularTopics:    []string{"greetings"},
		HolidayGreeting:  "happy new year",
		Poem:             "a short poem",
		MemorableMoments: []string{"the launch"},
		MessageCategories: map[string][]string{
			"funny": {"nice picture"},
		},
	}, nil
}

func (f *fakeInsights) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memResultStore is an in-memory ResultStore for cache round-trip tests.
type memResultStore struct {
	mu   sync.Mutex
	m    map[string]*Summary
	gets int
}

func newMemResultStore() *memResultStore {
	return &memResultStore{m: make(map[string]*Summary)}
}

func (s *memResultStore) Get(hash string) (*Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	v, ok := s.m[hash]
	return v, ok
}

func (s *memResultStore) Put(hash string, sum *Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[hash] = sum
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	a := ContentHash([]byte("hello"))
	b := ContentHash([]byte("hello"))
	c := ContentHash([]byte("hello "))
	if a != b {
		t.Fatalf("same bytes hashed differently: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("different bytes share hash %q", a)
	}
	if len(a) != 32 {
		t.Fatalf("hash length %d, want 32 hex chars", len(a))
	}
}

func TestEngineAnalyze_FullSummary(t *testing.T) {
	t.Parallel()

	engine := &Engine{
		Scorer:   &fakeScorer{score: 0.6},
		Insights: &fakeInsights{},
	}
	s, err := engine.Analyze(context.Background(), []byte(sampleTranscript))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(s.MostActiveUsers) == 0 || s.MostActiveUsers[0].Name == "" {
		t.Fatalf("MostActiveUsers empty: %+v", s.MostActiveUsers)
	}
	if len(s.SentimentByDate) != 2 {
		t.Fatalf("SentimentByDate len=%d, want 2", len(s.SentimentByDate))
	}
	if s.Poem != "a short poem" {
		t.Fatalf("Poem=%q, want insight text", s.Poem)
	}
	if len(s.SharedLinks) != 1 || s.SharedLinks[0].URL != "https://example.com/launch" {
		t.Fatalf("SharedLinks=%+v, want the one shared URL", s.SharedLinks)
	}
	if s.MediaStats.Total != 1 {
		t.Fatalf("MediaStats.Total=%d, want 1", s.MediaStats.Total)
	}
	if len(s.ActivityByDate) != 2 {
		t.Fatalf("ActivityByDate len=%d, want 2", len(s.ActivityByDate))
	}

	// Media placeholder text must never leak into the word cloud.
	for _, wc := range s.WordCloudData {
		if strings.Contains(wc.Text, "media") || strings.Contains(wc.Text, "omitted") {
			t.Fatalf("word cloud contains media phrasing: %q", wc.Text)
		}
	}
}

func TestEngineAnalyze_EmptyTranscript(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{}
	insights := &fakeInsights{}
	engine := &Engine{Scorer: scorer, Insights: insights}

	_, err := engine.Analyze(context.Background(), []byte("no timestamps here\njust noise\n"))
	if !errors.Is(err, ErrNoMessages) {
		t.Fatalf("err=%v, want ErrNoMessages", err)
	}
	if scorer.callCount() != 0 || insights.callCount() != 0 {
		t.Fatalf("remote collaborators called on empty transcript: scorer=%d insights=%d",
			scorer.callCount(), insights.callCount())
	}
}

func TestEngineAnalyze_InsightFailureFailsRequest(t *testing.T) {
	t.Parallel()

	engine := &Engine{
		Scorer:   &fakeScorer{score: 0.1},
		Insights: &fakeInsights{err: errors.New("model unavailable")},
	}
	_, err := engine.Analyze(context.Background(), []byte(sampleTranscript))
	if err == nil {
		t.Fatal("Analyze succeeded, want insight-generation failure")
	}
}

func TestEngineAnalyze_ResultCacheHit(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{score: 0.5}
	insights := &fakeInsights{}
	store := newMemResultStore()
	engine := &Engine{
		Scorer:   scorer,
		Insights: insights,
		Results:  store,
	}

	first, err := engine.Analyze(context.Background(), []byte(sampleTranscript))
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	scorerCalls := scorer.callCount()
	insightCalls := insights.callCount()
	if scorerCalls == 0 || insightCalls == 0 {
		t.Fatalf("first run made no remote calls: scorer=%d insights=%d", scorerCalls, insightCalls)
	}

	second, err := engine.Analyze(context.Background(), []byte(sampleTranscript))
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if scorer.callCount() != scorerCalls || insights.callCount() != insightCalls {
		t.Fatalf("second identical upload made remote calls: scorer=%d insights=%d",
			scorer.callCount()-scorerCalls, insights.callCount()-insightCalls)
	}
	if second != first {
		t.Fatalf("cache hit returned a different summary pointer")
	}
}

func TestEngineAnalyze_DeterministicLocalFields(t *testing.T) {
	t.Parallel()

	run := func() *Summary {
		engine := &Engine{Scorer: &fakeScorer{score: 0.2}, Insights: &fakeInsights{}}
		s, err := engine.Analyze(context.Background(), []byte(sampleTranscript))
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		return s
	}
	a, b := run(), run()

	if len(a.WordCloudData) != len(b.WordCloudData) {
		t.Fatalf("word cloud sizes differ: %d vs %d", len(a.WordCloudData), len(b.WordCloudData))
	}
	for i := range a.WordCloudData {
		if a.WordCloudData[i] != b.WordCloudData[i] {
			t.Fatalf("word cloud entry %d differs: %+v vs %+v", i, a.WordCloudData[i], b.WordCloudData[i])
		}
	}
	if len(a.ViralThreads) != len(b.ViralThreads) {
		t.Fatalf("thread counts differ: %d vs %d", len(a.ViralThreads), len(b.ViralThreads))
	}
	for i := range a.MostActiveUsers {
		if a.MostActiveUsers[i] != b.MostActiveUsers[i] {
			t.Fatalf("active user %d differs", i)
		}
	}
}
