package chronicle

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoMessages is returned when a transcript yields zero parsed messages.
// It marks a user-facing "not a valid export" condition, not an internal
// fault, and is surfaced before any remote collaborator is called.
var ErrNoMessages = errors.New("no messages could be parsed from the transcript")

// InsightGenerator is the external text-generation collaborator. Unlike
// sentiment scoring there is no meaningful default for its output, so a
// failure fails the whole analysis.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (Insights, error)
}

// ResultStore is the content-hash-keyed cache of complete summaries. Entries
// are write-once and never evicted. Implementations handle their own
// read/write failures by logging and reporting a miss; a broken store must
// never block producing a fresh result.
type ResultStore interface {
	Get(hash string) (*Summary, bool)
	Put(hash string, s *Summary)
}

// ContentHash returns the deterministic 128-bit digest of the raw uploaded
// bytes used as the result-cache key.
func ContentHash(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// Engine runs the full analytics pipeline. The zero value works for offline
// parsing-only flows; remote collaborators and caches are injected so tests
// can isolate them.
type Engine struct {
	Scorer   SentimentScorer
	Insights InsightGenerator

	// SentimentCache deduplicates identical remote scoring batches. Nil
	// means a fresh per-run cache.
	SentimentCache *SentimentCache

	// Results short-circuits repeat uploads by content hash. Nil disables
	// result caching.
	Results ResultStore

	Logger *slog.Logger
}

func (e *Engine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Analyze computes the full summary for one raw transcript. On a result-cache
// hit the previously computed summary is returned verbatim and no parsing or
// remote call happens. Parsing errors degrade locally; an insight-generation
// failure fails the request.
func (e *Engine) Analyze(ctx context.Context, raw []byte) (*Summary, error) {
	hash := ContentHash(raw)
	if e.Results != nil {
		if s, ok := e.Results.Get(hash); ok {
			e.log().Info("result_cache_hit", "hash", hash)
			return s, nil
		}
	}

	s, err := e.compute(ctx, raw)
	if err != nil {
		return nil, err
	}

	if e.Results != nil {
		e.Results.Put(hash, s)
	}
	return s, nil
}

func (e *Engine) compute(ctx context.Context, raw []byte) (*Summary, error) {
	log := e.log()

	msgs := Tokenize(string(raw), log)
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}
	items := Classify(msgs, log)
	AttributeMediaReactions(items, msgs)

	stats := AnalyzeContent(msgs)
	threads := BuildThreads(msgs)
	links := AggregateLinks(msgs)

	buckets := BuildDailyBuckets(msgs)
	sentiments := AggregateSentiment(ctx, buckets, e.Scorer, e.SentimentCache, log)
	saddest, happiest := SentimentExtremes(sentiments)

	var insights Insights
	if e.Insights != nil {
		var err error
		insights, err = e.Insights.Generate(ctx, BuildInsightPrompt(msgs))
		if err != nil {
			return nil, fmt.Errorf("Analyze: generate insights: %w", err)
		}
	}
	if insights.MessageCategories == nil {
		insights.MessageCategories = map[string][]string{}
	}

	return &Summary{
		MostActiveUsers:   MostActiveSenders(msgs),
		PopularTopics:     insights.PopularTopics,
		MemorableMoments:  insights.MemorableMoments,
		EmojiStats:        stats.EmojiCounts,
		ActivityByDate:    ActivityByDate(msgs),
		WordCloudData:     stats.WordCloud,
		HolidayGreeting:   insights.HolidayGreeting,
		Poem:              insights.Poem,
		SentimentByDate:   sentiments,
		HappiestDays:      happiest,
		SaddestDays:       saddest,
		ViralThreads:      ThreadStats(threads),
		SharedLinks:       links,
		MediaStats:        BuildMediaStats(items),
		MessageCategories: insights.MessageCategories,
	}, nil
}
