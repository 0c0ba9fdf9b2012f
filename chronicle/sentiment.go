package chronicle

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

const (
	// Dates are batched into consecutive groups of at most this many.
	sentimentGroupSize = 3
	// At most this many groups call the remote scorer concurrently.
	sentimentConcurrency = 5
	// A date with more messages than this is position-sampled down to 5.
	sentimentSampleCap = 5
	// A group flushes a remote call whenever its accumulated sample reaches
	// this many messages.
	sentimentBatchSize = 15
	// How many happiest/saddest dates are surfaced.
	sentimentExtremes = 3
	// Each result carries at most this many sample messages.
	sentimentSamplesPerResult = 2
)

// SentimentScorer is the external sentiment collaborator: given an ordered
// list of message strings it returns a single score. The caller clamps the
// score to [-1, 1] and substitutes 0.0 on failure.
type SentimentScorer interface {
	Score(ctx context.Context, messages []string) (float64, error)
}

// DailyBucket holds the texts of all non-system messages sharing a calendar
// date. Read-only input to sentiment batching.
type DailyBucket struct {
	Date     string
	Messages []string
}

// SentimentResult is the per-date outcome: a clamped score plus up to two
// sample messages from that day.
type SentimentResult struct {
	Date           string   `json:"date"`
	Score          float64  `json:"score"`
	SampleMessages []string `json:"sample_messages"`
}

// BuildDailyBuckets groups message texts by local calendar date, ascending.
// System notices are excluded; media placeholders stay in (the remote-call
// filter drops them later).
func BuildDailyBuckets(msgs []Message) []DailyBucket {
	byDate := make(map[string][]string)
	var dates []string
	for _, m := range msgs {
		if m.Kind == KindSystem {
			continue
		}
		key := m.DateKey()
		if _, ok := byDate[key]; !ok {
			dates = append(dates, key)
		}
		byDate[key] = append(byDate[key], m.Text)
	}
	sort.Strings(dates)

	out := make([]DailyBucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, DailyBucket{Date: d, Messages: byDate[d]})
	}
	return out
}

// SentimentCache deduplicates remote scoring calls by exact batch content so
// identical batches across groups are not billed twice. It is an explicitly
// owned store with service lifetime; tests create fresh instances.
type SentimentCache struct {
	mu sync.Mutex
	m  map[string]float64
}

func NewSentimentCache() *SentimentCache {
	return &SentimentCache{m: make(map[string]float64)}
}

func (c *SentimentCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *SentimentCache) put(key string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = score
}

// AggregateSentiment produces exactly one SentimentResult per bucket date,
// ascending, using bounded-concurrency calls to the scorer.
//
// Dates are partitioned into consecutive groups of at most three; each group
// runs as its own task behind a counting admission gate of five permits.
// Within a group, per-date samples accumulate and flush a remote call at
// fifteen messages, attributing the score to every date processed so far; a
// final call covers the remainder. All attributions are merged after the
// tasks join, keeping only the first result per date. Failed remote calls
// degrade to a neutral 0.0 score for their batch; they never abort the run.
func AggregateSentiment(ctx context.Context, buckets []DailyBucket, scorer SentimentScorer, cache *SentimentCache, log *slog.Logger) []SentimentResult {
	if log == nil {
		log = slog.Default()
	}
	if cache == nil {
		cache = NewSentimentCache()
	}
	if len(buckets) == 0 || scorer == nil {
		return nil
	}

	var groups [][]DailyBucket
	for start := 0; start < len(buckets); start += sentimentGroupSize {
		end := start + sentimentGroupSize
		if end > len(buckets) {
			end = len(buckets)
		}
		groups = append(groups, buckets[start:end])
	}

	sem := make(chan struct{}, sentimentConcurrency)
	results := make([][]SentimentResult, len(groups))

	wg := sync.WaitGroup{}
	for gi, group := range groups {
		wg.Add(1)
		go func(gi int, group []DailyBucket) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[gi] = scoreGroup(ctx, group, scorer, cache, log)
		}(gi, group)
	}
	wg.Wait()

	// Single-threaded reduction: first attribution per date wins.
	seen := make(map[string]struct{})
	var merged []SentimentResult
	for _, rs := range results {
		for _, r := range rs {
			if _, dup := seen[r.Date]; dup {
				continue
			}
			seen[r.Date] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	return merged
}

// scoreGroup runs one date group: accumulate positional samples per date,
// flush a scoring call whenever the running sample reaches the batch size,
// attributing the score to every date processed so far, then one final call
// for any date still unattributed.
func scoreGroup(ctx context.Context, group []DailyBucket, scorer SentimentScorer, cache *SentimentCache, log *slog.Logger) []SentimentResult {
	var (
		out        []SentimentResult
		attributed = make(map[string]struct{})
		processed  []DailyBucket
		accum      []string
	)

	attribute := func(b DailyBucket, score float64) {
		out = append(out, SentimentResult{
			Date:           b.Date,
			Score:          score,
			SampleMessages: bucketSamples(b),
		})
		attributed[b.Date] = struct{}{}
	}

	for _, b := range group {
		accum = append(accum, sampleMessages(b.Messages)...)
		processed = append(processed, b)

		if len(accum) >= sentimentBatchSize {
			score := scoreBatch(ctx, accum, scorer, cache, log)
			for _, pb := range processed {
				attribute(pb, score)
			}
			accum = nil
		}
	}

	if len(accum) > 0 {
		score := scoreBatch(ctx, accum, scorer, cache, log)
		for _, pb := range processed {
			if _, done := attributed[pb.Date]; !done {
				attribute(pb, score)
			}
		}
	}
	return out
}

// scoreBatch filters media placeholders, consults the batch-content cache,
// calls the scorer, clamps, and caches. Empty filtered batches and failed
// calls short-circuit to neutral.
func scoreBatch(ctx context.Context, batch []string, scorer SentimentScorer, cache *SentimentCache, log *slog.Logger) float64 {
	filtered := make([]string, 0, len(batch))
	for _, s := range batch {
		if !IsMediaPlaceholder(s) {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return 0
	}

	key := strings.Join(filtered, "\n")
	if score, ok := cache.get(key); ok {
		return score
	}

	score, err := scorer.Score(ctx, filtered)
	if err != nil {
		log.Warn("sentiment_call_failed", "batch_size", len(filtered), "err", err)
		return 0
	}
	score = clampScore(score)
	cache.put(key, score)
	return score
}

func clampScore(s float64) float64 {
	switch {
	case s < -1:
		return -1
	case s > 1:
		return 1
	default:
		return s
	}
}

// sampleMessages picks representative positions (first, quarter, half,
// three-quarter, last) when a day has more messages than the cap, otherwise
// all of them.
func sampleMessages(msgs []string) []string {
	n := len(msgs)
	if n <= sentimentSampleCap {
		return append([]string(nil), msgs...)
	}
	idxs := []int{0, n / 4, n / 2, 3 * n / 4, n - 1}
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, msgs[i])
	}
	return out
}

// bucketSamples picks up to two non-placeholder messages to carry alongside
// the date's score.
func bucketSamples(b DailyBucket) []string {
	var out []string
	for _, s := range b.Messages {
		if IsMediaPlaceholder(s) {
			continue
		}
		out = append(out, s)
		if len(out) == sentimentSamplesPerResult {
			break
		}
	}
	return out
}

// SentimentExtremes returns the lowest-scoring dates ascending and the
// highest-scoring dates descending, up to three each.
func SentimentExtremes(results []SentimentResult) (saddest, happiest []SentimentResult) {
	if len(results) == 0 {
		return nil, nil
	}
	byScore := append([]SentimentResult(nil), results...)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].Score < byScore[j].Score })

	n := len(byScore)
	k := sentimentExtremes
	if k > n {
		k = n
	}
	saddest = append([]SentimentResult(nil), byScore[:k]...)
	for i := n - 1; i >= n-k; i-- {
		happiest = append(happiest, byScore[i])
	}
	return saddest, happiest
}
