// Command chat-analyze runs the analytics pipeline over a single exported
// chat transcript and writes the summary JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle/provider"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle/store"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/internal/fileutil"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := os.ReadFile(cfg.InPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read -in: %w", err).Error())
		os.Exit(2)
	}

	engine := &chronicle.Engine{
		SentimentCache: chronicle.NewSentimentCache(),
		Logger:         log,
	}

	if cfg.Offline {
		engine.Scorer = neutralScorer{}
		engine.Insights = offlineInsights{}
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key / -offline)")
			os.Exit(2)
		}
		client, err := provider.New(apiKey, cfg.Model)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		engine.Scorer = client
		engine.Insights = client
	}

	if cfg.CacheDir != "" {
		cache, err := store.Open(cfg.CacheDir, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		defer cache.Close()
		engine.Results = cache
	}

	summary, err := engine.Analyze(ctx, raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if cfg.OutPath == "-" {
		var out []byte
		if cfg.Pretty {
			out, err = json.MarshalIndent(summary, "", "  ")
		} else {
			out, err = json.Marshal(summary)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("marshal summary: %w", err).Error())
			os.Exit(1)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return
	}

	if err := fileutil.WriteJSONAtomic(cfg.OutPath, summary, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write -out: %w", err).Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "summary written to %s\n", cfg.OutPath)
}

// neutralScorer stands in for the remote sentiment collaborator in offline
// runs: every batch scores neutral.
type neutralScorer struct{}

func (neutralScorer) Score(_ context.Context, _ []string) (float64, error) { return 0, nil }

// offlineInsights returns an empty insight bundle.
type offlineInsights struct{}

func (offlineInsights) Generate(_ context.Context, _ string) (chronicle.Insights, error) {
	return chronicle.Insights{MessageCategories: map[string][]string{}}, nil
}
