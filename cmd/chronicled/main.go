// Command chronicled serves the chat analytics pipeline over HTTP: transcript
// uploads in, structured summaries out, with a durable result cache so repeat
// uploads never recompute or re-bill.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle/provider"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
	)
	flag.Parse()

	// A local .env file is optional.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(cfg.APIKey, cfg.Model)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	results, err := store.Open(cfg.CacheDir, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer results.Close()

	engine := &chronicle.Engine{
		Scorer:         client,
		Insights:       client,
		SentimentCache: chronicle.NewSentimentCache(),
		Results:        countingStore{results},
		Logger:         log,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newServer(engine, cfg, log).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("chronicled_listening", "addr", cfg.Addr, "cache_dir", cfg.CacheDir, "model", cfg.Model)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server_failed", "err", err)
		os.Exit(1)
	}
	log.Info("chronicled_stopped")
}

// countingStore wraps the durable result cache so lookup outcomes show up in
// the service metrics without the library knowing about Prometheus.
type countingStore struct {
	inner chronicle.ResultStore
}

func (s countingStore) Get(hash string) (*chronicle.Summary, bool) {
	v, ok := s.inner.Get(hash)
	if ok {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	return v, ok
}

func (s countingStore) Put(hash string, summary *chronicle.Summary) {
	s.inner.Put(hash, summary)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
