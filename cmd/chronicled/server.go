package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle/anonymize"
)

// Server is the thin HTTP shell around the analytics engine.
type Server struct {
	engine         *chronicle.Engine
	limiter        *rate.Limiter
	log            *slog.Logger
	staticDir      string
	maxUploadBytes int64
}

func newServer(engine *chronicle.Engine, cfg Config, log *slog.Logger) *Server {
	return &Server{
		engine:         engine,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		log:            log,
		staticDir:      cfg.StaticDir,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/static/index.html", http.StatusFound)
	}).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	r.HandleFunc("/api/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/anonymize", s.handleAnonymize).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// handleAnalyze accepts one transcript (multipart "file" field or raw body)
// and responds with the full summary JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, req *http.Request) {
	if !s.limiter.Allow() {
		analyzeRequests.WithLabelValues("throttled").Inc()
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	start := time.Now()
	raw, err := readUpload(req, s.maxUploadBytes)
	if err != nil {
		analyzeRequests.WithLabelValues("bad_upload").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	uploadBytes.Observe(float64(len(raw)))

	summary, err := s.engine.Analyze(req.Context(), raw)
	switch {
	case errors.Is(err, chronicle.ErrNoMessages):
		analyzeRequests.WithLabelValues("invalid_export").Inc()
		writeError(w, http.StatusBadRequest,
			"No messages could be parsed from the chat file. Please ensure this is a valid chat export.")
		return
	case err != nil:
		analyzeRequests.WithLabelValues("error").Inc()
		s.log.Error("analyze_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	analyzeRequests.WithLabelValues("ok").Inc()
	analyzeDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, summary)
}

// handleAnonymize masks one phone number for share-safe display.
func (s *Server) handleAnonymize(w http.ResponseWriter, req *http.Request) {
	var in struct {
		Phone    string `json:"phone"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, 4096)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	masked, display := anonymize.Anonymize(in.Phone, in.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"phone":        masked,
		"display_name": display,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUpload returns the transcript bytes from a multipart "file" field when
// present, or the raw request body otherwise.
func readUpload(req *http.Request, maxBytes int64) ([]byte, error) {
	req.Body = http.MaxBytesReader(nil, req.Body, maxBytes)

	if f, _, err := req.FormFile("file"); err == nil {
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.New("could not read uploaded file")
		}
		return raw, nil
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty upload")
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
