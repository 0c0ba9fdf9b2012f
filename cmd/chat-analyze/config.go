package main

import (
	"errors"
	"flag"
)

type Config struct {
	InPath   string
	OutPath  string
	Model    string
	APIKey   string
	CacheDir string
	Offline  bool
	Pretty   bool
	Verbose  bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "path to the exported chat transcript")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "path for the summary JSON ('-' for stdout)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for sentiment and insights")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "OpenAI API key (defaults to OPENAI_API_KEY)")
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "result cache directory (empty disables caching)")
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "skip remote collaborators; neutral sentiment, empty insights")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "indent the summary JSON")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if !c.Offline && c.Model == "" {
		return errors.New("missing -model (or pass -offline)")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutPath: "-",
		Model:   "gpt-5-mini",
		Pretty:  true,
	}
}
