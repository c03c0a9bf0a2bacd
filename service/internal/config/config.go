// Package config loads service settings from the environment and an optional
// YAML scoring file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the service.
type Config struct {
	Addr        string
	DataDir     string
	DatabaseURL string
	RedisURL    string

	SessionSecret   []byte
	SessionTTL      time.Duration
	GeneratedSecret bool // SESSION_SECRET was empty and a random one was made

	ScoringFile string
	Scoring     engine.ScoringPolicy

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	cfg := Config{
		Addr:        getEnvOr("KLONDIKE_ADDR", ":8080"),
		DataDir:     getEnvOr("KLONDIKE_DATA_DIR", "data"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ScoringFile: os.Getenv("KLONDIKE_SCORING_FILE"),
		LogLevel:    getEnvOr("LOG_LEVEL", "info"),
		LogFormat:   getEnvOr("LOG_FORMAT", "text"),
		Scoring:     engine.DefaultScoring(),
	}

	ttl, err := time.ParseDuration(getEnvOr("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return cfg, fmt.Errorf("invalid SESSION_TTL: %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	if s := os.Getenv("SESSION_SECRET"); s != "" {
		cfg.SessionSecret = []byte(s)
	} else {
		cfg.SessionSecret = randomSecret()
		cfg.GeneratedSecret = true
	}

	if cfg.ScoringFile != "" {
		p, err := LoadScoring(cfg.ScoringFile, cfg.Scoring)
		if err != nil {
			return cfg, err
		}
		cfg.Scoring = p
	}
	return cfg, nil
}

// LoadScoring overlays the YAML file at path onto base. Keys absent from the
// file keep their value from base.
func LoadScoring(path string, base engine.ScoringPolicy) (engine.ScoringPolicy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read scoring file: %w", err)
	}
	return ParseScoring(b, base)
}

// ParseScoring decodes a YAML scoring policy on top of base.
func ParseScoring(b []byte, base engine.ScoringPolicy) (engine.ScoringPolicy, error) {
	p := base
	if err := yaml.Unmarshal(b, &p); err != nil {
		return base, fmt.Errorf("parse scoring file: %w", err)
	}
	return p, nil
}

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func getEnvOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func randomSecret() []byte {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return []byte(fmt.Sprintf("klondike-%d", time.Now().UnixNano()))
	}
	return []byte(hex.EncodeToString(b[:]))
}
