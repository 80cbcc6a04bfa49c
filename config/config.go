// Package config loads service settings from the environment (optionally
// seeded from a .env file) and palette definitions from HCL files.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	PaletteFile string
	CacheSize   int
	LogLevel    slog.Level
	Archive     ArchiveConfig
}

// ArchiveConfig points at the S3 compatible bucket that keeps uploaded
// definition documents. The archive is disabled when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an S3 endpoint is configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Load reads a .env file if present, then flags from os.Args and the
// environment. Environment variables win over flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load without the .env step, parsing args instead of os.Args.
func LoadArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("depgraph", flag.ContinueOnError)
	port := fs.String("port", ":3000", "server port")
	palette := fs.String("palette", "", "HCL palette file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	cacheSize := 256
	if raw := strings.TrimSpace(os.Getenv("GRAPH_CACHE_SIZE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: GRAPH_CACHE_SIZE must be a positive integer, got %q", raw)
		}
		cacheSize = n
	}

	level := slog.LevelInfo
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
	}

	return &Config{
		Port:        *port,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PaletteFile: firstNonEmpty(strings.TrimSpace(os.Getenv("PALETTE_FILE")), *palette),
		CacheSize:   cacheSize,
		LogLevel:    level,
		Archive:     loadArchiveConfig(),
	}, nil
}

func loadArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "depgraph-documents"),
		UseSSL:    parseBool(os.Getenv("ARCHIVE_S3_USE_SSL"), true),
	}
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
