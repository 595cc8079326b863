// Package config provides configuration loading and structs for the susume recommender.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, persisted artifacts, and the title index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	ArtifactsDir   string `yaml:"artifacts_dir"`
	TitleIndexPath string `yaml:"title_index_path"`
}

// CatalogConfig holds the catalog snapshot location and the genre vocabulary.
// Genre tags outside the vocabulary are dropped during text assembly.
type CatalogConfig struct {
	Path   string   `yaml:"path"`
	Genres []string `yaml:"genres"`
}

// EmbeddingConfig holds embedder settings. Dimensions, MaxTokens, and
// BatchSize are fixed for the lifetime of a fitted session.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
}

// RecommendConfig holds query-time settings.
type RecommendConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
}

// TMDBConfig holds settings for the metadata enrichment client.
// AccessToken is never read from yaml; it comes from the environment
// (TMDB_ACCESS_TOKEN, optionally via a .env file).
type TMDBConfig struct {
	BaseURL       string `yaml:"base_url"`
	AccessToken   string `yaml:"-"`
	RateLimit     int    `yaml:"rate_limit"`      // requests per window
	RateWindowSec int    `yaml:"rate_window_sec"` // window length in seconds
}

// Load reads and parses the config file at path, overlays environment
// variables (a .env file next to the config is honoured), expands paths,
// and applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	// Missing .env is fine; the variable may be set directly.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	cfg.TMDB.AccessToken = os.Getenv("TMDB_ACCESS_TOKEN")

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.ArtifactsDir = expandPath(cfg.Storage.ArtifactsDir, configDir)
	cfg.Storage.TitleIndexPath = expandPath(cfg.Storage.TitleIndexPath, configDir)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
