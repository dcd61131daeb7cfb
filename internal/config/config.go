// Package config loads the service configuration from a YAML file. The
// loaded struct is passed explicitly into every component constructor;
// nothing reads ambient process state at runtime.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
	EnableCORS   bool   `yaml:"enableCORS"`
	AllowOrigins string `yaml:"allowOrigins"`
}

// StorageConfig contains data directory settings.
type StorageConfig struct {
	DataDirectory    string `yaml:"dataDirectory"`
	UploadsDirectory string `yaml:"uploadsDirectory"`
	IndexPath        string `yaml:"indexPath"`
}

// LLMConfig names the external models. The embedding model is used for
// both chunk ingestion and query-time embedding; splitting them would
// silently degrade retrieval.
type LLMConfig struct {
	EmbeddingModel  string `yaml:"embeddingModel"`
	GenerationModel string `yaml:"generationModel"`
}

// RetrievalConfig tunes context assembly.
type RetrievalConfig struct {
	TopK            int     `yaml:"topK"`
	MaxChunks       int     `yaml:"maxChunks"`
	MaxContextChars int     `yaml:"maxContextChars"`
	MatchBoost      float64 `yaml:"matchBoost"`
}

// ChunkingConfig tunes chunk synthesis.
type ChunkingConfig struct {
	RecentWindow int `yaml:"recentWindow"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "16M",
			EnableCORS:   true,
			AllowOrigins: "*",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			IndexPath:        "./data/chunks.duckdb",
		},
		LLM: LLMConfig{
			EmbeddingModel:  "gemini-embedding-001",
			GenerationModel: "gemini-2.0-flash",
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			MaxChunks:       6,
			MaxContextChars: 4000,
			MatchBoost:      0.15,
		},
		Chunking: ChunkingConfig{
			RecentWindow: 5,
		},
	}
}

// LoadConfig reads the YAML config at path. A missing file yields the
// defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.LLM.EmbeddingModel == "" {
		return fmt.Errorf("llm.embeddingModel must be set")
	}
	if c.LLM.GenerationModel == "" {
		return fmt.Errorf("llm.generationModel must be set")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.topK must be positive")
	}
	if c.Retrieval.MaxChunks <= 0 {
		return fmt.Errorf("retrieval.maxChunks must be positive")
	}
	if c.Chunking.RecentWindow <= 0 {
		return fmt.Errorf("chunking.recentWindow must be positive")
	}
	return nil
}

// EnsureDirectories creates the data directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		filepath.Dir(c.Storage.IndexPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetServerAddr formats the listen address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
