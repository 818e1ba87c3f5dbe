package vectro

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Compression methods accepted by Config.CompressionMethod.
const (
	// CompressionRegular builds an exact FlatIndex.
	CompressionRegular = "regular"

	// CompressionQuantized builds a QuantizedIndex with Config.Codec.
	CompressionQuantized = "quantized"
)

// Config carries the settings shared by the CLI and the HTTP server.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `yaml:"addr"`

	// DatasetPath, when set, is a dataset file to preload at startup.
	DatasetPath string `yaml:"dataset_path"`

	// CompressionMethod selects the index built over uploaded or loaded
	// data: "regular" (exact) or "quantized".
	CompressionMethod string `yaml:"compression_method"`

	// Codec is the quantization codec for the quantized method.
	Codec CodecKind `yaml:"codec"`

	// TopK is the default result count when a search does not specify one.
	TopK int `yaml:"top_k"`

	// Workers caps parallel query workers; 0 means all available cores.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		CompressionMethod: CompressionRegular,
		Codec:             SQ8,
		TopK:              DefaultTopK,
	}
}

// LoadConfig reads a YAML config file, layering it over DefaultConfig so
// omitted keys keep their defaults. The result is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config's enumerations and ranges.
func (c Config) Validate() error {
	switch c.CompressionMethod {
	case CompressionRegular, CompressionQuantized:
	default:
		return fmt.Errorf("compression_method must be %q or %q, got %q: %w",
			CompressionRegular, CompressionQuantized, c.CompressionMethod, ErrInvalidArgument)
	}
	if _, err := NewQuantizer(c.Codec); err != nil {
		return err
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d: %w", c.TopK, ErrInvalidArgument)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d: %w", c.Workers, ErrInvalidArgument)
	}
	return nil
}
