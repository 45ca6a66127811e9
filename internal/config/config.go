// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults — merged in
// priority order. Go convention: configuration is loaded into structs, not
// accessed as raw key-value pairs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related
// settings. `mapstructure` tags tell Viper how to map YAML/env keys to
// struct fields.
type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Storage    StorageConfig   `mapstructure:"storage"`
	Auth       AuthConfig      `mapstructure:"auth"`
	CORS       CORSConfig      `mapstructure:"cors"`
	Inference  InferenceConfig `mapstructure:"inference"`
	Upload     UploadConfig    `mapstructure:"upload"`
	Enrichment EnrichConfig    `mapstructure:"enrichment"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Log        LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type AuthConfig struct {
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type InferenceConfig struct {
	// ProviderOrder controls which providers are used and in what order.
	// First provider is primary, rest are fallbacks. Example: ["groq", "anthropic"]
	ProviderOrder  []string        `mapstructure:"provider_order"`
	Groq           GroqConfig      `mapstructure:"groq"`
	Anthropic      AnthropicConfig `mapstructure:"anthropic"`
	RatePerMinute  int             `mapstructure:"rate_per_minute"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
}

// GroqConfig configures the primary, OpenAI-compatible provider. With a
// different base_url the same section can point at OpenAI itself or any
// compatible endpoint.
type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	TextModel   string  `mapstructure:"text_model"`
	VisionModel string  `mapstructure:"vision_model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// UploadConfig bounds image uploads. Both values are deployment
// configuration, enforced by the orchestrator before any hashing happens.
type UploadConfig struct {
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type EnrichConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	ProbeTimeoutSeconds int  `mapstructure:"probe_timeout_seconds"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// In Go, functions return errors as the last return value — callers must
// check them. This pattern replaces try/catch: if err != nil { handle it }.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/artwise.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("inference.provider_order", []string{"groq", "anthropic"})
	v.SetDefault("inference.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("inference.groq.text_model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("inference.groq.vision_model", "meta-llama/llama-4-maverick-17b-128e-instruct")
	v.SetDefault("inference.groq.max_tokens", 2048)
	v.SetDefault("inference.groq.temperature", 0.7)
	v.SetDefault("inference.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("inference.anthropic.max_tokens", 2048)
	v.SetDefault("inference.rate_per_minute", 10)
	v.SetDefault("inference.timeout_seconds", 60)
	v.SetDefault("upload.max_file_size", 10*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})
	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.probe_timeout_seconds", 5)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// ARTWISE_ prefix + nested keys: ARTWISE_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("ARTWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal into our Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
