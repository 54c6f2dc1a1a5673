package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the bot
const EnvPrefix = "SUPPORTBOT"

// BotConfig is the immutable configuration for building a support bot
type BotConfig struct {
	KnowledgePath string
}

// Config is the full runtime configuration
type Config struct {
	Knowledge  string           `mapstructure:"knowledge"`
	FAQ        string           `mapstructure:"faq"`
	Strategy   string           `mapstructure:"strategy"`
	Threshold  float64          `mapstructure:"threshold"`
	Fallback   string           `mapstructure:"fallback"`
	Log        LogConfig        `mapstructure:"log"`
	Vectorizer VectorizerConfig `mapstructure:"vectorizer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type VectorizerConfig struct {
	Provider string       `mapstructure:"provider"`
	NGrams   int          `mapstructure:"ngrams"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

// Bot returns the bot configuration derived from c
func (c *Config) Bot() BotConfig {
	return BotConfig{KnowledgePath: c.Knowledge}
}

// New creates a viper instance with defaults and environment binding.
// SUPPORTBOT_VECTORIZER_OPENAI_API_KEY sets vectorizer.openai.api_key.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("knowledge", DefaultKnowledgePath())
	v.SetDefault("faq", "")
	v.SetDefault("strategy", "hybrid")
	v.SetDefault("threshold", 0.5)
	v.SetDefault("fallback", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("vectorizer.provider", "tfidf")
	v.SetDefault("vectorizer.ngrams", 1)
	v.SetDefault("vectorizer.openai.api_key", "")
	v.SetDefault("vectorizer.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("vectorizer.openai.model", "text-embedding-3-small")
	v.SetDefault("vectorizer.openai.timeout", 30*time.Second)
	v.SetDefault("vectorizer.openai.max_failures", 5)
}

// Load reads the optional config file into v and decodes the result.
// A missing configFile is an error; an empty configFile is skipped.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between -1 and 1, got %v", c.Threshold)
	}
	switch c.Vectorizer.Provider {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unsupported vectorizer provider: %s", c.Vectorizer.Provider)
	}
	if c.Vectorizer.NGrams < 1 {
		return fmt.Errorf("vectorizer.ngrams must be at least 1, got %d", c.Vectorizer.NGrams)
	}
	return nil
}

// LoadDotEnv loads environment variables from .env files without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// DefaultKnowledgePath locates the knowledge base in common locations
func DefaultKnowledgePath() string {
	candidates := []string{
		"knowledge_base.json",
		filepath.Join("data", "knowledge_base.json"),
		filepath.Join(os.Getenv("HOME"), ".supportbot", "knowledge_base.json"),
		"/usr/local/share/supportbot/knowledge_base.json",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "knowledge_base.json"
}
