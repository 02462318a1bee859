// Package config handles configuration loading for tickerpulse.
// It supports YAML config files, a .env file for secrets and
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	PayPal    PayPalConfig    `mapstructure:"paypal"    yaml:"paypal"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// NewsConfig holds headline source settings.
type NewsConfig struct {
	Source            string  `mapstructure:"source"              yaml:"source"              validate:"oneof=finviz yahoo"`
	FinvizURL         string  `mapstructure:"finviz_url"          yaml:"finviz_url"          validate:"required"` // fmt template, %s = ticker
	RSSURL            string  `mapstructure:"rss_url"             yaml:"rss_url"             validate:"required"` // fmt template, %s = ticker
	UserAgent         string  `mapstructure:"user_agent"          yaml:"user_agent"          validate:"required"`
	MaxHeadlines      int     `mapstructure:"max_headlines"       yaml:"max_headlines"       validate:"min=1"`
	TimeoutSec        int     `mapstructure:"timeout_sec"         yaml:"timeout_sec"         validate:"min=1"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"` // 0 = unpaced
}

// SentimentConfig holds scorer and classification settings.
type SentimentConfig struct {
	Strategy         string   `mapstructure:"strategy"          yaml:"strategy"          validate:"oneof=auto lexicon keyword"`
	LexiconPath      string   `mapstructure:"lexicon_path"      yaml:"lexicon_path"` // empty = embedded lexicon
	BullishThreshold float64  `mapstructure:"bullish_threshold" yaml:"bullish_threshold" validate:"gtefield=BearishThreshold"`
	BearishThreshold float64  `mapstructure:"bearish_threshold" yaml:"bearish_threshold"`
	DefaultTickers   []string `mapstructure:"default_tickers"   yaml:"default_tickers"   validate:"min=1,dive,required"`
}

// LLMConfig holds the OpenAI-compatible chat endpoint used for narratives.
type LLMConfig struct {
	APIKey            string  `mapstructure:"api_key"            yaml:"api_key"`
	BaseURL           string  `mapstructure:"base_url"           yaml:"base_url"  validate:"required,url"`
	Model             string  `mapstructure:"model"              yaml:"model"     validate:"required"`
	Temperature       float64 `mapstructure:"temperature"        yaml:"temperature"        validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"max_tokens"         yaml:"max_tokens"         validate:"min=1"`
	AdviceTemperature float64 `mapstructure:"advice_temperature" yaml:"advice_temperature" validate:"gte=0,lte=2"`
	AdviceMaxTokens   int     `mapstructure:"advice_max_tokens"  yaml:"advice_max_tokens"  validate:"min=1"`
	TimeoutSec        int     `mapstructure:"timeout_sec"        yaml:"timeout_sec"        validate:"min=1"`
}

// PayPalConfig holds PayPal REST credentials and premium pricing.
type PayPalConfig struct {
	ClientID     string `mapstructure:"client_id"     yaml:"client_id"`
	Secret       string `mapstructure:"secret"        yaml:"secret"`
	Env          string `mapstructure:"env"           yaml:"env"           validate:"oneof=sandbox live"`
	PremiumPrice string `mapstructure:"premium_price" yaml:"premium_price" validate:"required,numeric"`
	Currency     string `mapstructure:"currency"      yaml:"currency"      validate:"len=3"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerpulse/config.yaml (home directory)
//  3. /etc/tickerpulse/config.yaml (system)
//
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the environment.
// Environment variables override config file values.
// Format: TICKERPULSE_<SECTION>_<KEY>, e.g., TICKERPULSE_LLM_API_KEY
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerpulse"))
	v.AddConfigPath("/etc/tickerpulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Default returns the built-in defaults. It reads neither files nor the
// environment, so it cannot fail on a malformed variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// defaults are static; a decode failure is a programming error
		panic(err)
	}
	return &cfg
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New()

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TICKERPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.source", "finviz")
	v.SetDefault("news.finviz_url", "https://finviz.com/quote.ashx?t=%s")
	v.SetDefault("news.rss_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	v.SetDefault("news.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	v.SetDefault("news.max_headlines", 10)
	v.SetDefault("news.timeout_sec", 30)
	v.SetDefault("news.requests_per_second", 2.0)

	// Sentiment defaults
	v.SetDefault("sentiment.strategy", "auto")
	v.SetDefault("sentiment.lexicon_path", "")
	v.SetDefault("sentiment.bullish_threshold", 0.05)
	v.SetDefault("sentiment.bearish_threshold", -0.05)
	v.SetDefault("sentiment.default_tickers", []string{"AMZN", "TSLA", "AAPL", "MSFT"})

	// LLM defaults (OpenRouter speaks the OpenAI chat API)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "gpt-4.1-nano-2025-04-14")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.advice_temperature", 0.7)
	v.SetDefault("llm.advice_max_tokens", 800)
	v.SetDefault("llm.timeout_sec", 60)

	// PayPal defaults
	v.SetDefault("paypal.client_id", "")
	v.SetDefault("paypal.secret", "")
	v.SetDefault("paypal.env", "sandbox")
	v.SetDefault("paypal.premium_price", "9.99")
	v.SetDefault("paypal.currency", "USD")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8501)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv reads secrets from the conventional unprefixed variables
// when the prefixed ones are absent.
func overrideFromEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.PayPal.ClientID == "" {
		cfg.PayPal.ClientID = os.Getenv("PAYPAL_CLIENT_ID")
	}
	if cfg.PayPal.Secret == "" {
		cfg.PayPal.Secret = os.Getenv("PAYPAL_SECRET")
	}
	if env := os.Getenv("PAYPAL_ENV"); env != "" && os.Getenv("TICKERPULSE_PAYPAL_ENV") == "" {
		cfg.PayPal.Env = env
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
