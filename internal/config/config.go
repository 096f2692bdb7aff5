// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/salon-copy/internal/types"
)

// DefaultConfigFile is read when neither --config nor CONFIG_FILE is given.
const DefaultConfigFile = "config.yaml"

// Config is the full service configuration. Values come from defaults, then
// an optional YAML file, then environment variables.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Featured   FeaturedConfig   `yaml:"featured"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Admin      AdminConfig      `yaml:"admin"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// FeaturedConfig locates the featured keyword registry.
type FeaturedConfig struct {
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// ScraperConfig configures catalog scraping.
type ScraperConfig struct {
	Mode      string        `yaml:"mode"` // http or browser
	MaxPages  int           `yaml:"max_pages"`
	DelayMin  time.Duration `yaml:"delay_min"`
	DelayMax  time.Duration `yaml:"delay_max"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	CacheTTL  time.Duration `yaml:"cache_ttl"` // zero disables the title cache
}

// LLMConfig configures the Gemini client.
type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	DefaultModel    string        `yaml:"default_model"`
	LiteModel       string        `yaml:"lite_model"`
	Temperature     float32       `yaml:"temperature"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	ThinkingBudget  int32         `yaml:"thinking_budget"`
	Timeout         time.Duration `yaml:"timeout"`
}

// GenerationConfig bounds generated output.
type GenerationConfig struct {
	MaxItems   int              `yaml:"max_items"`
	CharLimits types.CharLimits `yaml:"char_limits"`
}

// DatabaseConfig enables run history and the title cache.
type DatabaseConfig struct {
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig sets per-client request budgets.
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
	Burst          int  `yaml:"burst"`
	GeneratePerMin int  `yaml:"generate_per_min"`
	GenerateBurst  int  `yaml:"generate_burst"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 180 * time.Second,
		},
		Featured: FeaturedConfig{
			Path:     "featured_keywords.json",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Scraper: ScraperConfig{
			Mode:     "http",
			MaxPages: 3,
			DelayMin: time.Second,
			DelayMax: 3 * time.Second,
			Timeout:  30 * time.Second,
			CacheTTL: 24 * time.Hour,
		},
		LLM: LLMConfig{
			DefaultModel:    "gemini-2.5-flash",
			LiteModel:       "gemini-2.5-flash-lite",
			Temperature:     0.7,
			MaxOutputTokens: 8192,
			ThinkingBudget:  0,
			Timeout:         120 * time.Second,
		},
		Generation: GenerationConfig{
			MaxItems:   15,
			CharLimits: types.DefaultCharLimits(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Admin: AdminConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			Burst:          10,
			GeneratePerMin: 10,
			GenerateBurst:  3,
		},
	}
}

// Load builds the configuration. An empty path falls back to CONFIG_FILE and
// then DefaultConfigFile; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnv("CONFIG_FILE", DefaultConfigFile)
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var (
		errs     []error
		ttlHours int
	)

	setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	setString(&c.Featured.Path, "FEATURED_KEYWORDS_PATH")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Scraper.Mode, "SCRAPER_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Admin.JWTSecret, "JWT_SECRET")
	setString(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	errs = append(errs,
		setInt(&c.Server.Port, "PORT"),
		setInt(&c.Scraper.MaxPages, "MAX_PAGES"),
		setSeconds(&c.Scraper.DelayMin, "SCRAPING_DELAY_MIN"),
		setSeconds(&c.Scraper.DelayMax, "SCRAPING_DELAY_MAX"),
		setSeconds(&c.LLM.Timeout, "LLM_TIMEOUT"),
		setBool(&c.Featured.Watch, "FEATURED_KEYWORDS_WATCH"),
		setBool(&c.Database.AutoMigrate, "DATABASE_AUTO_MIGRATE"),
		setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED"),
		setInt(&c.RateLimit.RequestsPerMin, "RATE_LIMIT_PER_MIN"),
		setInt(&c.RateLimit.GeneratePerMin, "RATE_LIMIT_GENERATE_PER_MIN"),
		setInt(&ttlHours, "JWT_EXPIRATION_HOURS"),
		setInt(&c.Admin.BcryptCost, "BCRYPT_COST"),
	)
	if ttlHours != 0 {
		c.Admin.TokenTTL = time.Duration(ttlHours) * time.Hour
	}
	return errors.Join(errs...)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config error: 'server.port' must be 1-65535, got %d", c.Server.Port))
	}
	if c.Featured.Path == "" {
		errs = append(errs, fmt.Errorf("config error: 'featured.path' must not be empty"))
	}
	switch c.Scraper.Mode {
	case "http", "browser":
	default:
		errs = append(errs, fmt.Errorf("config error: 'scraper.mode' must be http or browser, got %q", c.Scraper.Mode))
	}
	if c.Scraper.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("config error: 'scraper.max_pages' must be at least 1"))
	}
	if c.Scraper.DelayMin < 0 || c.Scraper.DelayMax < c.Scraper.DelayMin {
		errs = append(errs, fmt.Errorf("config error: scraper delays must satisfy 0 <= delay_min <= delay_max"))
	}
	if c.LLM.DefaultModel == "" {
		errs = append(errs, fmt.Errorf("config error: 'llm.default_model' must not be empty"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("config error: 'llm.temperature' must be 0-2"))
	}
	if c.LLM.MaxOutputTokens < 1 {
		errs = append(errs, fmt.Errorf("config error: 'llm.max_output_tokens' must be positive"))
	}
	if c.LLM.ThinkingBudget < 0 {
		errs = append(errs, fmt.Errorf("config error: 'llm.thinking_budget' must be non-negative"))
	}
	if c.Generation.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("config error: 'generation.max_items' must be at least 1"))
	}
	l := c.Generation.CharLimits
	if l.Title < 1 || l.Menu < 1 || l.Comment < 1 || l.HashtagWord < 1 {
		errs = append(errs, fmt.Errorf("config error: 'generation.char_limits' must all be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config error: 'log.format' must be json or console, got %q", c.Log.Format))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMin < 1 || c.RateLimit.GeneratePerMin < 1) {
		errs = append(errs, fmt.Errorf("config error: rate limits must be positive when enabled"))
	}
	if err := c.Admin.validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

// setSeconds accepts a Go duration ("1.5s") or a bare number of seconds.
func setSeconds(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q is neither a duration nor seconds", key, v)
	}
	*dst = time.Duration(secs * float64(time.Second))
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
