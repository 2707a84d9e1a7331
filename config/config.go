// Package config loads the arvo configuration and builds the logger.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/arvowealth/portfolio"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for arvo.
type Config struct {
	Ledger     LedgerConfig               `toml:"ledger"`
	Tax        TaxConfig                  `toml:"tax"`
	Returns    ReturnsConfig              `toml:"returns"`
	Quotes     QuotesConfig               `toml:"quotes"`
	Benchmarks map[string]BenchmarkConfig `toml:"benchmarks"`
	Gemini     GeminiConfig               `toml:"gemini"`
	Logging    LoggingConfig              `toml:"logging"`
}

// LedgerConfig locates the ledgers.
type LedgerConfig struct {
	Dir      string `toml:"dir"`
	Owner    string `toml:"owner"`    // Owner whose ledger the commands use.
	Currency string `toml:"currency"` // Display currency of new operations.
}

// TaxConfig holds the monthly capital gains tax parameters.
type TaxConfig struct {
	ExemptionThreshold float64 `toml:"exemption_threshold"`
	RealEstateRate     float64 `toml:"real_estate_rate"`
	DefaultRate        float64 `toml:"default_rate"`
	Method             string  `toml:"method"` // "realized" or "flat-margin"
	FlatMargin         float64 `toml:"flat_margin"`
}

// ReturnsConfig holds the performance report parameters.
type ReturnsConfig struct {
	Years []int `toml:"years"`
}

// QuotesConfig holds the HTTP quote source configuration.
type QuotesConfig struct {
	URL       string             `toml:"url"`  // URL template, "{ticker}" is replaced by the ticker.
	Path      string             `toml:"path"` // JSONPath of the price in the response.
	RateLimit int                `toml:"rate_limit"`
	Timeout   string             `toml:"timeout"`
	Cache     string             `toml:"cache"` // Directory of the daily response cache, disabled when empty.
	Static    map[string]float64 `toml:"static"`
}

// GetTimeout parses and returns the timeout duration
func (c *QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// BenchmarkConfig holds the returns of a reference index.
type BenchmarkConfig struct {
	TotalReturn float64   `toml:"total_return"`
	Monthly     []float64 `toml:"monthly"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Dir:      "data",
			Owner:    "default",
			Currency: portfolio.DefaultCurrency,
		},
		Tax: TaxConfig{
			ExemptionThreshold: 20000,
			RealEstateRate:     0.20,
			DefaultRate:        0.15,
			Method:             portfolio.ProfitRealized.String(),
			FlatMargin:         0.12,
		},
		Quotes: QuotesConfig{
			RateLimit: 5,
			Timeout:   "10s",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from files with environment overrides. Later
// files override earlier ones, missing files are skipped.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	if _, err := config.TaxPolicy(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ARVO_LEDGER_DIR"); v != "" {
		config.Ledger.Dir = v
	}
	if v := os.Getenv("ARVO_OWNER"); v != "" {
		config.Ledger.Owner = v
	}
	if v := os.Getenv("ARVO_CURRENCY"); v != "" {
		config.Ledger.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("ARVO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ARVO_QUOTES_URL"); v != "" {
		config.Quotes.URL = v
	}
	if v := os.Getenv("ARVO_QUOTES_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Quotes.RateLimit = n
		}
	}
	for _, name := range []string{"GEMINI_API_KEY", "ARVO_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Gemini.APIKey = v
			break
		}
	}
}

// TaxPolicy returns the tax policy of the engine.
func (c *Config) TaxPolicy() (portfolio.TaxPolicy, error) {
	method, err := portfolio.ParseProfitMethod(c.Tax.Method)
	if err != nil {
		return portfolio.TaxPolicy{}, fmt.Errorf("invalid [tax] method: %w", err)
	}
	policy := portfolio.DefaultTaxPolicy()
	policy.ExemptionThreshold = decimal.NewFromFloat(c.Tax.ExemptionThreshold)
	policy.RealEstateFundRate = decimal.NewFromFloat(c.Tax.RealEstateRate)
	policy.DefaultRate = decimal.NewFromFloat(c.Tax.DefaultRate)
	policy.FlatMargin = decimal.NewFromFloat(c.Tax.FlatMargin)
	policy.Method = method
	return policy, nil
}

// StaticQuotes returns the quotes fixed in the configuration.
func (c *Config) StaticQuotes() portfolio.Quotes {
	quotes := make(portfolio.Quotes, len(c.Quotes.Static))
	for ticker, v := range c.Quotes.Static {
		quotes[strings.ToUpper(ticker)] = decimal.NewFromFloat(v)
	}
	return quotes
}

// StaticBenchmarks returns the benchmarks of the configuration sorted by
// label.
func (c *Config) StaticBenchmarks() []portfolio.Benchmark {
	labels := make([]string, 0, len(c.Benchmarks))
	for label := range c.Benchmarks {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	res := make([]portfolio.Benchmark, 0, len(labels))
	for _, label := range labels {
		b := c.Benchmarks[label]
		history := make([]portfolio.Percent, 0, len(b.Monthly))
		for _, m := range b.Monthly {
			history = append(history, portfolio.Percent(m))
		}
		res = append(res, portfolio.Benchmark{
			Label:          strings.ToUpper(label),
			TotalReturn:    portfolio.Percent(b.TotalReturn),
			MonthlyHistory: history,
		})
	}
	return res
}
