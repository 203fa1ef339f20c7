package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Sources
	//===============
	// Base URL of the park service site the directory, list, and detail
	// pages are fetched from.
	parksBaseURL string
	// Base URL of the radius-search API used for nearby places lookups.
	searchBaseURL string

	//===============
	// Cache
	//===============
	// Path of the single JSON cache file.
	cacheFile string

	//===============
	// Search
	//===============
	// Search radius in miles around the origin zip code.
	searchRadius int
	// Ceiling on the number of matches returned per search.
	maxMatches int

	//===============
	// Fetch
	//===============
	// Maximum number of site detail pages fetched concurrently while
	// building a state listing. 1 reproduces strictly sequential fetching.
	concurrency int
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
	// maximum attempt during retry
	maxAttempt int
	// Minimum waiting time between retry attempts
	baseDelay time.Duration
	// Randomized variation added on top of the base delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration
}

type configDTO struct {
	ParksBaseURL           string        `json:"parksBaseUrl,omitempty"`
	SearchBaseURL          string        `json:"searchBaseUrl,omitempty"`
	CacheFile              string        `json:"cacheFile,omitempty"`
	SearchRadius           int           `json:"searchRadius,omitempty"`
	MaxMatches             int           `json:"maxMatches,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config, override only where the DTO provides
	// a non-zero value.
	builder := WithDefault()

	if dto.ParksBaseURL != "" {
		builder = builder.WithParksBaseURL(dto.ParksBaseURL)
	}
	if dto.SearchBaseURL != "" {
		builder = builder.WithSearchBaseURL(dto.SearchBaseURL)
	}
	if dto.CacheFile != "" {
		builder = builder.WithCacheFile(dto.CacheFile)
	}
	if dto.SearchRadius != 0 {
		builder = builder.WithSearchRadius(dto.SearchRadius)
	}
	if dto.MaxMatches != 0 {
		builder = builder.WithMaxMatches(dto.MaxMatches)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if dto.MaxAttempt != 0 {
		builder = builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BaseDelay != 0 {
		builder = builder.WithBaseDelay(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		builder = builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.BackoffInitialDuration != 0 {
		builder = builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder = builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		parksBaseURL:           "https://www.nps.gov",
		searchBaseURL:          "http://www.mapquestapi.com",
		cacheFile:              "cache.json",
		searchRadius:           10,
		maxMatches:             10,
		concurrency:            1,
		timeout:                time.Second * 10,
		userAgent:              "parkscout/1.0",
		maxAttempt:             3,
		baseDelay:              time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
	}
	return &defaultConfig
}

func (c *Config) WithParksBaseURL(baseURL string) *Config {
	c.parksBaseURL = baseURL
	return c
}

func (c *Config) WithSearchBaseURL(baseURL string) *Config {
	c.searchBaseURL = baseURL
	return c
}

func (c *Config) WithCacheFile(path string) *Config {
	c.cacheFile = path
	return c
}

func (c *Config) WithSearchRadius(radius int) *Config {
	c.searchRadius = radius
	return c
}

func (c *Config) WithMaxMatches(max int) *Config {
	c.maxMatches = max
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) Build() (Config, error) {
	if err := validateBaseURL(c.parksBaseURL); err != nil {
		return Config{}, fmt.Errorf("%w: parksBaseUrl: %s", ErrInvalidConfig, err.Error())
	}
	if err := validateBaseURL(c.searchBaseURL); err != nil {
		return Config{}, fmt.Errorf("%w: searchBaseUrl: %s", ErrInvalidConfig, err.Error())
	}
	if c.cacheFile == "" {
		return Config{}, fmt.Errorf("%w: cacheFile cannot be empty", ErrInvalidConfig)
	}
	if c.searchRadius <= 0 {
		return Config{}, fmt.Errorf("%w: searchRadius must be positive", ErrInvalidConfig)
	}
	if c.maxMatches <= 0 {
		return Config{}, fmt.Errorf("%w: maxMatches must be positive", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}

	return *c, nil
}

func validateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", rawURL)
	}
	return nil
}

func (c Config) ParksBaseURL() string {
	return c.parksBaseURL
}

func (c Config) SearchBaseURL() string {
	return c.searchBaseURL
}

func (c Config) CacheFile() string {
	return c.cacheFile
}

func (c Config) SearchRadius() int {
	return c.searchRadius
}

func (c Config) MaxMatches() int {
	return c.maxMatches
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}
