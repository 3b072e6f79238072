package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "DAILY_DIGEST_CONFIG"
	outputDirEnv    = "DAILY_DIGEST_OUTPUT_DIR"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig          `yaml:"logging"`
	Run     RunConfig              `yaml:"run"`
	Gemini  GeminiConfig           `yaml:"gemini"`
	Output  OutputConfig           `yaml:"output"`
	Tracks  map[string]TrackConfig `yaml:"tracks"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RunConfig defines run-wide collection parameters.
type RunConfig struct {
	Timezone      string         `yaml:"timezone"`
	LookbackHours int            `yaml:"lookbackHours"`
	Concurrency   int            `yaml:"concurrency"`
	location      *time.Location `yaml:"-"`
}

// Location resolves the configured timezone to a time.Location.
func (r RunConfig) Location() *time.Location {
	if r.location != nil {
		return r.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Window returns the lookback span sources consider "today".
func (r RunConfig) Window() time.Duration {
	hours := r.LookbackHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// GeminiConfig defines how to contact the Generative Language API.
type GeminiConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"apiKey"`
	Temperature     float64       `yaml:"temperature"`
	TopP            float64       `yaml:"topP"`
	TopK            int           `yaml:"topK"`
	MaxOutputTokens int           `yaml:"maxOutputTokens"`
	MaxInputChars   int           `yaml:"maxInputChars"`
	MaxRetries      int           `yaml:"maxRetries"`
	RetryBaseDelay  time.Duration `yaml:"retryBaseDelay"`
	RetryMaxDelay   time.Duration `yaml:"retryMaxDelay"`
}

// OutputConfig locates the digest store root.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// TrackConfig describes one independent pipeline partition.
type TrackConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes a single source instance within a track.
type SourceConfig struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	Query      string            `yaml:"query"`
	Categories []string          `yaml:"categories"`
	MaxResults int               `yaml:"maxResults"`
	Options    map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Tracks) == 0 {
		cfg.Tracks = defaultConfig().Tracks
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Run.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Run.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Run.Timezone != "" {
		base.Run.Timezone = override.Run.Timezone
	}
	if override.Run.LookbackHours > 0 {
		base.Run.LookbackHours = override.Run.LookbackHours
	}
	if override.Run.Concurrency > 0 {
		base.Run.Concurrency = override.Run.Concurrency
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Temperature > 0 {
		base.Gemini.Temperature = override.Gemini.Temperature
	}
	if override.Gemini.TopP > 0 {
		base.Gemini.TopP = override.Gemini.TopP
	}
	if override.Gemini.TopK > 0 {
		base.Gemini.TopK = override.Gemini.TopK
	}
	if override.Gemini.MaxOutputTokens > 0 {
		base.Gemini.MaxOutputTokens = override.Gemini.MaxOutputTokens
	}
	if override.Gemini.MaxInputChars > 0 {
		base.Gemini.MaxInputChars = override.Gemini.MaxInputChars
	}
	if override.Gemini.MaxRetries > 0 {
		base.Gemini.MaxRetries = override.Gemini.MaxRetries
	}
	if override.Gemini.RetryBaseDelay > 0 {
		base.Gemini.RetryBaseDelay = override.Gemini.RetryBaseDelay
	}
	if override.Gemini.RetryMaxDelay > 0 {
		base.Gemini.RetryMaxDelay = override.Gemini.RetryMaxDelay
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if len(override.Tracks) > 0 {
		base.Tracks = override.Tracks
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Run: RunConfig{
			Timezone:      defaultTimezone,
			LookbackHours: 24,
			Concurrency:   4,
			location:      tz,
		},
		Gemini: GeminiConfig{
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta",
			Model:           "gemini-2.0-flash",
			Temperature:     1.0,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
			MaxInputChars:   60000,
			MaxRetries:      2,
			RetryBaseDelay:  4 * time.Second,
			RetryMaxDelay:   15 * time.Second,
		},
		Output: OutputConfig{Dir: "./output"},
		Tracks: map[string]TrackConfig{
			"default": {
				Sources: []SourceConfig{
					{Name: "papers", Kind: "papers", MaxResults: 20},
					{Name: "hackernews", Kind: "news", MaxResults: 30},
					{
						Name:       "reddit",
						Kind:       "forum",
						Categories: []string{"MachineLearning", "LocalLLaMA", "programming"},
					},
					{
						Name:       "github-trending",
						Kind:       "trending",
						Categories: []string{"go", "python", "rust"},
					},
					{
						Name:       "techfeed",
						Kind:       "tech",
						MaxResults: 10,
						Options: map[string]string{
							"hf-blog":     "https://huggingface.co/blog/feed.xml",
							"golang-blog": "https://go.dev/blog/feed.atom",
						},
					},
				},
			},
			"camera": {
				Sources: []SourceConfig{
					{
						Name:       "reddit",
						Kind:       "forum",
						Categories: []string{"photography", "AnalogCommunity", "cameras"},
					},
					{
						Name:       "techfeed",
						Kind:       "tech",
						MaxResults: 10,
						Options: map[string]string{
							"petapixel": "https://petapixel.com/feed/",
							"dpreview":  "https://www.dpreview.com/feeds/news.xml",
						},
					},
				},
			},
		},
	}
}
