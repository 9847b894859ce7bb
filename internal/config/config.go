package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Database   Database   `yaml:"database"`
	Sources    []Source   `yaml:"sources"`
	Classifier Classifier `yaml:"classifier"`
	Scrape     Scrape     `yaml:"scrape"`
	Schedule   Schedule   `yaml:"schedule"`
	Server     Server     `yaml:"server"`
}

type Database struct {
	Path string `yaml:"path"`
}

// Source describes one news site to scrape. Type is a display tag
// (government/news/market). Profile selects a specialized extraction
// profile by name; empty means the generic profile. FeedURL, when set,
// switches the source to RSS collection instead of HTML scraping.
type Source struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Type    string `yaml:"type"`
	Profile string `yaml:"profile"`
	FeedURL string `yaml:"feed_url"`
}

type Classifier struct {
	Endpoint  string  `yaml:"endpoint"`
	Model     string  `yaml:"model"`
	APIKeyEnv string  `yaml:"api_key_env"`
	Threshold float64 `yaml:"threshold"`
}

type Scrape struct {
	DelaySeconds     int  `yaml:"delay_seconds"`
	PerSourceLimit   int  `yaml:"per_source_limit"`
	TimeoutSeconds   int  `yaml:"timeout_seconds"`
	FetchFullContent bool `yaml:"fetch_full_content"`
	EnrichLimit      int  `yaml:"enrich_limit"`
	RetentionDays    int  `yaml:"retention_days"`
}

type Schedule struct {
	Time     string `yaml:"time"` // HH:MM local to Timezone
	Timezone string `yaml:"timezone"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for agrinews.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "agrinews")
}

// DataDir returns the XDG data directory for agrinews.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "agrinews")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/agrinews/config.yaml > ./config.yaml.
// When none exists the embedded defaults are used, so a missing file
// is not an error here.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path loads the
// embedded defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Classifier: Classifier{
			Endpoint:  "https://api-inference.huggingface.co/models",
			Model:     "facebook/bart-large-mnli",
			APIKeyEnv: "HF_API_TOKEN",
			Threshold: 0.3,
		},
		Scrape: Scrape{
			DelaySeconds:   2,
			PerSourceLimit: 10,
			TimeoutSeconds: 30,
			EnrichLimit:    5,
			RetentionDays:  7,
		},
		Schedule: Schedule{Time: "06:00", Timezone: "Asia/Kathmandu"},
		Server:   Server{Port: 5000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultSources()
	}

	return cfg, nil
}

func defaultSources() []Source {
	return []Source{
		{Name: "Nepal Agricultural Research Council", URL: "https://narc.gov.np/news", Type: "government", Profile: "narc"},
		{Name: "Krishi Daily", URL: "https://krishidaily.com", Type: "news"},
		{Name: "Nepal Agricultural Market", URL: "https://nam.gov.np/news", Type: "market"},
		{Name: "Ministry of Agriculture", URL: "https://moald.gov.np/news", Type: "government"},
	}
}

// DatabasePath returns the effective database file path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(DataDir(), "agrinews.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
