package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPages are the publisher pages scanned for a given year. {year} is
// the exam year and {archive} is the year when archive hosts are in use,
// empty otherwise.
var DefaultPages = []string{
	"http://subiecte{archive}.edu.ro/{year}/bacalaureat/modeledesubiecte/probescrise/",
	"http://subiecte{archive}.edu.ro/{year}/simulare/simulare_bac_XII/",
	"http://subiecte{archive}.edu.ro/{year}/bacalaureat/Subiecte_si_bareme/",
}

// S3Config holds the object storage settings for the S3 sink.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ScrapeConfig holds runtime configuration for a scrape run. Values come
// from CLI flags, optionally seeded from a YAML file.
type ScrapeConfig struct {
	Year           int               `yaml:"year"`
	ArchiveHosts   bool              `yaml:"archive_hosts"`
	Pages          []string          `yaml:"pages"`
	AlternateHosts map[string]string `yaml:"alternate_hosts"`
	OutputDir      string            `yaml:"output_dir"`
	RulesFile      string            `yaml:"rules_file"`
	Ledger         LedgerConfig      `yaml:"ledger"`
	Sink           string            `yaml:"sink"`
	S3             S3Config          `yaml:"s3"`
	WorkerCount    int               `yaml:"workers"`
	DryRun         bool              `yaml:"dry_run"`
	ValidatePDF    bool              `yaml:"validate_pdf"`
	CacheDir       string            `yaml:"cache_dir"`
	CacheTTL       time.Duration     `yaml:"cache_ttl"`
	UserAgent      string            `yaml:"user_agent"`
	Timeout        time.Duration     `yaml:"timeout"`
}

// DefaultUserAgent matches the browser string the publisher accepts.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultTimeout bounds a single page or archive request.
const DefaultTimeout = 60 * time.Second

// LedgerConfig selects where processed source URLs are kept.
type LedgerConfig struct {
	Backend  string `yaml:"backend"` // file, sqlite, redis
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_addr"`
	RedisKey string `yaml:"redis_key"`
}

// DefaultConfig returns the settings used when neither a config file nor a
// flag says otherwise. The year archive host is on, as is TLS for S3.
func DefaultConfig() *ScrapeConfig {
	return &ScrapeConfig{
		ArchiveHosts: true,
		S3:           S3Config{UseSSL: true},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. A missing path
// yields the defaults.
func LoadConfig(path string) (*ScrapeConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// PageURLs expands the page templates for the configured year.
func (c *ScrapeConfig) PageURLs() []string {
	pages := c.Pages
	if len(pages) == 0 {
		pages = DefaultPages
	}
	year := strconv.Itoa(c.Year)
	archive := ""
	if c.ArchiveHosts {
		archive = year
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		p = strings.ReplaceAll(p, "{archive}", archive)
		out[i] = strings.ReplaceAll(p, "{year}", year)
	}
	return out
}

// HostFallbacks returns the alternate hosts tried when a request fails.
// Without configuration the year archive host falls back to the live host.
func (c *ScrapeConfig) HostFallbacks() map[string]string {
	if len(c.AlternateHosts) > 0 {
		return c.AlternateHosts
	}
	return map[string]string{
		fmt.Sprintf("subiecte%d.edu.ro", c.Year): "subiecte.edu.ro",
	}
}
