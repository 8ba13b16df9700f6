package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML schema. All values should be supplied via YAML; we
// avoid hard-coded defaults beyond what ApplyDefaults fills in. Minimal
// validation occurs in Validate().
type Config struct {
	Version  int      `yaml:"version"`
	Library  Library  `yaml:"library"`
	Ytdlp    Ytdlp    `yaml:"ytdlp"`
	Defaults Defaults `yaml:"defaults"`
	Logging  Logging  `yaml:"logging"`
	Metrics  Metrics  `yaml:"metrics"`
}

type Library struct {
	// Path of the XML library file holding the collection tree.
	Path string `yaml:"path"`
}

type Ytdlp struct {
	Path           string   `yaml:"path"` // yt-dlp executable, default "yt-dlp"
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Format         string   `yaml:"format"` // yt-dlp format selector
	ExtraArgs      []string `yaml:"extra_args"`
}

type Defaults struct {
	FilenameFormat string `yaml:"filename_format"`
	URLNameFormat  string `yaml:"url_name_format"`
	FileExtension  string `yaml:"file_extension"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // human|json
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults fills in values a user rarely needs to set.
func (c *Config) ApplyDefaults() {
	if c.Ytdlp.Path == "" {
		c.Ytdlp.Path = "yt-dlp"
	}
	if c.Ytdlp.TimeoutSeconds <= 0 {
		c.Ytdlp.TimeoutSeconds = 600
	}
	if c.Ytdlp.Format == "" {
		c.Ytdlp.Format = "ba[acodec^=mp3]/ba/b"
	}
	if c.Defaults.FilenameFormat == "" {
		c.Defaults.FilenameFormat = "%(title)s [%(id)s]"
	}
	if c.Defaults.URLNameFormat == "" {
		c.Defaults.URLNameFormat = "%(title)s"
	}
	if c.Defaults.FileExtension == "" {
		c.Defaults.FileExtension = "mp3"
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.Library.Path, err = expandTilde(c.Library.Path); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.Library.Path == "" {
		return errors.New("library.path is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.Metrics.PrometheusTextfile.Enabled && c.Metrics.PrometheusTextfile.Path == "" {
		return errors.New("metrics.prometheus_textfile.path required when enabled")
	}
	return nil
}

// DefaultPath returns the conventional config location, honoring
// MUSICSYNC_CONFIG.
func DefaultPath() string {
	if env := os.Getenv("MUSICSYNC_CONFIG"); env != "" {
		return env
	}
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		return ""
	}
	return filepath.Join(h, ".config", "musicsync", "config.yml")
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}
