package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
library:
  path: /data/library.xml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ytdlp.Path != "yt-dlp" {
		t.Errorf("ytdlp.path = %q", cfg.Ytdlp.Path)
	}
	if cfg.Ytdlp.TimeoutSeconds != 600 {
		t.Errorf("ytdlp.timeout_seconds = %d", cfg.Ytdlp.TimeoutSeconds)
	}
	if cfg.Defaults.FilenameFormat != "%(title)s [%(id)s]" {
		t.Errorf("defaults.filename_format = %q", cfg.Defaults.FilenameFormat)
	}
	if cfg.Defaults.URLNameFormat != "%(title)s" {
		t.Errorf("defaults.url_name_format = %q", cfg.Defaults.URLNameFormat)
	}
	if cfg.Defaults.FileExtension != "mp3" {
		t.Errorf("defaults.file_extension = %q", cfg.Defaults.FileExtension)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MUSICSYNC_TEST_DIR", "/srv/media")
	path := writeConfig(t, `
version: 1
library:
  path: ${MUSICSYNC_TEST_DIR}/library.xml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Library.Path != "/srv/media/library.xml" {
		t.Errorf("library.path = %q", cfg.Library.Path)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"wrong version", "version: 2\nlibrary:\n  path: /x.xml\n", "unsupported config version"},
		{"missing library", "version: 1\n", "library.path is required"},
		{"bad log level", "version: 1\nlibrary:\n  path: /x.xml\nlogging:\n  level: loud\n", "logging.level invalid"},
		{"bad log format", "version: 1\nlibrary:\n  path: /x.xml\nlogging:\n  format: xml\n", "logging.format invalid"},
		{"metrics without path", "version: 1\nlibrary:\n  path: /x.xml\nmetrics:\n  prometheus_textfile:\n    enabled: true\n", "prometheus_textfile.path required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("MUSICSYNC_CONFIG", "/etc/musicsync.yml")
	if got := DefaultPath(); got != "/etc/musicsync.yml" {
		t.Fatalf("DefaultPath = %q", got)
	}
}
