package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Config holds every knob a tubeget run reads. It is constructed once at
// startup and passed into components; nothing re-reads the file mid-run.
type Config struct {
	Browser           string   `json:"browser"`
	Profile           string   `json:"profile"`
	Container         string   `json:"container"`
	OutputDirectory   string   `json:"outputDirectory"`
	DefaultFormat     string   `json:"defaultFormat"`
	OutputFormat      string   `json:"outputFormat"`
	SubtitleLanguages string   `json:"subtitleLanguages"`
	EmbedSubtitles    bool     `json:"embedSubtitles"`
	EmbedMetadata     bool     `json:"embedMetadata"`
	CleanFilenames    bool     `json:"cleanFilenames"`
	AddReleaseYear    bool     `json:"addReleaseYear"`
	PhrasesToRemove   []string `json:"phrasesToRemove"`
	LogLevel          string   `json:"logLevel"`
	LogFormat         string   `json:"logFormat"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tubeget/config.json")
}

// Load locates and parses the configuration file. A missing file is created
// with defaults; an existing file missing keys is backfilled from defaults and
// rewritten. The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if !exists {
		if err := write(resolvedPath, &cfg); err != nil {
			return nil, "", fmt.Errorf("create config: %w", err)
		}
	} else {
		raw, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
		var present map[string]json.RawMessage
		if err := json.Unmarshal(raw, &present); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
		// Decoding over the defaults is what backfills absent keys.
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
		if missingKeys(present) {
			if err := write(resolvedPath, &cfg); err != nil {
				return nil, "", fmt.Errorf("backfill config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

func missingKeys(present map[string]json.RawMessage) bool {
	encoded, err := json.Marshal(Default())
	if err != nil {
		return false
	}
	var want map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &want); err != nil {
		return false
	}
	for key := range want {
		if _, ok := present[key]; !ok {
			return true
		}
	}
	return false
}

// write persists cfg as indented JSON. The file lock serializes writes across
// concurrent invocations racing to create or backfill the same file.
func write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	encoded, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(encoded, '\n'), 0o644)
}

// CookieSource renders the --cookies-from-browser argument from the browser,
// profile, and container selectors. Empty when no browser is configured.
func (c *Config) CookieSource() string {
	browser := strings.TrimSpace(c.Browser)
	if browser == "" {
		return ""
	}
	source := browser
	if profile := strings.TrimSpace(c.Profile); profile != "" {
		source += ":" + profile
	}
	if container := strings.TrimSpace(c.Container); container != "" {
		source += "::" + container
	}
	return source
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
