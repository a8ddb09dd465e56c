package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dtnitsch/url-importer/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDir  = ".config/url-importer"
	DefaultFile = "settings.yaml"
)

// DefaultPath returns $HOME/.config/url-importer/settings.yaml, or a
// relative settings.yaml when no home directory is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFile
	}
	return filepath.Join(home, DefaultDir, DefaultFile)
}

// Load reads the settings file at path over the defaults. Keys missing from
// the file keep their default, explicit zero values are kept. A missing
// file is not an error.
func Load(path string) (models.Settings, error) {
	s := models.DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := validateAssetNaming(s.AssetNaming); err != nil {
		return s, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	s.Origin = strings.TrimSuffix(s.Origin, "/")
	s.VaultDir = expandHome(s.VaultDir)
	s.DBPath = expandHome(s.DBPath)
	s.CacheDir = expandHome(s.CacheDir)
	return s, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}

// Save writes the settings as YAML, creating the parent directory.
func Save(path string, s models.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func validateAssetNaming(v string) error {
	if v != models.AssetNamingRandom && v != models.AssetNamingURLHash {
		return fmt.Errorf("asset_naming must be %q or %q, got %q", models.AssetNamingRandom, models.AssetNamingURLHash, v)
	}
	return nil
}

// Set assigns a single key (the YAML field name) from its string form.
func Set(s *models.Settings, key, value string) error {
	switch key {
	case "api_endpoint":
		s.APIEndpoint = value
	case "api_key":
		s.APIKey = value
	case "folder":
		s.Folder = value
	case "vault_dir":
		s.VaultDir = value
	case "db_path":
		s.DBPath = value
	case "open_command":
		s.OpenCommand = value
	case "origin":
		s.Origin = strings.TrimSuffix(value, "/")
	case "user_agent":
		s.UserAgent = value
	case "cache_dir":
		s.CacheDir = value
	case "asset_naming":
		if err := validateAssetNaming(value); err != nil {
			return err
		}
		s.AssetNaming = value
	case "max_pages", "request_interval_ms", "request_timeout_ms", "cache_ttl_minutes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		switch key {
		case "max_pages":
			s.MaxPages = n
		case "request_interval_ms":
			s.RequestIntervalMillis = n
		case "cache_ttl_minutes":
			s.CacheTTLMinutes = n
		default:
			s.RequestTimeoutMillis = n
		}
	default:
		if name, ok := strings.CutPrefix(key, "headers."); ok && name != "" {
			if s.Headers == nil {
				s.Headers = make(map[string]string)
			}
			s.Headers[name] = value
			return nil
		}
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := []string{
		"api_endpoint", "api_key", "folder", "vault_dir", "db_path", "open_command",
		"origin", "asset_naming", "max_pages", "request_interval_ms", "request_timeout_ms",
		"user_agent", "headers.<name>", "cache_dir", "cache_ttl_minutes",
	}
	sort.Strings(keys)
	return keys
}
