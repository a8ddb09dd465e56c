// Package models defines data structures shared across the importer.
package models

// Asset naming policies.
const (
	AssetNamingRandom  = "random"
	AssetNamingURLHash = "url-hash"
)

// Settings holds persistent user configuration. Keys absent from the file
// keep their DefaultSettings value.
type Settings struct {
	APIEndpoint string `yaml:"api_endpoint"`
	APIKey      string `yaml:"api_key"`
	Folder      string `yaml:"folder"` // target folder for web imports

	VaultDir    string `yaml:"vault_dir"`
	DBPath      string `yaml:"db_path,omitempty"` // defaults to the user config directory
	OpenCommand string `yaml:"open_command,omitempty"`

	Origin      string `yaml:"origin"` // scraping origin for threads
	AssetNaming string `yaml:"asset_naming"`
	MaxPages    int    `yaml:"max_pages"`

	RequestIntervalMillis int               `yaml:"request_interval_ms"`
	RequestTimeoutMillis  int               `yaml:"request_timeout_ms"`
	UserAgent             string            `yaml:"user_agent,omitempty"` // "" uses the header bundle, "random" picks one
	Headers               map[string]string `yaml:"headers,omitempty"`

	CacheDir        string `yaml:"cache_dir,omitempty"` // empty disables the response cache
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// DefaultSettings mirrors a fresh install.
func DefaultSettings() Settings {
	return Settings{
		VaultDir:              ".",
		Origin:                "https://nitter.net",
		AssetNaming:           AssetNamingRandom,
		MaxPages:              100,
		RequestIntervalMillis: 500,
		RequestTimeoutMillis:  30000,
		CacheTTLMinutes:       60,
	}
}
