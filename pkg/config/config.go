package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/spf13/viper"
)

const envPrefix = "TACHIEXT"

// Config file keys
const (
	KeyRootDir        = "root_dir"
	KeyRepoURL        = "repo_url"
	KeyLibVersionMin  = "lib_version_min"
	KeyLibVersionMax  = "lib_version_max"
	KeyTimeoutSeconds = "timeout_seconds"
	KeyGitHubToken    = "github_token"
	KeyLogLevel       = "log_level"
	KeyBlacklist      = "blacklist"
	KeyLanguages      = "languages"
)

// DefaultBlacklist lists extensions superseded by the built-in sources
var DefaultBlacklist = []string{
	"eu.kanade.tachiyomi.extension.all.ehentai",
	"eu.kanade.tachiyomi.extension.all.merakiscans",
	"eu.kanade.tachiyomi.extension.all.nhentai",
	"eu.kanade.tachiyomi.extension.en.hentaicafe",
	"eu.kanade.tachiyomi.extension.en.pururin",
	"eu.kanade.tachiyomi.extension.en.tsumino",
}

// Config represents the tachiext configuration
type Config struct {
	// Directory where tachiext stores all its data
	RootDir string `json:"root_dir" mapstructure:"root_dir"`
	// Extension repository root (index.json, apk/, icon/)
	RepoURL string `json:"repo_url" mapstructure:"repo_url"`
	// Inclusive range of supported extension library versions
	LibVersionMin float64 `json:"lib_version_min" mapstructure:"lib_version_min"`
	LibVersionMax float64 `json:"lib_version_max" mapstructure:"lib_version_max"`
	// Request timeout in seconds
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	// GitHub token for API access (optional)
	GitHubToken string `json:"github_token,omitempty" mapstructure:"github_token"`
	// Log level (trace, debug, info, warn, error)
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	// Package names excluded from update checks
	Blacklist []string `json:"blacklist" mapstructure:"blacklist"`
	// Preferred extension languages, empty means use the environment
	Languages []string `json:"languages,omitempty" mapstructure:"languages"`
}

// Directories represents the tachiext directory structure
type Directories struct {
	// Root directory for all tachiext data
	Root string
	// Directory containing installed extension APKs
	Extensions string
	// Directory for database files
	DB string
	// Directory for log files
	Logs string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		RootDir:        filepath.Join(homeDir, "tachiext"),
		RepoURL:        github.DefaultRepoURL,
		LibVersionMin:  github.LibVersionMin,
		LibVersionMax:  github.LibVersionMax,
		TimeoutSeconds: 30,
		LogLevel:       "info",
		Blacklist:      append([]string(nil), DefaultBlacklist...),
	}
}

// GetDirectories returns the directory structure based on the root directory
func (c *Config) GetDirectories() *Directories {
	return &Directories{
		Root:       c.RootDir,
		Extensions: filepath.Join(c.RootDir, "extensions"),
		DB:         filepath.Join(c.RootDir, "db"),
		Logs:       filepath.Join(c.RootDir, "logs"),
	}
}

// Timeout returns the request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ClientOptions returns the repository client settings
func (c *Config) ClientOptions() github.Options {
	return github.Options{
		RepoURL: c.RepoURL,
		Token:   c.GitHubToken,
		Timeout: c.Timeout(),
		Bounds:  github.LibBounds{Min: c.LibVersionMin, Max: c.LibVersionMax},
	}
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return errors.New("root_dir must not be empty")
	}
	if c.LibVersionMin <= 0 {
		return fmt.Errorf("lib_version_min must be positive, got %v", c.LibVersionMin)
	}
	if c.LibVersionMin > c.LibVersionMax {
		return fmt.Errorf("lib_version_min %v is greater than lib_version_max %v", c.LibVersionMin, c.LibVersionMax)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

func configFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tachiext", "config.json"), nil
}

// value returns the current value of a config file key
func (c *Config) value(key string) (any, error) {
	switch key {
	case KeyRootDir:
		return c.RootDir, nil
	case KeyRepoURL:
		return c.RepoURL, nil
	case KeyLibVersionMin:
		return c.LibVersionMin, nil
	case KeyLibVersionMax:
		return c.LibVersionMax, nil
	case KeyTimeoutSeconds:
		return c.TimeoutSeconds, nil
	case KeyGitHubToken:
		return c.GitHubToken, nil
	case KeyLogLevel:
		return c.LogLevel, nil
	case KeyBlacklist:
		return c.Blacklist, nil
	case KeyLanguages:
		return c.Languages, nil
	}
	return nil, fmt.Errorf("unknown config key: %s", key)
}

// readFile reads only the values stored in the config file
func readFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load loads the configuration from the default location. Values missing from
// the file fall back to defaults; TACHIEXT_* environment variables win over both.
func Load() (*Config, error) {
	path, err := configFile()
	if err != nil {
		return nil, err
	}

	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault(KeyRootDir, def.RootDir)
	v.SetDefault(KeyRepoURL, def.RepoURL)
	v.SetDefault(KeyLibVersionMin, def.LibVersionMin)
	v.SetDefault(KeyLibVersionMax, def.LibVersionMax)
	v.SetDefault(KeyTimeoutSeconds, def.TimeoutSeconds)
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyBlacklist, def.Blacklist)
	v.SetDefault(KeyLanguages, []string{})

	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to merge config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save writes the given keys to the config file at the default location.
// Keys already in the file are kept; defaults and environment overrides are
// never written unless named.
func (c *Config) Save(keys ...string) error {
	configFile, err := configFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := readFile(configFile)
	if err != nil {
		return err
	}
	for _, key := range keys {
		value, err := c.value(key)
		if err != nil {
			return err
		}
		file.Set(key, value)
	}

	file.SetConfigPermissions(0600)
	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EnsureDirectories creates all necessary directories if they don't exist
func (c *Config) EnsureDirectories() error {
	dirs := c.GetDirectories()
	for _, dir := range []string{
		dirs.Root,
		dirs.Extensions,
		dirs.DB,
		dirs.Logs,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
