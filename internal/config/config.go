// Package config loads server settings from a YAML file with RIKI_*
// environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/guzmanc1/RikiWiki/internal/markup"
	"github.com/guzmanc1/RikiWiki/internal/models"
)

// DefaultConfigFile is used when no -config flag is given.
const DefaultConfigFile = "config.yml"

// Config holds all server settings.
type Config struct {
	// Title is shown in the navigation bar and page titles.
	Title string

	// Private requires a login for every wiki endpoint.
	Private bool

	// ContentDir is the directory holding the page files.
	ContentDir string

	// UserDir is the directory holding users.json.
	UserDir string

	// Addr is the listen address, e.g. ":5000".
	Addr string

	// SessionKey signs the session cookie. When empty, a random key is
	// generated at startup and sessions do not survive a restart.
	SessionKey string

	// IndexPath is the SQLite index location. Defaults to a dot
	// directory inside ContentDir.
	IndexPath string

	// Watch reindexes the content directory when files change on disk.
	Watch bool

	// DefaultFormat is the markup used for newly created pages.
	DefaultFormat string

	// SearchIgnoreCase preselects case-insensitive search.
	SearchIgnoreCase bool

	// AuthMethod is how passwords of new accounts are stored.
	AuthMethod string
}

// fileConfig mirrors Config for the YAML file. Pointers keep "set to
// false" apart from "not set".
type fileConfig struct {
	Title            *string `yaml:"title"`
	Private          *bool   `yaml:"private"`
	ContentDir       *string `yaml:"content_dir"`
	UserDir          *string `yaml:"user_dir"`
	Addr             *string `yaml:"addr"`
	SessionKey       *string `yaml:"session_key"`
	IndexPath        *string `yaml:"index_path"`
	Watch            *bool   `yaml:"watch"`
	DefaultFormat    *string `yaml:"default_format"`
	SearchIgnoreCase *bool   `yaml:"search_ignore_case"`
	AuthMethod       *string `yaml:"auth_method"`
}

func newDefault() *Config {
	return &Config{
		Title:            "Riki",
		Private:          false,
		ContentDir:       "content",
		UserDir:          "user",
		Addr:             ":5000",
		Watch:            true,
		DefaultFormat:    string(markup.Markdown),
		SearchIgnoreCase: true,
		AuthMethod:       models.AuthBcrypt,
	}
}

// Load reads the configuration. A missing default file is fine; a
// missing explicitly named file is an error. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	config := newDefault()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case os.IsNotExist(err) && !explicit:
		// run on defaults
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config.applyEnvConfig()

	if config.IndexPath == "" {
		config.IndexPath = filepath.Join(config.ContentDir, ".riki", "index.db")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if file.Title != nil {
		c.Title = *file.Title
	}
	if file.Private != nil {
		c.Private = *file.Private
	}
	if file.ContentDir != nil {
		c.ContentDir = *file.ContentDir
	}
	if file.UserDir != nil {
		c.UserDir = *file.UserDir
	}
	if file.Addr != nil {
		c.Addr = *file.Addr
	}
	if file.SessionKey != nil {
		c.SessionKey = *file.SessionKey
	}
	if file.IndexPath != nil {
		c.IndexPath = *file.IndexPath
	}
	if file.Watch != nil {
		c.Watch = *file.Watch
	}
	if file.DefaultFormat != nil {
		c.DefaultFormat = *file.DefaultFormat
	}
	if file.SearchIgnoreCase != nil {
		c.SearchIgnoreCase = *file.SearchIgnoreCase
	}
	if file.AuthMethod != nil {
		c.AuthMethod = *file.AuthMethod
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("RIKI_TITLE"); val != "" {
		c.Title = val
	}
	if val := os.Getenv("RIKI_PRIVATE"); val != "" {
		c.Private = val == "true" || val == "1"
	}
	if val := os.Getenv("RIKI_CONTENT_DIR"); val != "" {
		c.ContentDir = val
	}
	if val := os.Getenv("RIKI_USER_DIR"); val != "" {
		c.UserDir = val
	}
	if val := os.Getenv("RIKI_ADDR"); val != "" {
		c.Addr = val
	}
	if val := os.Getenv("RIKI_SESSION_KEY"); val != "" {
		c.SessionKey = val
	}
	if val := os.Getenv("RIKI_INDEX_PATH"); val != "" {
		c.IndexPath = val
	}
	if val := os.Getenv("RIKI_WATCH"); val != "" {
		c.Watch = val == "true" || val == "1"
	}
	if val := os.Getenv("RIKI_DEFAULT_FORMAT"); val != "" {
		c.DefaultFormat = val
	}
	if val := os.Getenv("RIKI_SEARCH_IGNORE_CASE"); val != "" {
		c.SearchIgnoreCase = val == "true" || val == "1"
	}
	if val := os.Getenv("RIKI_AUTH_METHOD"); val != "" {
		c.AuthMethod = val
	}
}

// Format returns the default page format as a markup format.
func (c *Config) Format() markup.Format {
	return markup.Format(c.DefaultFormat)
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir must not be empty")
	}
	if c.UserDir == "" {
		return fmt.Errorf("user_dir must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch markup.Format(c.DefaultFormat) {
	case markup.Markdown, markup.Org:
	default:
		return fmt.Errorf("invalid default_format: %s", c.DefaultFormat)
	}
	switch c.AuthMethod {
	case models.AuthBcrypt, models.AuthCleartext:
	default:
		return fmt.Errorf("invalid auth_method: %s", c.AuthMethod)
	}
	return nil
}
