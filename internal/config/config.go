// internal/config/config.go
//
// This package handles configuration and the .rfpgen directory
// structure. Every project that uses rfpgen gets a .rfpgen/ folder
// created in its root, holding the config file, logs, and exported
// documents.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceDir is the name of the directory we create in each project.
	WorkspaceDir = ".rfpgen"

	defaultBaseURL        = "http://localhost:8000/api"
	defaultTimeoutSeconds = 120

	// EnvAPIBaseURL overrides api.base_url when set (loaded from the
	// environment or a .env file).
	EnvAPIBaseURL = "RFPGEN_API_URL"
)

const defaultProjectConfigYAML = `# rfpgen project configuration
version: 1

api:
  # Base URL of the generation backend, including the /api prefix.
  # Can be overridden with the RFPGEN_API_URL environment variable.
  base_url: http://localhost:8000/api
  # Per-call timeout in seconds. 0 disables the client-side timeout.
  timeout_seconds: 120

export:
  # Directory for exported documents. Empty means .rfpgen/exports.
  dir: ""
`

// APIConfig addresses the generation backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// ExportConfig controls where exported artifacts land.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig models .rfpgen/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version" validate:"gte=1"`
	API     APIConfig    `yaml:"api"`
	Export  ExportConfig `yaml:"export"`
}

// Config holds the runtime configuration for rfpgen.
type Config struct {
	// ProjectDir is the directory where the user ran `rfpgen` from.
	ProjectDir string

	// WorkspacePath is ProjectDir/.rfpgen.
	WorkspacePath string

	Project ProjectConfig
}

// InitWorkspace creates the .rfpgen directory structure in the given
// project directory. Called on startup before the TUI launches.
//
// Structure created:
// .rfpgen/
// ├── logs/      <- session logbook
// └── exports/   <- downloaded RFP documents
func InitWorkspace(projectDir string) error {
	workspace := filepath.Join(projectDir, WorkspaceDir)
	dirs := []string{
		filepath.Join(workspace, "logs"),
		filepath.Join(workspace, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(workspace, "config.yaml"))
}

// NewConfig loads the project configuration, applies defaults and the
// environment override, and validates the result.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:    projectDir,
		WorkspacePath: filepath.Join(projectDir, WorkspaceDir),
		Project:       defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if override := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); override != "" {
		cfg.Project.API.BaseURL = override
	}
	if err := cfg.Project.validate(); err != nil {
		return nil, oops.In("config").Wrapf(err, "invalid configuration")
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.WorkspacePath, "logs")
}

// ExportDir returns the directory exported documents are written to.
func (c *Config) ExportDir() string {
	if dir := strings.TrimSpace(c.Project.Export.Dir); dir != "" {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Clean(filepath.Join(c.ProjectDir, dir))
	}
	return filepath.Join(c.WorkspacePath, "exports")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.WorkspacePath, "config.yaml")
}

// APIBaseURL returns the backend base URL.
func (c *Config) APIBaseURL() string {
	return c.Project.API.BaseURL
}

// APITimeout returns the per-call HTTP timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.Project.API.TimeoutSeconds) * time.Second
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.In("config").Wrapf(err, "read %s", path)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return oops.In("config").Wrapf(err, "parse %s", path)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		API: APIConfig{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.API.BaseURL = strings.TrimSpace(pc.API.BaseURL)
	if pc.API.BaseURL == "" {
		pc.API.BaseURL = defaultBaseURL
	}
	if pc.API.TimeoutSeconds == 0 {
		pc.API.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (pc *ProjectConfig) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(pc); err != nil {
		return err
	}
	if pc.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be >= 0")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
