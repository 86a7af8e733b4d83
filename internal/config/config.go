// Where: internal/config/config.go
// What: Global config load/save and settings resolution.
// Why: Manage ~/.trigger-jenkins-build/config.yaml and flag/env precedence consistently.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joyent/trigger-jenkins-build/internal/build"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted during settings resolution.
const (
	EnvJenkinsURL  = "JENKINS_URL"
	EnvJenkinsAuth = "JENKINS_AUTH"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvConfigPath  = "TRIGGER_JENKINS_CONFIG_PATH"
)

// configHomeDir is the directory under $HOME holding the global config.
const configHomeDir = ".trigger-jenkins-build"

// GlobalConfig represents the ~/.trigger-jenkins-build/config.yaml file. It
// stores durable defaults so credentials need not be exported per shell.
type GlobalConfig struct {
	Version     int    `yaml:"version"`
	Server      string `yaml:"server,omitempty"`
	Auth        string `yaml:"auth,omitempty"`
	GitHubToken string `yaml:"github_token,omitempty"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{Version: 1}
}

// GlobalConfigPath returns the path to the global config file. The
// TRIGGER_JENKINS_CONFIG_PATH environment variable overrides the default
// location under the user's home directory.
func GlobalConfigPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvConfigPath)); override != "" {
		path := override
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configHomeDir, "config.yaml"), nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, err
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

// SaveGlobalConfig writes a GlobalConfig to the specified path. The file may
// contain an API token, so it is not group or world readable.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o600)
}

// Settings are the resolved inputs shared by every Jenkins call.
type Settings struct {
	Server      string
	User        string
	Token       string
	GitHubToken string
}

// HasAuth reports whether credentials were resolved from any source.
func (s Settings) HasAuth() bool {
	return s.User != "" && s.Token != ""
}

// Resolve computes the effective settings with flag > environment > global
// config > default precedence. Flags win over JENKINS_URL and JENKINS_AUTH
// when both are given.
func Resolve(flagServer, flagAuth string) (Settings, error) {
	cfg := GlobalConfig{}
	if path, err := GlobalConfigPath(); err == nil {
		if loaded, err := LoadGlobalConfig(path); err == nil {
			cfg = loaded
		}
	}

	settings := Settings{Server: build.DefaultServer}
	if cfg.Server != "" {
		settings.Server = cfg.Server
	}
	if env := os.Getenv(EnvJenkinsURL); env != "" {
		settings.Server = env
	}
	if flagServer != "" {
		settings.Server = flagServer
	}

	auth := cfg.Auth
	if env := os.Getenv(EnvJenkinsAuth); env != "" {
		auth = env
	}
	if flagAuth != "" {
		auth = flagAuth
	}
	if auth != "" {
		user, token, ok := strings.Cut(auth, ":")
		if !ok || user == "" || token == "" {
			return Settings{}, &build.ConfigError{Reason: fmt.Sprintf("credentials must look like <user>:<token>, got %q", auth)}
		}
		settings.User = user
		settings.Token = token
	}

	settings.GitHubToken = cfg.GitHubToken
	if env := os.Getenv(EnvGitHubToken); env != "" {
		settings.GitHubToken = env
	}

	return settings, nil
}
