// Where: internal/app/config_cmd.go
// What: Config command handlers.
// Why: Persist default server and credentials in the global config file.
package app

import (
	"io"
	"strings"

	"github.com/joyent/trigger-jenkins-build/internal/build"
	"github.com/joyent/trigger-jenkins-build/internal/config"
	"github.com/joyent/trigger-jenkins-build/internal/ui"
)

// runConfigSetServer stores the default Jenkins server URL.
func runConfigSetServer(cli CLI, out io.Writer) int {
	return updateGlobalConfig(out, func(cfg *config.GlobalConfig) error {
		url := strings.TrimSpace(cli.Config.SetServer.URL)
		if url == "" {
			return &build.ConfigError{Reason: "server URL must not be empty"}
		}
		cfg.Server = url
		return nil
	}, "Default server updated.")
}

// runConfigSetAuth stores the default Jenkins credentials.
func runConfigSetAuth(cli CLI, out io.Writer) int {
	return updateGlobalConfig(out, func(cfg *config.GlobalConfig) error {
		auth := strings.TrimSpace(cli.Config.SetAuth.Auth)
		user, token, ok := strings.Cut(auth, ":")
		if !ok || user == "" || token == "" {
			return &build.ConfigError{Reason: "credentials must look like <user>:<token>"}
		}
		cfg.Auth = auth
		return nil
	}, "Default credentials updated.")
}

func updateGlobalConfig(out io.Writer, apply func(*config.GlobalConfig) error, success string) int {
	console := ui.New(out)

	path, err := config.GlobalConfigPath()
	if err != nil {
		return exitWithError(out, err)
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		cfg = config.DefaultGlobalConfig()
	}

	if err := apply(&cfg); err != nil {
		return exitWithError(out, err)
	}
	if err := config.SaveGlobalConfig(path, cfg); err != nil {
		return exitWithError(out, err)
	}

	console.Success(success)
	console.Item("Config", path)
	return exitOK
}
