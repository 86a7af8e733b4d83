// Where: internal/app/status.go
// What: Status command handler.
// Why: Show the last build of a job without leaving the terminal.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/joyent/trigger-jenkins-build/internal/build"
	"github.com/joyent/trigger-jenkins-build/internal/config"
	"github.com/joyent/trigger-jenkins-build/internal/ui"
)

// runStatus fetches and prints the most recent build of a project.
func runStatus(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	ctx := context.Background()

	settings, err := config.Resolve(cli.Status.Server, cli.Status.Auth)
	if err != nil {
		return exitWithError(out, err)
	}
	if !settings.HasAuth() {
		return exitWithError(out, &build.ConfigError{Reason: "Jenkins credentials required (-u <user>:<token> or JENKINS_AUTH)"})
	}

	req := build.Request{
		Project: cli.Status.Project,
		Branch:  cli.Status.Branch,
		GitRepo: cli.Status.GitRepo,
		Server:  settings.Server,
	}
	// Org jobs are addressed through the repository folder, so -g is only
	// required for them.
	if req.Kind() == build.KindOther || req.Kind() == build.KindPlatformDebug {
		if req.GitRepo == "" {
			return exitWithError(out, &build.ConfigError{Reason: "git repository name is required (-g)"})
		}
	}

	if deps.NewJenkinsClient == nil {
		return exitWithError(out, fmt.Errorf("jenkins client not configured"))
	}
	client := deps.NewJenkinsClient(settings.Server, settings.User, settings.Token)
	lastBuild, err := client.LastBuild(ctx, req.JobPath())
	if err != nil {
		return exitWithError(out, err)
	}

	result := lastBuild.Result
	if lastBuild.Building {
		result = "RUNNING"
	}
	console.Header("🔎", cli.Status.Project)
	console.Item("Build", lastBuild.Number)
	console.Item("Result", result)
	console.Item("URL", lastBuild.URL)
	return exitOK
}
