// Where: cmd/trigger-jenkins-build/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/joyent/trigger-jenkins-build/internal/app"
	"github.com/joyent/trigger-jenkins-build/internal/github"
	"github.com/joyent/trigger-jenkins-build/internal/interaction"
	"github.com/joyent/trigger-jenkins-build/internal/jenkins"
)

var stdoutIsTerminal = func() bool {
	return interaction.IsTerminal(os.Stdout)
}

// buildDependencies constructs the runtime dependencies required by the CLI.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:        os.Stdout,
		Prompter:   interaction.HuhPrompter{},
		IsTerminal: stdoutIsTerminal,
		NewJenkinsClient: func(host, user, token string) app.JenkinsClient {
			return jenkins.New(host, user, token)
		},
		NewBranchChecker: github.NewChecker,
	}
}
