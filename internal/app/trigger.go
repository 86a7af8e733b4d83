// Where: internal/app/trigger.go
// What: Trigger command handler.
// Why: Orchestrate settings resolution, crumb fetch, and the build POST.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/joyent/trigger-jenkins-build/internal/build"
	"github.com/joyent/trigger-jenkins-build/internal/config"
	"github.com/joyent/trigger-jenkins-build/internal/ui"
)

// runTrigger resolves the build request, optionally confirms with the user,
// and posts it to Jenkins. The crumb fetch and the trigger POST are the only
// two network calls; either failure aborts the command.
func runTrigger(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	ctx := context.Background()

	settings, err := config.Resolve(cli.Trigger.Server, cli.Trigger.Auth)
	if err != nil {
		return exitWithError(out, err)
	}

	req := build.Request{
		Project:        cli.Trigger.Project,
		Branch:         cli.Trigger.Branch,
		PlatformFlavor: cli.Trigger.Flavor,
		GitRepo:        cli.Trigger.GitRepo,
		Server:         settings.Server,
		Verbose:        cli.Trigger.Verbose,
	}
	if err := req.Validate(); err != nil {
		return exitWithError(out, err)
	}

	payload, err := req.PayloadJSON()
	if err != nil {
		return exitWithError(out, err)
	}
	jobURL := req.URL()

	if cli.Trigger.Verbose || cli.Trigger.DryRun {
		console.Header("🔧", "Build request")
		console.Item("Job", jobURL)
		console.Item("Payload", payload)
	}
	if cli.Trigger.DryRun {
		return exitOK
	}

	if !settings.HasAuth() {
		return exitWithError(out, &build.ConfigError{Reason: "Jenkins credentials required (-u <user>:<token> or JENKINS_AUTH)"})
	}

	if cli.Trigger.Check {
		if code := runBranchCheck(ctx, cli, deps, settings, console); code != exitOK {
			return code
		}
	}

	if !cli.Trigger.Yes && deps.Prompter != nil && deps.IsTerminal != nil && deps.IsTerminal() {
		confirmed, err := deps.Prompter.Confirm(fmt.Sprintf("Trigger %s on %s?", cli.Trigger.Project, settings.Server))
		if err != nil {
			return exitWithError(out, err)
		}
		if !confirmed {
			console.Info("Aborted.")
			return exitOK
		}
	}

	if deps.NewJenkinsClient == nil {
		return exitWithError(out, fmt.Errorf("jenkins client not configured"))
	}
	client := deps.NewJenkinsClient(settings.Server, settings.User, settings.Token)

	crumb, issued, err := client.FetchCrumb(ctx)
	if err != nil {
		return exitWithError(out, err)
	}
	if !issued {
		console.Warn("CSRF protection is disabled on the server; triggering without a crumb")
	} else if cli.Trigger.Verbose {
		console.Item("Crumb", crumb.Header)
	}

	location, err := client.TriggerBuild(ctx, jobURL, payload, crumb)
	if err != nil {
		return exitWithError(out, err)
	}

	console.Success(fmt.Sprintf("Build triggered: %s", cli.Trigger.Project))
	if location != "" {
		console.Item("Queue", location)
	}
	return exitOK
}

// runBranchCheck verifies the branch exists on GitHub. A missing branch is
// fatal; an API failure is reported as a warning and the trigger proceeds,
// since the check is advisory.
func runBranchCheck(ctx context.Context, cli CLI, deps Dependencies, settings config.Settings, console *ui.Console) int {
	if deps.NewBranchChecker == nil {
		return exitOK
	}
	branch := cli.Trigger.Branch
	if branch == "" {
		branch = "master"
	}

	checker := deps.NewBranchChecker(ctx, settings.GitHubToken)
	exists, err := checker.BranchExists(ctx, cli.Trigger.GitRepo, branch)
	if err != nil {
		console.Warn(fmt.Sprintf("branch check skipped: %v", err))
		return exitOK
	}
	if !exists {
		console.Error(fmt.Sprintf("branch %q not found on github.com/joyent/%s", branch, cli.Trigger.GitRepo))
		return exitFailure
	}
	return exitOK
}
