// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/joyent/trigger-jenkins-build/internal/build"
	"github.com/joyent/trigger-jenkins-build/internal/github"
	"github.com/joyent/trigger-jenkins-build/internal/interaction"
	"github.com/joyent/trigger-jenkins-build/internal/jenkins"
	"github.com/joyent/trigger-jenkins-build/internal/version"
)

// Exit codes. Usage and configuration problems exit 2, everything else that
// fails exits 1.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// JenkinsClient is the subset of the Jenkins REST client the commands use.
type JenkinsClient interface {
	FetchCrumb(ctx context.Context) (jenkins.Crumb, bool, error)
	TriggerBuild(ctx context.Context, jobURL, payload string, crumb jenkins.Crumb) (string, error)
	LastBuild(ctx context.Context, jobPath string) (jenkins.Build, error)
}

// Dependencies holds all injected collaborators required for command
// execution. The constructors are swappable so tests can substitute fakes.
type Dependencies struct {
	Out              io.Writer
	Prompter         interaction.Prompter
	IsTerminal       func() bool
	NewJenkinsClient func(host, user, token string) JenkinsClient
	NewBranchChecker func(ctx context.Context, token string) github.BranchChecker
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	EnvFile string `name:"env-file" help:"Path to .env file"`

	Trigger TriggerCmd `cmd:"" default:"withargs" help:"Trigger a Jenkins build"`
	Status  StatusCmd  `cmd:"" help:"Show the last build of a project"`
	Config  ConfigCmd  `cmd:"" name:"config" help:"Manage configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type TriggerCmd struct {
	Project string `arg:"" help:"Project to build (e.g. platform, headnode, sdc-imgapi)"`
	Server  string `short:"H" name:"server" help:"Jenkins server base URL"`
	Branch  string `short:"b" help:"Branch to build"`
	Flavor  string `short:"F" name:"flavor" help:"Platform build flavor (triton, smartos, triton-and-smartos)"`
	Auth    string `short:"u" help:"Jenkins credentials (<user>:<token>)"`
	GitRepo string `short:"g" name:"git-repo" help:"Git repository name under the joyent org"`
	Verbose bool   `short:"v" help:"Print the resolved URL and payload"`
	Yes     bool   `short:"y" help:"Skip confirmation prompt"`
	Check   bool   `help:"Verify the branch exists on GitHub before triggering"`
	DryRun  bool   `name:"dry-run" help:"Print the request without contacting Jenkins"`
}

type StatusCmd struct {
	Project string `arg:"" help:"Project to inspect"`
	Server  string `short:"H" name:"server" help:"Jenkins server base URL"`
	Branch  string `short:"b" help:"Branch of the org job"`
	Auth    string `short:"u" help:"Jenkins credentials (<user>:<token>)"`
	GitRepo string `short:"g" name:"git-repo" help:"Git repository name under the joyent org"`
}

type ConfigCmd struct {
	SetServer ConfigSetServerCmd `cmd:"" name:"set-server" help:"Store a default Jenkins server URL"`
	SetAuth   ConfigSetAuthCmd   `cmd:"" name:"set-auth" help:"Store default Jenkins credentials"`
}

type ConfigSetServerCmd struct {
	URL string `arg:"" help:"Jenkins server base URL"`
}

type ConfigSetAuthCmd struct {
	Auth string `arg:"" help:"Jenkins credentials (<user>:<token>)"`
}

type VersionCmd struct{}

// Run is the main entry point for command execution. It parses the arguments,
// loads the optional env file, and dispatches to the matching handler.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("trigger-jenkins-build"),
		kong.Description("Trigger builds on the Joyent Jenkins server."),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		fmt.Fprintln(out, "Run 'trigger-jenkins-build --help' for usage.")
		return exitUsage
	}

	// Load environment file if provided or if .env exists in the current
	// directory.
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
			}
		}
	}

	switch command := ctx.Command(); command {
	case "trigger <project>":
		return runTrigger(cli, deps, out)
	case "status <project>":
		return runStatus(cli, deps, out)
	case "config set-server <url>":
		return runConfigSetServer(cli, out)
	case "config set-auth <auth>":
		return runConfigSetAuth(cli, out)
	case "version":
		fmt.Fprintln(out, version.GetVersion())
		return exitOK
	default:
		fmt.Fprintf(out, "unknown command %q\n", command)
		return exitUsage
	}
}

// exitWithError prints an error and maps it to the exit code taxonomy:
// configuration errors exit 2, flavor and transport errors exit 1.
func exitWithError(out io.Writer, err error) int {
	var cfgErr *build.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(out, "Error: %v\n", err)
		fmt.Fprintln(out, "Run 'trigger-jenkins-build --help' for usage.")
		return exitUsage
	}
	fmt.Fprintf(out, "Error: %v\n", err)
	return exitFailure
}
