// Where: internal/build/request.go
// What: Build request construction for Jenkins trigger calls.
// Why: Keep URL and parameter resolution pure and independently testable.
package build

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultServer is the Jenkins master used when no server is configured.
const DefaultServer = "https://jenkins.joyent.us"

// ProjectKind classifies a project name. The kind drives both the target job
// URL and the parameter payload.
type ProjectKind int

const (
	KindOther ProjectKind = iota
	KindPlatform
	KindPlatformDebug
	KindHeadnode
	KindHeadnodeDebug
)

// Classify maps a project name onto its ProjectKind. Anything that is not a
// platform or headnode build is an ordinary joyent-org multibranch job.
func Classify(project string) ProjectKind {
	switch project {
	case "platform":
		return KindPlatform
	case "platform-debug":
		return KindPlatformDebug
	case "headnode":
		return KindHeadnode
	case "headnode-debug":
		return KindHeadnodeDebug
	default:
		return KindOther
	}
}

// configureRepos are the repositories pinned through CONFIGURE_PROJECTS when
// a platform build targets a feature branch.
var configureRepos = []string{
	"illumos-extra",
	"illumos",
	"local/kbmd",
	"local/kvm-cmd",
	"local/kvm",
	"local/mdata-client",
	"local/ur-agent",
}

var validFlavors = map[string]bool{
	"triton":             true,
	"smartos":            true,
	"triton-and-smartos": true,
}

// ConfigError reports missing or contradictory inputs. It maps to a usage
// message and exit code 2.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// FlavorError reports an unrecognized platform build flavor. It maps to exit
// code 1.
type FlavorError struct {
	Flavor string
}

func (e *FlavorError) Error() string {
	return fmt.Sprintf("unknown platform flavor %q (expected triton, smartos or triton-and-smartos)", e.Flavor)
}

// Request describes one build-trigger request. It is assembled from CLI
// input, consumed once, and never persisted.
type Request struct {
	Project        string
	Branch         string
	PlatformFlavor string
	GitRepo        string
	Server         string
	Verbose        bool
}

// Kind returns the project classification for this request.
func (r Request) Kind() ProjectKind {
	return Classify(r.Project)
}

// Validate checks the request against the configuration rules. Flavors are
// only meaningful for platform builds, and only a closed set is accepted.
func (r Request) Validate() error {
	if r.Project == "" {
		return &ConfigError{Reason: "project name is required"}
	}
	if r.GitRepo == "" {
		return &ConfigError{Reason: "git repository name is required (-g)"}
	}
	if r.PlatformFlavor != "" {
		switch r.Kind() {
		case KindPlatform, KindPlatformDebug:
			if !validFlavors[r.PlatformFlavor] {
				return &FlavorError{Flavor: r.PlatformFlavor}
			}
		default:
			return &ConfigError{Reason: fmt.Sprintf("platform flavor only applies to platform builds, not %q", r.Project)}
		}
	}
	return nil
}

func (r Request) server() string {
	server := r.Server
	if server == "" {
		server = DefaultServer
	}
	return strings.TrimRight(server, "/")
}

// JobPath returns the job path below the server root, without a leading
// slash. Platform and headnode builds live at the top level; everything else
// is a branch job inside the joyent-org folder.
func (r Request) JobPath() string {
	switch r.Kind() {
	case KindPlatform, KindHeadnode, KindHeadnodeDebug:
		return fmt.Sprintf("job/%s", r.Project)
	default:
		branch := r.Branch
		if branch == "" {
			branch = "master"
		}
		return fmt.Sprintf("job/joyent-org/job/%s/job/%s", r.GitRepo, branch)
	}
}

// URL returns the endpoint the trigger request is posted to.
func (r Request) URL() string {
	return fmt.Sprintf("%s/%s/build", r.server(), r.JobPath())
}

// Parameter is a single name/value build parameter. Jenkins keeps the array
// order for display, so insertion order is preserved.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parameters is the payload posted as the "json" form field.
type Parameters struct {
	Parameter []Parameter `json:"parameter"`
}

func (p *Parameters) add(name, value string) {
	p.Parameter = append(p.Parameter, Parameter{Name: name, Value: value})
}

// Parameters resolves the build parameters for the request. The slice is
// always non-nil so an empty payload marshals as {"parameter":[]}.
func (r Request) Parameters() Parameters {
	params := Parameters{Parameter: []Parameter{}}
	kind := r.Kind()

	switch kind {
	case KindPlatform, KindHeadnode, KindHeadnodeDebug:
		if r.Branch != "" {
			params.add("BRANCH", r.Branch)
		}
	}

	switch kind {
	case KindPlatform, KindPlatformDebug:
		if r.Branch != "" {
			lines := make([]string, len(configureRepos))
			for i, repo := range configureRepos {
				lines[i] = fmt.Sprintf("%s: %s: origin", repo, r.Branch)
			}
			params.add("CONFIGURE_PROJECTS", strings.Join(lines, "\n"))
		}
		if r.PlatformFlavor != "" {
			params.add("PLATFORM_BUILD_FLAVOR", r.PlatformFlavor)
		}
	case KindHeadnode, KindHeadnodeDebug:
		if r.Branch != "" {
			params.add("CONFIGURE_BRANCHES", fmt.Sprintf("bits-branch: %s", r.Branch))
		}
	}

	return params
}

// PayloadJSON returns the JSON encoding of the resolved parameters.
func (r Request) PayloadJSON() (string, error) {
	raw, err := json.Marshal(r.Parameters())
	if err != nil {
		return "", fmt.Errorf("encode parameters: %w", err)
	}
	return string(raw), nil
}
