// Where: internal/build/request_test.go
// What: Tests for build request URL and parameter resolution.
// Why: Lock down the per-project formatting rules.
package build

import (
	"errors"
	"strings"
	"testing"
)

func TestURLForCoreProjects(t *testing.T) {
	cases := []struct {
		project string
		want    string
	}{
		{"platform", "https://jenkins.joyent.us/job/platform/build"},
		{"headnode", "https://jenkins.joyent.us/job/headnode/build"},
		{"headnode-debug", "https://jenkins.joyent.us/job/headnode-debug/build"},
	}
	for _, tc := range cases {
		req := Request{Project: tc.project, GitRepo: "triton"}
		if got := req.URL(); got != tc.want {
			t.Errorf("URL for %s: got %s, want %s", tc.project, got, tc.want)
		}
	}
}

func TestURLForOrgProjects(t *testing.T) {
	req := Request{Project: "sdc-imgapi", GitRepo: "sdc-imgapi", Branch: "dev-feature"}
	want := "https://jenkins.joyent.us/job/joyent-org/job/sdc-imgapi/job/dev-feature/build"
	if got := req.URL(); got != want {
		t.Fatalf("unexpected URL: got %s, want %s", got, want)
	}

	// platform-debug builds through the org folder, not a top-level job.
	req = Request{Project: "platform-debug", GitRepo: "smartos-live", Branch: "dev-feature"}
	want = "https://jenkins.joyent.us/job/joyent-org/job/smartos-live/job/dev-feature/build"
	if got := req.URL(); got != want {
		t.Fatalf("unexpected platform-debug URL: got %s, want %s", got, want)
	}
}

func TestURLDefaultsBranchToMaster(t *testing.T) {
	req := Request{Project: "sdc-imgapi", GitRepo: "sdc-imgapi"}
	want := "https://jenkins.joyent.us/job/joyent-org/job/sdc-imgapi/job/master/build"
	if got := req.URL(); got != want {
		t.Fatalf("unexpected URL: got %s, want %s", got, want)
	}
}

func TestURLHonorsServerOverride(t *testing.T) {
	req := Request{Project: "headnode", GitRepo: "triton", Server: "https://ci.example.com/"}
	want := "https://ci.example.com/job/headnode/build"
	if got := req.URL(); got != want {
		t.Fatalf("unexpected URL: got %s, want %s", got, want)
	}
}

func TestValidateFlavor(t *testing.T) {
	req := Request{Project: "platform", GitRepo: "smartos-live", PlatformFlavor: "triton"}
	if err := req.Validate(); err != nil {
		t.Fatalf("triton flavor should be accepted: %v", err)
	}

	req.PlatformFlavor = "foo"
	var flavorErr *FlavorError
	if err := req.Validate(); !errors.As(err, &flavorErr) {
		t.Fatalf("expected FlavorError for unknown flavor, got %v", err)
	}

	req = Request{Project: "other-service", GitRepo: "other-service", PlatformFlavor: "triton"}
	var cfgErr *ConfigError
	if err := req.Validate(); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for flavor on non-platform project, got %v", err)
	}
}

func TestValidateRequiredInputs(t *testing.T) {
	var cfgErr *ConfigError
	if err := (Request{GitRepo: "x"}).Validate(); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for empty project, got %v", err)
	}
	if err := (Request{Project: "headnode"}).Validate(); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for empty git repo, got %v", err)
	}
}

func TestHeadnodePayload(t *testing.T) {
	req := Request{Project: "headnode", GitRepo: "triton", Branch: "release-1"}
	payload, err := req.PayloadJSON()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := `{"parameter":[{"name":"BRANCH","value":"release-1"},{"name":"CONFIGURE_BRANCHES","value":"bits-branch: release-1"}]}`
	if payload != want {
		t.Fatalf("payload mismatch:\n got %s\nwant %s", payload, want)
	}
}

func TestPlatformConfigureProjects(t *testing.T) {
	req := Request{
		Project:        "platform",
		GitRepo:        "smartos-live",
		Branch:         "master",
		PlatformFlavor: "smartos",
	}
	params := req.Parameters()
	if len(params.Parameter) != 3 {
		t.Fatalf("expected BRANCH, CONFIGURE_PROJECTS and PLATFORM_BUILD_FLAVOR, got %d params", len(params.Parameter))
	}
	if params.Parameter[0].Name != "BRANCH" || params.Parameter[0].Value != "master" {
		t.Fatalf("unexpected first parameter: %+v", params.Parameter[0])
	}

	configure := params.Parameter[1]
	if configure.Name != "CONFIGURE_PROJECTS" {
		t.Fatalf("unexpected second parameter: %+v", configure)
	}
	lines := strings.Split(configure.Value, "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 repository lines, got %d: %q", len(lines), configure.Value)
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, ": master: origin") {
			t.Errorf("malformed repository line: %q", line)
		}
	}
	if lines[0] != "illumos-extra: master: origin" {
		t.Fatalf("unexpected first repository line: %q", lines[0])
	}

	if params.Parameter[2].Name != "PLATFORM_BUILD_FLAVOR" || params.Parameter[2].Value != "smartos" {
		t.Fatalf("unexpected third parameter: %+v", params.Parameter[2])
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, project := range []string{"platform", "headnode", "headnode-debug", "platform-debug", "sdc-imgapi"} {
		req := Request{Project: project, GitRepo: "some-repo"}
		payload, err := req.PayloadJSON()
		if err != nil {
			t.Fatalf("payload for %s: %v", project, err)
		}
		if payload != `{"parameter":[]}` {
			t.Errorf("payload for %s: got %s, want empty parameter list", project, payload)
		}
	}
}
