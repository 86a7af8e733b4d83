// Where: internal/github/check.go
// What: Branch existence pre-flight against GitHub.
// Why: Catch typoed branches before a build is queued on Jenkins.
package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v32/github"
	"golang.org/x/oauth2"
)

// Org is the GitHub organization hosting the repositories built on Jenkins.
const Org = "joyent"

// BranchChecker verifies that a branch exists before a build is triggered.
type BranchChecker interface {
	BranchExists(ctx context.Context, repo, branch string) (bool, error)
}

type checker struct {
	client *github.Client
}

// NewChecker returns a BranchChecker backed by the GitHub API. The token may
// be empty, which limits the check to public repositories.
func NewChecker(ctx context.Context, token string) BranchChecker {
	if token == "" {
		return checker{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return checker{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

func (c checker) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	_, res, err := c.client.Repositories.GetBranch(ctx, Org, repo, branch)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("check branch %s on %s/%s: %w", branch, Org, repo, err)
	}
	return true, nil
}
