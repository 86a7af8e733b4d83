// Where: internal/jenkins/client.go
// What: Minimal Jenkins REST client.
// Why: Isolate HTTP and crumb handling from command orchestration.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// crumbSuffix asks the crumb issuer to render the header name and value as a
// single colon-separated line instead of XML.
const crumbSuffix = `crumbIssuer/api/xml?xpath=concat(//crumbRequestField,":",//crumb)`

// Client talks to a single Jenkins master with basic auth.
type Client struct {
	host   string
	user   string
	token  string
	client *http.Client
}

// New returns a client for the master at host. Credentials are the Jenkins
// user name and API token.
func New(host, user, token string) *Client {
	return &Client{
		host:  strings.TrimRight(host, "/"),
		user:  user,
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Crumb is the CSRF header Jenkins expects on state-changing requests.
type Crumb struct {
	Header string
	Value  string
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.token)
	return req, nil
}

// FetchCrumb retrieves the CSRF crumb from the crumb issuer. A master with
// CSRF protection disabled answers 404, which is reported as ok=false rather
// than an error so callers can proceed without the header.
func (c *Client) FetchCrumb(ctx context.Context) (crumb Crumb, ok bool, err error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.host+"/"+crumbSuffix, nil)
	if err != nil {
		return Crumb{}, false, fmt.Errorf("fetch crumb: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return Crumb{}, false, fmt.Errorf("fetch crumb: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Crumb{}, false, nil
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return Crumb{}, false, fmt.Errorf("fetch crumb: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return Crumb{}, false, fmt.Errorf("fetch crumb: %s returned %s", c.host, res.Status)
	}

	header, value, found := strings.Cut(strings.TrimSpace(string(body)), ":")
	if !found || header == "" {
		return Crumb{}, false, fmt.Errorf("fetch crumb: malformed response %q", strings.TrimSpace(string(body)))
	}
	return Crumb{Header: header, Value: value}, true, nil
}

// TriggerBuild posts a parameterized build request to jobURL. The payload is
// the JSON parameter document sent as the "json" form field. It returns the
// queue item location Jenkins reports for the new build, if any.
func (c *Client) TriggerBuild(ctx context.Context, jobURL, payload string, crumb Crumb) (string, error) {
	form := url.Values{"json": {payload}}
	req, err := c.newRequest(ctx, http.MethodPost, jobURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("trigger build: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if crumb.Header != "" {
		req.Header.Set(crumb.Header, crumb.Value)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("trigger build: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return "", fmt.Errorf("trigger build: %s returned %s: %s", jobURL, res.Status, msg)
		}
		return "", fmt.Errorf("trigger build: %s returned %s", jobURL, res.Status)
	}
	return res.Header.Get("Location"), nil
}

// Build is the subset of the build JSON document the status command reads.
type Build struct {
	Number   int    `json:"number"`
	URL      string `json:"url"`
	Result   string `json:"result"`
	Building bool   `json:"building"`
}

// LastBuild fetches the most recent build of the job rooted at jobPath, for
// example "job/headnode" or "job/joyent-org/job/sdc-imgapi/job/master".
func (c *Client) LastBuild(ctx context.Context, jobPath string) (Build, error) {
	buildURL := fmt.Sprintf("%s/%s/lastBuild/api/json", c.host, strings.Trim(jobPath, "/"))
	req, err := c.newRequest(ctx, http.MethodGet, buildURL, nil)
	if err != nil {
		return Build{}, fmt.Errorf("fetch last build: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return Build{}, fmt.Errorf("fetch last build: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Build{}, fmt.Errorf("fetch last build: %s returned %s", buildURL, res.Status)
	}
	var build Build
	if err := json.NewDecoder(res.Body).Decode(&build); err != nil {
		return Build{}, fmt.Errorf("decode last build: %w", err)
	}
	return build, nil
}
