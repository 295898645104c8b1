package scm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const pageSize = 100

// ListPullRequestCommits returns the SHAs of a pull request's commits in
// the order the API reports them, oldest first, following pagination.
func (c *Client) ListPullRequestCommits(ctx context.Context, token, owner, repo string, number int) ([]string, error) {
	shas := make([]string, 0, pageSize)
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits?per_page=%d&page=%d",
			c.baseURL(), owner, repo, number, pageSize, page)

		var commits []struct {
			SHA string `json:"sha"`
		}
		if err := c.getJSON(ctx, token, url, &commits); err != nil {
			return nil, fmt.Errorf("list pull request commits: %w", err)
		}
		for _, commit := range commits {
			shas = append(shas, commit.SHA)
		}
		if len(commits) < pageSize {
			return shas, nil
		}
	}
}

// OrgMembersCount counts the members of an organization.
func (c *Client) OrgMembersCount(ctx context.Context, token, org string) (int, error) {
	count := 0
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/orgs/%s/members?per_page=%d&page=%d", c.baseURL(), org, pageSize, page)

		var members []struct {
			Login string `json:"login"`
		}
		if err := c.getJSON(ctx, token, url, &members); err != nil {
			return 0, fmt.Errorf("list org members: %w", err)
		}
		count += len(members)
		if len(members) < pageSize {
			return count, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, token, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
