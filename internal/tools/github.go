package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const githubAPIBase = "https://api.github.com"

// GitHubRepoTool looks up repository metadata. It is config-gated: with
// no token configured it still works against the public API but is
// subject to GitHub's unauthenticated rate limit.
type GitHubRepoTool struct {
	token  string
	client *http.Client
}

func NewGitHubRepoTool(token string) *GitHubRepoTool {
	return &GitHubRepoTool{token: token, client: &http.Client{Timeout: 15 * time.Second}}
}

func (t *GitHubRepoTool) Name() string { return "github_repo" }
func (t *GitHubRepoTool) Description() string {
	return "Get information about a GitHub repository including description, stars, forks, and recent activity."
}
func (t *GitHubRepoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"owner": map[string]interface{}{"type": "string", "description": "Repository owner (username or org)"},
			"repo":  map[string]interface{}{"type": "string", "description": "Repository name"},
		},
		"required": []string{"owner", "repo"},
	}
}

func (t *GitHubRepoTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	owner, _ := args["owner"].(string)
	repo, _ := args["repo"].(string)
	if owner == "" || repo == "" {
		return ErrorResult("owner and repo are required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/repos/%s/%s", githubAPIBase, owner, repo), nil)
	if err != nil {
		return ErrorResult(err.Error())
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "qubot")
	if t.token != "" {
		req.Header.Set("Authorization", "token "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("github request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrorResult("repository not found")
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("github API error: %s", string(body)))
	}

	var data struct {
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		HTMLURL     string `json:"html_url"`
		Stars       int    `json:"stargazers_count"`
		Forks       int    `json:"forks_count"`
		OpenIssues  int    `json:"open_issues_count"`
		Language    string `json:"language"`
		UpdatedAt   string `json:"updated_at"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return ErrorResult(fmt.Sprintf("failed to parse github response: %v", err))
	}

	out, _ := json.MarshalIndent(data, "", "  ")
	return SilentResult(string(out))
}
