package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// 参与 AI 提示词的清单文件，按优先级抓取内容。
var manifestNames = []string{
	"package.json",
	"go.mod",
	"requirements.txt",
	"pyproject.toml",
	"Cargo.toml",
	"composer.json",
}

// ErrInvalidRepoURL 在无法从链接解析出 owner/repo 时返回。
var ErrInvalidRepoURL = errors.New("invalid github repository url")

// RepoContext 是喂给 AI 的仓库上下文：元信息 + README + 根目录清单。
type RepoContext struct {
	Owner       string            `json:"owner"`
	Repo        string            `json:"repo"`
	Description string            `json:"description,omitempty"`
	Homepage    string            `json:"homepage,omitempty"`
	Language    string            `json:"language,omitempty"`
	Topics      []string          `json:"topics,omitempty"`
	Readme      string            `json:"readme,omitempty"`
	RootFiles   []string          `json:"root_files,omitempty"`
	Manifests   map[string]string `json:"manifests,omitempty"`
	HTMLURL     string            `json:"html_url"`
}

// Client 访问 GitHub REST API（匿名或带 token）。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ParseRepoURL 从任意 github.com 链接提取 owner/repo。
func ParseRepoURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", "", fmt.Errorf("%w: host %q", ErrInvalidRepoURL, u.Host)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: path %q", ErrInvalidRepoURL, u.Path)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// FetchRepoContext 拉取仓库元信息、README 与根目录清单文件。
// README/清单抓取失败不致命，缺了哪块就少哪块。
func (c *Client) FetchRepoContext(ctx context.Context, repoURL string) (*RepoContext, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	rc := &RepoContext{
		Owner:   owner,
		Repo:    repo,
		HTMLURL: "https://github.com/" + owner + "/" + repo,
	}

	var meta struct {
		Description string   `json:"description"`
		Homepage    string   `json:"homepage"`
		Language    string   `json:"language"`
		Topics      []string `json:"topics"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &meta); err != nil {
		return nil, fmt.Errorf("fetch repo metadata: %w", err)
	}
	rc.Description = meta.Description
	rc.Homepage = meta.Homepage
	rc.Language = meta.Language
	rc.Topics = meta.Topics

	var readme struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, repo), &readme); err == nil {
		if readme.Encoding == "base64" {
			if decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(readme.Content, "\n", "")); err == nil {
				rc.Readme = truncate(string(decoded), 16*1024)
			}
		}
	}

	var entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/contents", owner, repo), &entries); err == nil {
		for _, e := range entries {
			rc.RootFiles = append(rc.RootFiles, e.Name)
		}
		rc.Manifests = c.fetchManifests(ctx, owner, repo, rc.RootFiles)
	}

	return rc, nil
}

func (c *Client) fetchManifests(ctx context.Context, owner, repo string, rootFiles []string) map[string]string {
	present := make(map[string]bool, len(rootFiles))
	for _, f := range rootFiles {
		present[f] = true
	}

	out := make(map[string]string)
	for _, name := range manifestNames {
		if !present[name] {
			continue
		}
		var file struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, name), &file); err != nil {
			continue
		}
		if file.Encoding != "base64" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
		if err != nil {
			continue
		}
		out[name] = truncate(string(decoded), 4*1024)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github api %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
