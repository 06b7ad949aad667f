package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/prakkhar03/skillbridge/internal/config"
)

type GithubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	URL         string `json:"html_url"`
	Fork        bool   `json:"fork"`
}

type GithubProfile struct {
	Login       string       `json:"login"`
	Name        string       `json:"name"`
	Bio         string       `json:"bio"`
	PublicRepos int          `json:"public_repos"`
	Followers   int          `json:"followers"`
	Repos       []GithubRepo `json:"-"`
}

// Summary renders the profile compactly for prompt context.
func (p *GithubProfile) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Username: %s\n", p.Login)
	if p.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	}
	if p.Bio != "" {
		fmt.Fprintf(&sb, "Bio: %s\n", p.Bio)
	}
	fmt.Fprintf(&sb, "Public repositories: %d\nFollowers: %d\n", p.PublicRepos, p.Followers)

	repos := make([]GithubRepo, 0, len(p.Repos))
	for _, r := range p.Repos {
		if !r.Fork {
			repos = append(repos, r)
		}
	}
	sort.SliceStable(repos, func(i, j int) bool { return repos[i].Stars > repos[j].Stars })
	if len(repos) > 10 {
		repos = repos[:10]
	}
	if len(repos) > 0 {
		sb.WriteString("Top repositories:\n")
	}
	for _, r := range repos {
		lang := r.Language
		if lang == "" {
			lang = "unknown"
		}
		fmt.Fprintf(&sb, "- %s (%s, %d stars)", r.Name, lang, r.Stars)
		if r.Description != "" {
			fmt.Fprintf(&sb, ": %s", r.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

type GithubServiceInterface interface {
	FetchProfile(ctx context.Context, githubURL string) (*GithubProfile, error)
}

type GithubService struct {
	client *resty.Client
}

func NewGithubService(cfg config.GithubConfig) *GithubService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetHeader("Accept", "application/vnd.github+json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &GithubService{client: client}
}

func (s *GithubService) FetchProfile(ctx context.Context, githubURL string) (*GithubProfile, error) {
	login, err := ParseGithubLogin(githubURL)
	if err != nil {
		return nil, err
	}

	var profile GithubProfile
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("login", login).
		SetResult(&profile).
		Get("/users/{login}")
	if err != nil {
		return nil, fmt.Errorf("fetch github profile: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch github profile: %w", &StatusError{Code: resp.StatusCode(), Body: truncate(resp.String(), 200)})
	}

	var repos []GithubRepo
	resp, err = s.client.R().
		SetContext(ctx).
		SetPathParam("login", login).
		SetQueryParams(map[string]string{"per_page": "100", "sort": "updated"}).
		SetResult(&repos).
		Get("/users/{login}/repos")
	if err != nil {
		return nil, fmt.Errorf("fetch github repos: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch github repos: %w", &StatusError{Code: resp.StatusCode(), Body: truncate(resp.String(), 200)})
	}
	profile.Repos = repos
	return &profile, nil
}

// ParseGithubLogin accepts a profile URL, a bare host path or a plain login.
func ParseGithubLogin(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return "", fmt.Errorf("empty github url")
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid github url: %w", err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return "", fmt.Errorf("not a github url: %s", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", fmt.Errorf("github url has no username: %s", raw)
	}
	return parts[0], nil
}
