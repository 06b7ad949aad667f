package config

import (
	"sync"
	"time"
)

type GithubConfig struct {
	APIURL  string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	Token   string        `env:"GITHUB_TOKEN"`
	Timeout time.Duration `env:"GITHUB_TIMEOUT" envDefault:"10s"`
}

var (
	githubConfig *GithubConfig
	githubOnce   sync.Once
)

func LoadGithubConfig() *GithubConfig {
	githubOnce.Do(func() {
		githubConfig = &GithubConfig{}
		parse(githubConfig, "github")
	})
	return githubConfig
}
