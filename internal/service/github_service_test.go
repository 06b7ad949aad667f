package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakkhar03/skillbridge/internal/config"
)

func TestParseGithubLogin(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://github.com/octocat", want: "octocat"},
		{in: "https://www.github.com/octocat/", want: "octocat"},
		{in: "github.com/octocat/hello-world", want: "octocat"},
		{in: "octocat", want: "octocat"},
		{in: "@octocat", want: "octocat"},
		{in: "https://gitlab.com/octocat", wantErr: true},
		{in: "https://github.com/", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGithubLogin(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGithubService_FetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","name":"The Octocat","bio":"","public_repos":2,"followers":9}`))
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"forked","language":"C","stargazers_count":500,"fork":true},
			{"name":"small","language":"Go","stargazers_count":1},
			{"name":"popular","language":"","stargazers_count":40,"description":"demo"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewGithubService(config.GithubConfig{APIURL: srv.URL, Token: "gh-token", Timeout: time.Second})
	profile, err := svc.FetchProfile(context.Background(), "https://github.com/octocat")
	require.NoError(t, err)
	assert.Equal(t, "The Octocat", profile.Name)
	require.Len(t, profile.Repos, 3)

	summary := profile.Summary()
	assert.Contains(t, summary, "Username: octocat")
	assert.Contains(t, summary, "- popular (unknown, 40 stars): demo")
	assert.NotContains(t, summary, "forked")
	assert.Less(t, strings.Index(summary, "popular"), strings.Index(summary, "small"))
}

func TestGithubService_FetchProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	svc := NewGithubService(config.GithubConfig{APIURL: srv.URL, Timeout: time.Second})
	_, err := svc.FetchProfile(context.Background(), "ghost")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}
