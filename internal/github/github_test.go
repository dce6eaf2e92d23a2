package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/github"
)

func TestListRepos(t *testing.T) {
	t.Run("returns repos and sends credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/octocat/repos", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			assert.Equal(t, "created", r.URL.Query().Get("sort"))
			assert.Equal(t, "asc", r.URL.Query().Get("direction"))
			assert.Equal(t, "devconnector", r.Header.Get("User-Agent"))

			id, secret, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "id", id)
			assert.Equal(t, "secret", secret)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"name":"hello-world"}]`))
		}))
		defer server.Close()

		repos, err := github.NewClient(server.URL, "id", "secret").ListRepos(context.Background(), "octocat")
		require.NoError(t, err)

		var parsed []map[string]string
		require.NoError(t, json.Unmarshal(repos, &parsed))
		assert.Equal(t, "hello-world", parsed[0]["name"])
	})

	t.Run("upstream 404 means no profile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := github.NewClient(server.URL, "", "").ListRepos(context.Background(), "ghost")
		assert.ErrorIs(t, err, github.ErrUserNotFound)
	})

	t.Run("rate limiting is an upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _, ok := r.BasicAuth()
			assert.False(t, ok, "no credentials configured")
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := github.NewClient(server.URL, "", "").ListRepos(context.Background(), "octocat")
		assert.ErrorIs(t, err, github.ErrUpstream)
		assert.NotErrorIs(t, err, github.ErrUserNotFound)
	})

	t.Run("invalid body is an upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := github.NewClient(server.URL, "", "").ListRepos(context.Background(), "octocat")
		assert.ErrorIs(t, err, github.ErrUpstream)
	})

	t.Run("unreachable server is an upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := github.NewClient(server.URL, "", "").ListRepos(context.Background(), "octocat")
		assert.ErrorIs(t, err, github.ErrUpstream)
	})
}
