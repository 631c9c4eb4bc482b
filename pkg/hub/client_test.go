package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_List(t *testing.T) {
	tests := []struct {
		desc     string
		body     string
		expected []Plugin
	}{
		{
			desc: "current schema with structured author",
			body: `[{
				"id": 42,
				"name": "warp-gates",
				"description": "Teleportation network",
				"version": "1.2.3",
				"author": {"login": "bob", "url": "https://github.com/bob", "avatarUrl": "https://avatars.test/bob", "contributions": 10},
				"stars": 50,
				"downloads": 200,
				"keywords": ["travel"],
				"publishedAt": "2023-01-15T00:00:00Z",
				"updatedAt": "2023-06-01T00:00:00Z",
				"approved": true,
				"defaultBranch": "main"
			}]`,
			expected: []Plugin{{
				ID:          42,
				Name:        "warp-gates",
				Description: "Teleportation network",
				Version:     "1.2.3",
				Author: Contributor{
					Login:         "bob",
					URL:           "https://github.com/bob",
					AvatarURL:     "https://avatars.test/bob",
					Contributions: 10,
				},
				Stars:         50,
				Downloads:     200,
				Keywords:      []string{"travel"},
				PublishedAt:   time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
				UpdatedAt:     time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
				Approved:      true,
				DefaultBranch: "main",
			}},
		},
		{
			desc: "legacy schema with author as plain login",
			body: `[{"id": 7, "name": "chest-sorter", "author": "alice", "stars": 3}]`,
			expected: []Plugin{{
				ID:   7,
				Name: "chest-sorter",
				Author: Contributor{
					Login: "alice",
					URL:   "https://github.com/alice",
				},
				Stars: 3,
			}},
		},
		{
			desc: "missing counts decode as zero",
			body: `[{"id": 8, "name": "bare", "author": "alice"}]`,
			expected: []Plugin{{
				ID:     8,
				Name:   "bare",
				Author: Contributor{Login: "alice", URL: "https://github.com/alice"},
			}},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				assert.Equal(t, http.MethodGet, req.Method)
				_, _ = fmt.Fprint(rw, test.body)
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL)

			plugins, err := c.List(context.Background())
			require.NoError(t, err)

			if diff := cmp.Diff(test.expected, plugins); diff != "" {
				t.Errorf("plugin records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_List_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	_, err := c.List(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClient_GetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/42", req.URL.Path)

		_, _ = fmt.Fprint(rw, `{
			"id": 42,
			"name": "warp-gates",
			"author": {"login": "bob"},
			"readme": "# Warp Gates",
			"gallery": ["gallery/shot.png"],
			"contributors": [{"login": "bob", "contributions": 12}],
			"releases": [{"tag": "v1.2.3", "prerelease": false, "publishedAt": "2023-06-01T00:00:00Z", "assets": [{"name": "warp.jar", "size": 1024, "downloads": 200}]}],
			"commits": [{"sha": "abc123", "message": "Fix portal dedup", "date": "2023-06-02T00:00:00Z", "author": "bob"}]
		}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	detail, err := c.GetByID(context.Background(), 42)
	require.NoError(t, err)

	require.NotNil(t, detail.Readme)
	assert.Equal(t, "# Warp Gates", *detail.Readme)
	assert.Equal(t, []string{"gallery/shot.png"}, detail.Gallery)
	require.Len(t, detail.Releases, 1)
	assert.Equal(t, "v1.2.3", detail.Releases[0].Tag)
	assert.Equal(t, 200, detail.Releases[0].DownloadCount())
	require.Len(t, detail.Commits, 1)
	assert.Equal(t, "abc123", detail.Commits[0].SHA)
	require.Len(t, detail.Contributors, 1)
	assert.Equal(t, 12, detail.Contributors[0].Contributions)
}

func TestClient_GetByID_notFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, "unknown plugin", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	_, err := c.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_List_malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(rw, `{"not": "a list"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
