package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_withToken(t *testing.T) {
	var authorization string

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		authorization = req.Header.Get("Authorization")
		_, _ = fmt.Fprint(rw, `{}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), WithToken("s3cret"))
	require.NoError(t, err)

	gh := c.GithubClient()

	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = baseURL

	_, _, err = gh.Repositories.Get(context.Background(), "bob", "warp-gates")
	require.NoError(t, err)

	assert.Equal(t, "Bearer s3cret", authorization)
}

func TestNew_optionOrder(t *testing.T) {
	c, err := New(context.Background(),
		WithMetrics(false),
		WithRetry(3, 0),
	)
	require.NoError(t, err)

	require.NotNil(t, c.GithubClient())
}
