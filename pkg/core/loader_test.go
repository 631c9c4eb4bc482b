package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emberstone/vitrine/pkg/cache"
	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type mockSource struct {
	searchCalls  int
	readmeCalls  int
	latestCalls  int
	contribCalls int

	search       func() ([]hub.Plugin, error)
	readme       func() (string, error)
	latest       func() (*hub.Release, error)
	releases     func() ([]hub.Release, error)
	commits      func() ([]hub.Commit, error)
	contributors func() ([]hub.Contributor, error)
	gallery      func() ([]string, error)
}

func (m *mockSource) Search(context.Context) ([]hub.Plugin, error) {
	m.searchCalls++

	if m.search != nil {
		return m.search()
	}
	return nil, nil
}

func (m *mockSource) Readme(context.Context, hub.Plugin) (string, error) {
	m.readmeCalls++

	if m.readme != nil {
		return m.readme()
	}
	return "", nil
}

func (m *mockSource) LatestRelease(context.Context, hub.Plugin) (*hub.Release, error) {
	m.latestCalls++

	if m.latest != nil {
		return m.latest()
	}
	return nil, nil
}

func (m *mockSource) Releases(context.Context, hub.Plugin) ([]hub.Release, error) {
	if m.releases != nil {
		return m.releases()
	}
	return nil, nil
}

func (m *mockSource) Commits(context.Context, hub.Plugin) ([]hub.Commit, error) {
	if m.commits != nil {
		return m.commits()
	}
	return nil, nil
}

func (m *mockSource) Contributors(context.Context, hub.Plugin) ([]hub.Contributor, error) {
	m.contribCalls++

	if m.contributors != nil {
		return m.contributors()
	}
	return nil, nil
}

func (m *mockSource) Gallery(context.Context, hub.Plugin) ([]string, error) {
	if m.gallery != nil {
		return m.gallery()
	}
	return nil, nil
}

func newTestLoader(source Source, maxAge time.Duration) *Loader {
	return NewLoader(source, cache.New(), maxAge, noop.NewTracerProvider().Tracer("test"))
}

func TestLoader_Plugins_staleness(t *testing.T) {
	source := &mockSource{
		search: func() ([]hub.Plugin, error) {
			return []hub.Plugin{{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}}, nil
		},
	}

	loader := newTestLoader(source, time.Hour)

	first, err := loader.Plugins(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Inside the window: served from cache, no second upstream call.
	second, err := loader.Plugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.searchCalls)
}

func TestLoader_Plugins_refetchAfterWindow(t *testing.T) {
	source := &mockSource{
		search: func() ([]hub.Plugin, error) {
			return []hub.Plugin{{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}}, nil
		},
	}

	loader := newTestLoader(source, 20*time.Millisecond)

	_, err := loader.Plugins(context.Background())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = loader.Plugins(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, source.searchCalls)
}

func TestLoader_Plugins_mergeByID(t *testing.T) {
	collections := [][]hub.Plugin{
		{{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}, {ID: 2, Name: "two", Author: hub.Contributor{Login: "bob"}}},
		{{ID: 2, Name: "two-renamed", Author: hub.Contributor{Login: "bob"}}, {ID: 3, Name: "three", Author: hub.Contributor{Login: "carol"}}},
	}

	source := &mockSource{}
	source.search = func() ([]hub.Plugin, error) {
		c := collections[0]
		if source.searchCalls > 1 {
			c = collections[1]
		}
		return c, nil
	}

	loader := newTestLoader(source, 10*time.Millisecond)

	_, err := loader.Plugins(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	merged, err := loader.Plugins(context.Background())
	require.NoError(t, err)

	ids := make([]int64, 0, len(merged))
	for _, p := range merged {
		ids = append(ids, p.ID)
	}

	// Fresh entries first, the previously known id 1 kept, no duplicate id 2.
	assert.Equal(t, []int64{2, 3, 1}, ids)
	assert.Equal(t, "two-renamed", merged[0].Name)
}

func TestLoader_Plugins_failureYieldsNoPartialList(t *testing.T) {
	source := &mockSource{
		search: func() ([]hub.Plugin, error) {
			return nil, errors.New("boom")
		},
	}

	loader := newTestLoader(source, time.Hour)

	plugins, err := loader.Plugins(context.Background())
	require.Error(t, err)
	assert.Nil(t, plugins)
}

func TestLoader_Find(t *testing.T) {
	source := &mockSource{
		search: func() ([]hub.Plugin, error) {
			return []hub.Plugin{{ID: 1, Name: "warp-gates", Author: hub.Contributor{Login: "Bob"}}}, nil
		},
	}

	loader := newTestLoader(source, time.Hour)

	p, err := loader.Find(context.Background(), "bob", "warp-gates")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = loader.Find(context.Background(), "bob", "unknown")
	assert.ErrorIs(t, err, hub.ErrNotFound)
}

func TestLoader_Readme_lazyAndIdempotent(t *testing.T) {
	source := &mockSource{
		readme: func() (string, error) { return "# Hello", nil },
	}

	loader := newTestLoader(source, time.Hour)
	p := hub.Plugin{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}

	readme, err := loader.Readme(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", readme)

	_, err = loader.Readme(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, source.readmeCalls)
}

func TestLoader_Readme_confirmedAbsentIsNotRetried(t *testing.T) {
	source := &mockSource{
		readme: func() (string, error) { return "", nil },
	}

	loader := newTestLoader(source, time.Hour)
	p := hub.Plugin{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}

	readme, err := loader.Readme(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, readme)

	_, err = loader.Readme(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, source.readmeCalls)
}

func TestLoader_Detail_mergesKnownAndLoaded(t *testing.T) {
	release := &hub.Release{
		Tag:         "v2.0.0",
		PublishedAt: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC),
		Assets:      []hub.Asset{{Name: "plugin.jar", Downloads: 42}},
	}

	source := &mockSource{
		latest:       func() (*hub.Release, error) { return release, nil },
		contributors: func() ([]hub.Contributor, error) { return []hub.Contributor{{Login: "alice"}}, nil },
	}

	loader := newTestLoader(source, time.Hour)
	p := hub.Plugin{ID: 1, Name: "one", Version: "1.0.0", Stars: 7, Author: hub.Contributor{Login: "alice"}}

	d, sectionErrs := loader.Detail(context.Background(), p)

	assert.Empty(t, sectionErrs)
	// Placeholder fields survive, loaded fields overwrite.
	assert.Equal(t, 7, d.Stars)
	assert.Equal(t, "2.0.0", d.Version)
	assert.Equal(t, release.PublishedAt, d.UpdatedAt)
	assert.Equal(t, 42, d.Downloads)
	assert.Equal(t, []hub.Contributor{{Login: "alice"}}, d.Contributors)
	// Lazy resources not requested yet stay absent.
	assert.Nil(t, d.Readme)
	assert.Nil(t, d.Releases)
	assert.NotEmpty(t, d.Snippet)
}

func TestLoader_Detail_sectionFailureIsScoped(t *testing.T) {
	source := &mockSource{
		latest:       func() (*hub.Release, error) { return nil, errors.New("boom") },
		contributors: func() ([]hub.Contributor, error) { return []hub.Contributor{{Login: "alice"}}, nil },
	}

	loader := newTestLoader(source, time.Hour)
	p := hub.Plugin{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}}

	d, sectionErrs := loader.Detail(context.Background(), p)

	assert.Contains(t, sectionErrs, "latestRelease")
	// The failing sidebar never blanks its siblings.
	assert.Equal(t, []hub.Contributor{{Login: "alice"}}, d.Contributors)
}

func TestLoader_Gallery_resolvesRelativeLinks(t *testing.T) {
	source := &mockSource{
		gallery: func() ([]string, error) {
			return []string{"gallery/shot.png", "https://cdn.example.com/abs.png"}, nil
		},
	}

	loader := newTestLoader(source, time.Hour)
	p := hub.Plugin{ID: 1, Name: "one", Author: hub.Contributor{Login: "alice"}, DefaultBranch: "main"}

	media, err := loader.Gallery(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://raw.githubusercontent.com/alice/one/main/gallery/shot.png",
		"https://cdn.example.com/abs.png",
	}, media)
}
