package sources

import (
	"context"
	"strconv"

	"github.com/emberstone/vitrine/pkg/cache"
	"github.com/emberstone/vitrine/pkg/hub"
)

// Hub loads plugin data from the hub aggregate API: one call per plugin
// detail instead of the per-resource GitHub fan-out. The aggregate
// response is memoized so every detail resource is served from the same
// single fetch.
type Hub struct {
	client *hub.Client
	store  *cache.Store
}

// NewHub creates a hub API source.
func NewHub(client *hub.Client, store *cache.Store) *Hub {
	return &Hub{client: client, store: store}
}

// Search gets the fully populated plugin collection in one call.
func (s *Hub) Search(ctx context.Context) ([]hub.Plugin, error) {
	return s.client.List(ctx)
}

// Readme returns the readme from the aggregate record. The hub always
// answers with a string, so absence is already the empty-string sentinel.
func (s *Hub) Readme(ctx context.Context, p hub.Plugin) (string, error) {
	d, err := s.detail(ctx, p)
	if err != nil {
		return "", err
	}

	if d.Readme == nil {
		return "", nil
	}

	return *d.Readme, nil
}

// LatestRelease returns the newest release from the aggregate record.
func (s *Hub) LatestRelease(ctx context.Context, p hub.Plugin) (*hub.Release, error) {
	releases, err := s.Releases(ctx, p)
	if err != nil {
		return nil, err
	}

	if len(releases) == 0 {
		return nil, nil
	}

	return &releases[0], nil
}

// Releases returns the releases from the aggregate record.
func (s *Hub) Releases(ctx context.Context, p hub.Plugin) ([]hub.Release, error) {
	d, err := s.detail(ctx, p)
	if err != nil {
		return nil, err
	}

	if d.Releases == nil {
		return []hub.Release{}, nil
	}

	return d.Releases, nil
}

// Commits returns the commit history from the aggregate record.
func (s *Hub) Commits(ctx context.Context, p hub.Plugin) ([]hub.Commit, error) {
	d, err := s.detail(ctx, p)
	if err != nil {
		return nil, err
	}

	if d.Commits == nil {
		return []hub.Commit{}, nil
	}

	return d.Commits, nil
}

// Contributors returns the contributors from the aggregate record.
func (s *Hub) Contributors(ctx context.Context, p hub.Plugin) ([]hub.Contributor, error) {
	d, err := s.detail(ctx, p)
	if err != nil {
		return nil, err
	}

	if d.Contributors == nil {
		return []hub.Contributor{}, nil
	}

	return d.Contributors, nil
}

// Gallery returns the gallery media from the aggregate record.
func (s *Hub) Gallery(ctx context.Context, p hub.Plugin) ([]string, error) {
	d, err := s.detail(ctx, p)
	if err != nil {
		return nil, err
	}

	if d.Gallery == nil {
		return []string{}, nil
	}

	return d.Gallery, nil
}

func (s *Hub) detail(ctx context.Context, p hub.Plugin) (*hub.Detail, error) {
	key := "hub/detail/" + strconv.FormatInt(p.ID, 10)

	if value, ok := s.store.Get(key); ok {
		return value.(*hub.Detail), nil
	}

	d, err := s.client.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.store.Set(key, d)

	return d, nil
}
