package core

import (
	"context"

	"github.com/emberstone/vitrine/pkg/hub"
)

// Source gets plugin data from one upstream generation: the GitHub API
// directly, or the hub aggregate API.
type Source interface {
	// Search gets the full plugin collection.
	Search(ctx context.Context) ([]hub.Plugin, error)

	// Readme gets the readme text; empty string means confirmed absent.
	Readme(ctx context.Context, p hub.Plugin) (string, error)

	// LatestRelease gets the newest published release; nil means the
	// repository has none.
	LatestRelease(ctx context.Context, p hub.Plugin) (*hub.Release, error)

	// Releases lists the published releases.
	Releases(ctx context.Context, p hub.Plugin) ([]hub.Release, error)

	// Commits gets the recent default-branch history.
	Commits(ctx context.Context, p hub.Plugin) ([]hub.Commit, error)

	// Contributors lists the repository contributors.
	Contributors(ctx context.Context, p hub.Plugin) ([]hub.Contributor, error)

	// Gallery lists the gallery media URLs.
	Gallery(ctx context.Context, p hub.Plugin) ([]string, error)
}
