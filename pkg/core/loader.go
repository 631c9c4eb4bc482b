package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/emberstone/vitrine/pkg/cache"
	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// DefaultListMaxAge the staleness window of the headline plugin list.
const DefaultListMaxAge = 5 * time.Minute

const listKey = "plugins"

// Loader owns catalog data acquisition: the headline list with its
// staleness window, and the lazily fetched per-plugin detail resources.
// Detail resources never expire; the list is re-fetched once its window
// elapses, merging by id so a refresh hiccup cannot drop known plugins.
type Loader struct {
	source Source
	store  *cache.Store
	maxAge time.Duration
	tracer trace.Tracer

	mu      sync.Mutex
	details map[string]*detail
}

// detail groups the lazy resources of one plugin page.
type detail struct {
	readme       resource[string]
	latest       resource[*hub.Release]
	releases     resource[[]hub.Release]
	commits      resource[[]hub.Commit]
	contributors resource[[]hub.Contributor]
	gallery      resource[[]string]
}

// NewLoader creates a Loader instance.
func NewLoader(source Source, store *cache.Store, maxAge time.Duration, tracer trace.Tracer) *Loader {
	if maxAge <= 0 {
		maxAge = DefaultListMaxAge
	}

	return &Loader{
		source:  source,
		store:   store,
		maxAge:  maxAge,
		tracer:  tracer,
		details: map[string]*detail{},
	}
}

// Plugins returns the plugin collection, from cache while inside the
// staleness window. A failed re-fetch is an error, never a partial list.
func (l *Loader) Plugins(ctx context.Context) ([]hub.Plugin, error) {
	ctx, span := l.tracer.Start(ctx, "loader_plugins")
	defer span.End()

	if l.store.Fresh(listKey, l.maxAge) {
		if value, ok := l.store.Get(listKey); ok {
			return value.([]hub.Plugin), nil
		}
	}

	plugins, err := l.source.Search(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load plugin list: %w", err)
	}

	for i := range plugins {
		plugins[i].LogoURL = ResolveLink(plugins[i], plugins[i].LogoURL)
		plugins[i].BannerURL = ResolveLink(plugins[i], plugins[i].BannerURL)
	}

	if value, ok := l.store.Get(listKey); ok {
		plugins = mergeByID(plugins, value.([]hub.Plugin))
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	l.store.Set(listKey, plugins)

	log.Ctx(ctx).Debug().Int("count", len(plugins)).Msg("Plugin list refreshed")

	return plugins, nil
}

// mergeByID keeps the fresh collection order and appends previously known
// plugins the refresh did not return, without duplicating ids.
func mergeByID(fresh, previous []hub.Plugin) []hub.Plugin {
	seen := make(map[int64]struct{}, len(fresh))
	for _, p := range fresh {
		seen[p.ID] = struct{}{}
	}

	for _, p := range previous {
		if _, ok := seen[p.ID]; ok {
			continue
		}

		fresh = append(fresh, p)
	}

	return fresh
}

// Find resolves an owner/name pair to its summary record.
func (l *Loader) Find(ctx context.Context, owner, name string) (hub.Plugin, error) {
	plugins, err := l.Plugins(ctx)
	if err != nil {
		return hub.Plugin{}, err
	}

	fullName := owner + "/" + name
	for _, p := range plugins {
		if strings.EqualFold(p.FullName(), fullName) {
			return p, nil
		}
	}

	return hub.Plugin{}, fmt.Errorf("%w: %s", hub.ErrNotFound, fullName)
}

// Detail assembles the detail record for a plugin: the known summary as
// the immediate base, the eagerly loaded resources on top, and the lazy
// tab resources only when a prior request already loaded them. A failed
// section lands in the returned error map and never blanks its siblings.
func (l *Loader) Detail(ctx context.Context, p hub.Plugin) (hub.Detail, map[string]string) {
	ctx, span := l.tracer.Start(ctx, "loader_detail_"+p.Name)
	defer span.End()

	d := hub.Detail{Plugin: p}

	snippet, err := Snippet(p)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to build config snippet")
	}
	d.Snippet = snippet

	sectionErrs := map[string]string{}

	latest, err := l.LatestRelease(ctx, p)
	switch {
	case err != nil:
		span.RecordError(err)
		sectionErrs["latestRelease"] = err.Error()
	case latest != nil:
		if latest.Tag != "" {
			d.Version = strings.TrimPrefix(latest.Tag, "v")
		}
		d.UpdatedAt = latest.PublishedAt
		if downloads := latest.DownloadCount(); downloads > 0 {
			d.Downloads = downloads
		}
	}

	contributors, err := l.Contributors(ctx, p)
	if err != nil {
		span.RecordError(err)
		sectionErrs["contributors"] = err.Error()
	} else {
		d.Contributors = contributors
	}

	dd := l.detailFor(p)

	if readme, ok := dd.readme.peek(); ok {
		d.Readme = &readme
	}
	if releases, ok := dd.releases.peek(); ok {
		d.Releases = releases
	}
	if commits, ok := dd.commits.peek(); ok {
		d.Commits = commits
	}
	if gallery, ok := dd.gallery.peek(); ok {
		d.Gallery = gallery
	}

	return d, sectionErrs
}

// Readme returns the readme text, fetching it on first request. The
// empty string is a confirmed absence and is cached like any value.
func (l *Loader) Readme(ctx context.Context, p hub.Plugin) (string, error) {
	return l.detailFor(p).readme.fetch(ctx, func(ctx context.Context) (string, error) {
		ctx, span := l.tracer.Start(ctx, "loader_readme")
		defer span.End()

		content, err := l.source.Readme(ctx, p)
		if err != nil {
			span.RecordError(err)
			return "", err
		}

		return content, nil
	})
}

// LatestRelease returns the newest release, nil when the repository has
// none.
func (l *Loader) LatestRelease(ctx context.Context, p hub.Plugin) (*hub.Release, error) {
	return l.detailFor(p).latest.fetch(ctx, func(ctx context.Context) (*hub.Release, error) {
		ctx, span := l.tracer.Start(ctx, "loader_latest_release")
		defer span.End()

		release, err := l.source.LatestRelease(ctx, p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		return release, nil
	})
}

// Releases returns the versions-tab release list.
func (l *Loader) Releases(ctx context.Context, p hub.Plugin) ([]hub.Release, error) {
	return l.detailFor(p).releases.fetch(ctx, func(ctx context.Context) ([]hub.Release, error) {
		ctx, span := l.tracer.Start(ctx, "loader_releases")
		defer span.End()

		releases, err := l.source.Releases(ctx, p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		return releases, nil
	})
}

// Commits returns the changelog-tab commit history.
func (l *Loader) Commits(ctx context.Context, p hub.Plugin) ([]hub.Commit, error) {
	return l.detailFor(p).commits.fetch(ctx, func(ctx context.Context) ([]hub.Commit, error) {
		ctx, span := l.tracer.Start(ctx, "loader_commits")
		defer span.End()

		commits, err := l.source.Commits(ctx, p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		return commits, nil
	})
}

// Contributors returns the contributor list.
func (l *Loader) Contributors(ctx context.Context, p hub.Plugin) ([]hub.Contributor, error) {
	return l.detailFor(p).contributors.fetch(ctx, func(ctx context.Context) ([]hub.Contributor, error) {
		ctx, span := l.tracer.Start(ctx, "loader_contributors")
		defer span.End()

		contributors, err := l.source.Contributors(ctx, p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		return contributors, nil
	})
}

// Gallery returns the gallery media, resolved to absolute URLs.
func (l *Loader) Gallery(ctx context.Context, p hub.Plugin) ([]string, error) {
	return l.detailFor(p).gallery.fetch(ctx, func(ctx context.Context) ([]string, error) {
		ctx, span := l.tracer.Start(ctx, "loader_gallery")
		defer span.End()

		media, err := l.source.Gallery(ctx, p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		resolved := make([]string, 0, len(media))
		for _, m := range media {
			resolved = append(resolved, ResolveLink(p, m))
		}

		return resolved, nil
	})
}

func (l *Loader) detailFor(p hub.Plugin) *detail {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.details[p.FullName()]
	if !ok {
		d = &detail{}
		l.details[p.FullName()] = d
	}

	return d
}
