package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/emberstone/vitrine/pkg/hub"
)

// SortKey selects the ordering of the derived plugin list.
type SortKey string

const (
	SortStars     SortKey = "stars"
	SortDownloads SortKey = "downloads"
	SortUpdated   SortKey = "updated"
	SortPublished SortKey = "published"
)

// DeriveView filters a plugin collection with a free-text query and
// orders the result by the requested key. The input slice is never
// modified. Ordering is deterministic: ties break through a fixed
// per-key cascade ending on the plugin name.
func DeriveView(plugins []hub.Plugin, query string, key SortKey) []hub.Plugin {
	result := filter(plugins, query)

	slices.SortStableFunc(result, comparison(key))

	return result
}

// filter keeps the plugins matching every whitespace-separated query
// term. A leading "#" on a term is stripped, so keyword chips can be
// pasted into the search box as-is. Each term may match any of name,
// owner, description, or keywords.
func filter(plugins []hub.Plugin, query string) []hub.Plugin {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return slices.Clone(plugins)
	}

	result := make([]hub.Plugin, 0, len(plugins))

	for _, p := range plugins {
		haystack := strings.ToLower(strings.Join([]string{
			p.Name,
			p.Author.Login,
			p.Description,
			strings.Join(p.Keywords, " "),
		}, " "))

		matches := true
		for _, term := range terms {
			if !strings.Contains(haystack, strings.TrimPrefix(term, "#")) {
				matches = false
				break
			}
		}

		if matches {
			result = append(result, p)
		}
	}

	return result
}

func comparison(key SortKey) func(a, b hub.Plugin) int {
	switch key {
	case SortDownloads:
		return func(a, b hub.Plugin) int {
			if c := cmp.Compare(b.Downloads, a.Downloads); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}

	case SortUpdated:
		return func(a, b hub.Plugin) int {
			if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}

	case SortPublished:
		return func(a, b hub.Plugin) int {
			if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
				return c
			}
			if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}

	default: // SortStars
		return func(a, b hub.Plugin) int {
			if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Downloads, a.Downloads); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}
	}
}
