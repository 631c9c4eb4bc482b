package core

import (
	"net/url"
	"path"
	"strings"

	"github.com/emberstone/vitrine/pkg/hub"
)

// RawHost the host serving raw repository content.
const RawHost = "https://raw.githubusercontent.com"

// ResolveLink resolves a repository-relative link or image path against
// the plugin's default branch on the raw content host. Absolute URLs and
// in-page anchors pass through unchanged.
func ResolveLink(p hub.Plugin, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ref
	}

	link, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	if link.IsAbs() || link.Host != "" {
		return ref
	}

	baseURL, err := url.Parse(RawHost)
	if err != nil {
		return ref
	}

	branch := p.DefaultBranch
	if branch == "" {
		branch = "HEAD"
	}

	resolved, err := baseURL.Parse(path.Join("/", p.Author.Login, p.Name, branch, path.Clean(link.Path)))
	if err != nil {
		return ref
	}

	if link.Fragment != "" {
		resolved.Fragment = link.Fragment
	}

	return resolved.String()
}
