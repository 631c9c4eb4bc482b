package hub

import "time"

// Plugin is the canonical summary record of a community plugin, enough to
// render a catalog card. Counts are zero when the upstream omits them.
type Plugin struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Version       string      `json:"version,omitempty"`
	Author        Contributor `json:"author"`
	Stars         int         `json:"stars"`
	Downloads     int         `json:"downloads"`
	Forks         int         `json:"forks"`
	OpenIssues    int         `json:"openIssues"`
	Keywords      []string    `json:"keywords,omitempty"`
	LogoURL       string      `json:"logoUrl,omitempty"`
	BannerURL     string      `json:"bannerUrl,omitempty"`
	PublishedAt   time.Time   `json:"publishedAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	RepoURL       string      `json:"repoUrl,omitempty"`
	Approved      bool        `json:"approved"`
	DefaultBranch string      `json:"defaultBranch,omitempty"`
}

// FullName returns the owner/name repository coordinate.
func (p Plugin) FullName() string {
	return p.Author.Login + "/" + p.Name
}

// Detail is a plugin with its page resources. Readme distinguishes
// not-yet-loaded (nil) from confirmed absent (empty string).
type Detail struct {
	Plugin
	Readme       *string                `json:"readme,omitempty"`
	Gallery      []string               `json:"gallery,omitempty"`
	Contributors []Contributor          `json:"contributors,omitempty"`
	Releases     []Release              `json:"releases,omitempty"`
	Commits      []Commit               `json:"commits,omitempty"`
	Snippet      map[string]interface{} `json:"snippet,omitempty"`
}

// Release is one published version of a plugin.
type Release struct {
	Name        string    `json:"name,omitempty"`
	Tag         string    `json:"tag"`
	URL         string    `json:"url,omitempty"`
	Body        string    `json:"body,omitempty"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"publishedAt"`
	Assets      []Asset   `json:"assets,omitempty"`
}

// Downloads sums the download counts of the release assets.
func (r Release) DownloadCount() int {
	var total int
	for _, a := range r.Assets {
		total += a.Downloads
	}
	return total
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	Size        int    `json:"size"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Downloads   int    `json:"downloads"`
}

// Commit is one entry of the changelog tab. Author is empty when the
// commit is not linked to an account.
type Commit struct {
	SHA     string    `json:"sha"`
	URL     string    `json:"url,omitempty"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Author  string    `json:"author,omitempty"`
}

// Contributor is a repository contributor, also used for the plugin author.
type Contributor struct {
	Login         string `json:"login"`
	URL           string `json:"url,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Contributions int    `json:"contributions,omitempty"`
}
