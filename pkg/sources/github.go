package sources

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog/log"
)

// DefaultSearchQuery the query used to search plugins on GitHub.
// https://help.github.com/en/github/searching-for-information-on-github/searching-for-repositories
const DefaultSearchQuery = "topic:emberstone-plugin archived:false is:public"

const galleryDir = "gallery"

var mediaExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".svg":  {},
	".mp4":  {},
	".webm": {},
}

// GitHub loads plugin data straight from the GitHub API. This is the first
// deployment generation, superseded for the headline list by the hub
// aggregate API but kept for self-hosted setups without a hub.
type GitHub struct {
	client *github.Client
	raw    *Raw
	query  string
}

// NewGitHub creates a GitHub source.
func NewGitHub(client *github.Client, raw *Raw, query string) *GitHub {
	if query == "" {
		query = DefaultSearchQuery
	}

	return &GitHub{client: client, raw: raw, query: query}
}

// Search finds all plugin candidate repositories and builds summary
// records for them. A broken candidate is skipped, never fatal.
func (s *GitHub) Search(ctx context.Context) ([]hub.Plugin, error) {
	repositories, err := s.searchRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var plugins []hub.Plugin

	for _, repository := range repositories {
		logger := log.Ctx(ctx).With().Str("repo_name", repository.GetFullName()).Logger()

		p, err := s.buildPlugin(logger.WithContext(ctx), repository)
		if err != nil {
			logger.Debug().Err(err).Msg("Skipping repository")
			continue
		}

		plugins = append(plugins, p)
	}

	return plugins, nil
}

func (s *GitHub) searchRepositories(ctx context.Context) ([]*github.Repository, error) {
	opts := &github.SearchOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*github.Repository

	for {
		repositories, resp, err := s.client.Search.Repositories(ctx, s.query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search repositories: %w", err)
		}

		all = append(all, repositories.Repositories...)
		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return all, nil
}

func (s *GitHub) buildPlugin(ctx context.Context, repository *github.Repository) (hub.Plugin, error) {
	owner := repository.GetOwner().GetLogin()
	name := repository.GetName()
	ref := branchOrHead(repository.GetDefaultBranch())

	manifest, err := s.raw.Manifest(ctx, owner, name, ref)
	if err != nil {
		return hub.Plugin{}, fmt.Errorf("failed to load manifest: %w", err)
	}

	releases, _, err := s.client.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{PerPage: 100})
	if err != nil {
		return hub.Plugin{}, fmt.Errorf("failed to list releases: %w", err)
	}

	listed := published(releases)
	if len(listed) == 0 {
		return hub.Plugin{}, fmt.Errorf("no release")
	}

	keywords := manifest.Keywords
	if len(keywords) == 0 {
		keywords = repository.Topics
	}

	logoURL := repository.GetOwner().GetAvatarURL()
	if s.raw.HasLogo(ctx, owner, name, ref) {
		logoURL = s.raw.LogoURL(owner, name, ref)
	}

	var bannerURL string
	if manifest.Banner != "" {
		bannerURL, _ = s.raw.fileURL(owner, name, ref, manifest.Banner)
	}

	var downloads int
	for _, asset := range listed[0].Assets {
		downloads += asset.GetDownloadCount()
	}

	return hub.Plugin{
		ID:          repository.GetID(),
		Name:        name,
		Description: manifest.Description,
		Version:     manifest.Version,
		Author: hub.Contributor{
			Login:     owner,
			URL:       repository.GetOwner().GetHTMLURL(),
			AvatarURL: repository.GetOwner().GetAvatarURL(),
		},
		Stars:         repository.GetStargazersCount(),
		Downloads:     downloads,
		Forks:         repository.GetForksCount(),
		OpenIssues:    repository.GetOpenIssuesCount(),
		Keywords:      keywords,
		LogoURL:       logoURL,
		BannerURL:     bannerURL,
		PublishedAt:   listed[len(listed)-1].GetPublishedAt().Time,
		UpdatedAt:     listed[0].GetPublishedAt().Time,
		RepoURL:       repository.GetHTMLURL(),
		Approved:      true,
		DefaultBranch: repository.GetDefaultBranch(),
	}, nil
}

// Readme gets the repository readme as text. A repository without a
// readme yields an empty string, not an error.
func (s *GitHub) Readme(ctx context.Context, p hub.Plugin) (string, error) {
	readme, resp, err := s.client.Repositories.GetReadme(ctx, p.Author.Login, p.Name, nil)
	if notFound(resp) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get the readme file: %w", err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to get readme content: %w", err)
	}

	return content, nil
}

// LatestRelease gets the newest published release. When the dedicated
// endpoint knows none it falls back to the release listing and picks the
// first non-draft entry; a draft-only repository yields nil.
func (s *GitHub) LatestRelease(ctx context.Context, p hub.Plugin) (*hub.Release, error) {
	release, resp, err := s.client.Repositories.GetLatestRelease(ctx, p.Author.Login, p.Name)
	if err == nil {
		r := releaseRecord(release)
		return &r, nil
	}

	if !notFound(resp) {
		return nil, fmt.Errorf("failed to get the latest release: %w", err)
	}

	releases, err := s.Releases(ctx, p)
	if err != nil {
		return nil, err
	}

	if len(releases) == 0 {
		return nil, nil
	}

	return &releases[0], nil
}

// Releases lists the published releases, drafts excluded.
func (s *GitHub) Releases(ctx context.Context, p hub.Plugin) ([]hub.Release, error) {
	releases, resp, err := s.client.Repositories.ListReleases(ctx, p.Author.Login, p.Name, &github.ListOptions{PerPage: 100})
	if notFound(resp) {
		return []hub.Release{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}

	result := make([]hub.Release, 0, len(releases))
	for _, release := range published(releases) {
		result = append(result, releaseRecord(release))
	}

	return result, nil
}

// Commits gets the recent history of the default branch.
func (s *GitHub) Commits(ctx context.Context, p hub.Plugin) ([]hub.Commit, error) {
	opts := &github.CommitsListOptions{
		SHA:         branchOrHead(p.DefaultBranch),
		ListOptions: github.ListOptions{PerPage: 30},
	}

	commits, _, err := s.client.Repositories.ListCommits(ctx, p.Author.Login, p.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	result := make([]hub.Commit, 0, len(commits))
	for _, commit := range commits {
		message, _, _ := strings.Cut(commit.GetCommit().GetMessage(), "\n")

		result = append(result, hub.Commit{
			SHA:     commit.GetSHA(),
			URL:     commit.GetHTMLURL(),
			Message: message,
			Date:    commit.GetCommit().GetAuthor().GetDate().Time,
			Author:  commit.GetAuthor().GetLogin(),
		})
	}

	return result, nil
}

// Contributors lists the repository contributors. GitHub answers 204 for
// an empty repository; that is an empty sequence, not an error.
func (s *GitHub) Contributors(ctx context.Context, p hub.Plugin) ([]hub.Contributor, error) {
	contributors, resp, err := s.client.Repositories.ListContributors(ctx, p.Author.Login, p.Name, nil)
	if resp != nil && resp.StatusCode == http.StatusNoContent {
		return []hub.Contributor{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}

	result := make([]hub.Contributor, 0, len(contributors))
	for _, contributor := range contributors {
		result = append(result, hub.Contributor{
			Login:         contributor.GetLogin(),
			URL:           contributor.GetHTMLURL(),
			AvatarURL:     contributor.GetAvatarURL(),
			Contributions: contributor.GetContributions(),
		})
	}

	return result, nil
}

// Gallery lists the media files under the conventional gallery directory.
// A repository without one yields an empty sequence.
func (s *GitHub) Gallery(ctx context.Context, p hub.Plugin) ([]string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: branchOrHead(p.DefaultBranch)}

	_, entries, resp, err := s.client.Repositories.GetContents(ctx, p.Author.Login, p.Name, galleryDir, opts)
	if notFound(resp) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list gallery contents: %w", err)
	}

	media := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}

		ext := strings.ToLower(path.Ext(entry.GetName()))
		if _, ok := mediaExtensions[ext]; !ok {
			continue
		}

		media = append(media, entry.GetDownloadURL())
	}

	return media, nil
}

func published(releases []*github.RepositoryRelease) []*github.RepositoryRelease {
	result := make([]*github.RepositoryRelease, 0, len(releases))
	for _, release := range releases {
		if release.GetDraft() {
			continue
		}

		result = append(result, release)
	}

	return result
}

func releaseRecord(release *github.RepositoryRelease) hub.Release {
	assets := make([]hub.Asset, 0, len(release.Assets))
	for _, asset := range release.Assets {
		assets = append(assets, hub.Asset{
			Name:        asset.GetName(),
			Size:        asset.GetSize(),
			DownloadURL: asset.GetBrowserDownloadURL(),
			Downloads:   asset.GetDownloadCount(),
		})
	}

	return hub.Release{
		Name:        release.GetName(),
		Tag:         release.GetTagName(),
		URL:         release.GetHTMLURL(),
		Body:        release.GetBody(),
		Prerelease:  release.GetPrerelease(),
		PublishedAt: release.GetPublishedAt().Time,
		Assets:      assets,
	}
}

func branchOrHead(branch string) string {
	if branch == "" {
		return "HEAD"
	}

	return branch
}

func notFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
