package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultRawBaseURL the raw content host serving repository files.
const DefaultRawBaseURL = "https://raw.githubusercontent.com"

const (
	manifestFile = "plugin.yml"
	logoFile     = "logo.png"
)

// ErrManifestNotFound indicates that the repository carries no plugin manifest.
var ErrManifestNotFound = errors.New("missing manifest")

// Manifest the plugin manifest at the repository root.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Banner      string   `yaml:"banner"`
}

// Raw fetches repository files from the raw content host.
type Raw struct {
	baseURL    string
	httpClient *http.Client
}

// NewRaw creates a raw content host client.
func NewRaw(baseURL string) *Raw {
	if baseURL == "" {
		baseURL = DefaultRawBaseURL
	}

	return &Raw{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Manifest gets and validates the plugin manifest of a repository at the
// given ref.
func (r *Raw) Manifest(ctx context.Context, owner, name, ref string) (Manifest, error) {
	endpoint, err := r.fileURL(owner, name, ref, manifestFile)
	if err != nil {
		return Manifest{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to get manifest: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Manifest{}, ErrManifestNotFound
	}

	if resp.StatusCode/100 != 2 {
		return Manifest{}, fmt.Errorf("failed to get manifest: status %d", resp.StatusCode)
	}

	var m Manifest
	err = yaml.NewDecoder(resp.Body).Decode(&m)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest content: %w", err)
	}

	return m, validateManifest(m)
}

func validateManifest(m Manifest) error {
	if m.Name == "" {
		return errors.New("missing name")
	}

	if m.Version == "" {
		return errors.New("missing version")
	}

	if !semver.IsValid(canonicalVersion(m.Version)) {
		return fmt.Errorf("invalid version: %s (see https://semver.org)", m.Version)
	}

	if m.Description == "" {
		return errors.New("missing description")
	}

	return nil
}

// canonicalVersion normalizes a manifest version to the v-prefixed form
// semver expects. Manifests commonly omit the prefix.
func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}

	return "v" + v
}

// HasLogo probes for a logo at the conventional path. Any transport or
// status failure counts as absent.
func (r *Raw) HasLogo(ctx context.Context, owner, name, ref string) bool {
	endpoint, err := r.fileURL(owner, name, ref, logoFile)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}

	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode/100 == 2
}

// LogoURL returns the conventional logo location for a repository.
func (r *Raw) LogoURL(owner, name, ref string) string {
	endpoint, err := r.fileURL(owner, name, ref, logoFile)
	if err != nil {
		return ""
	}

	return endpoint
}

func (r *Raw) fileURL(owner, name, ref, file string) (string, error) {
	baseURL, err := url.Parse(r.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	endpoint, err := baseURL.Parse(path.Join(baseURL.Path, owner, name, ref, file))
	if err != nil {
		return "", fmt.Errorf("failed to parse file URL: %w", err)
	}

	return endpoint.String(), nil
}
