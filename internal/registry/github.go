package registry

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	DefaultManifestURL = "https://raw.githubusercontent.com/ulpi-io/agent-library/main/templates/map.json"
	DefaultRawBaseURL  = "https://raw.githubusercontent.com/ulpi-io/agent-library/main"
	DefaultAPIBaseURL  = "https://api.github.com/repos/ulpi-io/agent-library/contents"
)

// GitHubURLBuilder constructs raw file and contents API URLs for the agent library repository.
type GitHubURLBuilder struct {
	RawBaseURL string
	APIBaseURL string
}

// NewGitHubURLBuilder creates a builder for a repository's raw and contents endpoints.
func NewGitHubURLBuilder(rawBaseURL, apiBaseURL string) *GitHubURLBuilder {
	return &GitHubURLBuilder{
		RawBaseURL: strings.TrimRight(rawBaseURL, "/"),
		APIBaseURL: strings.TrimRight(apiBaseURL, "/"),
	}
}

// RawFileURL returns the raw content URL for a repository-relative path.
func (b *GitHubURLBuilder) RawFileURL(filePath string) (string, error) {
	clean, err := CleanRemotePath(filePath)
	if err != nil {
		return "", err
	}
	return b.RawBaseURL + "/" + escapePath(clean), nil
}

// ContentsURL returns the contents API URL that lists a repository directory.
// Uses: GET /repos/:owner/:repo/contents/:path
func (b *GitHubURLBuilder) ContentsURL(dirPath string) (string, error) {
	clean, err := CleanRemotePath(dirPath)
	if err != nil {
		return "", err
	}
	return b.APIBaseURL + "/" + escapePath(clean), nil
}

// CleanRemotePath normalizes a manifest source path and rejects anything that
// would leave the repository root.
func CleanRemotePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty source path")
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return "", fmt.Errorf("invalid source path: %q", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid source path: %q", p)
	}
	return clean, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
