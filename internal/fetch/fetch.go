package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Fetcher retrieves one upstream file pinned to a commit. Implementations
// must be safe for repeated calls with the same arguments.
type Fetcher interface {
	FetchFile(repoSlug, subdir, commit, relPath string) (string, error)
}

// GitHubFetcher downloads raw files from GitHub and keeps a write-once
// filesystem cache keyed by (repo, subdir, commit, path). A cache entry is
// never rewritten, so concurrent readers are safe.
type GitHubFetcher struct {
	CacheDir string
	Client   *http.Client
}

func NewGitHubFetcher(cacheDir string) *GitHubFetcher {
	return &GitHubFetcher{CacheDir: cacheDir, Client: http.DefaultClient}
}

// FetchFile returns a local path to the requested file, downloading it on
// first use.
func (f *GitHubFetcher) FetchFile(repoSlug, subdir, commit, relPath string) (string, error) {
	cachePath := filepath.Join(
		f.CacheDir,
		strings.ReplaceAll(repoSlug, "/", "__"),
		strings.ReplaceAll(subdir, "/", "__"),
		commit,
		filepath.FromSlash(relPath),
	)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	prefix := strings.Trim(subdir, "/")
	fullPath := relPath
	if prefix != "" {
		fullPath = prefix + "/" + relPath
	}
	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", repoSlug, commit, fullPath)

	resp, err := f.Client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return "", err
	}
	return cachePath, nil
}

var githubSlugRe = regexp.MustCompile(`github\.com[:/]+([^/]+/[^/.]+)`)

// NormalizeRepo accepts a GitHub URL or an owner/name slug and returns the
// canonical slug.
func NormalizeRepo(repoArg string) (string, error) {
	repoArg = strings.TrimSpace(repoArg)
	if m := githubSlugRe.FindStringSubmatch(repoArg); m != nil {
		return m[1], nil
	}
	if strings.Contains(repoArg, "/") && !strings.HasPrefix(repoArg, "http") {
		return repoArg, nil
	}
	return "", fmt.Errorf("unsupported repo format: %s", repoArg)
}

// ResolveGitRef resolves a tag, branch, or ref to a commit SHA via
// git ls-remote, peeling annotated tags first.
func ResolveGitRef(repoSlug, ref string) (string, error) {
	url := fmt.Sprintf("https://github.com/%s.git", repoSlug)
	queries := []string{
		fmt.Sprintf("refs/tags/%s^{}", ref),
		fmt.Sprintf("refs/tags/%s", ref),
		fmt.Sprintf("refs/heads/%s", ref),
		ref,
	}
	for _, query := range queries {
		out, err := exec.Command("git", "ls-remote", url, query).Output()
		if err != nil {
			return "", fmt.Errorf("git ls-remote failed: %w", err)
		}
		fields := strings.Fields(strings.TrimSpace(string(out)))
		if len(fields) > 0 {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("unable to resolve ref %q in %s", ref, repoSlug)
}
