// Package github implements the RepoFileSource port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// maxFileSize is the largest blob the contents API returns inline.
const maxFileSize = 1 << 20

// Compile-time interface satisfaction check.
var _ driven.RepoFileSource = (*Source)(nil)

// Source implements the driven.RepoFileSource port by walking a repository
// tree through the GitHub REST API.
type Source struct {
	gh *gh.Client
}

// NewSource creates a GitHub file source with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is set)
//
// An empty token limits the source to public repositories.
func NewSource(token string) *Source {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Source{gh: client}
}

// NewSourceWithHTTPClient creates a Source with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewSourceWithHTTPClient(httpClient *http.Client, baseURL string) (*Source, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Source{gh: client}, nil
}

// FetchFiles lists the repository tree at ref and downloads every blob below
// dir that keep accepts. An empty ref resolves to the default branch.
func (s *Source) FetchFiles(ctx context.Context, repoFullName, ref, dir string, keep func(path string) bool) ([]model.SourceFile, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	if ref == "" {
		ref, err = s.defaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
	}

	tree, resp, err := s.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("fetching tree for %s@%s: %w", repoFullName, ref, err)
	}
	logRateLimit(resp, repoFullName+"/tree", 0, len(tree.Entries))

	if tree.GetTruncated() {
		slog.Warn("github tree truncated; import is partial", "repo", repoFullName, "ref", ref)
	}

	prefix := strings.Trim(dir, "/")
	files := []model.SourceFile{}

	for _, entry := range tree.Entries {
		p := entry.GetPath()
		if entry.GetType() != "blob" || !underDir(p, prefix) {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		if entry.GetSize() > maxFileSize {
			slog.Warn("skipping oversized file", "repo", repoFullName, "path", p, "size", entry.GetSize())
			continue
		}

		content, err := s.fetchContent(ctx, owner, repo, ref, p)
		if err != nil {
			return nil, fmt.Errorf("fetching %s from %s@%s: %w", p, repoFullName, ref, err)
		}
		files = append(files, model.SourceFile{Path: p, Content: content})
	}

	return files, nil
}

func (s *Source) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, resp, err := s.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("fetching repository %s/%s: %w", owner, repo, err)
	}
	logRateLimit(resp, owner+"/"+repo, 0, 1)

	branch := r.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", owner, repo)
	}
	return branch, nil
}

func (s *Source) fetchContent(ctx context.Context, owner, repo, ref, filePath string) (string, error) {
	fc, _, resp, err := s.gh.Repositories.GetContents(ctx, owner, repo, filePath, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", err
	}
	logRateLimit(resp, owner+"/"+repo+"/contents", 0, 1)

	if fc == nil {
		return "", fmt.Errorf("path is not a file")
	}
	content, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding content: %w", err)
	}
	return content, nil
}

// underDir reports whether p lies inside dir. An empty dir matches everything.
func underDir(p, dir string) bool {
	if dir == "" {
		return true
	}
	return strings.HasPrefix(path.Clean(p), dir+"/")
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits "owner/repo" into its two parts.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
