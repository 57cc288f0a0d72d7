package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones the content repository at url into dir if it is not there yet,
// or pulls the latest changes if it is. Progress is written to progress,
// which may be nil.
func Sync(ctx context.Context, repoURL, dir string, progress io.Writer) error {
	_, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		slog.Info("cloning content repository", "url", repoURL, "dir", dir)
		_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:      repoURL,
			Depth:    1,
			Progress: progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		slog.Info("clone successful", "dir", dir)
	case err == nil:
		slog.Info("pulling content repository", "dir", dir)
		repo, err := git.PlainOpen(dir)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", dir, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", dir, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Progress:   progress,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", dir, err)
		}
		slog.Info("pull successful", "dir", dir, "up_to_date", err != nil)
	default:
		return fmt.Errorf("error checking path %s: %w", dir, err)
	}
	return nil
}

// RepoPath maps a repository url to a directory under base, keyed by host
// and repository path. Both https and scp-style (git@host:owner/repo) urls
// are accepted.
func RepoPath(base, repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err == nil && (u.Scheme == "https" || u.Scheme == "http" || u.Scheme == "ssh") && u.Host != "" {
		repo := strings.Trim(strings.TrimSuffix(u.Path, ".git"), "/")
		if repo == "" {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return joinRepo(base, repoURL, u.Hostname(), repo)
	}

	userHost, repo, ok := strings.Cut(repoURL, ":")
	if !ok || !strings.Contains(userHost, "@") {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	_, host, _ := strings.Cut(userHost, "@")
	repo = strings.Trim(strings.TrimSuffix(repo, ".git"), "/")
	if host == "" || repo == "" {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	return joinRepo(base, repoURL, host, repo)
}

// joinRepo places host/repo under base, rejecting relative segments that
// would resolve outside it.
func joinRepo(base, repoURL, host, repo string) (string, error) {
	for _, seg := range append([]string{host}, strings.Split(repo, "/")...) {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid path in git URL: %s", repoURL)
		}
	}
	return filepath.Join(base, host, filepath.FromSlash(repo)), nil
}
