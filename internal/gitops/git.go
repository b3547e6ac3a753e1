// Package gitops shells out to git for the identifier write-back commit.
package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoRoot resolves the top-level directory of the repository containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitAndPush stages the given paths, commits them and pushes to the
// current branch's upstream. It reports false without committing when the
// paths carry no changes.
func CommitAndPush(ctx context.Context, repoDir string, paths []string, message string) (bool, error) {
	if len(paths) == 0 {
		return false, nil
	}

	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		p, err := filepath.Abs(path)
		if err != nil {
			return false, fmt.Errorf("resolve path %s: %w", path, err)
		}
		abs = append(abs, p)
	}

	if _, err := runGit(ctx, repoDir, append([]string{"add", "--"}, abs...)...); err != nil {
		return false, err
	}

	changed, err := hasChanges(ctx, repoDir, abs)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	commitArgs := append([]string{"commit", "-m", message, "--"}, abs...)
	if _, err := runGit(ctx, repoDir, commitArgs...); err != nil {
		return false, err
	}

	if _, err := runGit(ctx, repoDir, "push"); err != nil {
		return true, err
	}

	return true, nil
}

func hasChanges(ctx context.Context, repoDir string, paths []string) (bool, error) {
	out, err := runGit(ctx, repoDir, append([]string{"status", "--porcelain", "--"}, paths...)...)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func runGit(ctx context.Context, repoDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoDir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w (output: %s)", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
