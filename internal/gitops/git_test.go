package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// setupRepo builds a working clone with a local bare remote so that a
// plain `git push` has somewhere to go.
func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	work := filepath.Join(root, "work")

	mustGit(t, root, "init", "--bare", remote)
	mustGit(t, root, "clone", remote, work)
	mustGit(t, work, "config", "user.email", "dev@example.com")
	mustGit(t, work, "config", "user.name", "Dev")
	mustGit(t, work, "config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(work, "README.md"), []byte("# tasks\n"), 0644))
	mustGit(t, work, "add", ".")
	mustGit(t, work, "commit", "-m", "init")
	mustGit(t, work, "push", "-u", "origin", "HEAD")

	return work
}

func TestCommitAndPush(t *testing.T) {
	work := setupRepo(t)

	taskPath := filepath.Join(work, "42-fix-login-flow.md")
	require.NoError(t, os.WriteFile(taskPath, []byte("---\nidentifier: 42\n---\n"), 0644))

	committed, err := CommitAndPush(context.Background(), work, []string{taskPath}, "Record issue identifiers")
	require.NoError(t, err)
	assert.True(t, committed)

	// Nothing changed, so a second call must not create another commit.
	committed, err = CommitAndPush(context.Background(), work, []string{taskPath}, "Record issue identifiers")
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestCommitAndPush_OnlyStagesGivenPaths(t *testing.T) {
	work := setupRepo(t)

	taskPath := filepath.Join(work, "7-other.md")
	bystander := filepath.Join(work, "unrelated.txt")
	require.NoError(t, os.WriteFile(taskPath, []byte("---\nidentifier: 7\n---\n"), 0644))
	require.NoError(t, os.WriteFile(bystander, []byte("scratch\n"), 0644))

	committed, err := CommitAndPush(context.Background(), work, []string{taskPath}, "Record issue identifiers")
	require.NoError(t, err)
	assert.True(t, committed)

	cmd := exec.Command("git", "-C", work, "status", "--porcelain")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "unrelated.txt", "files outside the write-back set stay uncommitted")
}

func TestCommitAndPush_NoPaths(t *testing.T) {
	t.Parallel()

	committed, err := CommitAndPush(context.Background(), t.TempDir(), nil, "whatever")
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestRepoRoot(t *testing.T) {
	work := setupRepo(t)
	sub := filepath.Join(work, "tasks")
	require.NoError(t, os.MkdirAll(sub, 0755))

	root, err := RepoRoot(context.Background(), sub)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(work)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRepoRoot_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	_, err := RepoRoot(context.Background(), t.TempDir())
	require.Error(t, err)
}
