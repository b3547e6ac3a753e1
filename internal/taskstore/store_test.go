package taskstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/board-sync/internal/models"
)

const sampleTask = `---
identifier: 42
title: Fix login flow
description: Users get logged out.
status: Todo
estimate: 2.5
labels:
  - bug
team: platform
---

Investigate the session store first.
`

func newTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	root := t.TempDir()
	active := filepath.Join(root, "tasks")
	archive := filepath.Join(root, "tasks", "archive")
	require.NoError(t, os.MkdirAll(archive, 0755))
	return NewStore(active, archive), active, archive
}

func writeTaskFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseFile_ReadsHeaderAndBody(t *testing.T) {
	t.Parallel()
	_, active, _ := newTestStore(t)
	path := filepath.Join(active, "42-fix-login-flow.md")
	writeTaskFile(t, path, sampleTask)

	rec, ok, err := ParseFile(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 42, rec.Identifier)
	assert.Equal(t, "Fix login flow", rec.Title)
	assert.Equal(t, "Users get logged out.", rec.Description)
	assert.Equal(t, "Todo", rec.Status)
	assert.Equal(t, 2.5, rec.Estimate)
	assert.Equal(t, []string{"bug"}, rec.Labels)
	assert.Equal(t, "platform", rec.Extra["team"])
	assert.Equal(t, "\nInvestigate the session store first.\n", rec.Body)
}

func TestParseFile_NoFrontMatter(t *testing.T) {
	t.Parallel()
	_, active, _ := newTestStore(t)
	path := filepath.Join(active, "README.md")
	writeTaskFile(t, path, "# Notes\n\nNot a task record.\n")

	_, ok, err := ParseFile(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListRecords_WalksBothDirectories(t *testing.T) {
	t.Parallel()
	store, active, archive := newTestStore(t)
	writeTaskFile(t, filepath.Join(active, "42-fix-login-flow.md"), sampleTask)
	writeTaskFile(t, filepath.Join(archive, "7-old-task.md"), "---\nidentifier: 7\ntitle: Old task\n---\n")
	writeTaskFile(t, filepath.Join(active, "README.md"), "# Not a record\n")
	writeTaskFile(t, filepath.Join(active, "notes.txt"), "scratch\n")

	records, err := store.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 42, records[0].Identifier)
	assert.False(t, records[0].Archived)
	assert.Equal(t, 7, records[1].Identifier)
	assert.True(t, records[1].Archived)
}

func TestListRecords_MissingDirectories(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "none"), filepath.Join(root, "none", "archive"))

	records, err := store.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpsert_MergesAndPreservesUnknownKeys(t *testing.T) {
	t.Parallel()
	store, active, _ := newTestStore(t)
	path := filepath.Join(active, "42-fix-login-flow.md")
	writeTaskFile(t, path, sampleTask)

	rec, ok, err := ParseFile(path)
	require.NoError(t, err)
	require.True(t, ok)

	err = store.Upsert(rec, map[string]any{
		models.KeyStatus:   "In Progress",
		models.KeyEstimate: 4.0,
	})
	require.NoError(t, err)

	updated, ok, err := ParseFile(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "In Progress", updated.Status)
	assert.Equal(t, 4.0, updated.Estimate)
	assert.Equal(t, "Fix login flow", updated.Title)
	assert.Equal(t, "platform", updated.Extra["team"])
	assert.Equal(t, "\nInvestigate the session store first.\n", updated.Body)
}

func TestUpsert_KeepsLocalDescription(t *testing.T) {
	t.Parallel()
	store, active, _ := newTestStore(t)
	path := filepath.Join(active, "42-fix-login-flow.md")
	writeTaskFile(t, path, sampleTask)

	rec, _, err := ParseFile(path)
	require.NoError(t, err)

	err = store.Upsert(rec, map[string]any{models.KeyDescription: "Remote words."})
	require.NoError(t, err)

	updated, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Users get logged out.", updated.Description)
}

func TestUpsert_FillsEmptyDescription(t *testing.T) {
	t.Parallel()
	store, active, _ := newTestStore(t)
	path := filepath.Join(active, "9-bare.md")
	writeTaskFile(t, path, "---\nidentifier: 9\ntitle: Bare\n---\n")

	rec, _, err := ParseFile(path)
	require.NoError(t, err)

	err = store.Upsert(rec, map[string]any{models.KeyDescription: "Remote words."})
	require.NoError(t, err)

	updated, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Remote words.", updated.Description)
}

func TestRelocate_MovesBetweenDirectories(t *testing.T) {
	t.Parallel()
	store, active, archive := newTestStore(t)

	rec, err := store.Create(7, "Ship it", false)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(active, "7-ship-it.md"))

	require.NoError(t, store.Relocate(rec, true))
	assert.FileExists(t, filepath.Join(archive, "7-ship-it.md"))
	assert.NoFileExists(t, filepath.Join(active, "7-ship-it.md"))
	assert.True(t, rec.Archived)
	assert.Equal(t, filepath.Join(archive, "7-ship-it.md"), rec.Path)

	// Already there: nothing to do.
	require.NoError(t, store.Relocate(rec, true))
	assert.FileExists(t, filepath.Join(archive, "7-ship-it.md"))
}

func TestRemove_DeletesFile(t *testing.T) {
	t.Parallel()
	store, active, _ := newTestStore(t)

	rec, err := store.Create(3, "Bye", false)
	require.NoError(t, err)

	require.NoError(t, store.Remove(rec))
	assert.NoFileExists(t, filepath.Join(active, "3-bye.md"))
}

func TestCreate_WritesParsableRecord(t *testing.T) {
	t.Parallel()
	store, _, archive := newTestStore(t)

	rec, err := store.Create(11, "Archived from day one", true)
	require.NoError(t, err)
	assert.True(t, rec.Archived)

	parsed, ok, err := ParseFile(filepath.Join(archive, "11-archived-from-day-one.md"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, parsed.Identifier)
	assert.Equal(t, "Archived from day one", parsed.Title)
}

func TestRecordFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "42-fix-the-thing.md", RecordFilename(42, "Fix: The Thing!"))
	assert.Equal(t, "9-a-b.md", RecordFilename(9, "  A -- b  "))
	assert.Equal(t, "7.md", RecordFilename(7, "??!"))
	assert.Equal(t, "5-caf-menu.md", RecordFilename(5, "Café menu"))

	long := RecordFilename(3, strings.Repeat("very long title ", 10))
	assert.LessOrEqual(t, len(long), len("3-")+maxSlugLen+len(recordExtension))
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(long, recordExtension), "-"))
}
