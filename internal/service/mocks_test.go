package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/models"
	"github.com/TWRT/board-sync/internal/repository"
	"github.com/TWRT/board-sync/internal/taskstore"
)

type fieldWrite struct {
	itemID string
	field  string
	raw    string
}

// fakeBoardClient implements client.BoardClient with canned data and call
// recording.
type fakeBoardClient struct {
	boardID string
	schema  []models.FieldSchema
	items   []models.BoardItem

	resolveErr error

	added  []string
	writes []fieldWrite
}

func (f *fakeBoardClient) ResolveBoard(ctx context.Context, owner string, number int) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.boardID, nil
}

func (f *fakeBoardClient) FetchSchema(ctx context.Context, boardID string) ([]models.FieldSchema, error) {
	return f.schema, nil
}

func (f *fakeBoardClient) ListItems(ctx context.Context, boardID string) ([]models.BoardItem, error) {
	return f.items, nil
}

func (f *fakeBoardClient) AddItem(ctx context.Context, boardID, issueNodeID string) (string, error) {
	f.added = append(f.added, issueNodeID)
	return "ITEM_" + issueNodeID, nil
}

func (f *fakeBoardClient) SetFieldValue(ctx context.Context, boardID, itemID string, field models.FieldSchema, raw string) error {
	f.writes = append(f.writes, fieldWrite{itemID: itemID, field: field.Name, raw: raw})
	return nil
}

type metadataUpdate struct {
	assignees []string
	labels    []string
	milestone string
}

type commentUpsert struct {
	number int
	marker string
	body   string
}

// fakeIssueClient implements client.IssueClient over an in-memory issue set.
type fakeIssueClient struct {
	issues     map[int]models.Issue
	byTitle    map[string]int
	comments   map[int][]models.IssueComment
	nextNumber int

	getErr error

	created  []models.Issue
	metadata map[int]metadataUpdate
	upserts  []commentUpsert
}

func newFakeIssueClient() *fakeIssueClient {
	return &fakeIssueClient{
		issues:   make(map[int]models.Issue),
		byTitle:  make(map[string]int),
		comments: make(map[int][]models.IssueComment),
		metadata: make(map[int]metadataUpdate),
	}
}

func (f *fakeIssueClient) addIssue(issue models.Issue) {
	f.issues[issue.Number] = issue
	f.byTitle[issue.Title] = issue.Number
	if issue.Number > f.nextNumber {
		f.nextNumber = issue.Number
	}
}

func (f *fakeIssueClient) FindOrCreate(ctx context.Context, number int, title, body string) (models.Issue, bool, error) {
	if number > 0 {
		if issue, ok := f.issues[number]; ok {
			return issue, false, nil
		}
	}
	if n, ok := f.byTitle[title]; ok {
		return f.issues[n], false, nil
	}

	f.nextNumber++
	issue := models.Issue{
		Number: f.nextNumber,
		NodeID: fmt.Sprintf("NODE_%d", f.nextNumber),
		Title:  title,
		Body:   body,
		State:  "open",
	}
	f.addIssue(issue)
	f.created = append(f.created, issue)
	return issue, true, nil
}

func (f *fakeIssueClient) GetIssue(ctx context.Context, number int) (models.Issue, error) {
	if f.getErr != nil {
		return models.Issue{}, f.getErr
	}
	issue, ok := f.issues[number]
	if !ok {
		return models.Issue{}, fmt.Errorf("issue #%d does not exist", number)
	}
	return issue, nil
}

func (f *fakeIssueClient) UpdateMetadata(ctx context.Context, number int, assignees, labels []string, milestone string) error {
	f.metadata[number] = metadataUpdate{assignees: assignees, labels: labels, milestone: milestone}
	return nil
}

func (f *fakeIssueClient) ListComments(ctx context.Context, number int) ([]models.IssueComment, error) {
	return f.comments[number], nil
}

func (f *fakeIssueClient) UpsertCategorizedComment(ctx context.Context, number int, marker, body string) error {
	f.upserts = append(f.upserts, commentUpsert{number: number, marker: marker, body: body})
	return nil
}

// testEnv wires a real store and ledger on a temp dir with fake remotes.
type testEnv struct {
	cfg       *config.Config
	store     *taskstore.Store
	boardFake *fakeBoardClient
	issueFake *fakeIssueClient
	runRepo   *repository.RunRepository
	eventRepo *repository.ItemEventRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	active := filepath.Join(root, "tasks")
	archive := filepath.Join(root, "tasks", "archive")
	require.NoError(t, os.MkdirAll(archive, 0755))

	db, err := repository.InitDB(filepath.Join(root, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Token:       "test-token",
		BoardOwner:  "acme",
		BoardNumber: 7,
		RepoOwner:   "acme",
		RepoName:    "widgets",
		StatusField: "Status",
		TasksDir:    active,
		ArchiveDir:  archive,
		LedgerPath:  filepath.Join(root, "ledger.db"),
	}

	return &testEnv{
		cfg:       cfg,
		store:     taskstore.NewStore(active, archive),
		boardFake: &fakeBoardClient{boardID: "PVT_1", schema: defaultSchema()},
		issueFake: newFakeIssueClient(),
		runRepo:   repository.NewRunRepository(db),
		eventRepo: repository.NewItemEventRepository(db),
	}
}

func defaultSchema() []models.FieldSchema {
	return []models.FieldSchema{
		{ID: "F1", Name: "Status", DataType: models.DataTypeSingleSelect,
			Options: []models.FieldOption{{ID: "opt1", Name: "Todo"}, {ID: "opt2", Name: "Done"}}},
		{ID: "F2", Name: "Priority", DataType: models.DataTypeSingleSelect,
			Options: []models.FieldOption{{ID: "p1", Name: "High"}}},
		{ID: "F3", Name: "Estimate", DataType: models.DataTypeNumber},
		{ID: "F4", Name: "Planned Start", DataType: models.DataTypeDate},
	}
}

func (e *testEnv) newPopulate() *PopulateService {
	return NewPopulateService(e.boardFake, e.issueFake, e.store, e.runRepo, e.eventRepo, e.cfg)
}

func (e *testEnv) newSync() *SyncService {
	return NewSyncService(e.boardFake, e.issueFake, e.store, e.runRepo, e.eventRepo, e.cfg)
}

func (e *testEnv) writeTask(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.cfg.TasksDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (e *testEnv) writeArchivedTask(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.cfg.ArchiveDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func issueItem(itemID string, number int, archived bool, fields map[string]models.FieldValue) models.BoardItem {
	return models.BoardItem{
		ItemID:   itemID,
		Archived: archived,
		Issue:    &models.IssueContent{Number: number},
		Fields:   fields,
	}
}
