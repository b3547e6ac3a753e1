package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/TWRT/board-sync/internal/client"
	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/gitops"
	"github.com/TWRT/board-sync/internal/logger"
	"github.com/TWRT/board-sync/internal/models"
	"github.com/TWRT/board-sync/internal/repository"
	"github.com/TWRT/board-sync/internal/taskstore"
)

const writeBackCommitMessage = "Record issue identifiers"

type PopulateService struct {
	boardClient client.BoardClient
	issueClient client.IssueClient
	store       *taskstore.Store
	runRepo     *repository.RunRepository
	eventRepo   *repository.ItemEventRepository
	cfg         *config.Config
}

func NewPopulateService(
	boardClient client.BoardClient,
	issueClient client.IssueClient,
	store *taskstore.Store,
	runRepo *repository.RunRepository,
	eventRepo *repository.ItemEventRepository,
	cfg *config.Config,
) *PopulateService {
	return &PopulateService{
		boardClient: boardClient,
		issueClient: issueClient,
		store:       store,
		runRepo:     runRepo,
		eventRepo:   eventRepo,
		cfg:         cfg,
	}
}

// Run pushes every local task record to the issue tracker and the board:
// issue, board membership, metadata, categorized comments and field values,
// in that order. Identifiers handed out for new issues are written back to
// the task files and committed in one batch at the end.
func (s *PopulateService) Run(ctx context.Context, skipPush bool) (*RunStats, error) {
	run, err := startRun(s.runRepo, "populate", s.cfg)
	if err != nil {
		return nil, err
	}

	stats, err := s.populate(ctx, run, skipPush)
	if err != nil {
		failRun(s.runRepo, run.Id, err)
		return nil, err
	}

	finishRun(s.runRepo, run, stats)
	return stats, nil
}

func (s *PopulateService) populate(ctx context.Context, run *repository.Run, skipPush bool) (*RunStats, error) {
	stats := &RunStats{}

	logger.Startf("Populating board %d of %s", s.cfg.BoardNumber, s.cfg.BoardOwner)

	boardID, err := s.boardClient.ResolveBoard(ctx, s.cfg.BoardOwner, s.cfg.BoardNumber)
	if err != nil {
		return nil, fmt.Errorf("resolve board: %w", err)
	}

	schema, err := s.boardClient.FetchSchema(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("fetch board schema: %w", err)
	}

	records, err := s.store.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}

	logger.Infof("Total task records: %d", len(records))

	var writtenBack []string

	for _, rec := range records {
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			logger.Warnf("Skipping %s: record has no title", rec.Path)
			recordEvent(s.eventRepo, run.Id, rec.Identifier, "", "skipped", "missing title")
			stats.Skipped++
			continue
		}

		logger.Stepf("Processing: %s...", title)

		issue, created, err := s.issueClient.FindOrCreate(ctx, rec.Identifier, title, rec.Description)
		if err != nil {
			return nil, fmt.Errorf("find or create issue for %s: %w", rec.Path, err)
		}

		action := "updated"
		if created {
			action = "created"
			stats.Created++
		} else {
			stats.Updated++
		}

		if rec.Identifier != issue.Number {
			if err := s.store.Upsert(rec, map[string]any{models.KeyIdentifier: issue.Number}); err != nil {
				return nil, fmt.Errorf("write identifier back to %s: %w", rec.Path, err)
			}
			writtenBack = append(writtenBack, rec.Path)
		}

		itemID, err := s.boardClient.AddItem(ctx, boardID, issue.NodeID)
		if err != nil {
			return nil, fmt.Errorf("add issue #%d to board: %w", issue.Number, err)
		}

		if err := s.issueClient.UpdateMetadata(ctx, issue.Number, rec.Assignees, rec.Labels, rec.Milestone); err != nil {
			return nil, fmt.Errorf("update metadata of issue #%d: %w", issue.Number, err)
		}

		relationships := strings.Join(rec.Relationships, "\n")
		if err := s.issueClient.UpsertCategorizedComment(ctx, issue.Number, models.MarkerRelationships, relationships); err != nil {
			return nil, fmt.Errorf("upsert relationships comment of issue #%d: %w", issue.Number, err)
		}

		if err := s.issueClient.UpsertCategorizedComment(ctx, issue.Number, models.MarkerNotes, rec.Comments); err != nil {
			return nil, fmt.Errorf("upsert notes comment of issue #%d: %w", issue.Number, err)
		}

		for _, binding := range fieldBindings(s.cfg.StatusField) {
			raw := recordFieldValue(rec, binding.key)
			if raw == "" {
				continue
			}

			field, ok := schemaField(schema, binding.field)
			if !ok {
				continue
			}

			if err := s.boardClient.SetFieldValue(ctx, boardID, itemID, field, raw); err != nil {
				return nil, fmt.Errorf("set field %s of issue #%d: %w", binding.field, issue.Number, err)
			}
		}

		recordEvent(s.eventRepo, run.Id, issue.Number, title, action, "")
		logger.Successf("Synced #%d", issue.Number)
	}

	if err := s.pushWriteBacks(ctx, writtenBack, skipPush); err != nil {
		return nil, err
	}

	logger.Successf("Populate finished: %d created, %d updated, %d skipped",
		stats.Created, stats.Updated, stats.Skipped)

	return stats, nil
}

func (s *PopulateService) pushWriteBacks(ctx context.Context, paths []string, skipPush bool) error {
	if len(paths) == 0 {
		return nil
	}

	if skipPush {
		logger.Infof("Skipping commit of %d identifier write-backs", len(paths))
		return nil
	}

	root, err := gitops.RepoRoot(ctx, s.cfg.TasksDir)
	if err != nil {
		return fmt.Errorf("locate repository for write-backs: %w", err)
	}

	committed, err := gitops.CommitAndPush(ctx, root, paths, writeBackCommitMessage)
	if err != nil {
		return fmt.Errorf("push identifier write-backs: %w", err)
	}

	if committed {
		logger.Successf("Pushed identifier write-backs (%d files)", len(paths))
	}
	return nil
}
