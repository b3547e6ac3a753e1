package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/TWRT/board-sync/internal/client"
	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/logger"
	"github.com/TWRT/board-sync/internal/models"
	"github.com/TWRT/board-sync/internal/repository"
	"github.com/TWRT/board-sync/internal/taskstore"
)

type SyncService struct {
	boardClient client.BoardClient
	issueClient client.IssueClient
	store       *taskstore.Store
	runRepo     *repository.RunRepository
	eventRepo   *repository.ItemEventRepository
	cfg         *config.Config
}

func NewSyncService(
	boardClient client.BoardClient,
	issueClient client.IssueClient,
	store *taskstore.Store,
	runRepo *repository.RunRepository,
	eventRepo *repository.ItemEventRepository,
	cfg *config.Config,
) *SyncService {
	return &SyncService{
		boardClient: boardClient,
		issueClient: issueClient,
		store:       store,
		runRepo:     runRepo,
		eventRepo:   eventRepo,
		cfg:         cfg,
	}
}

// Run pulls the board back into the local backlog: every issue item gets a
// task record in the directory matching its archived flag, and records whose
// issue left the board are deleted. Records that never went through populate
// (no identifier yet) are left alone.
func (s *SyncService) Run(ctx context.Context) (*RunStats, error) {
	run, err := startRun(s.runRepo, "sync", s.cfg)
	if err != nil {
		return nil, err
	}

	stats, err := s.sync(ctx, run)
	if err != nil {
		failRun(s.runRepo, run.Id, err)
		return nil, err
	}

	finishRun(s.runRepo, run, stats)
	return stats, nil
}

func (s *SyncService) sync(ctx context.Context, run *repository.Run) (*RunStats, error) {
	stats := &RunStats{}

	logger.Startf("Syncing from board %d of %s", s.cfg.BoardNumber, s.cfg.BoardOwner)

	boardID, err := s.boardClient.ResolveBoard(ctx, s.cfg.BoardOwner, s.cfg.BoardNumber)
	if err != nil {
		return nil, fmt.Errorf("resolve board: %w", err)
	}

	records, err := s.store.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}

	byIdentifier := make(map[int]*models.TaskRecord)
	for _, rec := range records {
		if rec.HasIdentifier() {
			byIdentifier[rec.Identifier] = rec
		}
	}

	items, err := s.boardClient.ListItems(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list board items: %w", err)
	}

	logger.Infof("Total board items: %d", len(items))

	seen := make(map[int]bool)

	for _, item := range items {
		if item.Issue == nil {
			continue // draft and pull request items have no task record
		}

		number := item.Issue.Number
		seen[number] = true

		issue, err := s.issueClient.GetIssue(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("get issue #%d: %w", number, err)
		}

		comments, err := s.issueClient.ListComments(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("list comments of issue #%d: %w", number, err)
		}

		updates := s.headerUpdates(item, issue, formatComments(comments))

		rec, ok := byIdentifier[number]
		action, detail := "updated", ""
		if !ok {
			logger.Stepf("Creating record for #%d: %s...", number, issue.Title)

			rec, err = s.store.Create(number, issue.Title, item.Archived)
			if err != nil {
				return nil, fmt.Errorf("create record for issue #%d: %w", number, err)
			}
			action = "created"
			stats.Created++
		} else {
			logger.Stepf("Updating #%d: %s...", number, issue.Title)

			if rec.Archived != item.Archived {
				if err := s.store.Relocate(rec, item.Archived); err != nil {
					return nil, fmt.Errorf("relocate record of issue #%d: %w", number, err)
				}
				detail = relocationDetail(item.Archived)
				stats.Relocated++
			}
			stats.Updated++
		}

		if err := s.store.Upsert(rec, updates); err != nil {
			return nil, fmt.Errorf("update record of issue #%d: %w", number, err)
		}

		recordEvent(s.eventRepo, run.Id, number, issue.Title, action, detail)
		logger.Successf("Synced #%d", number)
	}

	for _, rec := range records {
		if !rec.HasIdentifier() || seen[rec.Identifier] {
			continue
		}

		logger.Warnf("Removing %s: issue #%d is no longer on the board", rec.Path, rec.Identifier)
		if err := s.store.Remove(rec); err != nil {
			return nil, fmt.Errorf("remove record of issue #%d: %w", rec.Identifier, err)
		}

		recordEvent(s.eventRepo, run.Id, rec.Identifier, rec.Title, "deleted", "")
		stats.Deleted++
	}

	logger.Successf("Sync finished: %d created, %d updated, %d relocated, %d deleted",
		stats.Created, stats.Updated, stats.Relocated, stats.Deleted)

	return stats, nil
}

func relocationDetail(archived bool) string {
	if archived {
		return "moved to archive"
	}
	return "restored to active"
}

// headerUpdates assembles the header merge for one board item. Keys the
// board carries no value for stay out of the map, so the local header keeps
// whatever it has.
func (s *SyncService) headerUpdates(item models.BoardItem, issue models.Issue, commentsBlock string) map[string]any {
	updates := map[string]any{
		models.KeyIdentifier:  issue.Number,
		models.KeyTitle:       issue.Title,
		models.KeyDescription: issue.Body,
	}

	if len(issue.Assignees) > 0 {
		updates[models.KeyAssignees] = issue.Assignees
	}
	if len(issue.Labels) > 0 {
		updates[models.KeyLabels] = issue.Labels
	}
	if issue.Milestone != "" {
		updates[models.KeyMilestone] = issue.Milestone
	}
	if commentsBlock != "" {
		updates[models.KeyComments] = commentsBlock
	}

	for _, binding := range fieldBindings(s.cfg.StatusField) {
		value, ok := lookupField(item.Fields, binding.field)
		if !ok {
			continue
		}
		if converted, ok := fieldValueToHeader(binding.key, value); ok {
			updates[binding.key] = converted
		}
	}

	return updates
}

// formatComments renders the conversation as one line per comment, leaving
// out the two comments this tool maintains itself.
func formatComments(comments []models.IssueComment) string {
	var lines []string
	for _, comment := range comments {
		if strings.HasPrefix(comment.Body, models.MarkerRelationships) ||
			strings.HasPrefix(comment.Body, models.MarkerNotes) {
			continue
		}

		lines = append(lines, fmt.Sprintf("- %s (%s): %s",
			comment.CreatedAt.Format("2006-01-02"), comment.Author, flattenText(comment.Body)))
	}
	return strings.Join(lines, "\n")
}

func flattenText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
