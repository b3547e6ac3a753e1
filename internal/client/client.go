package client

import (
	"context"

	"github.com/TWRT/board-sync/internal/models"
)

type BoardClient interface {
	ResolveBoard(ctx context.Context, owner string, number int) (string, error)
	FetchSchema(ctx context.Context, boardID string) ([]models.FieldSchema, error)
	ListItems(ctx context.Context, boardID string) ([]models.BoardItem, error)
	AddItem(ctx context.Context, boardID, issueNodeID string) (string, error)
	SetFieldValue(ctx context.Context, boardID, itemID string, field models.FieldSchema, raw string) error
}

type IssueClient interface {
	FindOrCreate(ctx context.Context, number int, title, body string) (models.Issue, bool, error)
	GetIssue(ctx context.Context, number int) (models.Issue, error)
	UpdateMetadata(ctx context.Context, number int, assignees, labels []string, milestone string) error
	ListComments(ctx context.Context, number int) ([]models.IssueComment, error)
	UpsertCategorizedComment(ctx context.Context, number int, marker, body string) error
}
