package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/board-sync/internal/models"
)

// ErrNotFound is returned when every error the remote reports for a query
// is a missing-node error, so callers can fall through to another scope.
var ErrNotFound = errors.New("not found (board)")

type BoardClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewBoardClient(token string) *BoardClient {
	return &BoardClient{
		endpoint:   "https://api.github.com/graphql",
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *BoardClient) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request (board): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build request (board): %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute query (board): %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body (board): %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error status (board): %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var envelope GraphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("parse response (board): %w", err)
	}

	if len(envelope.Errors) > 0 {
		if allNotFound(envelope.Errors) {
			return ErrNotFound
		}
		return fmt.Errorf("query error (board): %s", envelope.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("parse data (board): %w", err)
		}
	}

	return nil
}

func allNotFound(errs []GraphQLError) bool {
	for _, e := range errs {
		if e.Type != "NOT_FOUND" {
			return false
		}
	}
	return len(errs) > 0
}

func (c *BoardClient) ResolveBoard(ctx context.Context, owner string, number int) (string, error) {
	orgQuery := `
	query($owner: String!, $number: Int!) {
		organization(login: $owner) {
			projectV2(number: $number) { id }
		}
	}`

	vars := map[string]any{"owner": owner, "number": number}

	var org OrgProjectResponse
	err := c.execute(ctx, orgQuery, vars, &org)
	if err == nil && org.Organization.ProjectV2 != nil {
		return org.Organization.ProjectV2.ID, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("resolve board (board): %w", err)
	}

	userQuery := `
	query($owner: String!, $number: Int!) {
		user(login: $owner) {
			projectV2(number: $number) { id }
		}
	}`

	var user UserProjectResponse
	err = c.execute(ctx, userQuery, vars, &user)
	if err == nil && user.User.ProjectV2 != nil {
		return user.User.ProjectV2.ID, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("resolve board (board): %w", err)
	}

	return "", fmt.Errorf("board %d not found for %q under organization or user scope", number, owner)
}

func (c *BoardClient) FetchSchema(ctx context.Context, boardID string) ([]models.FieldSchema, error) {
	query := `
	query($projectId: ID!) {
		node(id: $projectId) {
			... on ProjectV2 {
				fields(first: 100) {
					nodes {
						... on ProjectV2FieldCommon { id name dataType }
						... on ProjectV2SingleSelectField { options { id name } }
					}
				}
			}
		}
	}`

	var resp SchemaResponse
	if err := c.execute(ctx, query, map[string]any{"projectId": boardID}, &resp); err != nil {
		return nil, fmt.Errorf("fetch schema (board): %w", err)
	}

	fields := make([]models.FieldSchema, 0, len(resp.Node.Fields.Nodes))
	for _, f := range resp.Node.Fields.Nodes {
		if f.ID == "" {
			continue
		}
		schema := models.FieldSchema{
			ID:       f.ID,
			Name:     f.Name,
			DataType: f.DataType,
		}
		for _, o := range f.Options {
			schema.Options = append(schema.Options, models.FieldOption{ID: o.ID, Name: o.Name})
		}
		fields = append(fields, schema)
	}

	return fields, nil
}

func (c *BoardClient) ListItems(ctx context.Context, boardID string) ([]models.BoardItem, error) {
	query := `
	query($projectId: ID!, $cursor: String) {
		node(id: $projectId) {
			... on ProjectV2 {
				items(first: 100, after: $cursor) {
					pageInfo { hasNextPage endCursor }
					nodes {
						id
						isArchived
						content {
							... on Issue { number title body }
						}
						fieldValues(first: 50) {
							nodes {
								... on ProjectV2ItemFieldTextValue { text field { ... on ProjectV2FieldCommon { name } } }
								... on ProjectV2ItemFieldNumberValue { number field { ... on ProjectV2FieldCommon { name } } }
								... on ProjectV2ItemFieldDateValue { date field { ... on ProjectV2FieldCommon { name } } }
								... on ProjectV2ItemFieldSingleSelectValue { name field { ... on ProjectV2FieldCommon { name } } }
							}
						}
					}
				}
			}
		}
	}`

	var items []models.BoardItem
	var cursor string

	for {
		vars := map[string]any{"projectId": boardID}
		if cursor != "" {
			vars["cursor"] = cursor
		}

		var resp ItemsResponse
		if err := c.execute(ctx, query, vars, &resp); err != nil {
			return nil, fmt.Errorf("list items (board): %w", err)
		}

		for _, n := range resp.Node.Items.Nodes {
			items = append(items, convertItem(n))
		}

		if !resp.Node.Items.PageInfo.HasNextPage {
			break
		}
		cursor = resp.Node.Items.PageInfo.EndCursor
	}

	return items, nil
}

func convertItem(n ItemNode) models.BoardItem {
	item := models.BoardItem{
		ItemID:   n.ID,
		Archived: n.IsArchived,
		Fields:   make(map[string]models.FieldValue),
	}

	if n.Content.Number > 0 {
		item.Issue = &models.IssueContent{
			Number: n.Content.Number,
			Title:  n.Content.Title,
			Body:   n.Content.Body,
		}
	}

	for _, fv := range n.FieldValues.Nodes {
		if fv.Field == nil {
			continue
		}
		value, ok := resolveFieldValue(fv)
		if !ok {
			continue
		}
		item.Fields[fv.Field.Name] = value
	}

	return item
}

// First non-null member of the value union wins: text, number, date, option.
func resolveFieldValue(fv FieldValueNode) (models.FieldValue, bool) {
	switch {
	case fv.Text != nil:
		return models.FieldValue{Kind: models.FieldText, Text: *fv.Text}, true
	case fv.Number != nil:
		return models.FieldValue{Kind: models.FieldNumber, Number: *fv.Number}, true
	case fv.Date != nil:
		return models.FieldValue{Kind: models.FieldDate, Date: trimDate(*fv.Date)}, true
	case fv.Name != nil:
		return models.FieldValue{Kind: models.FieldSelect, Option: *fv.Name}, true
	}
	return models.FieldValue{}, false
}

// Date values sometimes arrive as full timestamps; the header format keeps
// the calendar date only.
func trimDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func (c *BoardClient) AddItem(ctx context.Context, boardID, issueNodeID string) (string, error) {
	mutation := `
	mutation($projectId: ID!, $contentId: ID!) {
		addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
			item { id }
		}
	}`

	vars := map[string]any{"projectId": boardID, "contentId": issueNodeID}

	var resp AddItemResponse
	if err := c.execute(ctx, mutation, vars, &resp); err != nil {
		return "", fmt.Errorf("add item (board): %w", err)
	}

	return resp.AddProjectV2ItemByID.Item.ID, nil
}

func (c *BoardClient) SetFieldValue(ctx context.Context, boardID, itemID string, field models.FieldSchema, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var value map[string]any
	switch field.DataType {
	case models.DataTypeSingleSelect:
		optionID := matchOption(field.Options, raw)
		if optionID == "" {
			return nil
		}
		value = map[string]any{"singleSelectOptionId": optionID}
	case models.DataTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		value = map[string]any{"number": n}
	case models.DataTypeDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil
		}
		value = map[string]any{"date": raw}
	case models.DataTypeText:
		value = map[string]any{"text": raw}
	default:
		return nil
	}

	mutation := `
	mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
		updateProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: $value}) {
			projectV2Item { id }
		}
	}`

	vars := map[string]any{
		"projectId": boardID,
		"itemId":    itemID,
		"fieldId":   field.ID,
		"value":     value,
	}

	if err := c.execute(ctx, mutation, vars, nil); err != nil {
		return fmt.Errorf("set field %q (board): %w", field.Name, err)
	}

	return nil
}

// Option names match case-insensitively, exact otherwise. No match means
// the write is skipped, not an error.
func matchOption(options []models.FieldOption, raw string) string {
	for _, opt := range options {
		if strings.EqualFold(opt.Name, raw) {
			return opt.ID
		}
	}
	return ""
}
