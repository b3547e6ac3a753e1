package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/TWRT/board-sync/internal/models"
)

// ErrNotFound is returned for 404 responses so callers can treat a stale
// issue number as a branch instead of a failure.
var ErrNotFound = errors.New("not found (github)")

// Color assigned to labels the tool has to create.
const defaultLabelColor = "ededed"

var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

type IssuesClient struct {
	baseUrl    string
	owner      string
	repo       string
	token      string
	httpClient *http.Client
}

func NewIssuesClient(owner, repo, token string) *IssuesClient {
	return &IssuesClient{
		baseUrl:    "https://api.github.com",
		owner:      owner,
		repo:       repo,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// doRequest performs one API call, decodes the response into out when out
// is non-nil, and returns the Link header for pagination.
func (c *IssuesClient) doRequest(ctx context.Context, method, url string, payload, out any) (string, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal request (github): %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return "", fmt.Errorf("build request (github): %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s (github): %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body (github): %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("error status (github): %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return "", fmt.Errorf("parse response (github): %w", err)
		}
	}

	return resp.Header.Get("Link"), nil
}

func nextPageURL(link string) string {
	m := linkNextPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func (c *IssuesClient) GetIssue(ctx context.Context, number int) (models.Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseUrl, c.owner, c.repo, number)

	var issue Issue
	if _, err := c.doRequest(ctx, "GET", url, nil, &issue); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Issue{}, err
		}
		return models.Issue{}, fmt.Errorf("get issue #%d (github): %w", number, err)
	}

	return convertIssue(issue), nil
}

// FindOrCreate resolves the backing issue for a record. An explicit number
// that still resolves wins; a stale number falls back to the title search;
// no search match creates the issue.
func (c *IssuesClient) FindOrCreate(ctx context.Context, number int, title, body string) (models.Issue, bool, error) {
	if number > 0 {
		issue, err := c.GetIssue(ctx, number)
		if err == nil {
			return issue, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return models.Issue{}, false, err
		}
	}

	found, ok, err := c.searchByTitle(ctx, title)
	if err != nil {
		return models.Issue{}, false, err
	}
	if ok {
		return found, false, nil
	}

	created, err := c.createIssue(ctx, title, body)
	if err != nil {
		return models.Issue{}, false, err
	}
	return created, true, nil
}

func (c *IssuesClient) searchByTitle(ctx context.Context, title string) (models.Issue, bool, error) {
	query := fmt.Sprintf("repo:%s/%s is:issue in:title %q", c.owner, c.repo, title)
	url := c.baseUrl + "/search/issues?per_page=100&q=" + neturl.QueryEscape(query)

	var resp SearchResponse
	if _, err := c.doRequest(ctx, "GET", url, nil, &resp); err != nil {
		return models.Issue{}, false, fmt.Errorf("search issues (github): %w", err)
	}

	for _, item := range resp.Items {
		if item.PullRequest != nil {
			continue
		}
		if item.Title == title {
			return convertIssue(item), true, nil
		}
	}

	return models.Issue{}, false, nil
}

func (c *IssuesClient) createIssue(ctx context.Context, title, body string) (models.Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseUrl, c.owner, c.repo)

	var created Issue
	if _, err := c.doRequest(ctx, "POST", url, CreateIssueRequest{Title: title, Body: body}, &created); err != nil {
		return models.Issue{}, fmt.Errorf("create issue (github): %w", err)
	}

	return convertIssue(created), nil
}

func (c *IssuesClient) UpdateMetadata(ctx context.Context, number int, assignees, labels []string, milestone string) error {
	if err := c.ensureLabels(ctx, labels); err != nil {
		return err
	}

	if assignees == nil {
		assignees = []string{}
	}
	if labels == nil {
		labels = []string{}
	}

	updates := map[string]any{
		"assignees": assignees,
		"labels":    labels,
	}

	if milestone != "" {
		milestoneNumber, ok, err := c.findOpenMilestone(ctx, milestone)
		if err != nil {
			return err
		}
		// An unknown milestone is left off the update, not an error.
		if ok {
			updates["milestone"] = milestoneNumber
		}
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseUrl, c.owner, c.repo, number)
	if _, err := c.doRequest(ctx, "PATCH", url, updates, nil); err != nil {
		return fmt.Errorf("update issue #%d (github): %w", number, err)
	}

	return nil
}

func (c *IssuesClient) ensureLabels(ctx context.Context, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	existing, err := c.listRepoLabels(ctx)
	if err != nil {
		return err
	}

	for _, name := range labels {
		if _, ok := existing[strings.ToLower(name)]; ok {
			continue
		}
		url := fmt.Sprintf("%s/repos/%s/%s/labels", c.baseUrl, c.owner, c.repo)
		if _, err := c.doRequest(ctx, "POST", url, CreateLabelRequest{Name: name, Color: defaultLabelColor}, nil); err != nil {
			return fmt.Errorf("create label %q (github): %w", name, err)
		}
	}

	return nil
}

func (c *IssuesClient) listRepoLabels(ctx context.Context) (map[string]struct{}, error) {
	labels := make(map[string]struct{})

	url := fmt.Sprintf("%s/repos/%s/%s/labels?per_page=100", c.baseUrl, c.owner, c.repo)
	for url != "" {
		var page []Label
		link, err := c.doRequest(ctx, "GET", url, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("list labels (github): %w", err)
		}
		for _, l := range page {
			labels[strings.ToLower(l.Name)] = struct{}{}
		}
		url = nextPageURL(link)
	}

	return labels, nil
}

func (c *IssuesClient) findOpenMilestone(ctx context.Context, title string) (int, bool, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/milestones?state=open&per_page=100", c.baseUrl, c.owner, c.repo)
	for url != "" {
		var page []Milestone
		link, err := c.doRequest(ctx, "GET", url, nil, &page)
		if err != nil {
			return 0, false, fmt.Errorf("list milestones (github): %w", err)
		}
		for _, m := range page {
			if strings.EqualFold(m.Title, title) {
				return m.Number, true, nil
			}
		}
		url = nextPageURL(link)
	}

	return 0, false, nil
}

func (c *IssuesClient) ListComments(ctx context.Context, number int) ([]models.IssueComment, error) {
	var comments []models.IssueComment

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100", c.baseUrl, c.owner, c.repo, number)
	for url != "" {
		var page []Comment
		link, err := c.doRequest(ctx, "GET", url, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("list comments for #%d (github): %w", number, err)
		}
		for _, cm := range page {
			comments = append(comments, models.IssueComment{
				ID:        cm.ID,
				Author:    cm.User.Login,
				Body:      cm.Body,
				CreatedAt: cm.CreatedAt,
			})
		}
		url = nextPageURL(link)
	}

	return comments, nil
}

// UpsertCategorizedComment keeps at most one live comment per category
// marker: the first comment starting with the marker is replaced in place,
// otherwise a new one is appended. An empty body is a no-op.
func (c *IssuesClient) UpsertCategorizedComment(ctx context.Context, number int, marker, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	comments, err := c.ListComments(ctx, number)
	if err != nil {
		return err
	}

	full := marker + "\n\n" + body

	for _, existing := range comments {
		if !strings.HasPrefix(existing.Body, marker) {
			continue
		}
		if existing.Body == full {
			return nil
		}
		url := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", c.baseUrl, c.owner, c.repo, existing.ID)
		if _, err := c.doRequest(ctx, "PATCH", url, CommentRequest{Body: full}, nil); err != nil {
			return fmt.Errorf("update comment %d (github): %w", existing.ID, err)
		}
		return nil
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseUrl, c.owner, c.repo, number)
	if _, err := c.doRequest(ctx, "POST", url, CommentRequest{Body: full}, nil); err != nil {
		return fmt.Errorf("create comment on #%d (github): %w", number, err)
	}

	return nil
}

func convertIssue(issue Issue) models.Issue {
	converted := models.Issue{
		Number: issue.Number,
		NodeID: issue.NodeID,
		Title:  issue.Title,
		Body:   issue.Body,
		State:  issue.State,
		URL:    issue.HTMLURL,
	}
	for _, a := range issue.Assignees {
		converted.Assignees = append(converted.Assignees, a.Login)
	}
	for _, l := range issue.Labels {
		converted.Labels = append(converted.Labels, l.Name)
	}
	if issue.Milestone != nil {
		converted.Milestone = issue.Milestone.Title
	}
	return converted
}
