package models

import "time"

// Markers identifying automation-owned comment slots. A comment whose body
// starts with one of these belongs to the tool, not to a user.
const (
	MarkerRelationships = "### Relationships"
	MarkerNotes         = "### Automated Notes"
)

type Issue struct {
	Number    int
	NodeID    string
	Title     string
	Body      string
	State     string
	URL       string
	Assignees []string
	Labels    []string
	Milestone string
}

type IssueComment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
}
