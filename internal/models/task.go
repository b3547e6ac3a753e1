package models

// Front matter keys recognized in a task file header.
const (
	KeyIdentifier    = "identifier"
	KeyTitle         = "title"
	KeyDescription   = "description"
	KeyStatus        = "status"
	KeyPriority      = "priority"
	KeySize          = "size"
	KeyEstimate      = "estimate"
	KeyDevHours      = "dev_hours"
	KeyQAHours       = "qa_hours"
	KeyPlannedStart  = "planned_start"
	KeyPlannedEnd    = "planned_end"
	KeyActualStart   = "actual_start"
	KeyActualEnd     = "actual_end"
	KeyAssignees     = "assignees"
	KeyLabels        = "labels"
	KeyMilestone     = "milestone"
	KeyComments      = "comments"
	KeyRelationships = "relationships"
)

type TaskRecord struct {
	Identifier    int      `yaml:"identifier,omitempty"`
	Title         string   `yaml:"title,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Status        string   `yaml:"status,omitempty"`
	Priority      string   `yaml:"priority,omitempty"`
	Size          string   `yaml:"size,omitempty"`
	Estimate      float64  `yaml:"estimate,omitempty"`
	DevHours      float64  `yaml:"dev_hours,omitempty"`
	QAHours       float64  `yaml:"qa_hours,omitempty"`
	PlannedStart  string   `yaml:"planned_start,omitempty"`
	PlannedEnd    string   `yaml:"planned_end,omitempty"`
	ActualStart   string   `yaml:"actual_start,omitempty"`
	ActualEnd     string   `yaml:"actual_end,omitempty"`
	Assignees     []string `yaml:"assignees,omitempty"`
	Labels        []string `yaml:"labels,omitempty"`
	Milestone     string   `yaml:"milestone,omitempty"`
	Comments      string   `yaml:"comments,omitempty"`
	Relationships []string `yaml:"relationships,omitempty"`

	// Header keys the tool does not recognize; preserved on rewrite.
	Extra map[string]any `yaml:",inline"`

	Path     string `yaml:"-"`
	Archived bool   `yaml:"-"`
	Body     string `yaml:"-"`
}

// HasIdentifier reports whether the record is already bound to an issue.
func (t *TaskRecord) HasIdentifier() bool {
	return t.Identifier > 0
}
