package models

// Field data types as reported by the board schema. Anything outside this
// set (iterations, milestones, linked repositories) is read-only for us.
const (
	DataTypeText         = "TEXT"
	DataTypeNumber       = "NUMBER"
	DataTypeDate         = "DATE"
	DataTypeSingleSelect = "SINGLE_SELECT"
)

type FieldSchema struct {
	ID       string
	Name     string
	DataType string
	Options  []FieldOption
}

type FieldOption struct {
	ID   string
	Name string
}

type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldDate   FieldKind = "date"
	FieldSelect FieldKind = "select"
)

// FieldValue is the resolved value of one board field on one item. Exactly
// one of the payload fields is meaningful, selected by Kind.
type FieldValue struct {
	Kind   FieldKind
	Text   string
	Number float64
	Date   string
	Option string
}

type BoardItem struct {
	ItemID   string
	Archived bool
	// Issue is nil when the item is a draft or a pull request; callers
	// skip those.
	Issue  *IssueContent
	Fields map[string]FieldValue
}

type IssueContent struct {
	Number int
	Title  string
	Body   string
}
