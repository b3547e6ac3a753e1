package service

import (
	"strconv"
	"strings"

	"github.com/TWRT/board-sync/internal/models"
)

type fieldBinding struct {
	key   string // header key in the task file
	field string // field name on the board
}

// fieldBindings is the fixed set of board fields kept in sync with the
// task header. The status field name differs per board, so it is passed in.
func fieldBindings(statusField string) []fieldBinding {
	return []fieldBinding{
		{models.KeyStatus, statusField},
		{models.KeyPriority, "Priority"},
		{models.KeySize, "Size"},
		{models.KeyEstimate, "Estimate"},
		{models.KeyDevHours, "Dev Hours"},
		{models.KeyQAHours, "QA Hours"},
		{models.KeyPlannedStart, "Planned Start"},
		{models.KeyPlannedEnd, "Planned End"},
		{models.KeyActualStart, "Actual Start"},
		{models.KeyActualEnd, "Actual End"},
	}
}

// recordFieldValue renders the record's value for a header key as the raw
// string pushed to the board. Empty means unset.
func recordFieldValue(rec *models.TaskRecord, key string) string {
	switch key {
	case models.KeyStatus:
		return rec.Status
	case models.KeyPriority:
		return rec.Priority
	case models.KeySize:
		return rec.Size
	case models.KeyEstimate:
		return formatHours(rec.Estimate)
	case models.KeyDevHours:
		return formatHours(rec.DevHours)
	case models.KeyQAHours:
		return formatHours(rec.QAHours)
	case models.KeyPlannedStart:
		return rec.PlannedStart
	case models.KeyPlannedEnd:
		return rec.PlannedEnd
	case models.KeyActualStart:
		return rec.ActualStart
	case models.KeyActualEnd:
		return rec.ActualEnd
	}
	return ""
}

func formatHours(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fieldValueToHeader converts a board field value into the header
// representation for a key. ok is false when the value's type cannot
// serve the key, in which case the header keeps its current value.
func fieldValueToHeader(key string, value models.FieldValue) (any, bool) {
	switch key {
	case models.KeyEstimate, models.KeyDevHours, models.KeyQAHours:
		if value.Kind != models.FieldNumber {
			return nil, false
		}
		return value.Number, true
	}

	switch value.Kind {
	case models.FieldNumber:
		return value.Number, true
	case models.FieldDate:
		return value.Date, true
	case models.FieldSelect:
		return value.Option, true
	default:
		return value.Text, true
	}
}

// schemaField finds a board field by name, ignoring case the same way
// option matching does.
func schemaField(schema []models.FieldSchema, name string) (models.FieldSchema, bool) {
	for _, field := range schema {
		if strings.EqualFold(field.Name, name) {
			return field, true
		}
	}
	return models.FieldSchema{}, false
}

// lookupField finds a field value by name, ignoring case the same way
// option matching does.
func lookupField(fields map[string]models.FieldValue, name string) (models.FieldValue, bool) {
	if value, ok := fields[name]; ok {
		return value, true
	}
	for fieldName, value := range fields {
		if strings.EqualFold(fieldName, name) {
			return value, true
		}
	}
	return models.FieldValue{}, false
}
