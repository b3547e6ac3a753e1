// Package taskstore reads and writes the Markdown task backlog: one file
// per record, a YAML front matter header with the typed fields, free text
// below the fences.
package taskstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TWRT/board-sync/internal/models"
)

const (
	recordExtension = ".md"
	headerFence     = "---"
)

type Store struct {
	activeDir  string
	archiveDir string
}

func NewStore(activeDir, archiveDir string) *Store {
	return &Store{
		activeDir:  activeDir,
		archiveDir: archiveDir,
	}
}

// ListRecords parses every task file in the active and archive directories.
// Files without a front matter header are not task records and are skipped.
func (s *Store) ListRecords() ([]*models.TaskRecord, error) {
	active, err := s.listDir(s.activeDir, false)
	if err != nil {
		return nil, err
	}

	archived, err := s.listDir(s.archiveDir, true)
	if err != nil {
		return nil, err
	}

	return append(active, archived...), nil
}

func (s *Store) listDir(dir string, archived bool) ([]*models.TaskRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var records []*models.TaskRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExtension) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rec, ok, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rec.Archived = archived
		records = append(records, rec)
	}

	return records, nil
}

// ParseFile reads one task file. ok is false when the file carries no
// front matter header.
func ParseFile(path string) (*models.TaskRecord, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read task file %s: %w", path, err)
	}

	header, body, ok := splitFrontMatter(string(data))
	if !ok {
		return nil, false, nil
	}

	rec := &models.TaskRecord{}
	if err := yaml.Unmarshal([]byte(header), rec); err != nil {
		return nil, false, fmt.Errorf("parse header of %s: %w", path, err)
	}

	rec.Path = path
	rec.Body = body
	return rec, true, nil
}

func splitFrontMatter(content string) (header, body string, ok bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != headerFence {
		return "", "", false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == headerFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}

	return "", "", false
}

// Upsert merges updates onto the record's header and rewrites the file.
// Keys absent from the update keep their current values; the free text
// below the header is always preserved.
func (s *Store) Upsert(rec *models.TaskRecord, updates map[string]any) error {
	applyUpdates(rec, updates)

	data, err := renderFile(rec)
	if err != nil {
		return err
	}
	return writeFileAtomic(rec.Path, data)
}

func applyUpdates(rec *models.TaskRecord, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case models.KeyIdentifier:
			rec.Identifier = toInt(value)
		case models.KeyTitle:
			rec.Title = toString(value)
		case models.KeyDescription:
			// A non-empty local description is never overwritten.
			if rec.Description == "" {
				rec.Description = toString(value)
			}
		case models.KeyStatus:
			rec.Status = toString(value)
		case models.KeyPriority:
			rec.Priority = toString(value)
		case models.KeySize:
			rec.Size = toString(value)
		case models.KeyEstimate:
			rec.Estimate = toFloat(value)
		case models.KeyDevHours:
			rec.DevHours = toFloat(value)
		case models.KeyQAHours:
			rec.QAHours = toFloat(value)
		case models.KeyPlannedStart:
			rec.PlannedStart = toString(value)
		case models.KeyPlannedEnd:
			rec.PlannedEnd = toString(value)
		case models.KeyActualStart:
			rec.ActualStart = toString(value)
		case models.KeyActualEnd:
			rec.ActualEnd = toString(value)
		case models.KeyAssignees:
			rec.Assignees = toStringSlice(value)
		case models.KeyLabels:
			rec.Labels = toStringSlice(value)
		case models.KeyMilestone:
			rec.Milestone = toString(value)
		case models.KeyComments:
			rec.Comments = toString(value)
		case models.KeyRelationships:
			rec.Relationships = toStringSlice(value)
		default:
			if rec.Extra == nil {
				rec.Extra = map[string]any{}
			}
			rec.Extra[key] = value
		}
	}
}

// Relocate moves the file between the active and archive directories,
// keeping its filename. It must run before any content rewrite so later
// writes address the new path.
func (s *Store) Relocate(rec *models.TaskRecord, toArchived bool) error {
	if rec.Archived == toArchived {
		return nil
	}

	destDir := s.activeDir
	if toArchived {
		destDir = s.archiveDir
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, filepath.Base(rec.Path))
	if err := os.Rename(rec.Path, dest); err != nil {
		return fmt.Errorf("move %s to %s: %w", rec.Path, dest, err)
	}

	rec.Path = dest
	rec.Archived = toArchived
	return nil
}

func (s *Store) Remove(rec *models.TaskRecord) error {
	if err := os.Remove(rec.Path); err != nil {
		return fmt.Errorf("remove %s: %w", rec.Path, err)
	}
	return nil
}

// Create synthesizes an empty record for an identifier first seen on the
// board, in the directory matching its archived flag.
func (s *Store) Create(identifier int, title string, archived bool) (*models.TaskRecord, error) {
	dir := s.activeDir
	if archived {
		dir = s.archiveDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}

	rec := &models.TaskRecord{
		Identifier: identifier,
		Title:      title,
		Path:       filepath.Join(dir, RecordFilename(identifier, title)),
		Archived:   archived,
	}

	data, err := renderFile(rec)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(rec.Path, data); err != nil {
		return nil, err
	}

	return rec, nil
}

func renderFile(rec *models.TaskRecord) ([]byte, error) {
	header, err := yaml.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal header of %s: %w", rec.Path, err)
	}

	var buf bytes.Buffer
	buf.WriteString(headerFence + "\n")
	buf.Write(header)
	buf.WriteString(headerFence + "\n")
	buf.WriteString(rec.Body)
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, toString(item))
		}
		return out
	default:
		return nil
	}
}
