package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Prashu2024/form-builder-backend/internal/models"
)

// timeLayout is fixed width so stored timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t.UTC(), nil
}

// timestamp scans a created_at column whether the driver hands back a
// time.Time (postgres) or text (sqlite).
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		parsed, err := parseTime(v)
		t.Time = parsed
		return err
	case []byte:
		parsed, err := parseTime(string(v))
		t.Time = parsed
		return err
	}
	return fmt.Errorf("unsupported created_at type %T", src)
}

func decodeData(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode submission data: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// submissionToDoc maps a submission onto the persisted record shape
// {id, data, created_at}.
func submissionToDoc(s *models.Submission) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"data":       s.Data,
		"created_at": formatTime(s.CreatedAt),
	}
}

func docToSubmission(doc map[string]any) (*models.Submission, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("submission doc %v has no id", doc["_id"])
	}
	created, _ := doc["created_at"].(string)
	ts, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	data, _ := doc["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return &models.Submission{ID: id, Data: data, CreatedAt: ts}, nil
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
