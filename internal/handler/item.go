package handler

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"github.com/Prashu2024/form-builder-backend/internal/models"
)

// listItem renders a submission flattened: id and createdAt first, then the
// payload keys in form order, then any other payload keys sorted. The
// reserved keys always carry the record's own values.
type listItem struct {
	sub   *models.Submission
	order []string
}

func formatCreatedAt(sub *models.Submission) string {
	return sub.CreatedAt.UTC().Format(time.RFC3339Nano)
}

func (it listItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, "id", it.sub.ID, true); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "createdAt", formatCreatedAt(it.sub), false); err != nil {
		return nil, err
	}

	seen := map[string]bool{"id": true, "createdAt": true}
	for _, k := range it.order {
		v, ok := it.sub.Data[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		if err := writeMember(&buf, k, v, false); err != nil {
			return nil, err
		}
	}

	var rest []string
	for k := range it.sub.Data {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		if err := writeMember(&buf, k, it.sub.Data[k], false); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, v any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}
