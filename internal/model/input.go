package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNoValidFields = errors.New("no valid fields")
	ErrInvalidBody   = errors.New("request body must be a JSON object")
)

// CreateTaskInput is the body accepted when creating a task.
type CreateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      json.RawMessage `json:"status" swaggertype:"string"`
}

// Validate checks the title first and the status second and returns the
// task to insert.
func (in CreateTaskInput) Validate() (*Task, error) {
	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	status, err := createStatus(in.Status)
	if err != nil {
		return nil, err
	}

	return &Task{
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      status,
	}, nil
}

// createStatus falls back to pending for an absent or falsy value (null,
// false, 0, "", [] or {}); anything else must be a known status string.
func createStatus(raw json.RawMessage) (TaskStatus, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return StatusPending, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", ErrInvalidStatus
	}

	switch val := v.(type) {
	case nil:
		return StatusPending, nil
	case bool:
		if !val {
			return StatusPending, nil
		}
	case float64:
		if val == 0 {
			return StatusPending, nil
		}
	case []any:
		if len(val) == 0 {
			return StatusPending, nil
		}
	case map[string]any:
		if len(val) == 0 {
			return StatusPending, nil
		}
	case string:
		if val == "" {
			return StatusPending, nil
		}
		if status := TaskStatus(val); status.Valid() {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// TaskUpdate holds the recognized fields of a partial update. A nil pointer
// means the field was not supplied; a Set flag with a nil value means the
// caller sent an explicit null.
type TaskUpdate struct {
	Title       *string
	Description NullableString
	DueDate     NullableString
	Status      *TaskStatus
}

type NullableString struct {
	Set   bool
	Value *string
}

// Empty reports whether no recognized field was supplied.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && !u.Description.Set && !u.DueDate.Set && u.Status == nil
}

// ParseTaskUpdate decodes a JSON object into a TaskUpdate. Keys other than
// title, description, due_date and status are ignored.
func ParseTaskUpdate(body []byte) (*TaskUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}

	update := &TaskUpdate{}

	if v, ok := raw["status"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil || !TaskStatus(*s).Valid() {
			return nil, ErrInvalidStatus
		}
		status := TaskStatus(*s)
		update.Status = &status
	}

	if v, ok := raw["title"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil {
			return nil, ErrTitleRequired
		}
		title := strings.TrimSpace(*s)
		if title == "" {
			return nil, ErrTitleRequired
		}
		update.Title = &title
	}

	optional := []struct {
		key string
		dst *NullableString
	}{
		{"description", &update.Description},
		{"due_date", &update.DueDate},
	}
	for _, f := range optional {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, &FieldTypeError{Field: f.key}
		}
		*f.dst = NullableString{Set: true, Value: s}
	}

	if update.Empty() {
		return nil, ErrNoValidFields
	}
	return update, nil
}

// DecodeCreateTaskInput decodes the create body. Wrongly typed fields are
// reported as FieldTypeError.
func DecodeCreateTaskInput(body []byte) (*CreateTaskInput, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrInvalidBody
	}
	var in CreateTaskInput
	if err := json.Unmarshal(body, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			switch typeErr.Field {
			case "":
			case "title":
				return nil, ErrTitleRequired
			default:
				return nil, &FieldTypeError{Field: typeErr.Field}
			}
		}
		return nil, ErrInvalidBody
	}
	return &in, nil
}

// FieldTypeError reports a recognized field carrying a non-string value.
type FieldTypeError struct {
	Field string
}

func (e *FieldTypeError) Error() string {
	return e.Field + " must be a string or null"
}
