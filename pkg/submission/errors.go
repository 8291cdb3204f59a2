package submission

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotPublished is returned when a draft form receives a submission.
	ErrNotPublished = errors.New("submission: form is not published")
	// ErrInvalid is matched by every *Error via errors.Is.
	ErrInvalid = errors.New("submission: invalid payload")
)

// Error lists validation messages keyed by field id.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	ids := e.FieldIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, strings.Join(e.Fields[id], ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrInvalid.Error(), strings.Join(parts, "; "))
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// FieldIDs returns the ids with messages in sorted order.
func (e *Error) FieldIDs() []string {
	if e == nil {
		return nil
	}
	ids := make([]string, 0, len(e.Fields))
	for id := range e.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Error) add(id string, messages ...string) {
	if len(messages) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	for _, message := range messages {
		if !containsString(e.Fields[id], message) {
			e.Fields[id] = append(e.Fields[id], message)
		}
	}
}

func (e *Error) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
