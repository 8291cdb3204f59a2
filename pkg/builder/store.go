package builder

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SaveRequest is the body the persistence API accepts on create and update.
type SaveRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      []model.Field `json:"fields"`
	Rows        []model.Row   `json:"rows"`
	ThemeColor  string        `json:"themeColor"`
	IsPublished bool          `json:"isPublished"`
}

// Store persists forms. Implementations return the stored form including
// server-assigned id, shareId and timestamps. Concurrent updates of the same
// form are last-write-wins; the session performs no conflict detection.
type Store interface {
	Create(ctx context.Context, req SaveRequest) (model.Form, error)
	Update(ctx context.Context, id string, req SaveRequest) (model.Form, error)
}

// StoreFuncs adapts plain functions to Store.
type StoreFuncs struct {
	CreateFunc func(ctx context.Context, req SaveRequest) (model.Form, error)
	UpdateFunc func(ctx context.Context, id string, req SaveRequest) (model.Form, error)
}

func (s StoreFuncs) Create(ctx context.Context, req SaveRequest) (model.Form, error) {
	if s.CreateFunc == nil {
		return model.Form{}, ErrNoStore
	}
	return s.CreateFunc(ctx, req)
}

func (s StoreFuncs) Update(ctx context.Context, id string, req SaveRequest) (model.Form, error) {
	if s.UpdateFunc == nil {
		return model.Form{}, ErrNoStore
	}
	return s.UpdateFunc(ctx, id, req)
}

func requestFor(form model.Form, publish bool) SaveRequest {
	fields := model.CloneFields(form.Fields)
	if fields == nil {
		fields = []model.Field{}
	}
	rows := model.CloneRows(form.Rows)
	if rows == nil {
		rows = []model.Row{}
	}
	return SaveRequest{
		Title:       form.Title,
		Description: form.Description,
		Fields:      fields,
		Rows:        rows,
		ThemeColor:  model.NormalizeThemeColor(form.ThemeColor),
		IsPublished: publish,
	}
}
