package formbuilder_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

func sampleForm() formbuilder.Form {
	return formbuilder.Form{
		ID:          "form-1",
		Title:       "Feedback",
		ThemeColor:  "#3b82f6",
		IsPublished: true,
		Rows:        []model.Row{{ID: "r1", Order: 0, Columns: 2}},
		Fields: []model.Field{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Required: true, RowID: model.StringPtr("r1"), Width: 1},
			{ID: "mood", Type: model.FieldTypeRadio, Label: "Mood", Options: []string{"Good", "Bad"}, RowID: model.StringPtr("r1"), ColumnIndex: 1, Width: 1},
		},
	}
}

func TestExportImportCheck(t *testing.T) {
	data, err := formbuilder.Export(sampleForm())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	report := formbuilder.Check(data)
	if !report.IsValid || !report.CanImport {
		t.Fatalf("unexpected report %+v", report)
	}

	opts := transfer.DefaultImportOptions()
	opts.ReplaceIDs = false
	form, err := formbuilder.Import(data, opts)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if diff := cmp.Diff(sampleForm().Fields, form.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if form.ID != "" || form.IsPublished {
		t.Fatalf("import should produce an unsaved draft, got %+v", form)
	}
}

func TestImport_RejectsGarbage(t *testing.T) {
	if _, err := formbuilder.Import([]byte("{"), formbuilder.ImportOptions{}); !errors.Is(err, transfer.ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestRender(t *testing.T) {
	out, err := formbuilder.Render(context.Background(), sampleForm(), "public", formbuilder.RenderOptions{Action: "/submit"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `action="/submit"`) || !strings.Contains(string(out), `data-field-id="mood"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := formbuilder.Render(context.Background(), sampleForm(), "pdf", formbuilder.RenderOptions{}); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestRender_WithThemeProvider(t *testing.T) {
	themes, err := formbuilder.BuiltinThemes()
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	out, err := formbuilder.Render(context.Background(), sampleForm(), "preview", formbuilder.RenderOptions{},
		formbuilder.WithThemeProvider(themes, render.BuiltinTheme, render.VariantDark))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `data-theme-variant="dark"`) || !strings.Contains(string(out), "--text: #f9fafb;") {
		t.Fatalf("expected dark theme in output:\n%s", out)
	}
}

func TestEmbeddedBundles(t *testing.T) {
	if _, err := fs.ReadFile(formbuilder.AssetsFS(), "formbuilder.css"); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	if _, err := fs.ReadFile(formbuilder.EmbeddedTemplates(), "templates/public.tmpl"); err != nil {
		t.Fatalf("public template: %v", err)
	}
}
