package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sequentialFactory(prefix string) *model.Factory {
	n := 0
	return model.NewFactory(model.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}))
}

// sampleForm has two rows, one of them two columns wide, and three fields.
func sampleForm(t *testing.T) model.Form {
	t.Helper()
	factory := sequentialFactory("src")
	form := factory.NewForm("Contact Us")
	form.Description = "Reach the team"
	form.ThemeColor = "#10b981"
	second := factory.NewRow(1, 2)
	form.Rows = append(form.Rows, second)

	name := factory.NewField(model.FieldTypeText, form.Rows[0].ID, 0, 1)
	name.Label = "Name"
	name.Required = true
	topic := factory.NewField(model.FieldTypeSelect, second.ID, 0, 1)
	email := factory.NewField(model.FieldTypeEmail, second.ID, 1, 1)
	email.Placeholder = "you@example.com"
	form.Fields = []model.Field{name, topic, email}
	return form
}

func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	s, err := NewSerializer(WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("new serializer: %v", err)
	}
	return s
}

func newTestDeserializer(t *testing.T) *Deserializer {
	t.Helper()
	d, err := NewDeserializer(WithFactory(sequentialFactory("new")))
	if err != nil {
		t.Fatalf("new deserializer: %v", err)
	}
	return d
}

func TestClassify(t *testing.T) {
	text := model.Field{Type: model.FieldTypeText}
	date := model.Field{Type: model.FieldTypeDate}
	single := model.Row{Columns: 1}
	double := model.Row{Columns: 2}

	repeat := func(f model.Field, n int) []model.Field {
		out := make([]model.Field, n)
		for i := range out {
			out[i] = f
		}
		return out
	}

	tests := []struct {
		name   string
		fields []model.Field
		rows   []model.Row
		want   Complexity
	}{
		{"empty", nil, nil, ComplexitySimple},
		{"three plain fields", repeat(text, 3), []model.Row{single, double}, ComplexitySimple},
		{"advanced field single column", []model.Field{text, date}, []model.Row{single}, ComplexityModerate},
		{"plain fields multi column", repeat(text, 6), []model.Row{single, double, double}, ComplexityModerate},
		{"advanced and multi column", []model.Field{text, date}, []model.Row{double}, ComplexityComplex},
		{"eleven fields", repeat(text, 11), []model.Row{single}, ComplexityComplex},
		{"six rows", repeat(text, 2), []model.Row{single, single, single, single, single, single}, ComplexityComplex},
		{"three rows", repeat(text, 2), []model.Row{single, single, single}, ComplexityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fields, tt.rows); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeForm_Envelope(t *testing.T) {
	form := sampleForm(t)
	env, err := newTestSerializer(t).SerializeForm(form)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if env.Version != CurrentVersion {
		t.Fatalf("version = %q", env.Version)
	}
	if env.ExportedAt != "2024-05-01T10:00:00.000Z" {
		t.Fatalf("exportedAt = %q", env.ExportedAt)
	}
	want := Metadata{FieldCount: 3, RowCount: 2, Complexity: ComplexitySimple}
	if diff := cmp.Diff(want, env.FormData.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(form.Fields, env.FormData.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalForm_WireNames(t *testing.T) {
	raw, err := newTestSerializer(t).MarshalForm(sampleForm(t))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	formData := doc["formData"].(map[string]any)
	for _, key := range []string{"title", "description", "fields", "rows", "themeColor", "metadata"} {
		if _, ok := formData[key]; !ok {
			t.Fatalf("formData missing %q: %s", key, raw)
		}
	}
	field := formData["fields"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "type", "label", "required", "rowId", "columnIndex", "width"} {
		if _, ok := field[key]; !ok {
			t.Fatalf("field missing %q: %v", key, field)
		}
	}
	if _, ok := field["options"]; ok {
		t.Fatalf("text field should not carry options: %v", field)
	}
}

func TestSerializeForm_EmptyCollections(t *testing.T) {
	raw, err := newTestSerializer(t).MarshalForm(model.Form{Title: "Blank"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"fields": []`) || !strings.Contains(string(raw), `"rows": []`) {
		t.Fatalf("expected empty arrays, got %s", raw)
	}
	if !strings.Contains(string(raw), model.DefaultThemeColor) {
		t.Fatalf("expected default theme colour, got %s", raw)
	}
}

func TestSerializeForm_RejectsInvalidField(t *testing.T) {
	form := sampleForm(t)
	form.Fields[0].Width = 7

	_, err := newTestSerializer(t).SerializeForm(form)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestRoundTrip_WithoutIDReplacement(t *testing.T) {
	form := sampleForm(t)
	raw, err := newTestSerializer(t).MarshalForm(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	opts := DefaultImportOptions()
	opts.ReplaceIDs = false
	imported, err := newTestDeserializer(t).DeserializeForm(raw, opts)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	got := imported.Form()
	want := model.Form{
		Title:       form.Title,
		Description: form.Description,
		ThemeColor:  form.ThemeColor,
		Fields:      form.Fields,
		Rows:        form.Rows,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if imported.Version != CurrentVersion {
		t.Fatalf("version = %q", imported.Version)
	}
}

func TestDeserialize_ReplaceIDsRelinksRows(t *testing.T) {
	form := sampleForm(t)
	raw, err := newTestSerializer(t).MarshalForm(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	imported, err := newTestDeserializer(t).DeserializeForm(raw, DefaultImportOptions())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if len(imported.RowIDs) != len(form.Rows) {
		t.Fatalf("row map size = %d, want %d", len(imported.RowIDs), len(form.Rows))
	}
	seen := map[string]bool{}
	for oldID, newID := range imported.RowIDs {
		if oldID == newID {
			t.Fatalf("row %q kept its id", oldID)
		}
		if seen[newID] {
			t.Fatalf("row id %q assigned twice", newID)
		}
		seen[newID] = true
	}

	for i, field := range imported.Fields {
		original := form.Fields[i]
		if field.ID == original.ID {
			t.Fatalf("field %q kept its id", field.ID)
		}
		if field.RowRef() != imported.RowIDs[original.RowRef()] {
			t.Fatalf("field %d rowId = %q, want %q", i, field.RowRef(), imported.RowIDs[original.RowRef()])
		}
		if field.ColumnIndex != original.ColumnIndex || field.Label != original.Label {
			t.Fatalf("field %d content changed: %+v vs %+v", i, field, original)
		}
	}
	if len(imported.Detached) != 0 {
		t.Fatalf("unexpected detached fields: %v", imported.Detached)
	}
}

func TestDeserialize_UnknownRowDetachesField(t *testing.T) {
	input := `{
	  "title": "Orphans",
	  "themeColor": "#000000",
	  "rows": [{"id": "r1", "order": 0, "columns": 1}],
	  "fields": [
	    {"id": "a", "type": "text", "label": "A", "required": false, "rowId": "r1", "columnIndex": 0, "width": 1},
	    {"id": "b", "type": "text", "label": "B", "required": false, "rowId": "gone", "columnIndex": 0, "width": 1}
	  ]
	}`

	imported, err := newTestDeserializer(t).DeserializeForm([]byte(input), DefaultImportOptions())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if imported.Version != "" {
		t.Fatalf("bare form data should have no version, got %q", imported.Version)
	}
	if got := imported.Fields[0].RowRef(); got != imported.RowIDs["r1"] {
		t.Fatalf("field a rowId = %q", got)
	}
	if imported.Fields[1].RowID != nil {
		t.Fatalf("field b should be unattached, got %q", imported.Fields[1].RowRef())
	}
	if diff := cmp.Diff([]string{imported.FieldIDs["b"]}, imported.Detached); diff != "" {
		t.Fatalf("detached mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserialize_DefensiveDefaults(t *testing.T) {
	input := `{"formData": {
	  "title": "Sparse",
	  "rows": [{"id": "r1"}, {"columns": 3}],
	  "fields": [
	    {"type": "radio", "rowId": "r1", "columnIndex": 2},
	    {"id": "x", "type": "number", "options": ["nope"]}
	  ]
	}}`

	opts := DefaultImportOptions()
	opts.ReplaceIDs = false
	imported, err := newTestDeserializer(t).DeserializeForm([]byte(input), opts)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	wantRows := []model.Row{
		{ID: "r1", Order: 0, Columns: 1},
		{ID: "new-1", Order: 1, Columns: 3},
	}
	if diff := cmp.Diff(wantRows, imported.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	wantFields := []model.Field{
		{
			ID:          "new-2",
			Type:        model.FieldTypeRadio,
			Options:     model.DefaultOptions(),
			RowID:       model.StringPtr("r1"),
			ColumnIndex: 0,
			Width:       1,
		},
		{ID: "x", Type: model.FieldTypeNumber, Width: 1},
	}
	if diff := cmp.Diff(wantFields, imported.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if imported.ThemeColor != model.DefaultThemeColor {
		t.Fatalf("theme colour = %q", imported.ThemeColor)
	}
}

func TestDeserialize_PreserveTheme(t *testing.T) {
	raw, err := newTestSerializer(t).MarshalForm(sampleForm(t))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	opts := DefaultImportOptions()
	kept, err := newTestDeserializer(t).DeserializeForm(raw, opts)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if kept.ThemeColor != "#10b981" {
		t.Fatalf("expected preserved colour, got %q", kept.ThemeColor)
	}

	opts.PreserveTheme = false
	reset, err := newTestDeserializer(t).DeserializeForm(raw, opts)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if reset.ThemeColor != model.DefaultThemeColor {
		t.Fatalf("expected default colour, got %q", reset.ThemeColor)
	}
}

func TestRoundTrip_KeepsTextAsWritten(t *testing.T) {
	form := sampleForm(t)
	form.Title = "Q&A <Beta> survey"
	form.Description = "Use <b>bold</b> answers & Tom &amp; Jerry"
	form.Fields[0].Label = "Name <required>"
	form.Fields[2].Placeholder = "a<b"
	form.Fields[1].Options = []string{"<i>A</i>", "B & C", "&lt;D&gt;"}

	raw, err := newTestSerializer(t).MarshalForm(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	opts := DefaultImportOptions()
	opts.ReplaceIDs = false
	imported, err := newTestDeserializer(t).DeserializeForm(raw, opts)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	want := model.Form{
		Title:       form.Title,
		Description: form.Description,
		ThemeColor:  form.ThemeColor,
		Fields:      form.Fields,
		Rows:        form.Rows,
	}
	if diff := cmp.Diff(want, imported.Form()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserialize_ThemeColorPassesThrough(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  string
	}{
		{"hex", `"#123456"`, "#123456"},
		{"named colour", `"rebeccapurple"`, "rebeccapurple"},
		{"css function", `"rgb(1, 2, 3)"`, "rgb(1, 2, 3)"},
		{"empty", `""`, model.DefaultThemeColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"title": "T", "rows": [], "fields": [], "themeColor": ` + tt.color + `}`
			imported, err := newTestDeserializer(t).DeserializeForm([]byte(input), DefaultImportOptions())
			if err != nil {
				t.Fatalf("deserialize: %v", err)
			}
			if imported.ThemeColor != tt.want {
				t.Fatalf("theme colour = %q, want %q", imported.ThemeColor, tt.want)
			}
		})
	}
}

func TestDeserialize_WithSanitizerStripsMarkup(t *testing.T) {
	input := `{
	  "title": "<b>Survey</b> & more",
	  "rows": [],
	  "fields": [{"type": "select", "label": "<script>alert(1)</script>Pick", "options": ["<i>A</i>", "B < C"]}]
	}`

	d, err := NewDeserializer(WithFactory(sequentialFactory("new")), WithSanitizer(StripMarkup))
	if err != nil {
		t.Fatalf("new deserializer: %v", err)
	}
	imported, err := d.DeserializeForm([]byte(input), DefaultImportOptions())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if imported.Title != "Survey & more" {
		t.Fatalf("title = %q", imported.Title)
	}
	if imported.Fields[0].Label != "Pick" {
		t.Fatalf("label = %q", imported.Fields[0].Label)
	}
	if diff := cmp.Diff([]string{"A", "B < C"}, imported.Fields[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Contact Us", "contact-us.json"},
		{"  Q&A -- Beta!! ", "q-a-beta.json"},
		{"Survey 2024", "survey-2024.json"},
		{"", "form.json"},
		{"***", "form.json"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Fatalf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestAcceptFile(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"form.json", "application/json", true},
		{"form.json", "text/plain", true},
		{"form.json", "application/octet-stream", true},
		{"form.json", "", true},
		{"FORM.JSON", "", true},
		{"upload", "application/json; charset=utf-8", true},
		{"upload", "text/json", true},
		{"upload", "application/vnd.form+json", true},
		{"notes.txt", "text/plain", false},
		{"notes.txt", "", false},
		{"image.png", "image/png", false},
	}
	for _, tt := range tests {
		if got := AcceptFile(tt.name, tt.contentType); got != tt.want {
			t.Fatalf("AcceptFile(%q, %q) = %v, want %v", tt.name, tt.contentType, got, tt.want)
		}
	}
}

func TestReadJSON(t *testing.T) {
	valid := `{"title": "T", "rows": [], "fields": []}`
	tests := []struct {
		name        string
		file        string
		contentType string
		body        string
		err         error
		op          string
	}{
		{name: "json as text/plain", file: "form.json", contentType: "text/plain", body: valid},
		{name: "json as octet-stream", file: "form.json", contentType: "application/octet-stream", body: valid},
		{name: "json mime without extension", file: "blob", contentType: "application/json", body: valid},
		{name: "unsupported", file: "notes.txt", contentType: "text/plain", body: valid, err: ErrUnsupportedFile, op: "read"},
		{name: "invalid json", file: "form.json", body: `{"title":`, err: ErrInvalidJSON, op: "parse"},
		{name: "too large", file: "form.json", body: strings.Repeat(" ", MaxFileSize+1), err: ErrFileTooLarge, op: "read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ReadJSON(tt.file, tt.contentType, strings.NewReader(tt.body))
			if tt.err == nil {
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				if string(raw) != tt.body {
					t.Fatalf("body = %q", raw)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			var fileErr *FileError
			if !errors.As(err, &fileErr) {
				t.Fatalf("expected *FileError, got %T", err)
			}
			if fileErr.Name != tt.file || fileErr.Op != tt.op {
				t.Fatalf("unexpected file error %+v", fileErr)
			}
		})
	}
}

func TestReadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveFormFile(dir, sampleForm(t))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "contact-us.json" {
		t.Fatalf("path = %q", path)
	}
	raw, err := ReadJSONFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := newTestDeserializer(t).DeserializeForm(raw, DefaultImportOptions()); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	_, err = ReadJSONFile(filepath.Join(dir, "missing.json"))
	var fileErr *FileError
	if !errors.As(err, &fileErr) || fileErr.Op != "open" {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestDeserialize_StructuralErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		sentinel  error
		issuePath string
	}{
		{"invalid json", `{"title":`, ErrInvalidJSON, ""},
		{"not an object", `[1, 2]`, ErrStructure, "(root)"},
		{"width out of range", `{"rows": [], "fields": [{"type": "text", "width": 9}]}`, ErrStructure, "fields[0].width"},
		{"unknown type", `{"rows": [], "fields": [{"type": "signature"}]}`, ErrStructure, "fields[0].type"},
		{"missing rows", `{"title": "x", "fields": []}`, ErrStructure, "(root)"},
		{"future version", `{"version": "2.0.0", "formData": {"rows": [], "fields": []}}`, ErrStructure, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestDeserializer(t).DeserializeForm([]byte(tt.input), DefaultImportOptions())
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			var importErr *ImportError
			if !errors.As(err, &importErr) {
				t.Fatalf("expected *ImportError, got %T", err)
			}
			if tt.issuePath == "" {
				return
			}
			for _, issue := range importErr.Issues {
				if strings.HasPrefix(issue, tt.issuePath) {
					return
				}
			}
			t.Fatalf("no issue for %q in %v", tt.issuePath, importErr.Issues)
		})
	}
}

func TestDeserialize_SkipStructureStillValidatesResult(t *testing.T) {
	opts := DefaultImportOptions()
	opts.ValidateStructure = false

	_, err := newTestDeserializer(t).DeserializeForm([]byte(`{"rows": [], "fields": [{"type": "signature"}]}`), opts)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("expected final validation to reject unknown type, got %v", err)
	}

	imported, err := newTestDeserializer(t).DeserializeForm([]byte(`{"rows": [], "fields": [{"type": "text", "width": 9}]}`), opts)
	if err != nil {
		t.Fatalf("expected width to be clamped, got %v", err)
	}
	if imported.Fields[0].Width != model.MaxWidth {
		t.Fatalf("width = %d", imported.Fields[0].Width)
	}
}

func TestValidateFormCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		valid     bool
		canImport bool
		version   string
		issue     string
	}{
		{
			name:      "complete envelope",
			input:     `{"version": "1.0.0", "formData": {"title": "T", "fields": [], "rows": []}}`,
			valid:     true,
			canImport: true,
			version:   "1.0.0",
		},
		{
			name:      "missing title only",
			input:     `{"version": "1.0.0", "formData": {"fields": [], "rows": []}}`,
			canImport: true,
			version:   "1.0.0",
			issue:     IssueMissingTitle,
		},
		{
			name:    "missing rows",
			input:   `{"version": "1.0.0", "formData": {"title": "T", "fields": []}}`,
			version: "1.0.0",
			issue:   IssueRowsNotArray,
		},
		{
			name:    "fields not an array",
			input:   `{"title": "T", "fields": {}, "rows": []}`,
			version: "legacy",
			issue:   IssueFieldsNotArray,
		},
		{
			name:    "invalid json",
			input:   `not json`,
			version: "unknown",
			issue:   "Invalid JSON",
		},
		{
			name:    "bad field",
			input:   `{"title": "T", "fields": [{"type": "text", "width": 0}], "rows": []}`,
			version: "legacy",
			issue:   "fields[0].width",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateFormCompatibility([]byte(tt.input))
			if report.IsValid != tt.valid || report.CanImport != tt.canImport {
				t.Fatalf("report = %+v", report)
			}
			if report.Version != tt.version {
				t.Fatalf("version = %q, want %q", report.Version, tt.version)
			}
			if tt.issue == "" {
				if len(report.Issues) != 0 {
					t.Fatalf("unexpected issues: %v", report.Issues)
				}
				return
			}
			for _, issue := range report.Issues {
				if strings.HasPrefix(issue, tt.issue) {
					return
				}
			}
			t.Fatalf("issue %q not reported: %v", tt.issue, report.Issues)
		})
	}
}

func TestSchemaDocument(t *testing.T) {
	for _, name := range []SchemaName{SchemaExport, SchemaImport, SchemaInput} {
		raw, err := SchemaDocument(name)
		if err != nil {
			t.Fatalf("schema %s: %v", name, err)
		}
		if !json.Valid(raw) {
			t.Fatalf("schema %s is not valid JSON", name)
		}
	}
	if _, err := SchemaDocument("nope"); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
}
