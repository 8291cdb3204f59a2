package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	fields := append([]render.HiddenField{
		render.CSRFToken("_csrf", "token123"),
		render.Hidden("  ", "skip"),
		render.Hidden("attempt", 4),
	}, render.FormIdentity("form-1", "")...)
	merged := render.MergeHiddenFields(base, fields...)

	wantMerged := map[string]string{
		"existing": "keep",
		"_csrf":    "token123",
		"attempt":  "4",
		"formId":   "form-1",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "attempt", Value: "4"},
		{Name: "existing", Value: "keep"},
		{Name: "formId", Value: "form-1"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}

	if got := render.SortedHiddenFields(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
