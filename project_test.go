package treepath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProject_IncludeSubtree(t *testing.T) {
	doc := map[string]any{
		"user":  map[string]any{"name": "ada", "email": "a@x"},
		"other": 1,
	}
	got := Project(doc, []Matcher{MustMatcher("user")}, nil)
	want := map[string]any{
		"user": map[string]any{"name": "ada", "email": "a@x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProject_IncludeLeafDeep(t *testing.T) {
	doc := map[string]any{
		"user": map[string]any{"name": "ada", "email": "a@x"},
	}
	got := Project(doc, []Matcher{MustMatcher("user", "name")}, nil)
	want := map[string]any{
		"user": map[string]any{"name": "ada"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProject_Exclude(t *testing.T) {
	doc := map[string]any{
		"user": map[string]any{"name": "ada", "password": "pw"},
	}
	got := Project(doc, nil, []Matcher{MustMatcher("user", "password")})
	want := map[string]any{
		"user": map[string]any{"name": "ada"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProject_ExcludeBeatsInclude(t *testing.T) {
	doc := map[string]any{
		"user": map[string]any{"name": "ada", "password": "pw"},
	}
	got := Project(doc,
		[]Matcher{MustMatcher("user")},
		[]Matcher{MustMatcher("user", "password")})
	want := map[string]any{
		"user": map[string]any{"name": "ada"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProject_WildcardOverArrays(t *testing.T) {
	doc := map[string]any{
		"items": []any{
			map[string]any{"id": 1, "secret": "x"},
			map[string]any{"id": 2, "secret": "y"},
		},
	}
	got := Project(doc, []Matcher{MustMatcher("items", AnyIndex, "id")}, nil)
	want := map[string]any{
		"items": []any{
			map[string]any{"id": 1},
			map[string]any{"id": 2},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// Selecting a non-contiguous subset of an array re-packs the survivors to
// contiguous indexes, as signalled by AllowsGaps.
func TestProject_UnionRepacksArray(t *testing.T) {
	doc := map[string]any{"a": []any{"x", "y", "z"}}
	m := MustMatcher("a", Union(0, 2))
	if !m.AllowsGaps() {
		t.Fatal("expected AllowsGaps")
	}
	got := Project(doc, []Matcher{m}, nil)
	want := map[string]any{"a": []any{"x", "z"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProject_NoAliasing(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": 1}}
	got := Project(doc, nil, nil).(map[string]any)
	MustPath("a", "b").Set(doc, 99)
	if v, _ := MustPath("a", "b").Get(got); v != 1 {
		t.Errorf("projection aliases the input: %v", v)
	}
}

func TestProject_EmptyResult(t *testing.T) {
	doc := map[string]any{"a": 1}
	got := Project(doc, []Matcher{MustMatcher("nope", "deeper")}, nil)
	if diff := cmp.Diff(map[string]any{}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
