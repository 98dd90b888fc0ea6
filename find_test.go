package treepath

import (
	"reflect"
	"testing"
)

func findAll(m Matcher, root any) (paths []string, values []any) {
	m.Find(root, func(p Path, v any) bool {
		paths = append(paths, p.String())
		values = append(values, v)
		return true
	})
	return paths, values
}

func TestFind_AnyIndex(t *testing.T) {
	doc := map[string]any{
		"array": []any{
			map[string]any{"value": 1},
			map[string]any{"value": 2},
		},
	}
	paths, values := findAll(MustMatcher("array", AnyIndex, "value"), doc)
	wantPaths := []string{"$.array[0].value", "$.array[1].value"}
	if !reflect.DeepEqual(paths, wantPaths) {
		t.Errorf("paths: got %v, want %v", paths, wantPaths)
	}
	if !reflect.DeepEqual(values, []any{1, 2}) {
		t.Errorf("values: got %v", values)
	}
}

func TestFind_AnyProperty(t *testing.T) {
	doc := map[string]any{
		"b": map[string]any{"v": 2},
		"a": map[string]any{"v": 1},
	}
	paths, _ := findAll(MustMatcher(AnyProperty, "v"), doc)
	// Object keys are visited in sorted order.
	want := []string{"$.a.v", "$.b.v"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestFind_Union(t *testing.T) {
	doc := map[string]any{
		"a": 1,
		"b": 2,
		"c": 3,
	}
	paths, _ := findAll(MustMatcher(Union("a", "c")), doc)
	want := []string{"$.a", "$.c"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestFind_RootMatcher(t *testing.T) {
	doc := map[string]any{"a": 1}
	paths, values := findAll(MustMatcher(), doc)
	if !reflect.DeepEqual(paths, []string{"$"}) {
		t.Errorf("got %v", paths)
	}
	if !reflect.DeepEqual(values[0], doc) {
		t.Errorf("got %v", values[0])
	}
}

func TestFind_NoMatchIsNotAnError(t *testing.T) {
	doc := map[string]any{"a": 1}
	paths, _ := findAll(MustMatcher("z", AnyIndex), doc)
	if len(paths) != 0 {
		t.Errorf("got %v", paths)
	}
}

// A matcher narrower than the tree must not visit unrelated subtrees.
func TestFind_Prunes(t *testing.T) {
	visited := map[string]bool{}
	doc := map[string]any{
		"keep": map[string]any{"v": 1},
		"skip": map[string]any{"v": 2},
	}
	m := MustMatcher("keep", AnyProperty)
	m.Find(doc, func(p Path, _ any) bool {
		visited[p.String()] = true
		return true
	})
	if !visited["$.keep.v"] || visited["$.skip.v"] {
		t.Errorf("visited: %v", visited)
	}
}

func TestFind_SkipsHoles(t *testing.T) {
	doc := map[string]any{"a": []any{1, Absent, 3}}
	paths, values := findAll(MustMatcher("a", AnyIndex), doc)
	want := []string{"$.a[0]", "$.a[2]"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
	if !reflect.DeepEqual(values, []any{1, 3}) {
		t.Errorf("got %v", values)
	}
}

func TestFindFirst(t *testing.T) {
	doc := map[string]any{
		"array": []any{
			map[string]any{"value": 1},
			map[string]any{"value": 2},
		},
	}
	p, v, ok := MustMatcher("array", AnyIndex, "value").FindFirst(doc)
	if !ok || p.String() != "$.array[0].value" || v != 1 {
		t.Errorf("got %q, %v, %v", p, v, ok)
	}

	_, _, ok = MustMatcher("missing").FindFirst(doc)
	if ok {
		t.Error("expected no match")
	}
}

func TestFindValues_Restartable(t *testing.T) {
	doc := map[string]any{"a": []any{10, 20, 30}}
	seq := MustMatcher("a", AnyIndex).FindValues(doc)
	for round := 0; round < 2; round++ {
		var got []any
		for v := range seq {
			got = append(got, v)
		}
		if !reflect.DeepEqual(got, []any{10, 20, 30}) {
			t.Fatalf("round %d: got %v", round, got)
		}
	}
}

func TestFindValues_EarlyStop(t *testing.T) {
	doc := map[string]any{"a": []any{10, 20, 30}}
	var got []any
	for v := range MustMatcher("a", AnyIndex).FindValues(doc) {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(got, []any{10, 20}) {
		t.Errorf("got %v", got)
	}
}
