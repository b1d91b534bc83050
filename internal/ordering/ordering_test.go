package ordering

import (
	"errors"
	"reflect"
	"testing"
)

func TestAppend(t *testing.T) {
	order := []string{"a", "b"}
	next := Append(order, "c")
	if !reflect.DeepEqual(next, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order: %v", next)
	}
	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Fatalf("input was mutated: %v", order)
	}
}

func TestAppendExistingIsNoOp(t *testing.T) {
	next := Append([]string{"a", "b"}, "a")
	if !reflect.DeepEqual(next, []string{"a", "b"}) {
		t.Fatalf("append duplicated an id: %v", next)
	}
}

func TestRemove(t *testing.T) {
	next := Remove([]string{"a", "b", "c"}, "b")
	if !reflect.DeepEqual(next, []string{"a", "c"}) {
		t.Fatalf("unexpected order: %v", next)
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	next := Remove([]string{"a", "b"}, "z")
	if !reflect.DeepEqual(next, []string{"a", "b"}) {
		t.Fatalf("unexpected order: %v", next)
	}
	if next := Remove(nil, "z"); len(next) != 0 {
		t.Fatalf("unexpected order from empty input: %v", next)
	}
}

func TestInsertAt(t *testing.T) {
	cases := []struct {
		name  string
		order []string
		id    string
		index int
		want  []string
	}{
		{"front", []string{"a", "b"}, "x", 0, []string{"x", "a", "b"}},
		{"middle", []string{"a", "b"}, "x", 1, []string{"a", "x", "b"}},
		{"end", []string{"a", "b"}, "x", 2, []string{"a", "b", "x"}},
		{"clamped high", []string{"a", "b"}, "x", 99, []string{"a", "b", "x"}},
		{"clamped negative", []string{"a", "b"}, "x", -3, []string{"x", "a", "b"}},
		{"empty", nil, "x", 5, []string{"x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InsertAt(tc.order, tc.id, tc.index)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInsertAtExistingIsNoOp(t *testing.T) {
	next := InsertAt([]string{"a", "b"}, "b", 0)
	if !reflect.DeepEqual(next, []string{"a", "b"}) {
		t.Fatalf("insert duplicated an id: %v", next)
	}
}

func TestRemoveThenInsertRepositions(t *testing.T) {
	// Same-list move: remove shifts indices below the target, so the clamp
	// bound must be computed after removal.
	order := []string{"a", "b", "c"}
	next := InsertAt(Remove(order, "a"), "a", 2)
	if !reflect.DeepEqual(next, []string{"b", "c", "a"}) {
		t.Fatalf("unexpected order: %v", next)
	}
}

func TestReplaceAcceptsPermutation(t *testing.T) {
	live := []string{"a", "b", "c"}
	next, err := Replace(live, []string{"c", "a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(next, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected order: %v", next)
	}
}

func TestReplaceRejectsNonPermutation(t *testing.T) {
	live := []string{"a", "b"}
	for _, bad := range [][]string{
		{"a"},
		{"a", "b", "c"},
		{"a", "a", "b"},
		{"a", "z"},
	} {
		if _, err := Replace(live, bad); !errors.Is(err, ErrNotPermutation) {
			t.Fatalf("expected ErrNotPermutation for %v, got %v", bad, err)
		}
	}
}

func TestValidateDetectsDuplicates(t *testing.T) {
	err := Validate([]string{"a", "a"}, []string{"a"})
	if !errors.Is(err, ErrNotPermutation) {
		t.Fatalf("expected ErrNotPermutation, got %v", err)
	}
}

func TestValidateAcceptsEmpty(t *testing.T) {
	if err := Validate(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
