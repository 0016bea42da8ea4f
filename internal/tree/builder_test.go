package tree

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nestodo/nestodo/internal/models"
)

func item(id uuid.UUID, parent *uuid.UUID, order int, desc string) *models.TaskItem {
	return &models.TaskItem{ID: id, ParentID: parent, Order: order, Description: desc}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("roots sorted by order", func(t *testing.T) {
		t.Parallel()
		a, b, c := uuid.New(), uuid.New(), uuid.New()
		roots := Build([]*models.TaskItem{
			item(a, nil, 2, "third"),
			item(b, nil, 0, "first"),
			item(c, nil, 1, "second"),
		})

		if len(roots) != 3 {
			t.Fatalf("got %d roots, want 3", len(roots))
		}
		for i, want := range []string{"first", "second", "third"} {
			if roots[i].Description != want {
				t.Errorf("roots[%d] = %q, want %q", i, roots[i].Description, want)
			}
		}
	})

	t.Run("deep nesting", func(t *testing.T) {
		t.Parallel()
		a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		roots := Build([]*models.TaskItem{
			item(a, nil, 0, "root"),
			item(b, &a, 0, "child"),
			item(c, &b, 0, "grandchild"),
			item(d, &c, 0, "great-grandchild"),
		})

		if len(roots) != 1 {
			t.Fatalf("got %d roots, want 1", len(roots))
		}
		node := roots[0]
		for _, want := range []string{"child", "grandchild", "great-grandchild"} {
			if len(node.Children) != 1 {
				t.Fatalf("node %q has %d children, want 1", node.Description, len(node.Children))
			}
			node = node.Children[0]
			if node.Description != want {
				t.Errorf("node = %q, want %q", node.Description, want)
			}
		}
		if len(node.Children) != 0 {
			t.Errorf("leaf has %d children", len(node.Children))
		}
	})

	t.Run("equal orders keep fetch order", func(t *testing.T) {
		t.Parallel()
		a, b, c := uuid.New(), uuid.New(), uuid.New()
		roots := Build([]*models.TaskItem{
			item(a, nil, 0, "one"),
			item(b, nil, 0, "two"),
			item(c, nil, 0, "three"),
		})

		for i, want := range []string{"one", "two", "three"} {
			if roots[i].Description != want {
				t.Errorf("roots[%d] = %q, want %q", i, roots[i].Description, want)
			}
		}
	})

	t.Run("dangling parent dropped", func(t *testing.T) {
		t.Parallel()
		a, orphan := uuid.New(), uuid.New()
		missing := uuid.New()
		roots := Build([]*models.TaskItem{
			item(a, nil, 0, "kept"),
			item(orphan, &missing, 0, "orphan"),
		})

		if len(roots) != 1 || roots[0].Description != "kept" {
			t.Errorf("unexpected roots: %+v", roots)
		}
		if Find(roots, orphan) != nil {
			t.Error("orphan reachable in built tree")
		}
	})

	t.Run("children always non-nil", func(t *testing.T) {
		t.Parallel()
		a := uuid.New()
		roots := Build([]*models.TaskItem{item(a, nil, 0, "solo")})

		if roots[0].Children == nil {
			t.Error("Children must be an empty slice, not nil")
		}
	})

	t.Run("empty snapshot", func(t *testing.T) {
		t.Parallel()
		roots := Build(nil)
		if roots == nil || len(roots) != 0 {
			t.Errorf("Build(nil) = %v, want empty slice", roots)
		}
	})

	t.Run("idempotent over same snapshot", func(t *testing.T) {
		t.Parallel()
		a, b := uuid.New(), uuid.New()
		snapshot := []*models.TaskItem{
			item(a, nil, 1, "second"),
			item(b, nil, 0, "first"),
		}
		first := Build(snapshot)
		second := Build(snapshot)

		if len(first) != len(second) {
			t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("root %d differs between builds", i)
			}
		}
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	roots := Build([]*models.TaskItem{
		item(a, nil, 0, "root"),
		item(b, &a, 0, "child"),
		item(c, &b, 0, "grandchild"),
	})

	if got := Find(roots, c); got == nil || got.Description != "grandchild" {
		t.Errorf("Find(grandchild) = %v", got)
	}
	if got := Find(roots, uuid.New()); got != nil {
		t.Errorf("Find(unknown) = %v, want nil", got)
	}
}
