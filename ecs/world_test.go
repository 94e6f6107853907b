package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
)

func intPtr(i int) *int {
	return &i
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex < 0 {
				return
			}
			dead := ents[c.destroyIndex]
			if !DestroyEntity(w, dead) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if IsAlive(w, dead) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if DestroyEntity(w, dead) {
				t.Fatalf("DestroyEntity should return false for a dead entity")
			}
			if len(Entities(w)) != c.create-1 {
				t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
			}
		})
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot reuse, got ids %d and %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("expected a new generation for the reused slot")
	}
	if Has(w, fresh, h.Kind()) {
		t.Fatalf("reused slot inherited a component")
	}
	if _, ok := Get(w, old, h.Kind()); ok {
		t.Fatalf("stale handle still resolves")
	}
	if err := Add(w, old, h.Kind(), intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestComponentsTable(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponent[int]()
	hs := component.NewComponent[string]()
	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, hi.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hi.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
				if Has(w, e2, hi.Kind()) {
					t.Fatalf("e2 should not have the int component")
				}
			},
			teardown: func() bool { return Remove(w, e1, hi.Kind()) },
		},
		{
			name: "add_str_to_both",
			setup: func() error {
				a, b := "a", "b"
				if err := Add(w, e1, hs.Kind(), &a); err != nil {
					return err
				}
				return Add(w, e2, hs.Kind(), &b)
			},
			check: func(t *testing.T) {
				if Count(w, hs.Kind()) != 2 {
					t.Fatalf("expected two string components")
				}
				v, _ := Get(w, e2, hs.Kind())
				if *v != "b" {
					t.Fatalf("expected b, got %q", *v)
				}
			},
			teardown: func() bool { return Remove(w, e1, hs.Kind()) && Remove(w, e2, hs.Kind()) },
		},
		{
			name: "replace_value",
			setup: func() error {
				if err := Add(w, e1, hi.Kind(), intPtr(1)); err != nil {
					return err
				}
				return Add(w, e1, hi.Kind(), intPtr(2))
			},
			check: func(t *testing.T) {
				v, _ := Get(w, e1, hi.Kind())
				if *v != 2 || Count(w, hi.Kind()) != 1 {
					t.Fatalf("expected single replaced value 2, got %d", *v)
				}
			},
			teardown: func() bool { return Remove(w, e1, hi.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	var zero component.ComponentKind[int]
	if err := Add(w, e, zero, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
	if err := Add(w, e, component.NewComponentKind[int](), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)
		_ = Add(w, e1, h.Kind(), intPtr(1))
		_ = Add(w, e3, h.Kind(), intPtr(3))

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)
		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})

	t.Run("destroy_while_iterating", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		var ents []Entity
		for i := 0; i < 4; i++ {
			e := CreateEntity(w)
			_ = Add(w, e, h.Kind(), intPtr(i))
			ents = append(ents, e)
		}
		visited := 0
		ForEach(w, h.Kind(), func(e Entity, v *int) {
			visited++
			// each visit kills the next entity in creation order
			if *v+1 < len(ents) {
				DestroyEntity(w, ents[*v+1])
			}
		})
		if visited >= 4 {
			t.Fatalf("expected destroyed entities to be skipped, visited %d", visited)
		}
	})
}

func TestForEachN(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	kc := component.NewComponentKind[int]()
	kd := component.NewComponentKind[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	_ = Add(w, e1, ka, intPtr(1))
	_ = Add(w, e2, ka, intPtr(2))
	_ = Add(w, e2, kb, intPtr(3))
	_ = Add(w, e2, kc, intPtr(5))
	_ = Add(w, e3, kb, intPtr(4))
	_ = Add(w, e3, kc, intPtr(6))

	var res []Entity
	ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
	if len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}

	res = nil
	ForEach4(w, ka, kb, kc, kd, func(e Entity, _ *int, _ *int, _ *int, _ *int) { res = append(res, e) })
	if len(res) != 0 {
		t.Fatalf("expected empty when a store is missing, got %v", res)
	}

	_ = Add(w, e2, kd, intPtr(7))
	DestroyEntity(w, e2)
	ForEach4(w, ka, kb, kc, kd, func(e Entity, _ *int, _ *int, _ *int, _ *int) { res = append(res, e) })
	if len(res) != 0 {
		t.Fatalf("expected empty result after destroy, got %v", res)
	}
}

type releasable struct{ released int }

func (r *releasable) Release() { r.released++ }

func TestReleaseOnRemoveAndDestroy(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[releasable]()

	e := CreateEntity(w)
	first := &releasable{}
	_ = Add(w, e, h.Kind(), first)
	_ = Add(w, e, h.Kind(), first)
	if first.released != 0 {
		t.Fatalf("re-adding the same value must not release it")
	}
	second := &releasable{}
	_ = Add(w, e, h.Kind(), second)
	if first.released != 1 {
		t.Fatalf("expected replaced value released once, got %d", first.released)
	}

	Remove(w, e, h.Kind())
	if second.released != 1 {
		t.Fatalf("expected removed value released, got %d", second.released)
	}

	third := &releasable{}
	_ = Add(w, e, h.Kind(), third)
	DestroyEntity(w, e)
	if third.released != 1 {
		t.Fatalf("expected value released on destroy, got %d", third.released)
	}
}

type countingSystem struct {
	seen []int
}

func (s *countingSystem) Update(w *World) {
	s.seen = append(s.seen, len(EventsOf[PathFindFailed](w)))
}

type emitSystem struct{}

func (emitSystem) Update(w *World) {
	Emit(w, PathFindFailed{Reason: nav.FailUnreachable})
	Emit(w, TileChanged{X: 1, Y: 2, Previous: level.TileEmpty, Current: level.TileSolid})
}

func TestEventsLastOneTick(t *testing.T) {
	w := NewWorld()
	before := &countingSystem{}
	after := &countingSystem{}
	s := NewScheduler(before, emitSystem{}, after, nil)
	if len(s.Systems()) != 3 {
		t.Fatalf("expected nil system to be skipped")
	}

	s.Update(w)
	s.Update(w)
	if before.seen[0] != 0 || before.seen[1] != 0 {
		t.Fatalf("events leaked into the next tick: %v", before.seen)
	}
	if after.seen[0] != 1 || after.seen[1] != 1 {
		t.Fatalf("expected one failure per tick after the emitter, got %v", after.seen)
	}

	Emit(w, TileChanged{X: 3})
	changes := EventsOf[TileChanged](w)
	if len(changes) != 1 || changes[0].X != 3 {
		t.Fatalf("expected typed filtering, got %v", changes)
	}
}
