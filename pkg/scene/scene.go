// Package scene holds a named set of prepared primitives and fires rays at
// them. Primitives are immutable once added, so a Scene that is no longer
// being built may be shot from any number of goroutines.
package scene

import (
	"fmt"
	"slices"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
)

// DefaultUnits is the unit system a new scene describes lengths in.
const DefaultUnits = "mm"

// Entry is one named primitive.
type Entry struct {
	Name string
	Prim kernel.Primitive
}

// Scene is an ordered registry of named primitives.
type Scene struct {
	entries map[string]*Entry
	order   []string
	Units   string
	Version uint64
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		entries: make(map[string]*Entry),
		Units:   DefaultUnits,
	}
}

// Add registers prim under name. Names must be unique and non-empty.
func (s *Scene) Add(name string, prim kernel.Primitive) error {
	if name == "" {
		return fmt.Errorf("scene: add: empty name")
	}
	if prim == nil {
		return fmt.Errorf("scene: add %q: nil primitive", name)
	}
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("scene: add: name %q already defined", name)
	}
	s.entries[name] = &Entry{Name: name, Prim: prim}
	s.order = append(s.order, name)
	s.Version++
	return nil
}

// Lookup returns the entry with the given name, or nil.
func (s *Scene) Lookup(name string) *Entry {
	return s.entries[name]
}

// MustLookup returns the entry with the given name, or panics.
func (s *Scene) MustLookup(name string) *Entry {
	e := s.Lookup(name)
	if e == nil {
		panic(fmt.Sprintf("scene: no primitive named %q", name))
	}
	return e
}

// Names returns the primitive names in insertion order.
func (s *Scene) Names() []string {
	return slices.Clone(s.order)
}

// Entries returns the entries in insertion order.
func (s *Scene) Entries() []*Entry {
	out := make([]*Entry, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.entries[n])
	}
	return out
}

// Len returns the number of primitives.
func (s *Scene) Len() int {
	return len(s.order)
}

// BoundingBox returns the union of every primitive's box. ok is false for
// an empty scene.
func (s *Scene) BoundingBox() (box sdf.Box3, ok bool) {
	for i, e := range s.Entries() {
		b := e.Prim.BoundingBox()
		if i == 0 {
			box = b
			continue
		}
		box = kernel.UnionBox(box, b)
	}
	return box, s.Len() > 0
}
