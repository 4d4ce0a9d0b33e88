// Package tessellate walks a scene and produces triangle meshes from each
// primitive's signed-distance reference solid. One mesh is produced per
// primitive.
package tessellate

import (
	"fmt"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/kernel/sdfx"
	"github.com/chazu/toroid/pkg/scene"
)

// Tessellate produces one mesh per primitive in scene order, each named
// after its scene entry. cells <= 0 selects sdfx.DefaultMeshCells. The
// tessellator is read-only and never mutates the scene.
func Tessellate(s *scene.Scene, cells int) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, s.Len())
	for _, e := range s.Entries() {
		mesh, err := tessellateEntry(e, cells)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// tessellateEntry builds the reference solid for e and meshes it.
func tessellateEntry(e *scene.Entry, cells int) (*kernel.Mesh, error) {
	ref, err := sdfx.For(e.Prim)
	if err != nil {
		return nil, fmt.Errorf("primitive %q: %w", e.Name, err)
	}
	mesh, err := ref.ToMesh(cells)
	if err != nil {
		return nil, fmt.Errorf("primitive %q: %w", e.Name, err)
	}
	mesh.Name = e.Name
	return mesh, nil
}

// Stats summarises a set of meshes.
type Stats struct {
	Meshes    int
	Vertices  int
	Triangles int
}

// Summarize totals the vertex and triangle counts of meshes.
func Summarize(meshes []*kernel.Mesh) Stats {
	st := Stats{Meshes: len(meshes)}
	for _, m := range meshes {
		st.Vertices += m.VertexCount()
		st.Triangles += m.TriangleCount()
	}
	return st
}
