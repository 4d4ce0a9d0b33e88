package main

import (
	"context"
	"fmt"
	"log"

	"github.com/chazu/toroid/pkg/config"
	"github.com/chazu/toroid/pkg/engine"
	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/scene"
	"github.com/chazu/toroid/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// colorPalette assigns distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// verifyDelta is the probe offset used when cross-checking hits against
// the signed-distance reference.
const verifyDelta = 1e-4

// App runs scripts through the evaluation pipeline.
type App struct {
	engine *engine.Engine
	cfg    *config.Config
}

// RunOptions selects the optional pipeline stages.
type RunOptions struct {
	Verbose   bool // verbose description of every primitive
	Grid      int  // shoot a Grid x Grid batch straight down over the scene
	Verify    bool // cross-check every hit against the reference solid
	MeshCells int  // tessellate at this resolution; 0 skips meshing
}

// MeshData is the JSON form of one tessellated primitive.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// MeshStats totals the tessellated output.
type MeshStats struct {
	Meshes    int `json:"meshes"`
	Vertices  int `json:"vertices"`
	Triangles int `json:"triangles"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// HitData is one segment with its entry-point queries.
type HitData struct {
	Name   string     `json:"name"`
	In     float64    `json:"in"`
	Out    float64    `json:"out"`
	Normal [3]float64 `json:"normal"`
	U      float64    `json:"u"`
	V      float64    `json:"v"`
	C1     float64    `json:"c1"`
	C2     float64    `json:"c2"`
}

// ShotData is one scripted shot.
type ShotData struct {
	Origin [3]float64 `json:"origin"`
	Dir    [3]float64 `json:"dir"`
	Roots  int        `json:"roots"`
	Hits   []HitData  `json:"hits"`
}

// GridData summarises a batch shot.
type GridData struct {
	Rays     int `json:"rays"`
	RaysHit  int `json:"raysHit"`
	Segments int `json:"segments"`
	Roots    int `json:"roots"`
}

// Report is the full result of one run.
type Report struct {
	Units        string          `json:"units"`
	Descriptions []string        `json:"descriptions"`
	Shots        []ShotData      `json:"shots"`
	Grid         *GridData       `json:"grid,omitempty"`
	Meshes       []MeshData      `json:"meshes"`
	MeshStats    *MeshStats      `json:"meshStats,omitempty"`
	Errors       []EvalErrorData `json:"errors"`
	Warnings     []EvalErrorData `json:"warnings"`
}

// NewApp creates an App configured by cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithKernelOptions(cfg.KernelOptions()...),
			engine.WithLocale(cfg.Locale),
			engine.WithMM2Local(cfg.MM2Local),
		),
		cfg: cfg,
	}
}

// Run evaluates source and runs the stages opts asks for. Failures are
// reported in the Errors list; Run itself never fails.
func (a *App) Run(ctx context.Context, source string, opts RunOptions) Report {
	rep := Report{
		Units:        a.cfg.Units,
		Descriptions: []string{},
		Shots:        []ShotData{},
		Meshes:       []MeshData{},
		Errors:       []EvalErrorData{},
		Warnings:     []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		rep.Errors = append(rep.Errors, EvalErrorData{Message: err.Error()})
		return rep
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			rep.Errors = append(rep.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return rep
	}
	for _, w := range res.Warnings {
		rep.Warnings = append(rep.Warnings, EvalErrorData{Message: fmt.Sprintf("%s: %s", w.Name, w.Message)})
	}

	rep.Descriptions = append(rep.Descriptions, res.Descriptions...)
	if opts.Verbose {
		rep.Descriptions = append(rep.Descriptions, a.describeAll(res.Scene)...)
	}

	rays := make([]kernel.Ray, 0, len(res.Shots))
	for _, shot := range res.Shots {
		rep.Shots = append(rep.Shots, shotData(res.Scene, shot))
		rays = append(rays, shot.Ray)
	}

	if opts.Grid > 0 {
		grid := gridRays(res.Scene, opts.Grid)
		results, err := res.Scene.ShootAll(ctx, grid, a.cfg.Workers)
		if err != nil {
			rep.Errors = append(rep.Errors, EvalErrorData{Message: "grid: " + err.Error()})
			return rep
		}
		rep.Grid = summarizeGrid(results)
		rays = append(rays, grid...)
	}

	if opts.Verify {
		for _, f := range scene.CrossCheck(res.Scene, rays, verifyDelta) {
			d := EvalErrorData{Message: f.Error()}
			if f.Severity == scene.SeverityError {
				rep.Errors = append(rep.Errors, d)
			} else {
				rep.Warnings = append(rep.Warnings, d)
			}
		}
	}

	if opts.MeshCells > 0 {
		meshes, err := tessellate.Tessellate(res.Scene, opts.MeshCells)
		if err != nil {
			log.Printf("Tessellate error: %v", err)
			rep.Errors = append(rep.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
			return rep
		}
		for i, m := range meshes {
			rep.Meshes = append(rep.Meshes, MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				Indices:  m.Indices,
				PartName: m.Name,
				Color:    colorPalette[i%len(colorPalette)],
			})
		}
		st := tessellate.Summarize(meshes)
		rep.MeshStats = &MeshStats{Meshes: st.Meshes, Vertices: st.Vertices, Triangles: st.Triangles}
	}
	return rep
}

// describeAll renders a verbose description of every primitive with the
// engine's locale and units.
func (a *App) describeAll(s *scene.Scene) []string {
	var out []string
	for _, e := range s.Entries() {
		text, err := a.engine.Describe(e.Prim, true)
		if err != nil {
			log.Printf("describe %q: %v", e.Name, err)
			continue
		}
		out = append(out, text)
	}
	return out
}

func shotData(s *scene.Scene, res scene.Result) ShotData {
	d := ShotData{
		Origin: vec(res.Ray.Origin),
		Dir:    vec(res.Ray.Dir),
		Roots:  res.Roots,
		Hits:   []HitData{},
	}
	for _, h := range res.Hits {
		prim := s.MustLookup(h.Name).Prim
		in := h.Segment.In
		uv := prim.UV(res.Ray, in)
		curv := prim.Curvature(res.Ray, in)
		d.Hits = append(d.Hits, HitData{
			Name:   h.Name,
			In:     in.Dist,
			Out:    h.Segment.Out.Dist,
			Normal: vec(prim.Normal(res.Ray, in)),
			U:      uv.U,
			V:      uv.V,
			C1:     curv.C1,
			C2:     curv.C2,
		})
	}
	return d
}

// gridRays covers the scene's bounding box with n x n rays fired straight
// down from just above it.
func gridRays(s *scene.Scene, n int) []kernel.Ray {
	box, ok := s.BoundingBox()
	if !ok {
		return nil
	}
	size := box.Max.Sub(box.Min)
	rays := make([]kernel.Ray, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			o := v3.Vec{
				X: box.Min.X + size.X*(float64(i)+0.5)/float64(n),
				Y: box.Min.Y + size.Y*(float64(j)+0.5)/float64(n),
				Z: box.Max.Z + 1,
			}
			rays = append(rays, kernel.NewRay(o, v3.Vec{Z: -1}))
		}
	}
	return rays
}

func summarizeGrid(results []scene.Result) *GridData {
	g := &GridData{Rays: len(results)}
	for _, r := range results {
		if len(r.Hits) > 0 {
			g.RaysHit++
		}
		g.Segments += len(r.Hits)
		g.Roots += r.Roots
	}
	return g
}

func vec(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
