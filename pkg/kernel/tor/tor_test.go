package tor

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/text/language"
)

const eps = 1e-6

func mustPrep(t *testing.T, p Params) *Torus {
	t.Helper()
	tor, err := Prep(p)
	if err != nil {
		t.Fatalf("Prep: %v", err)
	}
	return tor
}

// dists flattens segments into descending hit distances.
func dists(segs []kernel.Segment) []float64 {
	var out []float64
	for _, s := range segs {
		out = append(out, s.Out.Dist, s.In.Dist)
	}
	return out
}

func approxSlice(got, want []float64, tol float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

// tubeDistance is the distance from p to the centre circle of a torus at the
// origin with +Z axis.
func tubeDistance(p v3.Vec, r1 float64) float64 {
	return math.Hypot(math.Hypot(p.X, p.Y)-r1, p.Z)
}

// ---------------------------------------------------------------------------
// Prep
// ---------------------------------------------------------------------------

func TestPrepRejects(t *testing.T) {
	good := New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2)
	tests := []struct {
		name string
		mod  func(p *Params)
		code string
	}{
		{"zero major radius", func(p *Params) { p.R1 = 0 }, "TOR_RADIUS"},
		{"negative minor radius", func(p *Params) { p.R2 = -1 }, "TOR_RADIUS"},
		{"minor exceeds major", func(p *Params) { p.R2 = 11 }, "TOR_RATIO"},
		{"zero H", func(p *Params) { p.H = v3.Vec{} }, "TOR_ZERO_VECTOR"},
		{"zero A", func(p *Params) { p.A = v3.Vec{} }, "TOR_ZERO_VECTOR"},
		{"A not perpendicular to H", func(p *Params) { p.A = p.A.Add(p.H) }, "TOR_NOT_ORTHOGONAL"},
		{"A parallel to B", func(p *Params) { p.B = p.A }, "TOR_NOT_ORTHOGONAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			tt.mod(&p)
			tor, err := Prep(p)
			if err == nil {
				t.Fatal("expected error")
			}
			if tor != nil {
				t.Error("expected nil record on failure")
			}
			if !errors.Is(err, kernel.ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			var ge *kernel.GeometryError
			if !errors.As(err, &ge) || ge.Code != tt.code {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestPrepAcceptsHornTorus(t *testing.T) {
	if _, err := Prep(New(v3.Vec{}, v3.Vec{Z: 1}, 5, 5)); err != nil {
		t.Errorf("r2 == r1 should be accepted: %v", err)
	}
}

func TestBounds(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{Z: 1}, 10, 2))
	box := tor.BoundingBox()
	wantMin := v3.Vec{X: -11, Y: -10, Z: 1}
	wantMax := v3.Vec{X: 13, Y: 14, Z: 5}
	if !kernel.Near(box.Min, wantMin, eps) || !kernel.Near(box.Max, wantMax, eps) {
		t.Errorf("box = %v, want %v..%v", box, wantMin, wantMax)
	}
	c, r := tor.BoundingSphere()
	if c != (v3.Vec{X: 1, Y: 2, Z: 3}) || r != 12 {
		t.Errorf("sphere = %v %g", c, r)
	}
}

// ---------------------------------------------------------------------------
// Shot
// ---------------------------------------------------------------------------

func TestShotFourHitsInPlane(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	ray := kernel.NewRay(v3.Vec{X: 100}, v3.Vec{X: -1})

	segs, n := tor.Shot(ray)
	if n != 4 || len(segs) != 2 {
		t.Fatalf("got %d roots / %d segments, want 4 / 2", n, len(segs))
	}
	if got := dists(segs); !approxSlice(got, []float64{112, 108, 92, 88}, eps) {
		t.Errorf("distances = %v", got)
	}
	for _, s := range segs {
		if s.In.Dist >= s.Out.Dist {
			t.Errorf("segment not ordered: %+v", s)
		}
	}
}

func TestShotAlongPlaneOfRevolution(t *testing.T) {
	// Ring in the YZ plane; the ray runs down the Z axis through the centre.
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{X: 1}, 10, 2))
	ray := kernel.NewRay(v3.Vec{Z: 100}, v3.Vec{Z: -1})

	segs, n := tor.Shot(ray)
	if n != 4 {
		t.Fatalf("got %d roots, want 4", n)
	}
	d := dists(segs)
	if !approxSlice(d, []float64{112, 108, 92, 88}, eps) {
		t.Fatalf("distances = %v", d)
	}
	for i := 1; i < len(d); i++ {
		if d[i] >= d[i-1] {
			t.Errorf("distances not strictly descending: %v", d)
		}
	}
	// Symmetric about the vertex: z = ±12 and ±8, inner pair nearer z=0.
	var zs []float64
	for _, x := range d {
		zs = append(zs, ray.At(x).Z)
	}
	if math.Abs(zs[0]+zs[3]) > eps || math.Abs(zs[1]+zs[2]) > eps {
		t.Errorf("hits not symmetric: %v", zs)
	}
	if math.Abs(zs[1]) >= math.Abs(zs[0]) {
		t.Errorf("inner pair %v not closer to z=0 than outer %v", zs[1], zs[0])
	}
}

// On the axis x = y = 0 the surface needs z² = α² - 1, negative for any
// ring torus, so the axial ray never touches it.
func TestShotThroughHoleMisses(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	segs, n := tor.Shot(kernel.NewRay(v3.Vec{Z: 100}, v3.Vec{Z: -1}))
	if n != 0 || segs != nil {
		t.Errorf("axial ray through hole: got %d roots, %v", n, segs)
	}
}

func TestShotTwoHits(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	ray := kernel.NewRay(v3.Vec{X: 10, Z: 100}, v3.Vec{Z: -1})

	segs, n := tor.Shot(ray)
	if n != 2 || len(segs) != 1 {
		t.Fatalf("got %d roots / %d segments, want 2 / 1", n, len(segs))
	}
	if !approxSlice(dists(segs), []float64{102, 98}, eps) {
		t.Errorf("distances = %v", dists(segs))
	}
}

func TestShotOutsideBoundingSphere(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		// Lines whose closest approach to the centre exceeds r1+r2.
		dir := v3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}.Normalize()
		off := kernel.OrthoVec(dir).MulScalar(12.5 + rng.Float64()*50)
		ray := kernel.NewRay(off.Sub(dir.MulScalar(200)), dir)
		if segs, n := tor.Shot(ray); n != 0 || segs != nil {
			t.Fatalf("ray %v: got %d roots", ray, n)
		}
	}
}

func TestShotHitsLieOnSurface(t *testing.T) {
	v := v3.Vec{X: 3, Y: -4, Z: 7}
	h := v3.Vec{X: 1, Y: 2, Z: 2}
	tor := mustPrep(t, New(v, h, 10, 3))
	n := h.Normalize()

	rng := rand.New(rand.NewSource(7))
	hits := 0
	for i := 0; i < 500; i++ {
		target := v.Add(v3.Vec{X: rng.Float64()*26 - 13, Y: rng.Float64()*26 - 13, Z: rng.Float64()*26 - 13})
		dir := v3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}.Normalize()
		ray := kernel.NewRay(target.Sub(dir.MulScalar(60)), dir)

		segs, cnt := tor.Shot(ray)
		if cnt != 0 && cnt != 2 && cnt != 4 {
			t.Fatalf("root count %d", cnt)
		}
		d := dists(segs)
		for j := 1; j < len(d); j++ {
			if d[j] >= d[j-1] {
				t.Fatalf("distances not descending: %v", d)
			}
		}
		for _, x := range d {
			hits++
			p := ray.At(x).Sub(v)
			// Express p in a frame with n as Z.
			z := p.Dot(n)
			rho := p.Sub(n.MulScalar(z)).Length()
			if dd := math.Hypot(rho-10, z); math.Abs(dd-3) > 1e-5 {
				t.Errorf("hit %v is %g from the tube centre, want 3", ray.At(x), dd)
			}
		}
	}
	if hits == 0 {
		t.Fatal("no hits generated")
	}
}

func TestShotConcurrent(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	ray := kernel.NewRay(v3.Vec{X: 100, Y: 1, Z: 0.5}, v3.Vec{X: -1})
	want, _ := tor.Shot(ray)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, _ := tor.Shot(ray)
				if !approxSlice(dists(got), dists(want), 0) {
					errs <- "result differs under concurrency"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

// ---------------------------------------------------------------------------
// Post-hit queries
// ---------------------------------------------------------------------------

func TestNormal(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))

	ray := kernel.NewRay(v3.Vec{X: 100}, v3.Vec{X: -1})
	segs, _ := tor.Shot(ray)
	// segs[1] is the near wall: enters at x=12, leaves at x=8.
	want := map[float64]v3.Vec{
		88:  {X: 1},
		92:  {X: -1},
		108: {X: 1},
		112: {X: -1},
	}
	for _, s := range segs {
		for _, h := range []kernel.Hit{s.In, s.Out} {
			w := want[math.Round(h.Dist)]
			if got := tor.Normal(ray, h); !kernel.Near(got, w, eps) {
				t.Errorf("normal at %g = %v, want %v", h.Dist, got, w)
			}
		}
	}

	top := kernel.NewRay(v3.Vec{X: 10, Z: 100}, v3.Vec{Z: -1})
	segs, _ = tor.Shot(top)
	if got := tor.Normal(top, segs[0].In); !kernel.Near(got, v3.Vec{Z: 1}, eps) {
		t.Errorf("normal at top = %v, want +Z", got)
	}
}

func TestCurvature(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	ray := kernel.NewRay(v3.Vec{X: 100}, v3.Vec{X: -1})
	segs, _ := tor.Shot(ray)

	outer := tor.Curvature(ray, segs[1].In) // x = 12
	if math.Abs(outer.C1+1.0/12) > eps || math.Abs(outer.C2+0.5) > eps {
		t.Errorf("outer curvature = %+v, want C1=-1/12 C2=-1/2", outer)
	}
	if math.Abs(math.Abs(outer.PDir.Y)-1) > eps {
		t.Errorf("outer PDir = %v, want ±Y", outer.PDir)
	}

	inner := tor.Curvature(ray, segs[1].Out) // x = 8, saddle
	if math.Abs(inner.C1-1.0/8) > eps || math.Abs(inner.C2+0.5) > eps {
		t.Errorf("inner curvature = %+v, want C1=1/8 C2=-1/2", inner)
	}
}

func TestUV(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2))
	tests := []struct {
		name  string
		c     v3.Vec
		u, v  float64
		vSeam bool
	}{
		{"outer equator", v3.Vec{X: 1.2}, 0.5, 0.5, false},
		{"top", v3.Vec{X: 1, Z: 0.2}, 0.5, 0.75, false},
		{"bottom", v3.Vec{X: 1, Z: -0.2}, 0.5, 0.25, false},
		{"quarter turn", v3.Vec{Y: 1.2}, 0.75, 0.5, false},
		{"inner equator", v3.Vec{X: 0.8}, 0.5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uv := tor.UV(kernel.Ray{}, kernel.Hit{Canonical: tt.c})
			if math.Abs(uv.U-tt.u) > eps {
				t.Errorf("U = %g, want %g", uv.U, tt.u)
			}
			if tt.vSeam {
				if uv.V > eps && uv.V < 1-eps {
					t.Errorf("V = %g, want seam (0 or 1)", uv.V)
				}
			} else if math.Abs(uv.V-tt.v) > eps {
				t.Errorf("V = %g, want %g", uv.V, tt.v)
			}
		})
	}
}

func TestUVRange(t *testing.T) {
	tor := mustPrep(t, New(v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1}, 7, 3))
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		dir := v3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}.Normalize()
		ray := kernel.NewRay(dir.MulScalar(-50), dir)
		segs, _ := tor.Shot(ray)
		for _, s := range segs {
			for _, h := range []kernel.Hit{s.In, s.Out} {
				uv := tor.UV(ray, h)
				if uv.U < 0 || uv.U > 1 || uv.V < 0 || uv.V > 1 {
					t.Fatalf("UV out of range: %+v", uv)
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Import / Export / Describe
// ---------------------------------------------------------------------------

func TestExportImportRoundTrip(t *testing.T) {
	tests := []Params{
		New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2),
		New(v3.Vec{X: -4, Y: 5, Z: 6}, v3.Vec{X: 1, Y: 2, Z: 3}, 3.5, 1.25),
		New(v3.Vec{X: 1}, v3.Vec{Y: -2}, 1, 1),
	}
	for _, p := range tests {
		block, err := Export(p, 1)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if len(block) != BlockSize {
			t.Fatalf("block is %d bytes", len(block))
		}
		got, err := Import(block, sdf.Identity3d())
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if !kernel.Near(got.V, p.V, eps) || !kernel.Near(got.H, p.H, eps) ||
			!kernel.Near(got.A, p.A, eps) || !kernel.Near(got.B, p.B, eps) ||
			math.Abs(got.R1-p.R1) > eps || math.Abs(got.R2-p.R2) > eps {
			t.Errorf("round trip:\n got %+v\nwant %+v", got, p)
		}
	}
}

func TestImportTransform(t *testing.T) {
	p := New(v3.Vec{X: 1}, v3.Vec{Z: 1}, 10, 2)
	block, err := Export(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	mat := sdf.Translate3d(v3.Vec{Y: 5}).Mul(sdf.Scale3d(v3.Vec{X: 2, Y: 2, Z: 2}))
	got, err := Import(block, mat)
	if err != nil {
		t.Fatal(err)
	}
	if !kernel.Near(got.V, v3.Vec{X: 2, Y: 5}, eps) {
		t.Errorf("V = %v, want (2,5,0)", got.V)
	}
	if math.Abs(got.R1-20) > eps || math.Abs(got.R2-4) > eps {
		t.Errorf("radii = %g %g, want 20 4", got.R1, got.R2)
	}
}

func TestImportErrors(t *testing.T) {
	if _, err := Import(make([]byte, 10), sdf.Identity3d()); !errors.Is(err, kernel.ErrBlockSize) {
		t.Errorf("short block: got %v", err)
	}
	if _, err := Import(make([]byte, BlockSize), sdf.Identity3d()); !errors.Is(err, kernel.ErrInvalid) {
		t.Errorf("zero block: got %v", err)
	}
}

func TestExport(t *testing.T) {
	p := New(v3.Vec{}, v3.Vec{Z: 1}, 10, 2)
	block, err := Export(p, 25.4)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Import(block, sdf.Identity3d())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.R1-254) > eps || math.Abs(got.R2-50.8) > eps {
		t.Errorf("scaled radii = %g %g", got.R1, got.R2)
	}

	bad := p
	bad.R2 = 20
	if _, err := Export(bad, 1); !errors.Is(err, kernel.ErrInvalid) {
		t.Errorf("invalid torus exported: %v", err)
	}
	if _, err := Export(p, 0); err == nil {
		t.Error("zero unit scale accepted")
	}
}

func TestDescribe(t *testing.T) {
	p := New(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{Z: 1}, 10, 2)

	short := Describe(p, false, 1, language.English)
	for _, want := range []string{"Torus (TOR)", "V (1.0000, 2.0000, 3.0000)", "r1=10.0000", "r2=2.0000"} {
		if !strings.Contains(short, want) {
			t.Errorf("missing %q in:\n%s", want, short)
		}
	}
	if strings.Contains(short, "volume") {
		t.Error("terse description includes volume")
	}

	long := Describe(p, true, 0.1, language.English)
	for _, want := range []string{"r1=1.0000", "r2/r1=0.2000", "volume=0.7896", "area=7.8957"} {
		if !strings.Contains(long, want) {
			t.Errorf("missing %q in:\n%s", want, long)
		}
	}

	de := Describe(p, false, 1, language.German)
	if !strings.Contains(de, "r1=10,0000") {
		t.Errorf("German output not localised:\n%s", de)
	}
}
