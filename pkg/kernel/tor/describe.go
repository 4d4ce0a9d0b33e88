package tor

import (
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Describe renders p for people. Lengths are multiplied by mm2local and
// numbers are formatted for tag.
func Describe(p Params, verbose bool, mm2local float64, tag language.Tag) string {
	pr := message.NewPrinter(tag)
	var sb strings.Builder

	vec := func(label string, v v3.Vec, k float64) {
		pr.Fprintf(&sb, "\t%s (%.4f, %.4f, %.4f)\n", label, v.X*k, v.Y*k, v.Z*k)
	}

	sb.WriteString("Torus (TOR)\n")
	vec("V", p.V, mm2local)
	h := p.H
	if l := h.Length(); l > 0 {
		h = h.DivScalar(l)
	}
	vec("N=H", h, 1)
	pr.Fprintf(&sb, "\tr1=%.4f (A)\n", p.R1*mm2local)
	pr.Fprintf(&sb, "\tr2=%.4f (H)\n", p.R2*mm2local)

	if !verbose {
		return sb.String()
	}

	vec("A", p.A, mm2local)
	vec("B", p.B, mm2local)
	if p.R1 > 0 {
		pr.Fprintf(&sb, "\tr2/r1=%.4f\n", p.R2/p.R1)
	}
	k3 := mm2local * mm2local * mm2local
	pr.Fprintf(&sb, "\tvolume=%.4f\n", p.Volume()*k3)
	pr.Fprintf(&sb, "\tarea=%.4f\n", p.Area()*mm2local*mm2local)
	return sb.String()
}
