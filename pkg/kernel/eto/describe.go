package eto

import (
	"strings"

	"github.com/chazu/toroid/pkg/kernel"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Describe renders p for people, lengths multiplied by mm2local and numbers
// formatted for tag.
func Describe(p Params, verbose bool, mm2local float64, tag language.Tag) string {
	pr := message.NewPrinter(tag)
	var sb strings.Builder

	sb.WriteString("Elliptical Torus (ETO)\n")
	pr.Fprintf(&sb, "\tV (%.4f, %.4f, %.4f)\n", p.V.X*mm2local, p.V.Y*mm2local, p.V.Z*mm2local)
	pr.Fprintf(&sb, "\tN=(%.4f, %.4f, %.4f)\n", p.N.X, p.N.Y, p.N.Z)
	pr.Fprintf(&sb, "\tC=(%.4f, %.4f, %.4f) mag=%.4f\n",
		p.C.X*mm2local, p.C.Y*mm2local, p.C.Z*mm2local, p.C.Length()*mm2local)
	pr.Fprintf(&sb, "\tr=%.4f\n", p.R*mm2local)
	pr.Fprintf(&sb, "\td=%.4f\n", p.RD*mm2local)

	if verbose {
		n, _ := kernel.Unit(p.N)
		b := blendOf(n, p.C)
		pr.Fprintf(&sb, "\teu=%.4f ev=%.4f\n", b.eu, b.ev)
		pr.Fprintf(&sb, "\tvolume=%.4f\n", p.Volume()*mm2local*mm2local*mm2local)
	}
	return sb.String()
}
