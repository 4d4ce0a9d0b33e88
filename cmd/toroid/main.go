// Command toroid evaluates a toroid script and prints what it built: the
// primitives it described, the hits of every ray it shot and, on request, a
// batch grid summary, a reference cross-check and triangle meshes.
//
// Usage:
//
//	toroid [-v] [-grid N] [-verify] [-mesh CELLS] [-json] script.lisp
//
// Settings come from the TOROID_* environment variables (see pkg/config).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/chazu/toroid/pkg/config"
	"github.com/chazu/toroid/pkg/kernel"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	var opts RunOptions
	var asJSON bool
	flag.BoolVar(&opts.Verbose, "v", false, "describe every primitive verbosely")
	flag.IntVar(&opts.Grid, "grid", 0, "shoot an N x N grid of rays down over the scene")
	flag.BoolVar(&opts.Verify, "verify", false, "cross-check hits against the signed-distance reference")
	flag.IntVar(&opts.MeshCells, "mesh", 0, "tessellate every primitive with this many cells (0 = off)")
	flag.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: toroid [flags] script")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	kernel.SetLogger(logger)

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("read script: %v", err)
	}

	rep := NewApp(cfg).Run(context.Background(), string(source), opts)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatalf("encode report: %v", err)
		}
	} else {
		printReport(os.Stdout, rep, cfg.Locale, cfg.MM2Local)
	}

	if len(rep.Errors) > 0 {
		os.Exit(1)
	}
}

// printReport writes rep for people. Distances are converted to the
// configured units; numbers follow tag.
func printReport(w io.Writer, rep Report, tag language.Tag, mm2local float64) {
	p := message.NewPrinter(tag)

	for _, d := range rep.Descriptions {
		fmt.Fprint(w, d)
	}

	for i, s := range rep.Shots {
		p.Fprintf(w, "shot %d: origin (%.4f, %.4f, %.4f) dir (%.4f, %.4f, %.4f) roots=%d\n",
			i+1,
			s.Origin[0]*mm2local, s.Origin[1]*mm2local, s.Origin[2]*mm2local,
			s.Dir[0], s.Dir[1], s.Dir[2], s.Roots)
		if len(s.Hits) == 0 {
			fmt.Fprintln(w, "\tMISS")
		}
		for _, h := range s.Hits {
			p.Fprintf(w, "\t%s in=%.4f out=%.4f %s N=(%.4f, %.4f, %.4f) uv=(%.4f, %.4f) c1=%.4f c2=%.4f\n",
				h.Name, h.In*mm2local, h.Out*mm2local, rep.Units,
				h.Normal[0], h.Normal[1], h.Normal[2], h.U, h.V, h.C1/mm2local, h.C2/mm2local)
		}
	}

	if g := rep.Grid; g != nil {
		p.Fprintf(w, "grid: %d rays, %d hit, %d segments, %d roots\n", g.Rays, g.RaysHit, g.Segments, g.Roots)
	}

	if st := rep.MeshStats; st != nil {
		p.Fprintf(w, "mesh: %d meshes, %d vertices, %d triangles\n", st.Meshes, st.Vertices, st.Triangles)
	}

	for _, wn := range rep.Warnings {
		fmt.Fprintf(w, "warning: %s\n", wn.Message)
	}
	for _, e := range rep.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
}
