// Package engine provides the Lisp front end for toroid. It wraps zygomys in
// a sandboxed environment; scripts declare tori and elliptical tori, fire
// rays at them and ask for descriptions. The output is a populated
// scene.Scene together with the shot and description records the script
// produced.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"golang.org/x/text/language"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a rejected primitive.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a finding that does not stop evaluation, such as two
// primitives with overlapping bounds.
type EvalWarning struct {
	Name    string
	Message string
}

// Result bundles everything a script produced.
type Result struct {
	Scene        *scene.Scene
	Shots        []scene.Result
	Descriptions []string
	Warnings     []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernelOptions passes opts to every primitive the script prepares.
func WithKernelOptions(opts ...kernel.Option) Option {
	return func(e *Engine) { e.kopts = append(e.kopts, opts...) }
}

// WithLocale sets the language used to format describe output.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// WithMM2Local sets the display scale for describe output (local units per
// millimetre). Non-positive values are ignored.
func WithMM2Local(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.mm2local = k
		}
	}
}

// Engine wraps the zygomys interpreter. Each call to Evaluate creates a fresh
// sandboxed environment, but zygomys sandboxes share global state, so
// callers must evaluate one script at a time. The mutex only guards the
// generation counter that discards superseded results.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kopts    []kernel.Option
	locale   language.Tag
	mm2local float64
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{locale: language.English, mm2local: 1}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// Evaluate runs source and returns what it built.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	res := &Result{Scene: scene.New()}
	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &session{engine: e, result: res})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	for _, f := range scene.Validate(res.Scene) {
		res.Warnings = append(res.Warnings, EvalWarning{Name: f.Name, Message: f.Message})
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values, pulling
// out a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
