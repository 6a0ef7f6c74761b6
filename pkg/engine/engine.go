// Package engine evaluates gear scripts. A script is a zygomys Lisp
// program whose builtins place gears, connect them into chains and mark
// drivers; evaluating it yields a populated train.Train.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/gearwright/pkg/geometry"
	"github.com/chazu/gearwright/pkg/train"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal failure in user code: a parse error, an unknown
// symbol, or a builtin rejecting its arguments.
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

// EvalWarning is a problem that did not stop evaluation, such as a drive
// edge the chain refused. Warnings carry no source position.
type EvalWarning struct {
	Message string
}

// EvalResult bundles the output of one evaluation.
type EvalResult struct {
	Train    *train.Train
	Errors   []EvalError
	Warnings []EvalWarning
}

// DefaultParams are used for any gear keyword a script leaves out.
var DefaultParams = geometry.Params{TeethCount: 12, Resolution: 4, Module: 1, Thickness: 0.5}

// Engine evaluates gear scripts. It is safe for concurrent use; every
// evaluation runs in a fresh sandbox and builds a fresh train.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	defaults geometry.Params
	mode     train.PropagationMode
	diag     train.Diagnostics
	timeout  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults sets the parameters used for omitted gear keywords.
func WithDefaults(p geometry.Params) Option {
	return func(e *Engine) {
		e.defaults = p
	}
}

// WithPropagation sets the propagation mode of every train the engine
// builds.
func WithPropagation(mode train.PropagationMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithDiagnostics forwards chain reports to d in addition to collecting
// them as warnings.
func WithDiagnostics(d train.Diagnostics) Option {
	return func(e *Engine) {
		e.diag = d
	}
}

// WithTimeout replaces EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{defaults: DefaultParams, mode: train.Recursive, timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a gear script and returns the train it builds.
//
// Return semantics:
//   - On success: result with a train, possibly with warnings, and nil error
//   - On parse/eval failure: result with a nil train and errors, nil error
//   - On fatal failure (timeout, panic, superseded): nil result and an error
func (e *Engine) Evaluate(source string) (*EvalResult, error) {
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

		res := e.evaluate(source)
		ch <- evalResult{result: res}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate runs source in a fresh sandbox.
func (e *Engine) evaluate(source string) *EvalResult {
	rec := train.NewRecorder(e.diag)
	t := train.New(train.WithDiagnostics(rec), train.WithPropagation(e.mode))

	if strings.TrimSpace(source) == "" {
		return &EvalResult{Train: t}
	}

	// The sandbox has no filesystem or syscall access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builder{train: t, defaults: e.defaults, materials: make(map[string]*train.Material)}
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}
	}

	res := &EvalResult{Train: t}
	for _, w := range rec.Warnings() {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w})
	}
	return res
}

// linePattern matches zygomys errors of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message carries one.
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
