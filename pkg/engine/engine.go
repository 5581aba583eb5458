// Package engine provides the Lisp evaluation engine for tricsg.
// It wraps zygomys in a sandboxed environment and produces a DesignGraph
// of CSG primitives, transforms and booleans from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/tricsg/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
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

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// DefaultTimeout bounds an evaluation when Engine.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Engine wraps the zygomys interpreter for tricsg evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds one evaluation; zero selects DefaultTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

type outcome struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// Evaluate takes Lisp source code and produces a new DesignGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval/validation failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine timeout.
// A result that arrives after a newer evaluation started is discarded.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*graph.DesignGraph, []EvalError, error) {
	gen := e.begin()

	limit := e.Timeout
	if limit <= 0 {
		limit = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: errors.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(ctx, source)
		ch <- outcome{graph: g, errors: evalErrs, err: err}
	}()

	select {
	case res := <-ch:
		// Builtins fail once ctx is done, so a late result is a timeout.
		if ctx.Err() != nil {
			return nil, nil, stopped(ctx, limit)
		}
		if !e.current(gen) {
			return nil, nil, errors.New("evaluation superseded by newer request")
		}
		return res.graph, res.errors, res.err

	case <-ctx.Done():
		return nil, nil, stopped(ctx, limit)
	}
}

func stopped(ctx context.Context, limit time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrapf(ctx.Err(), "evaluation timed out after %s", limit)
	}
	return errors.Wrap(ctx.Err(), "evaluation cancelled")
}

// begin starts a new generation and returns it.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// current reports whether gen is still the latest generation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string) (*graph.DesignGraph, []EvalError, error) {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return graph.New(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New()
	registerBuiltins(ctx, env, g)

	// Load and compile the source string into bytecode.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	// Structural and geometric errors block rendering.
	if errs := graph.ValidateAll(g).Errors; len(errs) > 0 {
		evalErrs := make([]EvalError, 0, len(errs))
		for _, e := range errs {
			evalErrs = append(evalErrs, EvalError{Message: e.Error()})
		}
		return nil, evalErrs, nil
	}

	return g, nil, nil
}

// Warnings returns the advisory findings for a graph produced by Evaluate.
func Warnings(g *graph.DesignGraph) []EvalWarning {
	if g == nil {
		return nil
	}
	var out []EvalWarning
	for _, w := range graph.ValidateAll(g).Warnings {
		out = append(out, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	return out
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
