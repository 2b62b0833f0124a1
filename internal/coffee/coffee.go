// Package coffee compiles CoffeeScript by running the CoffeeScript browser
// compiler inside an embedded JavaScript runtime.
package coffee

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"github.com/mattjoyce/polyc/internal/jsengine"
)

// Options mirrors the compile options of the CoffeeScript compiler.
type Options struct {
	// Bare omits the top-level function wrapper.
	Bare bool
	// ShiftLine compensates for the compiler's internal leading line so
	// reported error lines match the caller's source.
	ShiftLine bool
}

// Location is the 0-based span the compiler attaches to syntax errors.
// LastLine is -1 when the compiler did not report one.
type Location struct {
	FirstLine   int
	FirstColumn int
	LastLine    int
	LastColumn  int
}

// Error is a compilation failure thrown by the compiler.
type Error struct {
	Message  string
	Location *Location // nil when the error carries no position
	Code     string    // source text the compiler captured
}

func (e *Error) Error() string {
	if e.Location == nil {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Location.FirstLine+1, e.Location.FirstColumn+1, e.Message)
}

// Compiler turns CoffeeScript into JavaScript.
// Compilation failures are returned as *Error; any other error means the
// engine itself could not run.
type Compiler interface {
	Compile(ctx context.Context, code string, opts Options) (string, error)
}

// Engine runs the CoffeeScript browser compiler in a fresh goja runtime per call.
type Engine struct {
	script *jsengine.Script
}

// New loads the compiler script at path.
func New(path string) (*Engine, error) {
	script, err := jsengine.Load(path)
	if err != nil {
		return nil, err
	}
	return &Engine{script: script}, nil
}

// NewFromScript wraps an already compiled script.
func NewFromScript(script *jsengine.Script) *Engine {
	return &Engine{script: script}
}

// Check evaluates the script and verifies it exposes CoffeeScript.compile.
func (e *Engine) Check() error {
	_, _, err := e.entry(goja.New())
	return err
}

func (e *Engine) entry(vm *goja.Runtime) (*goja.Object, goja.Callable, error) {
	if err := e.script.Run(vm); err != nil {
		return nil, nil, err
	}
	cs, err := jsengine.Global(vm, "CoffeeScript")
	if err != nil {
		return nil, nil, err
	}
	compile, err := jsengine.Method(cs, "compile")
	if err != nil {
		return nil, nil, err
	}
	return cs, compile, nil
}

// Compile compiles code. A thrown compiler error is decoded into *Error.
func (e *Engine) Compile(ctx context.Context, code string, opts Options) (string, error) {
	vm := goja.New()
	stop := jsengine.InterruptOnDone(ctx, vm)
	defer stop()

	cs, compile, err := e.entry(vm)
	if err != nil {
		return "", err
	}

	options := vm.ToValue(map[string]any{
		"bare":      opts.Bare,
		"shiftLine": opts.ShiftLine,
	})

	out, err := compile(cs, vm.ToValue(code), options)
	if err != nil {
		if cause, ok := jsengine.Interrupted(err); ok {
			return "", fmt.Errorf("coffeescript compile interrupted: %w", cause)
		}
		if obj, ok := jsengine.Thrown(err); ok {
			return "", decodeError(obj)
		}
		return "", fmt.Errorf("coffeescript compile failed: %w", err)
	}

	return out.String(), nil
}

// decodeError reads the fields the compiler sets on a thrown SyntaxError.
func decodeError(obj *goja.Object) *Error {
	e := &Error{
		Message: jsengine.String(obj, "message"),
		Code:    jsengine.String(obj, "code"),
	}

	loc, ok := jsengine.Object(obj, "location")
	if !ok {
		return e
	}

	firstLine, _ := jsengine.Int(loc, "first_line")
	firstColumn, _ := jsengine.Int(loc, "first_column")
	lastLine, ok := jsengine.Int(loc, "last_line")
	if !ok {
		lastLine = -1
	}
	lastColumn, ok := jsengine.Int(loc, "last_column")
	if !ok {
		lastColumn = firstColumn
	}

	e.Location = &Location{
		FirstLine:   firstLine,
		FirstColumn: firstColumn,
		LastLine:    lastLine,
		LastColumn:  lastColumn,
	}
	return e
}
