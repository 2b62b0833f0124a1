// Package less renders Less stylesheets by running the Less browser build on
// a goja event loop.
package less

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/mattjoyce/polyc/internal/jsengine"
)

// Options mirrors the subset of less.render options the dispatcher sets.
type Options struct {
	Paths    []string // @import search path
	Compress bool
	IECompat bool
}

// Error is a render failure reported through the render callback.
type Error struct {
	Type     string
	Message  string
	Filename string
	Line     int // as reported by the engine, not adjusted
	Column   int // 0-based
	// Extract holds the source lines around the error; nil entries are lines
	// the engine had no text for.
	Extract []*string
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.Type, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Line, e.Column)
}

// Renderer turns Less into CSS. Render failures are returned as *Error; any
// other error means the engine itself could not run.
type Renderer interface {
	Render(ctx context.Context, code string, opts Options) (string, error)
}

// Engine runs less.js on a fresh event loop per call.
type Engine struct {
	script  *jsengine.Script
	prelude *jsengine.Script
	plugin  *jsengine.Script
}

// New loads the less.js browser build from path.
func New(path string) (*Engine, error) {
	script, err := jsengine.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFromScript(script)
}

// NewFromScript wraps an already compiled less.js script.
func NewFromScript(script *jsengine.Script) (*Engine, error) {
	prelude, err := jsengine.Compile("polyc-less-prelude.js", browserPrelude)
	if err != nil {
		return nil, err
	}
	plugin, err := jsengine.Compile("polyc-less-imports.js", importPlugin)
	if err != nil {
		return nil, err
	}
	return &Engine{script: script, prelude: prelude, plugin: plugin}, nil
}

// Check evaluates the script and verifies it exposes less.render.
func (e *Engine) Check() error {
	var checkErr error
	loop := eventloop.NewEventLoop()
	loop.Run(func(vm *goja.Runtime) {
		_, _, checkErr = e.entry(vm)
	})
	return checkErr
}

func (e *Engine) entry(vm *goja.Runtime) (*goja.Object, goja.Callable, error) {
	if err := e.prelude.Run(vm); err != nil {
		return nil, nil, err
	}
	if err := e.script.Run(vm); err != nil {
		return nil, nil, err
	}
	lessObj, err := jsengine.Global(vm, "less")
	if err != nil {
		return nil, nil, err
	}
	render, err := jsengine.Method(lessObj, "render")
	if err != nil {
		return nil, nil, err
	}
	if err := vm.Set("__polycReadImport", readImportFunc(vm)); err != nil {
		return nil, nil, err
	}
	if err := e.plugin.Run(vm); err != nil {
		return nil, nil, err
	}
	return lessObj, render, nil
}

// Render renders code and waits for the engine's completion callback.
func (e *Engine) Render(ctx context.Context, code string, opts Options) (string, error) {
	var (
		mu       sync.Mutex
		css      string
		result   error
		finished bool
		setupErr error
	)

	loop := eventloop.NewEventLoop()
	var stop func()
	loop.Run(func(vm *goja.Runtime) {
		stop = interruptLoop(ctx, loop, vm)

		lessObj, render, err := e.entry(vm)
		if err != nil {
			setupErr = err
			return
		}

		paths := make([]any, 0, len(opts.Paths))
		for _, p := range opts.Paths {
			paths = append(paths, p)
		}
		options := vm.NewObject()
		_ = options.Set("paths", vm.NewArray(paths...))
		_ = options.Set("compress", opts.Compress)
		_ = options.Set("ieCompat", opts.IECompat)
		_ = options.Set("plugins", vm.NewArray(vm.Get("__polycImportPlugin")))

		callback := func(call goja.FunctionCall) goja.Value {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return goja.Undefined()
			}
			finished = true

			if errVal := call.Argument(0); !goja.IsUndefined(errVal) && !goja.IsNull(errVal) {
				result = decodeError(errVal)
				return goja.Undefined()
			}
			output, ok := call.Argument(1).(*goja.Object)
			if !ok {
				result = errors.New("less render returned no output")
				return goja.Undefined()
			}
			css = jsengine.String(output, "css")
			return goja.Undefined()
		}

		if _, err := render(lessObj, vm.ToValue(code), options, vm.ToValue(callback)); err != nil {
			setupErr = err
		}
	})
	if stop != nil {
		stop()
	}

	if setupErr != nil {
		if cause, ok := jsengine.Interrupted(setupErr); ok {
			return "", fmt.Errorf("less render interrupted: %w", cause)
		}
		return "", fmt.Errorf("less render failed: %w", setupErr)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("less render interrupted: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !finished {
		return "", errors.New("less render finished without calling back")
	}
	return css, result
}

// interruptLoop interrupts vm and stops loop when ctx ends. Timers the script
// scheduled stay covered until the returned stop func is called.
func interruptLoop(ctx context.Context, loop *eventloop.EventLoop, vm *goja.Runtime) (stop func()) {
	stopVM := jsengine.InterruptOnDone(ctx, vm)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			loop.StopNoWait()
		case <-done:
		}
	}()
	return func() {
		close(done)
		stopVM()
	}
}

// decodeError converts the value passed to the render callback.
// Non-object values keep only their string form as the message.
func decodeError(v goja.Value) error {
	obj, ok := v.(*goja.Object)
	if !ok {
		return &Error{Message: v.String()}
	}

	e := &Error{
		Type:     jsengine.String(obj, "type"),
		Message:  jsengine.String(obj, "message"),
		Filename: jsengine.String(obj, "filename"),
		Extract:  jsengine.Strings(obj, "extract"),
	}
	e.Line, _ = jsengine.Int(obj, "line")
	e.Column, _ = jsengine.Int(obj, "column")
	return e
}
