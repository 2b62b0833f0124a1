// Package jsengine loads compiler scripts into goja runtimes and reads the
// error objects they throw.
package jsengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dop251/goja"
)

// ErrNoScript is returned when an engine has no script path configured.
var ErrNoScript = errors.New("no engine script configured")

// Script is a compiled engine script that can be run in any number of runtimes.
type Script struct {
	Path    string
	program *goja.Program
}

// Load reads and compiles the script at path.
func Load(path string) (*Script, error) {
	if path == "" {
		return nil, ErrNoScript
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine script: %w", err)
	}

	return Compile(path, string(src))
}

// Compile compiles src under the given name.
func Compile(name, src string) (*Script, error) {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile engine script %s: %w", name, err)
	}
	return &Script{Path: name, program: program}, nil
}

// Run executes the script in vm.
func (s *Script) Run(vm *goja.Runtime) error {
	if _, err := vm.RunProgram(s.program); err != nil {
		return fmt.Errorf("failed to evaluate engine script %s: %w", s.Path, err)
	}
	return nil
}

// Global returns the object a script exported under name.
func Global(vm *goja.Runtime, name string) (*goja.Object, error) {
	v := vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("engine script did not define %s", name)
	}
	return v.ToObject(vm), nil
}

// Method returns the callable property name of obj.
func Method(obj *goja.Object, name string) (goja.Callable, error) {
	fn, ok := goja.AssertFunction(obj.Get(name))
	if !ok {
		return nil, fmt.Errorf("engine entry point %s is not a function", name)
	}
	return fn, nil
}

// InterruptOnDone interrupts vm when ctx ends. The returned stop func must be
// called once the runtime is no longer in use.
func InterruptOnDone(ctx context.Context, vm *goja.Runtime) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Interrupted unwraps a goja interrupt into the value passed to Interrupt.
func Interrupted(err error) (error, bool) {
	var ie *goja.InterruptedError
	if !errors.As(err, &ie) {
		return nil, false
	}
	if cause, ok := ie.Value().(error); ok {
		return cause, true
	}
	return err, true
}

// Thrown returns the object a script threw, if err is a JS exception carrying one.
func Thrown(err error) (*goja.Object, bool) {
	var exc *goja.Exception
	if !errors.As(err, &exc) {
		return nil, false
	}
	v := exc.Value()
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	obj, ok := v.(*goja.Object)
	return obj, ok
}

// Present reports whether obj has a non-null, non-undefined property name.
func Present(obj *goja.Object, name string) bool {
	if obj == nil {
		return false
	}
	v := obj.Get(name)
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

// String reads a string property; missing values yield "".
func String(obj *goja.Object, name string) string {
	if !Present(obj, name) {
		return ""
	}
	return obj.Get(name).String()
}

// Int reads an integer property. ok is false when the property is missing or
// not a finite number.
func Int(obj *goja.Object, name string) (int, bool) {
	if !Present(obj, name) {
		return 0, false
	}
	f := obj.Get(name).ToFloat()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Object reads an object property.
func Object(obj *goja.Object, name string) (*goja.Object, bool) {
	if !Present(obj, name) {
		return nil, false
	}
	o, ok := obj.Get(name).(*goja.Object)
	return o, ok
}

// Strings reads an array property. Entries that are null or undefined come
// back as nil so callers can tell a missing line from an empty one.
func Strings(obj *goja.Object, name string) []*string {
	arr, ok := Object(obj, name)
	if !ok {
		return nil
	}
	n, ok := Int(arr, "length")
	if !ok {
		return nil
	}
	out := make([]*string, n)
	for i := 0; i < n; i++ {
		v := arr.Get(strconv.Itoa(i))
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		s := v.String()
		out[i] = &s
	}
	return out
}
