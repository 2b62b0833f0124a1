// Package typescript transpiles JS-family modules with the TypeScript
// compiler's transpileModule, run inside an embedded JavaScript runtime.
package typescript

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/mattjoyce/polyc/internal/jsengine"
	"github.com/mattjoyce/polyc/internal/transpile"
)

// Options selects the compiler options passed to transpileModule.
type Options struct {
	// Target names a ts.ScriptTarget member. Matching ignores case.
	Target string
	// ReactNamespace is the object JSX elements are created on.
	ReactNamespace string
}

// DefaultOptions returns ES5 output with JSX compiled against DOM.
func DefaultOptions() Options {
	return Options{Target: "ES5", ReactNamespace: "DOM"}
}

// Engine runs typescript.js. The compiler is evaluated once and its runtime
// reused for later calls; calls are serialized.
type Engine struct {
	script *jsengine.Script
	opts   Options

	mu sync.Mutex
	c  *compiler
}

// compiler is an evaluated typescript.js with its entry points resolved.
type compiler struct {
	vm        *goja.Runtime
	ts        *goja.Object
	transpile goja.Callable
	flatten   goja.Callable

	target int
	module int
	jsx    int
}

// New loads typescript.js from path.
func New(path string, opts Options) (*Engine, error) {
	script, err := jsengine.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFromScript(script, opts), nil
}

// NewFromScript wraps an already compiled typescript.js.
func NewFromScript(script *jsengine.Script, opts Options) *Engine {
	d := DefaultOptions()
	if opts.Target == "" {
		opts.Target = d.Target
	}
	if opts.ReactNamespace == "" {
		opts.ReactNamespace = d.ReactNamespace
	}
	return &Engine{script: script, opts: opts}
}

// Check evaluates the script in a fresh runtime and verifies the entry points
// and the configured target.
func (e *Engine) Check() error {
	_, err := e.load(goja.New())
	return err
}

func (e *Engine) load(vm *goja.Runtime) (*compiler, error) {
	if err := e.script.Run(vm); err != nil {
		return nil, err
	}
	ts, err := jsengine.Global(vm, "ts")
	if err != nil {
		return nil, err
	}

	c := &compiler{vm: vm, ts: ts}
	if c.transpile, err = jsengine.Method(ts, "transpileModule"); err != nil {
		return nil, err
	}
	if c.flatten, err = jsengine.Method(ts, "flattenDiagnosticMessageText"); err != nil {
		return nil, err
	}
	if c.target, err = enumMember(ts, "ScriptTarget", e.opts.Target); err != nil {
		return nil, err
	}
	if c.module, err = enumMember(ts, "ModuleKind", "CommonJS"); err != nil {
		return nil, err
	}
	if c.jsx, err = enumMember(ts, "JsxEmit", "React"); err != nil {
		return nil, err
	}
	return c, nil
}

// enumMember reads the numeric value of a compiler enum member.
func enumMember(ts *goja.Object, enum, member string) (int, error) {
	obj, ok := jsengine.Object(ts, enum)
	if !ok {
		return 0, fmt.Errorf("engine script did not define ts.%s", enum)
	}
	for _, key := range obj.Keys() {
		if !strings.EqualFold(key, member) {
			continue
		}
		if v, ok := jsengine.Int(obj, key); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("ts.%s has no member %q", enum, member)
}

// Transpile runs transpileModule on code. An empty fileName becomes
// transpile.DefaultFileName. Every reported diagnostic is returned.
func (e *Engine) Transpile(code, fileName string) (*transpile.Output, error) {
	if fileName == "" {
		fileName = transpile.DefaultFileName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.c == nil {
		c, err := e.load(goja.New())
		if err != nil {
			return nil, err
		}
		e.c = c
	}
	c := e.c

	out, err := c.run(code, fileName, e.opts.ReactNamespace)
	if err != nil {
		// A throw can leave compiler state half updated.
		e.c = nil
		return nil, err
	}
	return out, nil
}

func (c *compiler) run(code, fileName, reactNamespace string) (*transpile.Output, error) {
	vm := c.vm

	compilerOptions := vm.NewObject()
	_ = compilerOptions.Set("noEmitOnError", false)
	_ = compilerOptions.Set("noImplicitAny", false)
	_ = compilerOptions.Set("target", c.target)
	_ = compilerOptions.Set("module", c.module)
	_ = compilerOptions.Set("jsx", c.jsx)
	_ = compilerOptions.Set("reactNamespace", reactNamespace)

	input := vm.NewObject()
	_ = input.Set("fileName", fileName)
	_ = input.Set("reportDiagnostics", true)
	_ = input.Set("compilerOptions", compilerOptions)

	res, err := c.transpile(c.ts, vm.ToValue(code), input)
	if err != nil {
		return nil, fmt.Errorf("typescript transpile failed: %w", err)
	}
	result, ok := res.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("typescript transpile returned %s", res)
	}

	out := &transpile.Output{Text: jsengine.String(result, "outputText")}

	diags, ok := jsengine.Object(result, "diagnostics")
	if !ok {
		return out, nil
	}
	n, _ := jsengine.Int(diags, "length")
	for i := 0; i < n; i++ {
		d, ok := diags.Get(strconv.Itoa(i)).(*goja.Object)
		if !ok {
			continue
		}
		diag, err := c.diagnostic(d, fileName)
		if err != nil {
			return nil, err
		}
		out.Diagnostics = append(out.Diagnostics, diag)
	}
	return out, nil
}

// diagnostic converts a ts.Diagnostic. Diagnostics without a source file are
// placed at the start of fileName.
func (c *compiler) diagnostic(d *goja.Object, fileName string) (transpile.Diagnostic, error) {
	diag := transpile.Diagnostic{FileName: fileName}

	messageText := d.Get("messageText")
	if messageText == nil {
		messageText = goja.Undefined()
	}
	msg, err := c.flatten(c.ts, messageText, c.vm.ToValue("\n"))
	if err != nil {
		return diag, fmt.Errorf("typescript diagnostic message: %w", err)
	}
	diag.Message = transpile.MessageChain{Text: msg.String()}

	file, ok := jsengine.Object(d, "file")
	if !ok {
		return diag, nil
	}
	if name := jsengine.String(file, "fileName"); name != "" {
		diag.FileName = name
	}

	position, err := jsengine.Method(file, "getLineAndCharacterOfPosition")
	if err != nil {
		return diag, err
	}
	start, _ := jsengine.Int(d, "start")
	lc, err := position(file, c.vm.ToValue(start))
	if err != nil {
		return diag, fmt.Errorf("typescript diagnostic position: %w", err)
	}
	if obj, ok := lc.(*goja.Object); ok {
		diag.Line, _ = jsengine.Int(obj, "line")
		diag.Character, _ = jsengine.Int(obj, "character")
	}
	return diag, nil
}
