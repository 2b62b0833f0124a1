package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mattjoyce/polyc/internal/coffee"
	"github.com/mattjoyce/polyc/internal/less"
	"github.com/mattjoyce/polyc/internal/log"
	"github.com/mattjoyce/polyc/internal/protocol"
)

var (
	// ErrUnsupportedLang is returned for a lang outside the routed set.
	ErrUnsupportedLang = errors.New("unsupported input type")

	// ErrEngineUnavailable is returned when the compiler for a lang is not configured.
	ErrEngineUnavailable = errors.New("compiler engine unavailable")

	// ErrMissingFile is returned for a Less request without a file; its
	// directory is the first @import search path.
	ErrMissingFile = errors.New("less request has no file to resolve imports from")
)

// Options holds dispatcher settings that do not come from the request.
type Options struct {
	// LessPaths are searched for @import after the request file's directory.
	LessPaths []string
}

// Dispatcher routes requests to the compiler for their language.
// A nil collaborator makes its languages fail with ErrEngineUnavailable.
type Dispatcher struct {
	coffee   CoffeeCompiler
	less     LessRenderer
	ts       Transpiler
	detector Detector
	opts     Options
	logger   *slog.Logger
}

// New creates a new Dispatcher.
func New(cs CoffeeCompiler, lr LessRenderer, ts Transpiler, det Detector, opts Options) *Dispatcher {
	return &Dispatcher{
		coffee:   cs,
		less:     lr,
		ts:       ts,
		detector: det,
		opts:     opts,
		logger:   log.WithComponent("dispatch"),
	}
}

// WithLogger returns a copy of d that logs through logger.
func (d *Dispatcher) WithLogger(logger *slog.Logger) *Dispatcher {
	c := *d
	c.logger = logger
	return &c
}

// Dispatch compiles req and returns the single Response for it.
// A non-nil error means no Response may be written.
func (d *Dispatcher) Dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	start := time.Now()
	logger := d.logger.With("lang", string(req.Lang), "file", req.File)
	logger.Debug("dispatching request", "bytes", len(req.Code))

	resp, err := d.route(ctx, req)
	if err != nil {
		logger.Error("dispatch failed", "error", err)
		return nil, err
	}

	if resp.IsError() {
		logger.Info("compilation failed", "duration_ms", time.Since(start).Milliseconds(), "error", fmt.Sprint(resp.Error))
	} else {
		logger.Info("compilation succeeded", "duration_ms", time.Since(start).Milliseconds(), "deps", len(resp.Deps))
	}
	return resp, nil
}

func (d *Dispatcher) route(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var code string

	switch req.Lang {
	case protocol.LangCoffeeScript:
		out, resp, err := d.compileCoffee(ctx, req)
		if err != nil || resp != nil {
			return resp, err
		}
		code = out
	case protocol.LangJavaScript, protocol.LangTypeScript:
		code = req.Code
	case protocol.LangLess:
		return d.renderLess(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLang, req.Lang)
	}

	return d.compileJS(code, req.File)
}

// compileCoffee returns either the compiled JavaScript or an error Response.
func (d *Dispatcher) compileCoffee(ctx context.Context, req *protocol.Request) (string, *protocol.Response, error) {
	if d.coffee == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, protocol.LangCoffeeScript)
	}

	out, err := d.coffee.Compile(ctx, req.Code, coffee.Options{Bare: true, ShiftLine: true})
	if err != nil {
		var cerr *coffee.Error
		if errors.As(err, &cerr) {
			return "", protocol.Failure(CoffeeScriptError(cerr, req.File)), nil
		}
		return "", nil, fmt.Errorf("coffeescript engine: %w", err)
	}
	return out, nil, nil
}

func (d *Dispatcher) renderLess(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if d.less == nil {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, protocol.LangLess)
	}
	if req.File == "" {
		return nil, ErrMissingFile
	}

	opts := less.Options{
		Paths:    append([]string{filepath.Dir(req.File)}, d.opts.LessPaths...),
		Compress: true,
		IECompat: false,
	}

	css, err := d.less.Render(ctx, req.Code, opts)
	if err != nil {
		var lerr *less.Error
		if errors.As(err, &lerr) {
			return protocol.Failure(LessError(lerr, req.File)), nil
		}
		return nil, fmt.Errorf("less engine: %w", err)
	}
	return protocol.Success(css, nil), nil
}

// compileJS is the pipeline shared by every JS-family language.
func (d *Dispatcher) compileJS(code, file string) (*protocol.Response, error) {
	if d.ts == nil || d.detector == nil {
		return nil, fmt.Errorf("%w: transpiler", ErrEngineUnavailable)
	}

	out, err := d.ts.Transpile(code, file)
	if err != nil {
		return nil, fmt.Errorf("transpiler: %w", err)
	}

	if len(out.Diagnostics) > 0 {
		if len(out.Diagnostics) > 1 {
			d.logger.Debug("dropping extra diagnostics", "count", len(out.Diagnostics)-1)
		}
		return protocol.Failure(TypeScriptError(out.Diagnostics[0])), nil
	}

	deps, err := d.detector.Detect(out.Text)
	if err != nil {
		return protocol.Failure(detectionError(err)), nil
	}
	if deps == nil {
		deps = []string{}
	}
	return protocol.Success(out.Text, deps), nil
}

// detectionError is the value a detection failure is reported with: the error
// itself, unless it would encode as an empty object, in which case its message.
func detectionError(err error) any {
	data, mErr := json.Marshal(err)
	if mErr != nil || !bytes.HasPrefix(data, []byte("{")) || bytes.Equal(data, []byte("{}")) {
		return err.Error()
	}
	return err
}
