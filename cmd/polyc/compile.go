package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattjoyce/polyc/internal/coffee"
	"github.com/mattjoyce/polyc/internal/config"
	"github.com/mattjoyce/polyc/internal/detect"
	"github.com/mattjoyce/polyc/internal/dispatch"
	"github.com/mattjoyce/polyc/internal/inspect"
	"github.com/mattjoyce/polyc/internal/less"
	"github.com/mattjoyce/polyc/internal/log"
	"github.com/mattjoyce/polyc/internal/protocol"
	"github.com/mattjoyce/polyc/internal/transpile"
	"github.com/mattjoyce/polyc/internal/typescript"
)

// stdin is the stream-mode request source.
var stdin io.Reader = os.Stdin

type compileFlags struct {
	file       string
	lang       string
	configPath string
	logLevel   string
}

func newCompileFlagSet(name string) (*flag.FlagSet, *compileFlags) {
	f := &compileFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.file, "file", "", "Source file to compile (omit to read a JSON request from stdin)")
	fs.StringVar(&f.lang, "lang", string(protocol.DefaultLang), "Source language in file mode")
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&f.logLevel, "log-level", "", "Override service.log_level")
	return fs, f
}

func runCompile(args []string) int {
	fs, f := newCompileFlagSet("compile")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Unexpected arguments: %v\n", fs.Args())
		return exitUsage
	}

	_, resp, code := compileOnce(f)
	if resp == nil {
		return code
	}

	if err := protocol.EncodeResponse(os.Stdout, resp); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write response: %v\n", err)
		return exitFatal
	}
	return exitOK
}

func runCheck(args []string) int {
	fs, f := newCompileFlagSet("check")
	plain := fs.Bool("plain", false, "Disable colors")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if f.file == "" {
		fmt.Fprintln(os.Stderr, "Usage: polyc check --file <path> [--lang <lang>] [--plain]")
		return exitUsage
	}

	req, resp, code := compileOnce(f)
	if resp == nil {
		return code
	}

	theme := inspect.NewDefaultTheme()
	if *plain {
		theme = inspect.NewPlainTheme()
	}
	fmt.Print(inspect.BuildReport(req, resp, theme))

	if resp.IsError() {
		return exitFatal
	}
	return exitOK
}

// compileOnce loads config, builds the engine for the request and
// dispatches it. A nil Response means the returned exit code is final and
// nothing may be written to stdout.
func compileOnce(f *compileFlags) (*protocol.Request, *protocol.Response, int) {
	cfg, err := config.LoadOrDefaults(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, nil, exitFatal
	}
	setupLogging(cfg, f.logLevel)

	requestID := uuid.NewString()
	logger := log.WithRequest(requestID)

	req, err := readRequest(f)
	if err != nil {
		logger.Error("failed to read request", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, exitFatal
	}
	if !req.Lang.Known() {
		logger.Error("unsupported lang", "lang", string(req.Lang))
		fmt.Fprintf(os.Stderr, "Error: %v: %s\n", dispatch.ErrUnsupportedLang, req.Lang)
		return nil, nil, exitFatal
	}

	d, _, err := buildDispatcher(cfg, func(l protocol.Lang) bool { return l == req.Lang })
	if err != nil {
		logger.Error("failed to initialize engines", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, exitFatal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := d.WithLogger(logger.With("component", "dispatch")).Dispatch(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, exitFatal
	}
	return req, resp, exitOK
}

// readRequest builds the request from --file, or decodes stdin.
func readRequest(f *compileFlags) (*protocol.Request, error) {
	if f.file == "" {
		return protocol.DecodeRequest(stdin)
	}

	data, err := os.ReadFile(f.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.file, err)
	}
	return &protocol.Request{
		Code: string(data),
		Lang: protocol.Lang(f.lang),
		File: f.file,
	}, nil
}

// buildDispatcher loads the engines selected by need. Engines without a
// configured script stay nil so their languages report ErrEngineUnavailable.
// The JS pipeline runs typescript.js when configured and esbuild otherwise.
func buildDispatcher(cfg *config.Config, need func(protocol.Lang) bool) (*dispatch.Dispatcher, map[protocol.Lang]bool, error) {
	available := map[protocol.Lang]bool{
		protocol.LangJavaScript: true,
		protocol.LangTypeScript: true,
	}

	var cs dispatch.CoffeeCompiler
	if script := cfg.Engines.CoffeeScript.Script; script != "" && need(protocol.LangCoffeeScript) {
		e, err := coffee.New(script)
		if err != nil {
			return nil, nil, fmt.Errorf("coffeescript engine: %w", err)
		}
		cs = e
		available[protocol.LangCoffeeScript] = true
	}

	var lr dispatch.LessRenderer
	if script := cfg.Engines.Less.Script; script != "" && need(protocol.LangLess) {
		e, err := less.New(script)
		if err != nil {
			return nil, nil, fmt.Errorf("less engine: %w", err)
		}
		lr = e
		available[protocol.LangLess] = true
	}

	var ts dispatch.Transpiler
	jsFamily := need(protocol.LangCoffeeScript) || need(protocol.LangJavaScript) || need(protocol.LangTypeScript)
	if script := cfg.Engines.TypeScript.Script; script != "" && jsFamily {
		e, err := typescript.New(script, typescript.Options{
			Target:         cfg.Engines.TypeScript.Target,
			ReactNamespace: cfg.Engines.TypeScript.ReactNamespace,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("typescript engine: %w", err)
		}
		ts = e
	} else {
		e, err := transpile.New(transpile.Options{
			Target:      cfg.Transpile.Target,
			JSXFactory:  cfg.Transpile.JSXFactory,
			JSXFragment: cfg.Transpile.JSXFragment,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("transpiler: %w", err)
		}
		ts = e
	}

	d := dispatch.New(cs, lr, ts, detect.New(), dispatch.Options{
		LessPaths: cfg.Engines.Less.Paths,
	})
	return d, available, nil
}

func setupLogging(cfg *config.Config, override string) {
	level := cfg.Service.LogLevel
	if override != "" {
		level = override
	}
	log.Setup(level, cfg.Service.LogFormat)
}
