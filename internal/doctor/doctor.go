// Package doctor validates polyc configuration and engine setup.
package doctor

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"

	"github.com/mattjoyce/polyc/internal/coffee"
	"github.com/mattjoyce/polyc/internal/config"
	"github.com/mattjoyce/polyc/internal/less"
	"github.com/mattjoyce/polyc/internal/transpile"
	"github.com/mattjoyce/polyc/internal/typescript"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// EngineCheck loads the engine script at path and checks its entry point.
type EngineCheck func(path string) error

// EngineChecks holds one EngineCheck per embedded engine.
type EngineChecks struct {
	CoffeeScript EngineCheck
	Less         EngineCheck
	TypeScript   EngineCheck
}

// DefaultEngineChecks evaluates the scripts in the embedded JS runtime. The
// TypeScript check also resolves the configured target.
func DefaultEngineChecks(cfg *config.Config) EngineChecks {
	tsOpts := typescript.Options{
		Target:         cfg.Engines.TypeScript.Target,
		ReactNamespace: cfg.Engines.TypeScript.ReactNamespace,
	}
	return EngineChecks{
		CoffeeScript: func(path string) error {
			e, err := coffee.New(path)
			if err != nil {
				return err
			}
			return e.Check()
		},
		Less: func(path string) error {
			e, err := less.New(path)
			if err != nil {
				return err
			}
			return e.Check()
		},
		TypeScript: func(path string) error {
			e, err := typescript.New(path, tsOpts)
			if err != nil {
				return err
			}
			return e.Check()
		},
	}
}

// Doctor validates a loaded configuration.
type Doctor struct {
	cfg    *config.Config
	checks EngineChecks
}

// New creates a Doctor from a loaded config.
func New(cfg *config.Config, checks EngineChecks) *Doctor {
	return &Doctor{cfg: cfg, checks: checks}
}

var (
	envVarRe     = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	jsxFactoryRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)
)

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateServiceConfig(r)
	d.validateEngine(r, "coffeescript", d.cfg.Engines.CoffeeScript.Script, d.checks.CoffeeScript)
	d.validateEngine(r, "less", d.cfg.Engines.Less.Script, d.checks.Less)
	d.validateLessPaths(r)
	if script := d.cfg.Engines.TypeScript.Script; script != "" {
		// Without a compiler script the JS pipeline uses esbuild.
		d.validateEngine(r, "typescript", script, d.checks.TypeScript)
	}
	d.validateTranspile(r)
	d.validateAPIConfig(r)
	d.validateIntegrity(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateServiceConfig checks logging settings.
func (d *Doctor) validateServiceConfig(r *Result) {
	switch strings.ToLower(d.cfg.Service.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		d.addError(r, "service", "service.log_level",
			fmt.Sprintf("unknown log level %q", d.cfg.Service.LogLevel))
	}
	switch strings.ToLower(d.cfg.Service.LogFormat) {
	case "json", "text":
	default:
		d.addError(r, "service", "service.log_format",
			fmt.Sprintf("unknown log format %q", d.cfg.Service.LogFormat))
	}
}

// validateEngine checks one engine script exists and evaluates.
func (d *Doctor) validateEngine(r *Result, name, script string, check EngineCheck) {
	field := fmt.Sprintf("engines.%s.script", name)

	if script == "" {
		d.addWarning(r, "engines", field,
			fmt.Sprintf("no %s script configured; %s requests will fail", name, name))
		return
	}

	if m := envVarRe.FindStringSubmatch(script); m != nil {
		d.addError(r, "env_vars", field, fmt.Sprintf("environment variable ${%s} not set", m[1]))
		return
	}

	info, err := os.Stat(script)
	if err != nil {
		d.addError(r, "engines", field, fmt.Sprintf("script not found: %s", script))
		return
	}
	if info.IsDir() {
		d.addError(r, "engines", field, fmt.Sprintf("script is a directory: %s", script))
		return
	}

	if check == nil {
		return
	}
	if err := check(script); err != nil {
		d.addError(r, "engines", field, fmt.Sprintf("script failed to load: %v", err))
	}
}

// validateLessPaths warns about @import directories that do not exist.
func (d *Doctor) validateLessPaths(r *Result) {
	for i, p := range d.cfg.Engines.Less.Paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			d.addWarning(r, "engines", fmt.Sprintf("engines.less.paths[%d]", i),
				fmt.Sprintf("import path %q is not a directory", p))
		}
	}
}

// validateTranspile checks the JS pipeline settings.
func (d *Doctor) validateTranspile(r *Result) {
	t := d.cfg.Transpile
	if _, err := transpile.New(transpile.Options{Target: t.Target}); err != nil {
		d.addError(r, "transpile", "transpile.target",
			fmt.Sprintf("%v (known: %s)", err, strings.Join(transpile.Targets(), ", ")))
	}
	if !jsxFactoryRe.MatchString(t.JSXFactory) {
		d.addError(r, "transpile", "transpile.jsx_factory",
			fmt.Sprintf("jsx_factory %q is not a dotted identifier", t.JSXFactory))
	}
	if t.JSXFragment != "" && !jsxFactoryRe.MatchString(t.JSXFragment) {
		d.addError(r, "transpile", "transpile.jsx_fragment",
			fmt.Sprintf("jsx_fragment %q is not a dotted identifier", t.JSXFragment))
	}
}

// validateAPIConfig checks serve-mode settings.
func (d *Doctor) validateAPIConfig(r *Result) {
	if _, _, err := net.SplitHostPort(d.cfg.API.Listen); err != nil {
		d.addError(r, "api", "api.listen", fmt.Sprintf("invalid listen address %q: %v", d.cfg.API.Listen, err))
	}
	if d.cfg.API.MaxBodySize <= 0 {
		d.addError(r, "api", "api.max_body_size", "max_body_size must be positive")
	}
}

// validateIntegrity checks engine scripts against .checksums.
func (d *Doctor) validateIntegrity(r *Result) {
	result, err := config.VerifyIntegrity(d.cfg)
	if err != nil {
		d.addError(r, "integrity", "", err.Error())
		return
	}
	for _, msg := range result.Errors {
		d.addError(r, "integrity", "", msg)
	}
	for _, msg := range result.Warnings {
		d.addWarning(r, "integrity", "", msg)
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
