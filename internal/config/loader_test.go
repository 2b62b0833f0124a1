package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func clearEngineEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvCoffeeScript, "")
	t.Setenv(EnvLess, "")
	t.Setenv(EnvTypeScript, "")
	t.Setenv(EnvConfig, "")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		env      map[string]string
		wantErr  string
		checkFn  func(t *testing.T, cfg *Config, dir string)
	}{
		{
			name:     "minimal yaml gets defaults",
			filename: "config.yaml",
			content: `
service:
  log_level: info
`,
			checkFn: func(t *testing.T, cfg *Config, dir string) {
				if cfg.Service.LogLevel != "info" {
					t.Errorf("log_level = %q, want info", cfg.Service.LogLevel)
				}
				if cfg.Service.LogFormat != "json" {
					t.Errorf("log_format default not applied: %q", cfg.Service.LogFormat)
				}
				if cfg.Transpile.Target != "es2015" {
					t.Errorf("target default not applied: %q", cfg.Transpile.Target)
				}
				if cfg.Transpile.JSXFactory != "DOM.createElement" {
					t.Errorf("jsx_factory default not applied: %q", cfg.Transpile.JSXFactory)
				}
				if cfg.API.Listen != "127.0.0.1:8787" {
					t.Errorf("listen default not applied: %q", cfg.API.Listen)
				}
				if cfg.API.MaxBodySize != 8<<20 {
					t.Errorf("max_body_size default not applied: %d", cfg.API.MaxBodySize)
				}
				if cfg.Path != filepath.Join(dir, "config.yaml") {
					t.Errorf("Path = %q", cfg.Path)
				}
			},
		},
		{
			name:     "relative scripts resolve against config dir",
			filename: "config.yaml",
			content: `
engines:
  coffeescript:
    script: vendor/coffee-script.js
  less:
    script: /opt/less/less.js
    paths:
      - styles
  typescript:
    script: vendor/typescript.js
    target: ES2015
`,
			checkFn: func(t *testing.T, cfg *Config, dir string) {
				if got, want := cfg.Engines.TypeScript.Script, filepath.Join(dir, "vendor", "typescript.js"); got != want {
					t.Errorf("typescript script = %q, want %q", got, want)
				}
				if cfg.Engines.TypeScript.Target != "ES2015" || cfg.Engines.TypeScript.ReactNamespace != "DOM" {
					t.Errorf("typescript engine = %+v", cfg.Engines.TypeScript)
				}
				if got, want := cfg.Engines.CoffeeScript.Script, filepath.Join(dir, "vendor", "coffee-script.js"); got != want {
					t.Errorf("coffeescript script = %q, want %q", got, want)
				}
				if cfg.Engines.Less.Script != "/opt/less/less.js" {
					t.Errorf("absolute less script changed: %q", cfg.Engines.Less.Script)
				}
				if len(cfg.Engines.Less.Paths) != 1 || cfg.Engines.Less.Paths[0] != filepath.Join(dir, "styles") {
					t.Errorf("less paths = %v", cfg.Engines.Less.Paths)
				}
			},
		},
		{
			name:     "env var interpolation",
			filename: "config.yaml",
			content: `
engines:
  coffeescript:
    script: ${COFFEE_HOME}/coffee-script.js
transpile:
  target: ${TARGET}
`,
			env: map[string]string{
				"COFFEE_HOME": "/srv/coffee",
				"TARGET":      "es2017",
			},
			checkFn: func(t *testing.T, cfg *Config, dir string) {
				if cfg.Engines.CoffeeScript.Script != "/srv/coffee/coffee-script.js" {
					t.Errorf("script = %q", cfg.Engines.CoffeeScript.Script)
				}
				if cfg.Transpile.Target != "es2017" {
					t.Errorf("target = %q", cfg.Transpile.Target)
				}
			},
		},
		{
			name:     "toml by extension",
			filename: "config.toml",
			content: `
[service]
log_level = "debug"
log_format = "text"

[transpile]
target = "es2020"

[api]
listen = ":9000"
`,
			checkFn: func(t *testing.T, cfg *Config, dir string) {
				if cfg.Service.LogLevel != "debug" || cfg.Service.LogFormat != "text" {
					t.Errorf("service = %+v", cfg.Service)
				}
				if cfg.Transpile.Target != "es2020" {
					t.Errorf("target = %q", cfg.Transpile.Target)
				}
				if cfg.API.Listen != ":9000" {
					t.Errorf("listen = %q", cfg.API.Listen)
				}
			},
		},
		{
			name:     "invalid log level",
			filename: "config.yaml",
			content:  "service:\n  log_level: loud\n",
			wantErr:  "log_level",
		},
		{
			name:     "invalid log format",
			filename: "config.yaml",
			content:  "service:\n  log_format: xml\n",
			wantErr:  "log_format",
		},
		{
			name:     "unknown target",
			filename: "config.yaml",
			content:  "transpile:\n  target: es1999\n",
			wantErr:  "transpile.target",
		},
		{
			name:     "unset env var in script",
			filename: "config.yaml",
			content:  "engines:\n  less:\n    script: ${POLYC_TEST_UNSET_VAR}/less.js\n",
			wantErr:  "unset environment variable",
		},
		{
			name:     "malformed yaml",
			filename: "config.yaml",
			content:  "service: [\n",
			wantErr:  "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEngineEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, tt.filename)
			writeTestFile(t, path, tt.content)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() error = nil, want %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg, dir)
			}
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	clearEngineEnv(t)
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "config.yaml"), "api:\n  listen: :7000\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir) error = %v", err)
	}
	if cfg.API.Listen != ":7000" {
		t.Errorf("listen = %q", cfg.API.Listen)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v, want not found", err)
	}
}

func TestLoadOrDefaultsUsesEnvScripts(t *testing.T) {
	clearEngineEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvCoffeeScript, "/js/coffee-script.js")
	t.Setenv(EnvLess, "  /js/less.js  ")
	t.Setenv(EnvTypeScript, "/js/typescript.js")

	if Discover() != "" {
		t.Skip("a system-wide polyc config is installed")
	}

	cfg, err := LoadOrDefaults("")
	if err != nil {
		t.Fatalf("LoadOrDefaults() error = %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.Engines.CoffeeScript.Script != "/js/coffee-script.js" {
		t.Errorf("coffeescript script = %q", cfg.Engines.CoffeeScript.Script)
	}
	if cfg.Engines.Less.Script != "/js/less.js" {
		t.Errorf("less script = %q", cfg.Engines.Less.Script)
	}
	if cfg.Engines.TypeScript.Script != "/js/typescript.js" || cfg.Engines.TypeScript.Target != "ES5" {
		t.Errorf("typescript engine = %+v", cfg.Engines.TypeScript)
	}
	if got := cfg.Scripts(); len(got) != 3 {
		t.Errorf("Scripts() = %v", got)
	}
}

func TestDiscoverPrefersEnv(t *testing.T) {
	clearEngineEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeTestFile(t, path, "service:\n  log_level: warn\n")
	t.Setenv(EnvConfig, path)

	if got := Discover(); got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestDiscoverUserConfig(t *testing.T) {
	clearEngineEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".config", "polyc", "config.yaml")
	writeTestFile(t, path, "service:\n  log_level: warn\n")

	if got := Discover(); got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestInterpolateEnvLeavesUnknown(t *testing.T) {
	t.Setenv("POLYC_KNOWN", "yes")
	got := interpolateEnv("a=${POLYC_KNOWN} b=${POLYC_DEFINITELY_UNSET_X}")
	if got != "a=yes b=${POLYC_DEFINITELY_UNSET_X}" {
		t.Errorf("interpolateEnv() = %q", got)
	}
}
