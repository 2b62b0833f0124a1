package config

// Config represents the complete polyc configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service" toml:"service"`
	Engines   EnginesConfig   `yaml:"engines" toml:"engines"`
	Transpile TranspileConfig `yaml:"transpile" toml:"transpile"`
	API       APIConfig       `yaml:"api,omitempty" toml:"api"`

	// Path is the file the config was loaded from; empty when using defaults.
	Path string `yaml:"-" toml:"-"`
}

// ServiceConfig defines logging settings.
type ServiceConfig struct {
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"` // json | text
}

// EnginesConfig locates the compiler scripts run in the embedded JS runtime.
type EnginesConfig struct {
	CoffeeScript CoffeeScriptEngine `yaml:"coffeescript" toml:"coffeescript"`
	Less         LessEngine         `yaml:"less" toml:"less"`
	TypeScript   TypeScriptEngine   `yaml:"typescript" toml:"typescript"`
}

// CoffeeScriptEngine points at the CoffeeScript browser compiler (coffee-script.js).
type CoffeeScriptEngine struct {
	Script string `yaml:"script" toml:"script"`
}

// LessEngine points at the Less browser build (less.js).
type LessEngine struct {
	Script string `yaml:"script" toml:"script"`
	// Paths are extra @import search directories, tried after the
	// directory of the file being compiled.
	Paths []string `yaml:"paths,omitempty" toml:"paths"`
}

// TypeScriptEngine points at the TypeScript compiler (typescript.js). When a
// script is set, the JS pipeline runs transpileModule instead of esbuild.
type TypeScriptEngine struct {
	Script         string `yaml:"script" toml:"script"`
	Target         string `yaml:"target" toml:"target"` // ts.ScriptTarget member
	ReactNamespace string `yaml:"react_namespace" toml:"react_namespace"`
}

// TranspileConfig defines the esbuild transform used when no TypeScript
// compiler script is configured.
type TranspileConfig struct {
	Target      string `yaml:"target" toml:"target"`
	JSXFactory  string `yaml:"jsx_factory" toml:"jsx_factory"`
	JSXFragment string `yaml:"jsx_fragment" toml:"jsx_fragment"`
}

// APIConfig defines the serve-mode HTTP listener.
type APIConfig struct {
	Listen      string `yaml:"listen" toml:"listen"`
	MaxBodySize int64  `yaml:"max_body_size" toml:"max_body_size"`
}

// Environment variables consulted for defaults.
const (
	EnvConfig       = "POLYC_CONFIG"
	EnvCoffeeScript = "POLYC_COFFEESCRIPT_JS"
	EnvLess         = "POLYC_LESS_JS"
	EnvTypeScript   = "POLYC_TYPESCRIPT_JS"
)

// Defaults returns a Config with sensible defaults. Engine scripts come from
// the environment when set.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			LogLevel:  "warn",
			LogFormat: "json",
		},
		Engines: EnginesConfig{
			CoffeeScript: CoffeeScriptEngine{Script: lookupEnv(EnvCoffeeScript)},
			Less:         LessEngine{Script: lookupEnv(EnvLess)},
			TypeScript: TypeScriptEngine{
				Script:         lookupEnv(EnvTypeScript),
				Target:         "ES5",
				ReactNamespace: "DOM",
			},
		},
		Transpile: TranspileConfig{
			Target:      "es2015",
			JSXFactory:  "DOM.createElement",
			JSXFragment: "DOM.Fragment",
		},
		API: APIConfig{
			Listen:      "127.0.0.1:8787",
			MaxBodySize: 8 << 20,
		},
	}
}

// Scripts returns the configured engine script paths, skipping unset ones.
func (c *Config) Scripts() []string {
	var out []string
	for _, s := range []string{c.Engines.CoffeeScript.Script, c.Engines.Less.Script, c.Engines.TypeScript.Script} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
