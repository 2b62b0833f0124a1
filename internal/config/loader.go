package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattjoyce/polyc/internal/log"
	"github.com/mattjoyce/polyc/internal/transpile"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML or TOML file (chosen by
// extension), applies defaults, resolves engine script paths relative to the
// file and verifies them against the .checksums manifest if one exists.
func Load(configPath string) (*Config, error) {
	cfg, err := LoadUnchecked(configPath)
	if err != nil {
		return nil, err
	}

	result, err := VerifyIntegrity(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		log.WithComponent("config").Warn(w)
	}
	if !result.Passed {
		return nil, fmt.Errorf("engine script integrity check failed:\n  %s", strings.Join(result.Errors, "\n  "))
	}

	return cfg, nil
}

// LoadUnchecked is Load without the integrity check, for tools that
// inspect or re-lock a config whose scripts have changed.
func LoadUnchecked(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := decode(absPath, []byte(interpolateEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.Path = absPath

	cfg = applyConfigDefaults(cfg)
	resolvePaths(cfg, filepath.Dir(absPath))

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefaults loads configPath, or the first discovered config when
// configPath is empty. With nothing to load it returns Defaults().
func LoadOrDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = Discover()
	}
	if configPath == "" {
		cfg := Defaults()
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return Load(configPath)
}

// Discover finds a config file by checking standard locations.
// Priority order: $POLYC_CONFIG, ~/.config/polyc/config.yaml, /etc/polyc/config.yaml.
// Returns "" when none exists.
func Discover() string {
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfig := filepath.Join(homeDir, ".config", "polyc", "config.yaml")
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig
		}
	}

	systemConfig := "/etc/polyc/config.yaml"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig
	}

	return ""
}

func decode(path string, data []byte) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// applyConfigDefaults fills every unset field from Defaults().
func applyConfigDefaults(cfg *Config) *Config {
	d := Defaults()

	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = d.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = d.Service.LogFormat
	}
	if cfg.Engines.CoffeeScript.Script == "" {
		cfg.Engines.CoffeeScript.Script = d.Engines.CoffeeScript.Script
	}
	if cfg.Engines.Less.Script == "" {
		cfg.Engines.Less.Script = d.Engines.Less.Script
	}
	if cfg.Engines.TypeScript.Script == "" {
		cfg.Engines.TypeScript.Script = d.Engines.TypeScript.Script
	}
	if cfg.Engines.TypeScript.Target == "" {
		cfg.Engines.TypeScript.Target = d.Engines.TypeScript.Target
	}
	if cfg.Engines.TypeScript.ReactNamespace == "" {
		cfg.Engines.TypeScript.ReactNamespace = d.Engines.TypeScript.ReactNamespace
	}
	if cfg.Transpile.Target == "" {
		cfg.Transpile.Target = d.Transpile.Target
	}
	if cfg.Transpile.JSXFactory == "" {
		cfg.Transpile.JSXFactory = d.Transpile.JSXFactory
	}
	if cfg.Transpile.JSXFragment == "" {
		cfg.Transpile.JSXFragment = d.Transpile.JSXFragment
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = d.API.Listen
	}
	if cfg.API.MaxBodySize <= 0 {
		cfg.API.MaxBodySize = d.API.MaxBodySize
	}
	return cfg
}

// resolvePaths makes engine scripts and Less search paths absolute relative to dir.
func resolvePaths(cfg *Config, dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	cfg.Engines.CoffeeScript.Script = abs(cfg.Engines.CoffeeScript.Script)
	cfg.Engines.Less.Script = abs(cfg.Engines.Less.Script)
	cfg.Engines.TypeScript.Script = abs(cfg.Engines.TypeScript.Script)
	for i, p := range cfg.Engines.Less.Paths {
		cfg.Engines.Less.Paths[i] = abs(p)
	}
}

func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		// If not found, leave the placeholder (will fail validation if required)
		return match
	})
}

func lookupEnv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if _, err := transpile.New(transpile.Options{Target: cfg.Transpile.Target}); err != nil {
		return fmt.Errorf("transpile.target: %w", err)
	}

	for _, s := range cfg.Scripts() {
		if envVarPattern.MatchString(s) {
			return fmt.Errorf("engine script %q references an unset environment variable", s)
		}
	}

	return nil
}
