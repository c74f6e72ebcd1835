// Package config resolves batchsync settings from JSONC files and command
// line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/batchsync/internal/fetch"
)

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrRootEmpty          = errors.New("root cannot be empty")
	ErrYearInvalid        = errors.New("year must be a single path segment")
	ErrSheetIDEmpty       = errors.New("sheet_id cannot be empty")
	ErrEndpointInvalid    = errors.New("endpoint must be an http(s) URL template")
)

// Built-in defaults.
const (
	DefaultSheetID = "1usKC2Wq8kW6Wuo5yx5rK6SJuFEZIPCDckxsY8zlszgs"
	DefaultYear    = "2022"
	DefaultGID     = "0"
	DefaultRoot    = "_batches"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".batchsync.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	SheetID   string   `json:"sheet_id"`
	Year      string   `json:"year"`
	GID       string   `json:"gid"`
	Root      string   `json:"root"`
	Endpoints []string `json:"endpoints,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	RootAbs      string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SheetID:   DefaultSheetID,
		Year:      DefaultYear,
		GID:       DefaultGID,
		Root:      DefaultRoot,
		Endpoints: append([]string(nil), fetch.DefaultEndpoints...),
	}
}

// GlobalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/batchsync/config.json if set, otherwise
// ~/.config/batchsync/config.json. Returns "" if neither is known.
func GlobalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "batchsync", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "batchsync", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config value
	Overrides       Config            // non-empty fields win over every file
	Env             map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config
//  3. Project config ([FileName] in the working directory, if present)
//     or the explicit config file, which then must exist
//  4. Overrides from the command line
//
// Root is resolved against the working directory into RootAbs.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	} else if !filepath.IsAbs(workDir) {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
		}

		workDir = abs
	}

	cfg := Default()

	if path := GlobalPath(input.Env); path != "" {
		fileCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Sources.Global = path
		}
	}

	path, mustExist := filepath.Join(workDir, FileName), false

	if input.ConfigPath != "" {
		path, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	fileCfg, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, fileCfg)
		cfg.Sources.Project = path
	}

	cfg = merge(cfg, input.Overrides)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.Root) {
		cfg.RootAbs = cfg.Root
	} else {
		cfg.RootAbs = filepath.Join(workDir, cfg.Root)
	}

	return cfg, nil
}

// Format renders the serialized fields as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}

// loadFile reads one config file. Missing optional files report loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "root": "" would silently fall back to a lower layer.
	var raw map[string]json.RawMessage

	_ = json.Unmarshal(standardized, &raw)

	if val, ok := raw["root"]; ok && string(val) == `""` {
		return Config{}, ErrRootEmpty
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.SheetID != "" {
		base.SheetID = overlay.SheetID
	}

	if overlay.Year != "" {
		base.Year = overlay.Year
	}

	if overlay.GID != "" {
		base.GID = overlay.GID
	}

	if overlay.Root != "" {
		base.Root = overlay.Root
	}

	if len(overlay.Endpoints) > 0 {
		base.Endpoints = append([]string(nil), overlay.Endpoints...)
	}

	return base
}

func validate(cfg Config) error {
	if cfg.Root == "" {
		return ErrRootEmpty
	}

	if cfg.SheetID == "" {
		return ErrSheetIDEmpty
	}

	if cfg.Year == "" || cfg.Year == "." || cfg.Year == ".." || strings.ContainsAny(cfg.Year, `/\`) {
		return fmt.Errorf("%w: %q", ErrYearInvalid, cfg.Year)
	}

	for _, e := range cfg.Endpoints {
		if !strings.HasPrefix(e, "http://") && !strings.HasPrefix(e, "https://") {
			return fmt.Errorf("%w: %q", ErrEndpointInvalid, e)
		}
	}

	return nil
}
