// Package config loads site2pdf configuration files.
//
// Supported formats are YAML (.yaml, .yml), JSON (.json, decoded as YAML) and
// TOML (.toml). Unknown fields are rejected in every format.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/decode"
	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrUnsupportedExt  = errors.New("unsupported config file extension")
)

// DefaultName is the config name searched when none is given.
const DefaultName = "site2pdf"

// appDir is the directory under the user config dir holding named configs.
const appDir = "go-site2pdf"

// Extensions are tried in this order when resolving a config name.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// Load reads a config by path or by name.
// Values containing a path separator or a known extension are paths;
// anything else is a name searched by SearchPaths.
// The result is validated; a missing defaults.format is an error.
func Load(nameOrPath string) (*site2pdf.Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if path, err = resolve(nameOrPath); err != nil {
			return nil, err
		}
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path.
func LoadFile(path string) (*site2pdf.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext and validates the result.
// Fields absent from data keep the values of site2pdf.DefaultConfig, except
// the defaults block, which the file must declare.
func Parse(data []byte, ext string) (*site2pdf.Config, error) {
	cfg := site2pdf.DefaultConfig()
	cfg.Defaults = site2pdf.PageRules{}

	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
		err = decode.YAMLStrict(data, cfg)
	case ".toml":
		err = decode.TOMLStrict(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q (use %s)", ErrUnsupportedExt, ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the candidate files for name, in lookup order:
// the current directory first, then the user config directory.
func SearchPaths(name string) []string {
	paths := make([]string, 0, len(Extensions)*2)
	for _, ext := range Extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range Extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

func resolve(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

func isFilePath(s string) bool {
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
