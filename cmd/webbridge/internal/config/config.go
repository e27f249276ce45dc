// Package config resolves the optional webbridge.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "webbridge.yaml"

// Config represents the optional webbridge.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Engine EngineConfig `yaml:"engine"`
	Host   HostConfig   `yaml:"host"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
	ID   string `yaml:"id,omitempty"`
}

// EngineConfig pins the native bridge version the app is built against.
type EngineConfig struct {
	Version string `yaml:"version,omitempty"`
}

// HostConfig holds defaults for `webbridge host`.
type HostConfig struct {
	Pages     string `yaml:"pages,omitempty"`
	Settings  string `yaml:"settings,omitempty"`
	Listen    string `yaml:"listen,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string     `yaml:"root"`
	ModulePath    string     `yaml:"module,omitempty"`
	AppName       string     `yaml:"appName"`
	AppID         string     `yaml:"appId"`
	EngineVersion string     `yaml:"engineVersion"`
	Host          HostConfig `yaml:"host"`
}

// LoadOptional reads webbridge.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads webbridge.yaml (if present) and resolves defaults. A go.mod
// in dir is optional; without one the app name comes from the directory.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	appID := strings.TrimSpace(cfg.App.ID)
	if appID == "" {
		appID = defaultAppID(modulePath, appName)
	}
	if err := validateAppID(appID); err != nil {
		return nil, err
	}

	engineVersion, err := resolveEngineVersion(cfg.Engine.Version)
	if err != nil {
		return nil, err
	}

	host := cfg.Host
	if host.Pages == "" {
		host.Pages = "."
	}
	if !filepath.IsAbs(host.Pages) {
		host.Pages = filepath.Join(dir, host.Pages)
	}
	if host.Settings != "" && !filepath.IsAbs(host.Settings) {
		host.Settings = filepath.Join(dir, host.Settings)
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       appName,
		AppID:         appID,
		EngineVersion: engineVersion,
		Host:          host,
	}, nil
}

// FindProjectRoot walks up from start looking for webbridge.yaml or go.mod.
// When neither exists, start itself is the root.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for candidate := dir; ; {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(candidate, name)); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return dir, nil
		}
		candidate = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func resolveEngineVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "latest" {
		return "latest", nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("engine.version must be \"latest\" or a semantic version (got %q)", v)
	}
	return semver.Canonical(v), nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if modName, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "webbridge_app"
	}
	return base
}

func defaultAppID(modulePath, appName string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return "com.example." + sanitizeSegment(appName, false)
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	segments := host
	for _, p := range parts[1:] {
		if p != "" {
			segments = append(segments, p)
		}
	}
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment, false)
	}
	return strings.Join(segments, ".")
}

// sanitizeSegment lowercases segment and drops everything but letters and
// digits.
func sanitizeSegment(segment string, allowLeadingDigit bool) string {
	var out []rune
	for _, r := range strings.TrimSpace(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}

	if len(out) == 0 {
		out = []rune("app")
	}
	if !allowLeadingDigit && out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'a'}, out...)
	}
	return string(out)
}

func validateAppID(appID string) error {
	if !strings.Contains(appID, ".") {
		return fmt.Errorf("app.id must contain at least one '.' (got %q)", appID)
	}
	for _, segment := range strings.Split(appID, ".") {
		if segment == "" {
			return fmt.Errorf("app.id contains an empty segment (%q)", appID)
		}
		if segment[0] >= '0' && segment[0] <= '9' {
			return fmt.Errorf("app.id segments cannot start with a digit (%q)", appID)
		}
		if segment[0] == '_' {
			return fmt.Errorf("app.id segments cannot start with '_' (%q)", appID)
		}
		for _, r := range segment {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return fmt.Errorf("app.id contains invalid character %q in %q", r, appID)
			}
		}
	}
	return nil
}
