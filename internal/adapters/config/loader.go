// Package config provides the configuration loader for unitcache.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var validUnitNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds unitcache.yaml in cwd or the nearest parent directory and
// returns the manifest it describes. Relative paths are resolved against the
// directory containing the file.
func (l *Loader) Load(cwd string) (*domain.Manifest, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(configPath)
}

// LoadFile parses the configuration file at configPath.
func (l *Loader) LoadFile(configPath string) (*domain.Manifest, error) {
	var file File
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	root := resolvePath(filepath.Dir(configPath), file.Root)
	manifest := &domain.Manifest{
		Root:           root,
		MaxCacheSizeMB: max(file.MaxCacheSizeMB, 0),
		Throttle:       max(file.Throttle, 0),
		LoadCommand:    file.Loader.Cmd,
		Units:          make(map[string]string, len(file.Units)),
	}
	if file.CacheDir != "" {
		manifest.CacheDir = resolvePath(root, file.CacheDir)
	}

	kind, err := resolveLoaderKind(file.Loader)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	manifest.Loader = kind

	for name, path := range file.Units {
		if err := validateUnitName(name); err != nil {
			return nil, err
		}
		if path == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrPathNotFound, domain.ErrConfigParseFailed.Error()), "unit", name)
		}
		manifest.Units[name] = resolvePath(root, path)
	}

	if l.Logger != nil && len(manifest.Units) == 0 {
		l.Logger.Warn("no units declared in " + configPath)
	}
	return manifest, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "config discovery failed"), "cwd", cwd)
}

func resolveLoaderKind(dto LoaderDTO) (domain.LoaderKind, error) {
	switch domain.LoaderKind(dto.Kind) {
	case domain.LoaderShell:
		if len(dto.Cmd) == 0 {
			return "", domain.ErrEmptyLoadCommand
		}
		return domain.LoaderShell, nil
	case domain.LoaderPlugin:
		return domain.LoaderPlugin, nil
	case "":
		if len(dto.Cmd) > 0 {
			return domain.LoaderShell, nil
		}
		return domain.LoaderPlugin, nil
	default:
		return "", zerr.With(domain.ErrUnknownLoader, "kind", dto.Kind)
	}
}

func resolvePath(base, path string) string {
	if path == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// validateUnitName checks that name is usable as a cache key and file name.
func validateUnitName(name string) error {
	if !validUnitNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidUnitName, "unit", name)
	}
	return nil
}
