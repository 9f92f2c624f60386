package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName turns "igloo.json5" into "igloo.local.json5".
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func decode[T any](path string) (T, bool, error) {
	var out T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(data) == 0 {
		return out, false, nil
	}
	if err := json5.Unmarshal(data, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// ReadFile reads name and merges name's ".local" sibling over it. Either
// file may be absent; os.ErrNotExist is returned only when both are.
func ReadFile[T any](name string) (T, error) {
	out, found, err := decode[T](name)
	if err != nil {
		return out, err
	}

	local := localName(name)
	override, foundLocal, err := decode[T](local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Debug("merged local config overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadUpward looks for name in dir, then each parent of dir, returning
// the first one that exists.
func ReadUpward[T any](dir, name string) (T, string, error) {
	var zero T

	current, err := filepath.Abs(dir)
	if err != nil {
		return zero, "", err
	}
	for {
		path := filepath.Join(current, name)
		cfg, err := ReadFile[T](path)
		if err == nil {
			return cfg, path, nil
		}
		if !os.IsNotExist(err) {
			return zero, "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return zero, "", os.ErrNotExist
		}
		current = parent
	}
}
