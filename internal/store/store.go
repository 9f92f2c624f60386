// Package store persists remembered credentials and exported assignment lists.
package store

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/igloo-cli/igloo/internal/assignment"
)

const (
	appDir    = "igloo"
	credsFile = "creds.gob"
)

type Credentials struct {
	Username string
	Password string
}

// Dir is where igloo keeps its cached files.
type Dir string

func DefaultDir() (Dir, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache dir: %w", err)
	}
	return Dir(filepath.Join(cacheDir, appDir)), nil
}

func (d Dir) credsPath() string {
	return filepath.Join(string(d), credsFile)
}

func (d Dir) SaveCreds(creds Credentials) error {
	if err := os.MkdirAll(string(d), 0o700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	file, err := os.OpenFile(d.credsPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(creds)
}

// LoadCreds returns os.ErrNotExist (wrapped) when nothing was remembered.
func (d Dir) LoadCreds() (Credentials, error) {
	file, err := os.Open(d.credsPath())
	if err != nil {
		return Credentials{}, err
	}
	defer file.Close()

	var creds Credentials
	if err := gob.NewDecoder(file).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode remembered credentials: %w", err)
	}
	return creds, nil
}

// DeleteCreds is a no-op when nothing was remembered.
func (d Dir) DeleteCreds() error {
	err := os.Remove(d.credsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Export is the JSON document written by `igloo export`.
type Export struct {
	Module     string                  `json:"module"`
	ExportedAt time.Time               `json:"exported_at"`
	Todo       []assignment.Assignment `json:"todo"`
	Graded     []assignment.Assignment `json:"graded"`
	Completed  []assignment.Assignment `json:"completed"`
	All        []assignment.Assignment `json:"all"`
}

func NewExport(module string, views map[assignment.View][]assignment.Assignment, at time.Time) Export {
	nonNil := func(v assignment.View) []assignment.Assignment {
		if records := views[v]; records != nil {
			return records
		}
		return []assignment.Assignment{}
	}
	return Export{
		Module:     module,
		ExportedAt: at.UTC(),
		Todo:       nonNil(assignment.ViewTodo),
		Graded:     nonNil(assignment.ViewGraded),
		Completed:  nonNil(assignment.ViewCompleted),
		All:        nonNil(assignment.ViewAll),
	}
}

// SaveExport writes export to path, or to stdout when path is "-".
func SaveExport(path string, export Export) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
