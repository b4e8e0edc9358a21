package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UndoSuffix is appended to the store path to name the undo slot.
const UndoSuffix = ".undo"

// FileBackend keeps the store in one structured-text file. The encoding is
// chosen by extension: .yaml and .yml use YAML, anything else JSON.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (b *FileBackend) undoPath() string {
	return b.Path + UndoSuffix
}

func (b *FileBackend) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(b.Path))
	return ext == ".yaml" || ext == ".yml"
}

// Load implements Backend.
func (b *FileBackend) Load() (*Store, error) {
	s, err := b.read(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return s, err
}

// Save implements Backend.
func (b *FileBackend) Save(s *Store) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Preserve the previous state. A first save has nothing to preserve.
	prev, err := os.ReadFile(b.Path)
	switch {
	case err == nil:
		if err := writeAtomic(b.undoPath(), prev); err != nil {
			return fmt.Errorf("failed to write undo snapshot: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read store: %w", err)
	}

	data, err := b.encode(s)
	if err != nil {
		return err
	}
	if err := writeAtomic(b.Path, data); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

// Undo implements Backend.
func (b *FileBackend) Undo() (*Store, error) {
	data, err := os.ReadFile(b.undoPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNothingToUndo
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read undo snapshot: %w", err)
	}
	s, err := b.decode(data)
	if err != nil {
		return nil, fmt.Errorf("undo snapshot is corrupt: %w", err)
	}
	if err := writeAtomic(b.Path, data); err != nil {
		return nil, fmt.Errorf("failed to restore store: %w", err)
	}
	if err := os.Remove(b.undoPath()); err != nil {
		return nil, fmt.Errorf("failed to clear undo snapshot: %w", err)
	}
	return s, nil
}

func (b *FileBackend) read(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := b.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

func (b *FileBackend) decode(data []byte) (*Store, error) {
	s := New()
	var err error
	if b.isYAML() {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, err
	}
	s.Normalize()
	return s, nil
}

func (b *FileBackend) encode(s *Store) ([]byte, error) {
	return Encode(s, b.isYAML())
}

// Encode renders s as YAML or as indented JSON with a trailing newline.
func Encode(s *Store, asYAML bool) ([]byte, error) {
	s.Version = CurrentVersion
	if asYAML {
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode store: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode store: %w", err)
	}
	return append(data, '\n'), nil
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
