// Package storage provides the shared durable-medium primitives used by the
// snapshot and change log stores: the error taxonomy callers match with
// errors.Is, and atomic JSON record publication.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrUnavailable indicates the durable medium could not be read or
	// written (directory missing, permission denied).
	ErrUnavailable = errors.New("storage medium unavailable")

	// ErrDecode indicates a stored record could not be parsed back into
	// its typed shape.
	ErrDecode = errors.New("stored record is corrupt")

	// ErrNotFound indicates an exact-key lookup missed. A normal outcome,
	// distinct from corruption.
	ErrNotFound = errors.New("record not found")
)

// EnsureDir creates the directory for a store if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w: %v", dir, ErrUnavailable, err)
	}
	return nil
}

// WriteJSONAtomic marshals v and publishes it at path atomically: the record
// is written to a temporary file in the same directory and renamed into
// place, so a concurrent reader only ever observes a complete old or
// complete new record.
func WriteJSONAtomic(path string, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode record %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pending-*")
	if err != nil {
		return fmt.Errorf("write record %s: %w: %v", path, ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record %s: %w: %v", path, ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write record %s: %w: %v", path, ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish record %s: %w: %v", path, ErrUnavailable, err)
	}
	return nil
}

// ReadJSON reads the record at path into v, classifying failures into the
// storage error kinds.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read record %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read record %s: %w: %v", path, ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record %s: %w: %v", path, ErrDecode, err)
	}
	return nil
}
