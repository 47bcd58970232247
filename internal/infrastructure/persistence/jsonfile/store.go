// Package jsonfile persists the configuration as a single JSON document,
// the format operators edit by hand.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"alertBot/internal/domain"
)

const (
	filePerm = 0o600
	dirPerm  = 0o755
)

type Store struct {
	path string
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile: empty path")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns nil, nil when the file does not exist or is blank.
func (s *Store) Load(_ context.Context) (*domain.Configuration, error) {
	data, err := s.read()
	if err != nil || data == nil {
		return nil, err
	}
	cfg := domain.DefaultConfiguration()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save rewrites the file atomically. Keys this program does not own, such as
// credentials kept next to the filter settings, are carried over.
func (s *Store) Save(_ context.Context, cfg *domain.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("jsonfile: configuration nil")
	}

	doc := map[string]json.RawMessage{}
	existing, err := s.read()
	if err != nil {
		return err
	}
	if existing != nil {
		// A corrupt file is replaced rather than blocking every save.
		_ = json.Unmarshal(existing, &doc)
	}

	own, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(own, &fields); err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}
	for k, v := range fields {
		doc[k] = v
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", s.path, err)
	}
	data = append(data, '\n')
	return writeAtomic(s.path, data)
}

func (s *Store) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func writeAtomic(path string, content []byte) error {
	parentDir := filepath.Dir(path)
	if err := os.MkdirAll(parentDir, dirPerm); err != nil {
		return fmt.Errorf("jsonfile: ensure dir %s: %w", parentDir, err)
	}

	tmp, err := os.CreateTemp(parentDir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("jsonfile: write temp for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("jsonfile: sync temp for %s: %w", path, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("jsonfile: chmod temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("jsonfile: rename temp for %s: %w", path, err)
	}
	return nil
}

var _ domain.ConfigRepository = (*Store)(nil)
