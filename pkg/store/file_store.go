package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each key as one file under Dir. Metadata lives in a
// sidecar "<key>.meta.json" so the draft file itself stays a plain document.
type FileStore struct {
	Dir       string
	Extension string

	mu sync.Mutex
}

// NewFileStore creates dir when missing. ext defaults to ".json".
func NewFileStore(dir, ext string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
	}
	if ext == "" {
		ext = ".json"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FileStore{Dir: dir, Extension: ext}, nil
}

func (s *FileStore) Load(ctx context.Context, key string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	payloadPath, metaPath, err := s.paths(key)
	if err != nil {
		return Record{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(payloadPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("store: read %s: %w", payloadPath, err)
	}

	record := Record{Payload: payload}
	rawMeta, err := os.ReadFile(metaPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(rawMeta, &record.Meta); err != nil {
			return Record{}, false, fmt.Errorf("store: decode meta %s: %w", metaPath, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if info, statErr := os.Stat(payloadPath); statErr == nil {
			record.Meta.UpdatedAt = info.ModTime()
		}
	default:
		return Record{}, false, fmt.Errorf("store: read meta %s: %w", metaPath, err)
	}
	return record, true, nil
}

func (s *FileStore) Save(ctx context.Context, key string, record Record) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	payloadPath, metaPath, err := s.paths(key)
	if err != nil {
		return Meta{}, err
	}
	rawMeta, err := json.Marshal(record.Meta)
	if err != nil {
		return Meta{}, fmt.Errorf("store: encode meta: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(payloadPath, record.Payload); err != nil {
		return Meta{}, err
	}
	if err := writeFileAtomic(metaPath, rawMeta); err != nil {
		return Meta{}, err
	}
	return cloneMeta(record.Meta), nil
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payloadPath, metaPath, err := s.paths(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{payloadPath, metaPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: remove %s: %w", path, err)
		}
	}
	return nil
}

// Path returns the draft file used for key.
func (s *FileStore) Path(key string) (string, error) {
	payloadPath, _, err := s.paths(key)
	return payloadPath, err
}

func (s *FileStore) paths(key string) (string, string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", "", err
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", "", fmt.Errorf("store: invalid key %q", key)
	}
	base := filepath.Join(s.Dir, key)
	return base + s.Extension, base + ".meta.json", nil
}

func writeFileAtomic(path string, content []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: replace %s: %w", path, err)
	}
	return nil
}
