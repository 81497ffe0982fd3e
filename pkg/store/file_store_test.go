package store

import (
	"context"
	"os"
	"testing"
)

func TestFileStoreWritesPlainDraftFile(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "yaml")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Extension != ".yaml" {
		t.Fatalf("expected extension normalised, got %q", s.Extension)
	}

	if _, err := s.Save(context.Background(), DefaultKey, Record{Payload: []byte("formName: intake\n")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, err := s.Path(DefaultKey)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "formName: intake\n" {
		t.Fatalf("unexpected file content %q", raw)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file cleaned up, stat err=%v", err)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"../escape", "a/b", ".."} {
		if _, err := s.Save(context.Background(), key, Record{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Load(ctx, DefaultKey); err == nil {
		t.Fatalf("expected context error")
	}
}
