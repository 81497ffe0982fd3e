package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultKey is the identifier the draft is persisted under unless overridden.
const DefaultKey = "savedForm"

var ErrKeyRequired = errors.New("store: key is required")

// Meta is storage-owned metadata describing one saved record.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty" yaml:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Record pairs an encoded draft with its metadata.
type Record struct {
	Payload []byte
	Meta    Meta
}

// Store loads, saves and removes one record per key.
type Store interface {
	Load(ctx context.Context, key string) (record Record, ok bool, err error)
	Save(ctx context.Context, key string, record Record) (Meta, error)
	Remove(ctx context.Context, key string) error
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrKeyRequired
	}
	return key, nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func cloneRecord(record Record) Record {
	out := Record{Meta: cloneMeta(record.Meta)}
	if record.Payload != nil {
		out.Payload = append([]byte(nil), record.Payload...)
	}
	return out
}
