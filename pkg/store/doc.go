// Package store defines the persistence-facing contract used to keep a single
// form draft between sessions, plus in-memory and file-backed implementations.
//
// Responsibilities:
//   - Store only loads, saves and removes one encoded record per key.
//   - Encoding is owned by the caller through a Codec (JSON by default, YAML
//     for hand-edited drafts); the store never inspects the payload.
//   - Save overwrites the record wholesale; Remove deletes it and is a no-op
//     for keys that were never written.
//
// Data flow:
//
//	Manager -> Codec.Marshal -> Store.Save(key) ... Store.Load(key) -> hydrate -> Form
package store
