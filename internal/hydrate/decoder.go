// Package hydrate turns persisted draft documents into typed values. Callers
// normalise older document shapes with pre-hooks and fix up the typed result
// with post-hooks.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the stored document being decoded.
type Context struct {
	Key    string
	Format string
}

// Unmarshaler decodes raw bytes, typically a store codec's Unmarshal.
type Unmarshaler func(data []byte, v any) error

// PreHook lets callers mutate or normalise the document before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts generic documents into T.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects documents carrying keys T does not know.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeBytes unmarshals data into a generic document with unmarshal and then
// runs Decode. A nil unmarshal uses encoding/json.
func (d *Decoder[T]) DecodeBytes(ctx Context, data []byte, unmarshal Unmarshaler) (T, error) {
	var zero T
	if unmarshal == nil {
		unmarshal = json.Unmarshal
	}
	var document map[string]any
	if err := unmarshal(data, &document); err != nil {
		return zero, fmt.Errorf("hydrate: parse %s document %q: %w", formatLabel(ctx), ctx.Key, err)
	}
	return d.Decode(ctx, document)
}

// Decode converts document into T applying configured hooks.
func (d *Decoder[T]) Decode(ctx Context, document map[string]any) (T, error) {
	var zero T

	if document == nil {
		return zero, fmt.Errorf("hydrate: document is nil for key %q", ctx.Key)
	}

	current, err := cloneDocument(document)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone document for key %q: %w", ctx.Key, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for key %q failed: %w", ctx.Key, err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal document for key %q: %w", ctx.Key, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode key %q: %w", ctx.Key, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for key %q failed: %w", ctx.Key, err)
		}
	}

	return result, nil
}

// cloneDocument round-trips through JSON so hooks never mutate the caller's
// maps and YAML-decoded values take their JSON shapes.
func cloneDocument(document map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatLabel(ctx Context) string {
	if ctx.Format == "" {
		return "json"
	}
	return ctx.Format
}
