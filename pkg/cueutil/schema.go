// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema is a compiled CUE definition. A cue.Context is not safe for
// concurrent use, so Decode calls on one Schema are serialized.
type Schema struct {
	mu         sync.Mutex
	ctx        *cue.Context
	root       cue.Value
	definition string
}

// CompileSchema compiles src and looks up definition (e.g. "#Config").
func CompileSchema(src []byte, definition string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	root := v.LookupPath(cue.ParsePath(definition))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("schema definition %s: %w", definition, err)
	}
	return &Schema{ctx: ctx, root: root, definition: definition}, nil
}

// MustCompileSchema is CompileSchema for embedded schemas; it panics on error.
func MustCompileSchema(src []byte, definition string) *Schema {
	s, err := CompileSchema(src, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Definition returns the schema definition path.
func (s *Schema) Definition() string { return s.definition }

// Decode unifies data with the schema, validates the result and decodes it
// into a new T.
func Decode[T any](s *Schema, data []byte, opts ...Option) (*T, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := s.root.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &out, nil
}

// CheckFileSize rejects data larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
