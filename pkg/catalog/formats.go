// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"path"

	"github.com/pelletier/go-toml/v2"

	"github.com/modgraph/modgraph/pkg/cueutil"
)

const (
	// FormatCUE is a module.cue descriptor.
	FormatCUE Format = "cue"
	// FormatTOML is a module.toml descriptor.
	FormatTOML Format = "toml"
)

//go:embed descriptor_schema.cue
var descriptorSchemaSource []byte

var descriptorSchema = cueutil.MustCompileSchema(descriptorSchemaSource, "#Descriptor")

// Format is a descriptor file format.
type Format string

// Formats lists the supported formats in lookup order.
func Formats() []Format { return []Format{FormatCUE, FormatTOML} }

// FileName returns the descriptor file name for the format.
func (f Format) FileName() string { return "module." + string(f) }

// FormatOf returns the format of a descriptor file name.
func FormatOf(file string) (Format, bool) {
	switch path.Base(file) {
	case FormatCUE.FileName():
		return FormatCUE, true
	case FormatTOML.FileName():
		return FormatTOML, true
	default:
		return "", false
	}
}

// ParseDescriptor decodes and validates a descriptor. file names it in
// error messages.
func ParseDescriptor(format Format, data []byte, file string) (*Descriptor, error) {
	var (
		d   *Descriptor
		err error
	)
	switch format {
	case FormatCUE:
		d, err = cueutil.Decode[Descriptor](descriptorSchema, data, cueutil.WithFilename(file))
	case FormatTOML:
		d, err = parseTOML(data, file)
	default:
		return nil, fmt.Errorf("%s: unsupported descriptor format %q", file, format)
	}
	if err != nil {
		return nil, err
	}
	if err := d.Validate(file); err != nil {
		return nil, err
	}
	return d, nil
}

func parseTOML(data []byte, file string) (*Descriptor, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, file); err != nil {
		return nil, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		return nil, &DescriptorError{File: file, Err: err}
	}
	return &d, nil
}
