// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// A Schema is compiled once and then used for any number of documents:
//
//	//go:embed descriptor_schema.cue
//	var schemaSource []byte
//
//	var schema = cueutil.MustCompileSchema(schemaSource, "#Descriptor")
//
//	desc, err := cueutil.Decode[descriptor](schema, data,
//	    cueutil.WithFilename("acme/module.cue"))
//
// Validation failures are reported as *DecodeError, one Issue per failing
// field with its path in JSON-path notation (e.g. "dependencies[1].module").
package cueutil
