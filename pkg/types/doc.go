// SPDX-License-Identifier: MPL-2.0

// Package types defines the value types shared by the modgraph packages:
// module names, resource paths, descriptions and CLI exit codes. Each type
// carries its own validation and wraps a sentinel error so callers can use
// errors.Is for programmatic detection.
//
// This package is a leaf dependency: it imports only the standard library.
package types
