// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalidCUEPath is returned by CUEPath.Validate.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

type (
	// CUEPath is a field path in JSON-path notation, e.g. "dependencies[0].module".
	CUEPath string

	// Issue is one failing field of a document.
	Issue struct {
		Path    CUEPath
		Message string
	}

	// DecodeError reports every issue found in one document.
	DecodeError struct {
		File   string
		Issues []Issue
		// Err is the underlying error when it carried no CUE positions.
		Err error
	}
)

// String returns the path.
func (p CUEPath) String() string { return string(p) }

// Validate rejects empty and blank paths.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidCUEPath)
	}
	return nil
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	lines := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		lines[i] = is.String()
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.File, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// Unwrap returns the underlying non-CUE error, if any.
func (e *DecodeError) Unwrap() error { return e.Err }

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// FormatError converts a CUE error into a *DecodeError for file.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return &DecodeError{File: file, Err: err}
	}

	issues := make([]Issue, 0, len(list))
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, string(path)), ":"))
		}
		issues = append(issues, Issue{Path: path, Message: msg})
	}
	return &DecodeError{File: file, Issues: issues}
}

// formatPath renders ["deps", "0", "module"] as "deps[0].module".
func formatPath(parts []string) CUEPath {
	var b strings.Builder
	for i, part := range parts {
		switch {
		case i > 0 && isIndex(part):
			b.WriteString("[" + part + "]")
		case i > 0:
			b.WriteString("." + part)
		default:
			b.WriteString(part)
		}
	}
	return CUEPath(b.String())
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
