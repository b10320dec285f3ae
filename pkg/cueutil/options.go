// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the largest document Decode accepts by default (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	decodeOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures Decode.
	Option func(*decodeOptions)
)

func defaultOptions() decodeOptions {
	return decodeOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		filename:    "<input>",
	}
}

// WithMaxFileSize sets the size limit checked before compiling.
func WithMaxFileSize(size int64) Option {
	return func(o *decodeOptions) { o.maxFileSize = size }
}

// WithConcrete controls whether every field must be concrete after
// unification. Default is true; config files that leave optional fields
// unset use false.
func WithConcrete(concrete bool) Option {
	return func(o *decodeOptions) { o.concrete = concrete }
}

// WithFilename names the document in positions and error messages.
func WithFilename(name string) Option {
	return func(o *decodeOptions) {
		if name != "" {
			o.filename = name
		}
	}
}
