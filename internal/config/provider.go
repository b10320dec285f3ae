// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}

	// InvalidLoadOptionsError collects LoadOptions field errors.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct {
		fsys afero.Fs
	}
)

// NewProvider creates a configuration provider reading the OS filesystem.
func NewProvider() Provider {
	return &fileProvider{fsys: afero.NewOsFs()}
}

// NewProviderFs creates a configuration provider reading fsys.
func NewProviderFs(fsys afero.Fs) Provider {
	return &fileProvider{fsys: fsys}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, p.fsys, opts)
}

// Validate rejects whitespace-only paths. Empty paths mean "not set".
func (o LoadOptions) Validate() error {
	var errs []error
	for field, value := range map[string]string{
		"config file path": o.ConfigFilePath,
		"config dir path":  o.ConfigDirPath,
	} {
		if value != "" && strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be whitespace-only", field))
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }
