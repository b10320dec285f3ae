// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    LoadOptions
		wantErr bool
	}{
		{"empty", LoadOptions{}, false},
		{"file", LoadOptions{ConfigFilePath: "/etc/modgraph.cue"}, false},
		{"blank file", LoadOptions{ConfigFilePath: "  "}, true},
		{"blank dir", LoadOptions{ConfigDirPath: "\t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLoadOptions) {
				t.Errorf("Validate() error = %v, want ErrInvalidLoadOptions", err)
			}
		})
	}
}

func TestProvider_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewProviderFs(afero.NewMemMapFs()).Load(context.Background(), LoadOptions{ConfigDirPath: " "})
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Errorf("Load() error = %v, want ErrInvalidLoadOptions", err)
	}
}
