// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ENOSPC", syscall.ENOSPC, true},
		{"EMFILE", syscall.EMFILE, true},
		{"ENFILE", syscall.ENFILE, true},
		{"wrapped ENOSPC", fmt.Errorf("fsnotify: %w", syscall.ENOSPC), true},
		{"EACCES", syscall.EACCES, false},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isFatal(tt.err); got != tt.want {
				t.Errorf("isFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
