// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// Dir reads module descriptors from one or more root directories. The
	// first root holding <root>/<module>/module.{cue,toml} wins.
	Dir struct {
		fsys   afero.Fs
		roots  []string
		logger *slog.Logger
	}

	// DirOption configures a Dir.
	DirOption func(*Dir)
)

// WithFs sets the filesystem. Default is the OS filesystem.
func WithFs(fsys afero.Fs) DirOption {
	return func(d *Dir) { d.fsys = fsys }
}

// WithLogger sets the logger for lookup diagnostics.
func WithLogger(logger *slog.Logger) DirOption {
	return func(d *Dir) {
		if logger != nil {
			d.logger = logger.With(slog.String("component", "catalog"))
		}
	}
}

// NewDir returns a directory catalog over roots, searched in order.
func NewDir(roots []string, opts ...DirOption) *Dir {
	d := &Dir{
		fsys:   afero.NewOsFs(),
		roots:  slices.Clone(roots),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Roots returns the search roots.
func (d *Dir) Roots() []string { return slices.Clone(d.roots) }

// Fs returns the catalog filesystem.
func (d *Dir) Fs() afero.Fs { return d.fsys }

// Find implements modload.Catalog.
func (d *Dir) Find(ctx context.Context, name types.ModuleName) (*modload.ModuleSpec, error) {
	file, format, err := d.Locate(ctx, name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(d.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	desc, err := ParseDescriptor(format, data, file)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("descriptor loaded", "module", name, "file", file, "dependencies", len(desc.Dependencies))
	return desc.Spec(d.fsys, filepath.Dir(file))
}

// Locate returns the descriptor file for name.
func (d *Dir) Locate(ctx context.Context, name types.ModuleName) (string, Format, error) {
	rel := filepath.FromSlash(string(name))
	if !filepath.IsLocal(rel) {
		return "", "", fmt.Errorf("module %s cannot name a catalog directory: %w", name, modload.ErrModuleNotFound)
	}
	for _, root := range d.roots {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		for _, format := range Formats() {
			file := filepath.Join(root, rel, format.FileName())
			ok, err := afero.Exists(d.fsys, file)
			if err != nil {
				return "", "", err
			}
			if ok {
				return file, format, nil
			}
		}
	}
	return "", "", fmt.Errorf("no descriptor for %s under %v: %w", name, d.roots, modload.ErrModuleNotFound)
}

// List returns the names of every module with a descriptor under the
// roots, sorted. A name found under several roots is listed once.
func (d *Dir) List(ctx context.Context) ([]types.ModuleName, error) {
	seen := make(map[types.ModuleName]struct{})
	for _, root := range d.roots {
		if ok, err := afero.DirExists(d.fsys, root); err != nil || !ok {
			d.logger.Debug("skipping catalog root", "root", root, "error", err)
			continue
		}
		err := afero.Walk(d.fsys, root, func(file string, info fs.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if _, ok := FormatOf(file); !ok {
				return nil
			}
			rel, err := filepath.Rel(root, filepath.Dir(file))
			if err != nil || rel == "." {
				return err
			}
			seen[types.ModuleName(filepath.ToSlash(rel))] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	names := make([]types.ModuleName, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}
