// SPDX-License-Identifier: MPL-2.0

package content

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// FS serves content from a directory of an afero filesystem. Classes are
// files named "<name>.class"; resources are any file. The directory set is
// indexed once at construction.
type FS struct {
	fsys  afero.Fs
	root  string
	name  string
	dirs  map[string]struct{}
	paths []string
}

// NewFS indexes root on fsys and returns a provider for it.
func NewFS(fsys afero.Fs, root, name string) (*FS, error) {
	p := &FS{fsys: fsys, root: root, name: name, dirs: make(map[string]struct{})}

	err := afero.Walk(fsys, root, func(file string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		p.dirs[dirOf(filepath.ToSlash(rel))] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index content directory %s: %w", root, err)
	}

	p.paths = make([]string, 0, len(p.dirs))
	for d := range p.dirs {
		p.paths = append(p.paths, d)
	}
	slices.Sort(p.paths)
	return p, nil
}

// String returns the provider name.
func (p *FS) String() string { return p.name }

// Root returns the indexed directory.
func (p *FS) Root() string { return p.root }

// Paths implements Provider.
func (p *FS) Paths() []string { return slices.Clone(p.paths) }

// Class implements Provider.
func (p *FS) Class(name string) (*Content, bool) {
	c, ok := p.read(name + ClassSuffix)
	if ok {
		c.Name = name
	}
	return c, ok
}

// Resource implements Provider.
func (p *FS) Resource(name string) (*Content, bool) { return p.read(name) }

// Package implements Provider.
func (p *FS) Package(dir string) (*Package, bool) {
	if _, ok := p.dirs[dir]; !ok {
		return nil, false
	}
	return &Package{Path: dir, Origin: p.name}, true
}

func (p *FS) read(name string) (*Content, bool) {
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return nil, false
	}
	if _, ok := p.dirs[dirOf(clean)]; !ok {
		return nil, false
	}
	data, err := afero.ReadFile(p.fsys, filepath.Join(p.root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, false
	}
	return &Content{Name: clean, Data: data, Origin: p.name}, true
}
