// Package vfs provides the in-memory virtual file tree used when extracting
// content archives, and the host filesystem operations that materialize a
// tree onto disk.
package vfs

import (
	"sort"
	"strings"
)

// File is a single file within a virtual tree.
type File struct {
	Name string
	Data []byte
}

// Directory is an in-memory directory tree, typically produced by extracting
// a content archive.
type Directory struct {
	Name  string
	Files []*File
	Dirs  []*Directory
}

// NewDirectory returns an empty directory with the given name.
func NewDirectory(name string) *Directory {
	return &Directory{Name: name}
}

// Insert adds a file at the given slash-separated path, creating intermediate
// directories as needed. An existing file at the same path is replaced.
func (d *Directory) Insert(path string, data []byte) {
	path = strings.Trim(path, "/")
	if path == "" {
		return
	}

	parts := strings.Split(path, "/")
	dir := d
	for _, part := range parts[:len(parts)-1] {
		dir = dir.getOrCreateDir(part)
	}

	name := parts[len(parts)-1]
	for _, f := range dir.Files {
		if f.Name == name {
			f.Data = data
			return
		}
	}
	dir.Files = append(dir.Files, &File{Name: name, Data: data})
}

// Lookup returns the file at the given slash-separated path, or nil.
func (d *Directory) Lookup(path string) *File {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	parts := strings.Split(path, "/")
	dir := d
	for _, part := range parts[:len(parts)-1] {
		dir = dir.subDir(part)
		if dir == nil {
			return nil
		}
	}
	for _, f := range dir.Files {
		if f.Name == parts[len(parts)-1] {
			return f
		}
	}
	return nil
}

// FileCount returns the number of files in the tree, recursively.
func (d *Directory) FileCount() int {
	n := len(d.Files)
	for _, sub := range d.Dirs {
		n += sub.FileCount()
	}
	return n
}

// Walk visits every file in the tree in a stable order, passing the
// slash-separated path relative to d.
func (d *Directory) Walk(fn func(path string, f *File)) {
	d.walk("", fn)
}

func (d *Directory) walk(prefix string, fn func(path string, f *File)) {
	files := append([]*File(nil), d.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	for _, f := range files {
		fn(prefix+f.Name, f)
	}

	dirs := append([]*Directory(nil), d.Dirs...)
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	for _, sub := range dirs {
		sub.walk(prefix+sub.Name+"/", fn)
	}
}

func (d *Directory) getOrCreateDir(name string) *Directory {
	if sub := d.subDir(name); sub != nil {
		return sub
	}
	sub := &Directory{Name: name}
	d.Dirs = append(d.Dirs, sub)
	return sub
}

func (d *Directory) subDir(name string) *Directory {
	for _, sub := range d.Dirs {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}
