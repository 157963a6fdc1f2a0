// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logfmt

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// maxLineLen bounds the length of a single log line. Benchmark logs
// occasionally contain very long progress lines.
const maxLineLen = 4 << 20

// ReadLines reads all lines of r. Line terminators are not included.
func ReadLines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadFile reads all lines of the named file.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

// Walk returns the regular files under root whose name ends in ext,
// in lexical order. Symbolic links are not followed.
func Walk(root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filepath.Ext(path) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// A File is one benchmark log read into memory.
type File struct {
	Path  string
	Lines []string
}

// Files reads a sequence of benchmark logs, one file at a time.
//
// Its API is modeled on bufio.Scanner. Each file is opened, read in
// full and closed before Scan returns.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	cur File
	err error
}

// Scan advances to the next file and reports whether one was read.
// The caller should use the File method to get its contents. If Scan
// reaches the end of Paths, or if an I/O error occurs, it returns
// false. In this case, the caller should use the Err method to check
// for errors.
func (f *Files) Scan() bool {
	if f.err != nil || len(f.Paths) == 0 {
		return false
	}
	path := f.Paths[0]
	f.Paths = f.Paths[1:]
	lines, err := ReadFile(path)
	if err != nil {
		f.err = err
		return false
	}
	f.cur = File{path, lines}
	return true
}

// File returns the file that was just read by Scan.
func (f *Files) File() File {
	return f.cur
}

// Err returns the I/O error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
