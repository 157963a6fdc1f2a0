// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package datafile reads and writes the plain-text data files
// consumed by the plotting scripts: one value or tab-separated tuple
// per line.
package datafile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A Mode selects what is extracted from a benchmark log and where the
// result is written.
type Mode int

const (
	// CombinedMode writes binned wall times and read rates to
	// a ".data" file next to the ".txt" log.
	CombinedMode Mode = iota
	// ReadRatesMode writes the read rates, one per line.
	ReadRatesMode
	// ClockTimesMode writes the clock-marker lines, tab-joined.
	ClockTimesMode
)

func (m Mode) String() string {
	switch m {
	case CombinedMode:
		return "combined"
	case ReadRatesMode:
		return "readrates"
	case ClockTimesMode:
		return "clocktimes"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode parses the name of a Mode as returned by Mode.String.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{CombinedMode, ReadRatesMode, ClockTimesMode} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Path returns the output path for the log at input in mode m.
//
// ReadRatesMode and ClockTimesMode append "~read_rates" and
// "~clock_times" to input. CombinedMode replaces a trailing ".txt"
// with ".data"; any other input gets ".data" appended.
func Path(input string, m Mode) string {
	switch m {
	case ReadRatesMode:
		return input + "~read_rates"
	case ClockTimesMode:
		return input + "~clock_times"
	}
	if len(input) >= 4 && input[len(input)-4:] == ".txt" {
		return input[:len(input)-4] + ".data"
	}
	return input + ".data"
}

// A Writer writes tab-separated rows.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer that writes rows to w. The caller must
// call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes fields as one tab-joined line.
func (w *Writer) Write(fields ...string) error {
	if w.err != nil {
		return w.err
	}
	for i, f := range fields {
		if i > 0 {
			w.w.WriteByte('\t')
		}
		w.w.WriteString(f)
	}
	_, w.err = w.w.WriteString("\n")
	return w.err
}

// WriteFloats writes xs as one tab-joined line, formatting each value
// in the shortest representation that round-trips.
func (w *Writer) WriteFloats(xs ...float64) error {
	fields := make([]string, len(xs))
	for i, x := range xs {
		fields[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return w.Write(fields...)
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Create creates the named file and calls write with a Writer for it.
// The file is flushed and closed on every return path; the first
// error encountered is returned.
func Create(path string, write func(*Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	w := NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteFile writes rows to the named file, one tab-joined row per
// line.
func WriteFile(path string, rows [][]string) error {
	return Create(path, func(w *Writer) error {
		for _, r := range rows {
			if err := w.Write(r...); err != nil {
				return err
			}
		}
		return nil
	})
}

// maxLineLen bounds the length of a single row, matching the
// longest log line the extractors accept.
const maxLineLen = 4 << 20

// ReadRows reads whitespace-separated rows from r. Blank lines are
// skipped.
func ReadRows(r io.Reader) ([][]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	var rows [][]string
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadFloats reads r as rows of exactly width numbers.
func ReadFloats(r io.Reader, width int) ([][]float64, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("line %d: have %d fields, want %d", i+1, len(row), width)
		}
		out[i] = make([]float64, width)
		for j, f := range row {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// ReadFile reads the named file with ReadRows.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
