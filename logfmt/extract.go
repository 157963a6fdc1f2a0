// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logfmt extracts numeric measurements from the text output
// of I/O benchmark runs.
//
// Benchmark output comes in a few dialects: columnar tables of the
// form "KEY = value UNIT", pipe-delimited metric dumps of the form
// "Namespace.Component.metric|Unit|Description|value", free-text
// event-loop notices, and raw clock-marker lines. Each extractor
// scans an ordered sequence of lines for one pattern and returns the
// matches in input order. Lines that do not match are skipped; the
// extractors never fail.
package logfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// A Dialect identifies the layout of the metrics block in a
// benchmark log.
type Dialect int

const (
	// Columnar is the "KEY = value UNIT" table printed by TTree
	// read benchmarks.
	Columnar Dialect = iota
	// Pipe is the "Path|Unit|Description|value" dump printed by
	// RNTuple read benchmarks.
	Pipe
)

func (d Dialect) String() string {
	switch d {
	case Columnar:
		return "columnar"
	case Pipe:
		return "pipe"
	}
	return "Dialect(" + strconv.Itoa(int(d)) + ")"
}

// ParseDialect parses the name of a Dialect as returned by
// Dialect.String. It also accepts "ttree" for Columnar and "rntuple"
// for Pipe, after the benchmarks that print them.
func ParseDialect(s string) (Dialect, bool) {
	switch s {
	case "columnar", "ttree":
		return Columnar, true
	case "pipe", "rntuple":
		return Pipe, true
	}
	return 0, false
}

// DialectForPath guesses the dialect of a log file from its path.
// Results directories name RNTuple runs with "rntuple"; everything
// else is assumed to be a TTree run.
func DialectForPath(path string) Dialect {
	if strings.Contains(path, "rntuple") {
		return Pipe
	}
	return Columnar
}

// A Metric is a single value extracted from one log line.
type Metric struct {
	// Text is the value exactly as it appeared in the line.
	Text string
	// Value is Text parsed as a float64.
	Value float64
}

// Texts returns the Text of each metric in ms.
func Texts(ms []Metric) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Text
	}
	return out
}

// Values returns the Value of each metric in ms.
func Values(ms []Metric) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

// A ColumnarKey selects lines of the form "Label = value Unit".
type ColumnarKey struct {
	Label string
	Unit  string
}

// A PipeKey selects lines of the form "Path|Unit|Description|value".
// All three parts must match exactly.
type PipeKey struct {
	Path        string
	Unit        string
	Description string
}

// A Field names one measurement and how it is spelled in each
// dialect. A zero key means the dialect does not report it.
type Field struct {
	Name     string
	Columnar ColumnarKey
	Pipe     PipeKey
}

var (
	// UnzipReadRate is the bandwidth of uncompressed bytes read
	// per second, in MB/s.
	UnzipReadRate = Field{
		Name:     "unzip",
		Columnar: ColumnarKey{"ReadUZRT", "MBytes/s"},
		Pipe:     PipeKey{"RNTupleReader.RPageSourceFile.bwReadUnzip", "MB/s", "bandwidth uncompressed bytes read per second"},
	}
	// ReadRate is the bandwidth of compressed bytes read per
	// second, in MB/s.
	ReadRate = Field{
		Name:     "read",
		Columnar: ColumnarKey{"ReadRT", "MBytes/s"},
		Pipe:     PipeKey{"RNTupleReader.RPageSourceFile.bwRead", "MB/s", "bandwidth compressed bytes read per second"},
	}
	// CompressionRatio is the ratio of compressed to uncompressed
	// bytes. Only RNTuple reports it.
	CompressionRatio = Field{
		Name: "ratio",
		Pipe: PipeKey{"RNTupleReader.RPageSourceFile.rtCompression", "", "ratio of compressed bytes / uncompressed bytes"},
	}
)

// Fields lists the built-in fields by name.
var Fields = map[string]Field{
	UnzipReadRate.Name:    UnzipReadRate,
	ReadRate.Name:         ReadRate,
	CompressionRatio.Name: CompressionRatio,
}

const number = `[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`

var wallTimeRE = regexp.MustCompile(`Finished event loop number \d+ \(` + number + `s CPU, (` + number + `)s elapsed\)\.`)

func (k ColumnarKey) regexp() *regexp.Regexp {
	if k.Label == "" {
		return nil
	}
	return regexp.MustCompile(`^` + regexp.QuoteMeta(k.Label) + `\s*=\s*(` + number + `) ` + regexp.QuoteMeta(k.Unit) + `\s*$`)
}

func (k PipeKey) regexp() *regexp.Regexp {
	if k.Path == "" {
		return nil
	}
	return regexp.MustCompile(`^` + regexp.QuoteMeta(k.Path+"|"+k.Unit+"|"+k.Description+"|") + `(` + number + `)\s*$`)
}

// Extract returns the values of field f found in lines written in
// dialect d, in the order they appear.
func Extract(lines []string, d Dialect, f Field) []Metric {
	var re *regexp.Regexp
	switch d {
	case Columnar:
		re = f.Columnar.regexp()
	case Pipe:
		re = f.Pipe.regexp()
	}
	if re == nil {
		return nil
	}
	var out []Metric
	for _, ln := range lines {
		m := re.FindStringSubmatch(trimCR(ln))
		if m == nil {
			continue
		}
		if v, ok := parseFloat(m[1]); ok {
			out = append(out, Metric{m[1], v})
		}
	}
	return out
}

// ReadRates returns the uncompressed read rates in lines.
func ReadRates(lines []string, d Dialect) []Metric {
	return Extract(lines, d, UnzipReadRate)
}

// WallTimes returns the elapsed time, in seconds, of every
// "Finished event loop number N (Cs CPU, Es elapsed)." notice in
// lines. The loop number and CPU time are ignored.
func WallTimes(lines []string) []float64 {
	var out []float64
	for _, ln := range lines {
		m := wallTimeRE.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		if v, ok := parseFloat(m[1]); ok {
			out = append(out, v)
		}
	}
	return out
}

// DefaultClockPrefixes are the event counts that lead the timing
// lines of the MC and data samples.
var DefaultClockPrefixes = []string{"180000", "209062"}

// ClockTimes returns the whitespace-separated fields of every line
// that starts with one of prefixes. If prefixes is empty,
// DefaultClockPrefixes is used. The number of fields is not checked.
func ClockTimes(lines []string, prefixes ...string) [][]string {
	if len(prefixes) == 0 {
		prefixes = DefaultClockPrefixes
	}
	var out [][]string
	for _, ln := range lines {
		for _, p := range prefixes {
			if strings.HasPrefix(ln, p) {
				out = append(out, strings.Fields(ln))
				break
			}
		}
	}
	return out
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Only reachable on overflow.
		return 0, false
	}
	return v, true
}
