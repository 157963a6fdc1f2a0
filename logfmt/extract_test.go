// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logfmt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const ttreeMetrics = `
TreeCache = 23 MBytes
N leaves  = 1928
ReadTotal = 278.334 MBytes
ReadUnZip = 466.995 MBytes
Real Time =   2.098 seconds
Disk IO   = 419.274 MBytes/s
ReadUZRT  = 222.593 MBytes/s
ReadUZCP  = 307.233 MBytes/s
ReadRT    = 132.667 MBytes/s
ReadCP    = 183.114 MBytes/s
`

const rntupleMetrics = `
RNTupleReader.RPageSourceFile.nReadV||number of vector read requests|89
RNTupleReader.RPageSourceFile.bwRead|MB/s|bandwidth compressed bytes read per second|427.096625
RNTupleReader.RPageSourceFile.bwReadUnzip|MB/s|bandwidth uncompressed bytes read per second|720.059923
RNTupleReader.RPageSourceFile.bwUnzip|MB/s|decompression bandwidth of uncompressed bytes per second|28.530462
RNTupleReader.RPageSourceFile.rtCompression||ratio of compressed bytes / uncompressed bytes|0.552142
`

func lines(s string) []string {
	return strings.Split(s, "\n")
}

func TestReadRatesColumnar(t *testing.T) {
	got := ReadRates(lines(ttreeMetrics), Columnar)
	want := []Metric{{"222.593", 222.593}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRates mismatch (-want +got):\n%s", diff)
	}
	if got := Texts(got); got[0] != "222.593" {
		t.Errorf("Texts = %q, want 222.593", got)
	}
}

func TestReadRatesPipe(t *testing.T) {
	got := Values(ReadRates(lines(rntupleMetrics), Pipe))
	if diff := cmp.Diff([]float64{720.059923}, got); diff != "" {
		t.Errorf("ReadRates mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRatesWrongDialect(t *testing.T) {
	if got := ReadRates(lines(ttreeMetrics), Pipe); len(got) != 0 {
		t.Errorf("pipe extractor matched columnar input: %v", got)
	}
	if got := ReadRates(lines(rntupleMetrics), Columnar); len(got) != 0 {
		t.Errorf("columnar extractor matched pipe input: %v", got)
	}
}

func TestExtract(t *testing.T) {
	for _, test := range []struct {
		name string
		in   string
		d    Dialect
		f    Field
		want []string
	}{
		{"read-columnar", ttreeMetrics, Columnar, ReadRate, []string{"132.667"}},
		{"read-pipe", rntupleMetrics, Pipe, ReadRate, []string{"427.096625"}},
		{"ratio-pipe", rntupleMetrics, Pipe, CompressionRatio, []string{"0.552142"}},
		{"ratio-columnar", ttreeMetrics, Columnar, CompressionRatio, []string{}},
		// The description is part of the key.
		{"wrong-description", "RNTupleReader.RPageSourceFile.bwReadUnzip|MB/s|something else|1.5", Pipe, UnzipReadRate, []string{}},
		// So is the unit.
		{"wrong-unit", "ReadUZRT  = 222.593 KBytes/s", Columnar, UnzipReadRate, []string{}},
		{"label-prefix", "ReadUZRTX = 1 MBytes/s", Columnar, UnzipReadRate, []string{}},
		{"non-numeric", "ReadUZRT  = fast MBytes/s", Columnar, UnzipReadRate, []string{}},
		{"crlf", "ReadUZRT  = 1.5 MBytes/s\r", Columnar, UnzipReadRate, []string{"1.5"}},
		{"exponent", "RNTupleReader.RPageSourceFile.bwRead|MB/s|bandwidth compressed bytes read per second|1e3", Pipe, ReadRate, []string{"1e3"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := Texts(Extract(lines(test.in), test.d, test.f))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	in := []string{
		"ReadUZRT  = 3 MBytes/s",
		"noise",
		"ReadUZRT  = 1 MBytes/s",
		"ReadUZRT  = 2 MBytes/s",
		"ReadUZRT  = 1 MBytes/s",
	}
	got := Values(ReadRates(in, Columnar))
	want := []float64{3, 1, 2, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRates mismatch (-want +got):\n%s", diff)
	}
}

func TestWallTimes(t *testing.T) {
	in := []string{
		"Info in <TRint>: Finished event loop number 3 (1.2s CPU, 3.4s elapsed).",
		"Finished event loop number 4 (1.2s CPU, 3.4s elapsed)",
		"Finished event loop number 5 (0.9s CPU, 12s elapsed).",
		"Started event loop number 6",
	}
	got := WallTimes(in)
	want := []float64{3.4, 12}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WallTimes mismatch (-want +got):\n%s", diff)
	}
}

func TestWallTimesEmpty(t *testing.T) {
	if got := WallTimes(nil); len(got) != 0 {
		t.Errorf("WallTimes(nil) = %v, want empty", got)
	}
}

func TestClockTimes(t *testing.T) {
	in := []string{
		"180000 2.1 3.4",
		"209062\t1.0",
		" 180000 4",
		"1800 5",
		"209062 a b c d",
	}
	got := ClockTimes(in)
	want := [][]string{
		{"180000", "2.1", "3.4"},
		{"209062", "1.0"},
		{"209062", "a", "b", "c", "d"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ClockTimes mismatch (-want +got):\n%s", diff)
	}

	got = ClockTimes(in, "1800")
	want = [][]string{{"180000", "2.1", "3.4"}, {"1800", "5"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ClockTimes with prefix mismatch (-want +got):\n%s", diff)
	}
}

func TestDialect(t *testing.T) {
	for _, test := range []struct {
		path string
		want Dialect
	}{
		{"results/rntuple/readspeed_data_505.txt", Pipe},
		{"results/rntuple_uring/readspeed_mc_0.txt", Pipe},
		{"results/ttree/readspeed_data_505.txt", Columnar},
	} {
		if got := DialectForPath(test.path); got != test.want {
			t.Errorf("DialectForPath(%q) = %v, want %v", test.path, got, test.want)
		}
	}
	for _, d := range []Dialect{Columnar, Pipe} {
		if got, ok := ParseDialect(d.String()); !ok || got != d {
			t.Errorf("ParseDialect(%q) = %v, %v", d, got, ok)
		}
	}
	for name, want := range map[string]Dialect{"ttree": Columnar, "rntuple": Pipe} {
		if got, ok := ParseDialect(name); !ok || got != want {
			t.Errorf("ParseDialect(%q) = %v, %v, want %v", name, got, ok, want)
		}
	}
	if _, ok := ParseDialect("csv"); ok {
		t.Errorf("ParseDialect(csv) succeeded")
	}
}
