// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iobench/benchmetrics/sample"
)

var rows = []sample.Row{
	{WallTime: 2.1, ReadRate: 222.5},
	{WallTime: 2.3, ReadRate: 230.1},
	{WallTime: 2.0, ReadRate: 219.9},
}

func TestName(t *testing.T) {
	for _, test := range []struct {
		root, path, want string
	}{
		{"", "results/ttree/readspeed_data_505.data", "readspeed_data_505"},
		{"results", "results/ttree/readspeed_data_505.data", "ttree_readspeed_data_505"},
		{"results", "results/rntuple/readspeed_data_505.data", "rntuple_readspeed_data_505"},
		{"results/", "results/readspeed_mc_0.data", "readspeed_mc_0"},
		{"results", "other/readspeed_mc_0.data", "readspeed_mc_0"},
	} {
		if got := Name(test.root, test.path); got != test.want {
			t.Errorf("Name(%q, %q) = %q, want %q", test.root, test.path, got, test.want)
		}
	}
}

func TestNew(t *testing.T) {
	pl, err := New("readspeed_data_505", rows)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Title.Text != "readspeed_data_505" {
		t.Errorf("title = %q", pl.Title.Text)
	}
	if pl.X.Min != 0 || pl.X.Max < 2.3 {
		t.Errorf("X range = [%v, %v]", pl.X.Min, pl.X.Max)
	}
	if pl.Y.Min != 0 || pl.Y.Max < 230.1 {
		t.Errorf("Y range = [%v, %v]", pl.Y.Min, pl.Y.Max)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		PNGDir: filepath.Join(dir, "png"),
		SVGDir: filepath.Join(dir, "svg"),
	}
	files, err := Write("results/ttree/readspeed_data_505.data", rows, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "png", "readspeed_data_505.png"),
		filepath.Join(dir, "svg", "readspeed_data_505.svg"),
	}
	if len(files) != len(want) {
		t.Fatalf("wrote %v, want %v", files, want)
	}
	for i, f := range files {
		if f != want[i] {
			t.Errorf("file %d = %s, want %s", i, f, want[i])
		}
	}

	png, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("%s is not a PNG", want[0])
	}
	svg, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("%s is not an SVG", want[1])
	}
}

func TestWriteDisabled(t *testing.T) {
	files, err := Write("x.data", rows, Options{})
	if err != nil || files != nil {
		t.Errorf("Write with no directories = %v, %v", files, err)
	}
}
