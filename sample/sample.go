// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sample reduces repeated benchmark measurements into the
// per-file rows and summaries written out for plotting.
package sample

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// NumBins is the number of bins wall times are reduced to.
const NumBins = 10

// ErrTooFewSamples is returned by Bin when there are fewer samples
// than bins.
var ErrTooFewSamples = errors.New("too few samples to bin")

// Bin partitions xs into nbins contiguous groups and returns the sum
// of each group, earliest group first.
//
// Each group holds len(xs)/nbins samples; the trailing
// len(xs)%nbins samples are dropped so that every bin covers the same
// number of event loops. If len(xs) < nbins, Bin returns an error
// wrapping ErrTooFewSamples.
func Bin(xs []float64, nbins int) ([]float64, error) {
	if nbins <= 0 {
		return nil, fmt.Errorf("invalid bin count %d", nbins)
	}
	if len(xs) < nbins {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrTooFewSamples, len(xs), nbins)
	}
	n := len(xs) / nbins
	out := make([]float64, nbins)
	for i := range out {
		out[i] = vec.Sum(xs[i*n : (i+1)*n])
	}
	return out, nil
}

// A Row pairs one wall time with the read rate measured in the same
// position of the run.
type Row struct {
	WallTime float64
	ReadRate float64
}

// A LengthMismatchError reports that Zip was given sequences of
// different lengths and dropped the excess.
type LengthMismatchError struct {
	WallTimes, ReadRates int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%d wall times but %d read rates; truncated to %d rows", e.WallTimes, e.ReadRates, e.rows())
}

func (e *LengthMismatchError) rows() int {
	if e.WallTimes < e.ReadRates {
		return e.WallTimes
	}
	return e.ReadRates
}

// Zip pairs walls and rates element-wise up to the length of the
// shorter sequence. If the lengths differ, Zip still returns the
// truncated rows, along with a *LengthMismatchError. Callers should
// treat the error as a warning.
func Zip(walls, rates []float64) ([]Row, error) {
	n := len(walls)
	if len(rates) < n {
		n = len(rates)
	}
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{walls[i], rates[i]}
	}
	if len(walls) != len(rates) {
		return rows, &LengthMismatchError{len(walls), len(rates)}
	}
	return rows, nil
}

// Event counts of the two physics samples used by the read
// benchmarks.
const (
	DataEvents = 209062
	MCEvents   = 180000
)

// EventsForPath returns the number of events processed by the run
// that produced path. Result files are named after the sample they
// read, as in "readspeed_data_505.txt" or "readspeed_mc_0.data".
func EventsForPath(path string) int {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.Contains(base, "data") {
		return DataEvents
	}
	return MCEvents
}

// A Summary describes the rows of one results file.
type Summary struct {
	N int

	// WallTime and WallTimeErr are the mean and standard error
	// of the event-loop time, in seconds.
	WallTime, WallTimeErr float64

	// EventRate and EventRateErr are the event throughput in
	// events per second and its error, derived from the
	// wall-time interval.
	EventRate, EventRateErr float64

	// ReadRate and ReadRateErr are the mean and standard error of
	// the read rate, in MB/s.
	ReadRate, ReadRateErr float64
}

// Summarize computes a Summary of rows for a run over nEvents events.
func Summarize(rows []Row, nEvents int) Summary {
	walls := make([]float64, len(rows))
	rates := make([]float64, len(rows))
	for i, r := range rows {
		walls[i], rates[i] = r.WallTime, r.ReadRate
	}
	s := Summary{N: len(rows)}
	if len(rows) == 0 {
		nan := math.NaN()
		s.WallTime, s.WallTimeErr = nan, nan
		s.EventRate, s.EventRateErr = nan, nan
		s.ReadRate, s.ReadRateErr = nan, nan
		return s
	}
	s.WallTime, s.WallTimeErr = meanErr(walls)
	s.ReadRate, s.ReadRateErr = meanErr(rates)

	ev := float64(nEvents)
	s.EventRate = ev / s.WallTime
	hi := ev / (s.WallTime - s.WallTimeErr)
	lo := ev / (s.WallTime + s.WallTimeErr)
	s.EventRateErr = (hi - lo) / 2
	return s
}

// meanErr returns the mean of xs and its standard error. The
// standard error of a single sample is 0.
func meanErr(xs []float64) (mean, stderr float64) {
	mean = stats.Mean(xs)
	if len(xs) < 2 {
		return mean, 0
	}
	sd := stats.Sample{Xs: xs}.StdDev()
	return mean, sd / math.Sqrt(float64(len(xs)))
}
