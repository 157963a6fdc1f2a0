// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Extractmetrics extracts read rates and event-loop times from the
// logs of I/O benchmark runs and writes them out as plain-text data
// files for plotting.
//
// Usage:
//
//	extractmetrics [flags] results_dir
//
// Extractmetrics walks results_dir and processes every file ending in
// the -ext suffix (".txt" by default). What it extracts depends on
// -mode:
//
//	combined    event-loop times, summed into 10 bins, paired with
//	            the uncompressed read rates; written to foo.data
//	            for the log foo.txt
//	readrates   read rates only; written to foo.txt~read_rates
//	clocktimes  lines starting with a known event count, split into
//	            fields; written to foo.txt~clock_times
//
// Each output file holds one tab-separated row per line.
//
// The -format flag selects the dialect of the read-rate block:
// "columnar" for TTree's "ReadUZRT = 222.593 MBytes/s" tables, "pipe"
// for RNTuple's "RNTupleReader.RPageSourceFile.bwReadUnzip|MB/s|...|720.06"
// metric dumps, or "auto" (the default) to pick "pipe" for any log
// whose path mentions "rntuple".
//
// Files with fewer than 10 event-loop times cannot be binned and are
// skipped with a warning. If a file yields a different number of
// binned times and read rates, the excess is dropped with a warning.
//
// The -summary flag prints, for each combined data file, the mean and
// standard error of the binned event-loop time, the resulting event
// throughput, and the mean read rate.
//
// The -png and -svg flags additionally plot each combined data file
// into the given directory. Charts are named after the data file's
// path below results_dir, so results/ttree/foo.data is drawn as
// ttree_foo.png.
//
// The -db flag records every run in a SQL database named by a
// driver:dsn pair, such as "sqlite3:results.db" or
// "mysql:user:pass@/bench".
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/aclements/go-gg/table"
	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/net/context"

	"github.com/iobench/benchmetrics/chart"
	"github.com/iobench/benchmetrics/datafile"
	"github.com/iobench/benchmetrics/logfmt"
	"github.com/iobench/benchmetrics/sample"
	"github.com/iobench/benchmetrics/storage/db"
	_ "github.com/iobench/benchmetrics/storage/db/sqlite3"
)

func usage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintf(w, "usage: extractmetrics [flags] results_dir\n")
	flags.PrintDefaults()
}

func main() {
	log.SetPrefix("extractmetrics: ")
	log.SetFlags(0)
	if err := extractmetrics(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// options holds the parsed command line.
type options struct {
	root    string
	ext     string
	mode    datafile.Mode
	format  string
	field   logfmt.Field
	summary bool
	charts  chart.Options
	db      *db.DB

	// charted maps each chart name to the data file it was
	// drawn from.
	charted map[string]string
}

func parseFlags(wErr io.Writer, args []string) (*options, error) {
	flags := flag.NewFlagSet("extractmetrics", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() { usage(wErr, flags) }

	var (
		flagMode    = flags.String("mode", "combined", "extraction `mode`: combined, readrates, or clocktimes")
		flagFormat  = flags.String("format", "auto", "read-rate `dialect`: auto, columnar, or pipe")
		flagMetric  = flags.String("metric", "unzip", "read-rate `field`: unzip, read, or ratio")
		flagExt     = flags.String("ext", ".txt", "process files ending in `suffix`")
		flagSummary = flags.Bool("summary", false, "print a summary table of combined data files")
		flagPNG     = flags.String("png", "", "write PNG charts of combined data files to `dir`")
		flagSVG     = flags.String("svg", "", "write SVG charts of combined data files to `dir`")
		flagDB      = flags.String("db", "", "record runs in the database `driver:dsn`")
	)
	if err := flags.Parse(args); err != nil {
		// flags has already reported the problem.
		return nil, flag.ErrHelp
	}
	bad := func(format string, args ...interface{}) error {
		fmt.Fprintf(wErr, format+"\n", args...)
		flags.Usage()
		return flag.ErrHelp
	}

	opts := &options{
		ext:     *flagExt,
		format:  *flagFormat,
		summary: *flagSummary,
		charts:  chart.Options{PNGDir: *flagPNG, SVGDir: *flagSVG},
		charted: make(map[string]string),
	}
	var ok bool
	if opts.mode, ok = datafile.ParseMode(*flagMode); !ok {
		return nil, bad("unknown mode %q", *flagMode)
	}
	if opts.format != "auto" {
		if _, ok := logfmt.ParseDialect(opts.format); !ok {
			return nil, bad("unknown format %q", opts.format)
		}
	}
	if opts.field, ok = logfmt.Fields[*flagMetric]; !ok {
		return nil, bad("unknown metric %q", *flagMetric)
	}
	if flags.NArg() != 1 {
		return nil, bad("expected exactly one results directory")
	}
	opts.root = flags.Arg(0)
	opts.charts.Root = opts.root

	if *flagDB != "" {
		d, err := db.Open(*flagDB)
		if err != nil {
			return nil, err
		}
		opts.db = d
	}
	return opts, nil
}

func extractmetrics(w, wErr io.Writer, args []string) error {
	opts, err := parseFlags(wErr, args)
	if err != nil {
		return err
	}
	if opts.db != nil {
		defer opts.db.Close()
	}

	paths, err := logfmt.Walk(opts.root, opts.ext)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var summaries []fileSummary
	files := logfmt.Files{Paths: paths}
	for files.Scan() {
		f := files.File()
		out, err := opts.process(ctx, wErr, f)
		if err != nil {
			return err
		}
		if out != nil && opts.summary {
			summaries = append(summaries, fileSummary{out.path, sample.Summarize(out.rows, sample.EventsForPath(f.Path))})
		}
	}
	if err := files.Err(); err != nil {
		return err
	}

	if opts.summary {
		return printSummaries(w, summaries)
	}
	return nil
}

func (o *options) dialect(path string) logfmt.Dialect {
	if d, ok := logfmt.ParseDialect(o.format); ok {
		return d
	}
	return logfmt.DialectForPath(path)
}

// output is the result of processing one log in combined mode.
type output struct {
	path string
	rows []sample.Row
}

// process extracts the metrics of f and writes its output file.
// Problems with the contents of f are reported to wErr and yield a
// nil output; only I/O errors are returned.
func (o *options) process(ctx context.Context, wErr io.Writer, f logfmt.File) (*output, error) {
	path := datafile.Path(f.Path, o.mode)
	var (
		columns []string
		rows    [][]string
		out     *output
	)
	switch o.mode {
	case datafile.ReadRatesMode:
		columns = []string{o.field.Name}
		for _, text := range logfmt.Texts(logfmt.Extract(f.Lines, o.dialect(f.Path), o.field)) {
			rows = append(rows, []string{text})
		}

	case datafile.ClockTimesMode:
		rows = logfmt.ClockTimes(f.Lines)

	case datafile.CombinedMode:
		bins, err := sample.Bin(logfmt.WallTimes(f.Lines), sample.NumBins)
		if err != nil {
			fmt.Fprintf(wErr, "%s: skipping: %v\n", f.Path, err)
			return nil, nil
		}
		rates := logfmt.Values(logfmt.Extract(f.Lines, o.dialect(f.Path), o.field))
		zipped, err := sample.Zip(bins, rates)
		if err != nil {
			// Non-fatal. Warn but keep going.
			fmt.Fprintf(wErr, "%s: %v\n", f.Path, err)
		}
		columns = []string{"wall_time", o.field.Name}
		for _, r := range zipped {
			rows = append(rows, []string{formatFloat(r.WallTime), formatFloat(r.ReadRate)})
		}
		out = &output{path, zipped}
		if o.charts.PNGDir != "" || o.charts.SVGDir != "" {
			name := chart.Name(o.charts.Root, path)
			if prev, ok := o.charted[name]; ok {
				return nil, fmt.Errorf("%s: chart %s already drawn for %s", path, name, prev)
			}
			o.charted[name] = path
			if _, err := chart.Write(path, zipped, o.charts); err != nil {
				return nil, err
			}
		}
	}

	if err := datafile.WriteFile(path, rows); err != nil {
		return nil, err
	}
	if o.db != nil {
		if err := record(ctx, o.db, f.Path, o.mode, columns, rows); err != nil {
			return nil, fmt.Errorf("recording %s: %w", f.Path, err)
		}
	}
	return out, nil
}

// record stores the rows extracted from the log at path as one run.
func record(ctx context.Context, d *db.DB, path string, mode datafile.Mode, columns []string, rows [][]string) error {
	run, err := d.NewRun(ctx, path, mode.String())
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := run.InsertSample(columns, r); err != nil {
			run.Abort()
			return err
		}
	}
	return run.Commit()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

type fileSummary struct {
	path string
	sum  sample.Summary
}

func printSummaries(w io.Writer, summaries []fileSummary) error {
	var (
		files                   []string
		ns                      []int
		walls, wallErrs         []float64
		eventRates, eventErrs   []float64
		readRates, readRateErrs []float64
	)
	for _, s := range summaries {
		files = append(files, s.path)
		ns = append(ns, s.sum.N)
		walls = append(walls, s.sum.WallTime)
		wallErrs = append(wallErrs, s.sum.WallTimeErr)
		eventRates = append(eventRates, s.sum.EventRate)
		eventErrs = append(eventErrs, s.sum.EventRateErr)
		readRates = append(readRates, s.sum.ReadRate)
		readRateErrs = append(readRateErrs, s.sum.ReadRateErr)
	}
	if len(files) == 0 {
		return nil
	}
	tab := table.NewBuilder(nil).
		Add("file", files).
		Add("n", ns).
		Add("wall (s)", walls).
		Add("wall ±", wallErrs).
		Add("events/s", eventRates).
		Add("events ±", eventErrs).
		Add("MB/s", readRates).
		Add("MB/s ±", readRateErrs).
		Done()
	return table.Fprint(w, tab, "%s", "%d", "%.3f", "%.3f", "%.1f", "%.1f", "%.2f", "%.2f")
}
