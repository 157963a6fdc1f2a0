// Copyright 2024 The IOBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Branchcount counts how often each branch type occurs in a list of
// branch types, one per line, and prints "type; count" lines, most
// frequent first. Types with equal counts keep the order in which
// they first appear.
//
// Usage:
//
//	branchcount [-table] [file]
//
// The file defaults to results/daod_phys_branch_types.txt. With
// -table, the counts are printed as an aligned table instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aclements/go-gg/table"

	"github.com/iobench/benchmetrics/logfmt"
)

const defaultInput = "results/daod_phys_branch_types.txt"

func main() {
	log.SetPrefix("branchcount: ")
	log.SetFlags(0)
	if err := branchcount(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func branchcount(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("branchcount", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(wErr, "usage: branchcount [-table] [file]\n")
		flags.PrintDefaults()
	}
	flagTable := flags.Bool("table", false, "print counts as an aligned table")
	if err := flags.Parse(args); err != nil {
		return flag.ErrHelp
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return flag.ErrHelp
	}
	path := defaultInput
	if flags.NArg() == 1 {
		path = flags.Arg(0)
	}

	lines, err := logfmt.ReadFile(path)
	if err != nil {
		return err
	}
	tab := Count(lines)
	if *flagTable {
		return table.Fprint(w, tab)
	}
	types := tab.MustColumn("type").([]string)
	counts := tab.MustColumn("count").([]int)
	for i := range types {
		if _, err := fmt.Fprintf(w, "%s; %d\n", types[i], counts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns a table with columns "type" and "count" giving the
// number of occurrences of each whitespace-trimmed line, most frequent
// first. Ties keep first-seen order.
func Count(lines []string) *table.Table {
	types, counts := []string{}, []int{}
	index := make(map[string]int)
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		i, ok := index[ln]
		if !ok {
			i = len(types)
			index[ln] = i
			types = append(types, ln)
			counts = append(counts, 0)
		}
		counts[i]++
	}

	// SortBy is stable and ascending, so sort on the negated count.
	neg := make([]int, len(counts))
	for i, c := range counts {
		neg[i] = -c
	}
	var g table.Grouping = table.NewBuilder(nil).
		Add("type", types).
		Add("count", counts).
		Add("order", neg).
		Done()
	g = table.SortBy(g, "order")
	g = table.Remove(g, "order")
	return table.Flatten(g)
}
