// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/geek0x0/pdftext"
)

func main() {
	start := flag.Int("start", 0, "0-based first page to extract (inclusive)")
	end := flag.Int("end", -1, "0-based page to stop before (exclusive); negative means the end of the document")
	workers := flag.Int("workers", 0, "number of goroutines for concurrent extraction (0 selects one per CPU)")
	password := flag.String("password", "", "password for an encrypted document")
	concurrent := flag.Bool("concurrent", false, "extract pages concurrently instead of sequentially")
	fonts := flag.Bool("fonts", false, "also print the decoded font table to stderr")
	verbose := flag.Bool("v", false, "log skip-and-continue diagnostics to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdftext [options] file.pdf")
		flag.PrintDefaults()
		os.Exit(2)
	}

	path := flag.Arg(0)
	var doc *pdftext.Document
	var err error
	if *password != "" {
		f, ferr := os.Open(path)
		if ferr != nil {
			log.Fatalf("open %s: %v", path, ferr)
		}
		defer f.Close()
		fi, ferr := f.Stat()
		if ferr != nil {
			log.Fatalf("stat %s: %v", path, ferr)
		}
		doc, err = pdftext.OpenEncrypted(f, fi.Size(), *password)
	} else {
		doc, err = pdftext.OpenFile(path)
	}
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer doc.Close()

	if *verbose {
		doc.SetLogger(pdftext.SlogLogger{L: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))})
	}

	opts := pdftext.ExtractOptions{
		Workers:   *workers,
		StartPage: *start,
		EndPage:   *end,
		Password:  *password,
	}

	var placements []pdftext.TextPlacement
	if *concurrent {
		placements, err = doc.ExtractConcurrent(opts)
	} else {
		placements, err = doc.Extract(opts)
	}
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(placements); err != nil {
		log.Fatalf("write output: %v", err)
	}

	if *fonts {
		fenc := json.NewEncoder(os.Stderr)
		fenc.SetIndent("", "  ")
		fenc.Encode(doc.FontsByID())
	}
}
