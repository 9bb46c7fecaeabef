// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pdftext extracts positioned text from PDF documents: for every
// visible text run it reports the UTF-8 string, the font that rendered
// it, and a bounding box in page coordinates. It composes three
// packages that each implement one stage of the pipeline —
// objects (the Object Provider), content (the Content Stream
// Interpreter), and font/placement (the Font Decoder and Text Placement
// Collector) — and exposes the result as a flat, JSON-serializable
// surface.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/geek0x0/pdftext/content"
	"github.com/geek0x0/pdftext/font"
	"github.com/geek0x0/pdftext/objects"
	"github.com/geek0x0/pdftext/placement"
)

// Document is an opened PDF ready for text extraction.
type Document struct {
	objs           *objects.Document
	fonts          *font.Cache
	log            Logger
	recursionLimit int

	closer io.Closer
	reader *Reader
}

// Open parses ra (spanning size bytes) as a PDF document.
func Open(ra io.ReaderAt, size int64) (*Document, error) {
	objDoc, err := objects.Open(ra, size)
	if err != nil {
		return nil, wrapError("open", fmt.Errorf("%w: %v", ErrIO, err))
	}
	return &Document{objs: objDoc, fonts: font.NewCache(), log: NopLogger{}}, nil
}

// OpenEncrypted is like Open but supplies a password for a document
// protected by the standard security handler.
func OpenEncrypted(ra io.ReaderAt, size int64, password string) (*Document, error) {
	objDoc, err := objects.OpenEncrypted(ra, size, password)
	if err != nil {
		return nil, wrapError("open", fmt.Errorf("%w: %v", ErrIO, err))
	}
	return &Document{objs: objDoc, fonts: font.NewCache(), log: NopLogger{}}, nil
}

// OpenFile opens the named file, keeping it open for the life of the
// Document; call Close when done.
func OpenFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError("open", fmt.Errorf("%w: %v", ErrIO, err))
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapError("open", fmt.Errorf("%w: %v", ErrIO, err))
	}
	d, err := Open(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// Close releases the file opened by OpenFile. It is a no-op for
// Documents opened directly with Open/OpenEncrypted.
func (d *Document) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// SetLogger installs the diagnostics sink used for skip-and-continue
// conditions during extraction.
func (d *Document) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	d.log = l
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.objs.Pages())
}

// FontsByID returns every font decoded so far (by any prior Extract
// call), keyed by the stable id used in TextPlacement.FontID.
func (d *Document) FontsByID() map[string]FontDescription {
	out := make(map[string]FontDescription)
	for id, desc := range d.fonts.All() {
		out[id] = fontDescriptionOf(desc)
	}
	return out
}

func fontDescriptionOf(desc *font.Description) FontDescription {
	return FontDescription{
		FontID:       desc.FontID,
		FontName:     desc.FontName,
		FamilyName:   desc.FamilyName,
		FontStretch:  desc.FontStretch,
		FontWeight:   desc.FontWeight,
		FontFlags:    desc.FontFlags,
		Ascent:       desc.Ascent,
		Descent:      desc.Descent,
		SpaceWidth:   desc.SpaceWidth,
		IsSimpleFont: desc.IsSimpleFont,
		IsMonospaced: desc.IsMonospaced,
		Vertical:     desc.WritingModeV,
	}
}

func (d *Document) recursionLimitOr(opts ExtractOptions) int {
	if opts.RecursionLimit > 0 {
		return opts.RecursionLimit
	}
	return content.DefaultRecursionLimit
}

// selectedPages returns the 0-based page indices in [StartPage, EndPage)
// that opts selects, clamped to the document's actual page count.
// EndPage <= 0 (including the ExtractOptions zero value) means "to the
// end of the document".
func (d *Document) selectedPages(opts ExtractOptions) []int {
	n := d.PageCount()
	start, end := opts.StartPage, opts.EndPage
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > n {
		end = n
	}
	if start > end {
		start = end
	}
	out := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		out = append(out, p)
	}
	return out
}

// extractPage runs the content-stream interpreter and placement
// collector over one page (identified by its 0-based index pageNum),
// using a Collector/Interpreter pair the caller owns exclusively (so
// ExtractConcurrent can run one per goroutine while sharing only the
// read-mostly font cache). Exceeding the recursion limit aborts the
// page's interpretation but still returns the prefix of placements
// gathered before the abort, per the recursion-limit boundary case: the
// page is not dropped, only truncated.
func (d *Document) extractPage(pageNum int, page objects.Value, collector *placement.Collector, limit int) ([]TextPlacement, error) {
	r, err := d.objs.PageContents(page)
	if err != nil {
		d.log.Debug("page has no content", "page", pageNum, "err", err)
		return nil, nil
	}
	resources := d.objs.PageResources(page)

	ip := content.NewInterpreter(d.objs)
	ip.RecursionLimit = limit

	collector.Begin(pageNum)
	if err := ip.Run(r, resources, collector); err != nil {
		if errors.Is(err, content.ErrRecursionLimit) {
			d.log.Warn("recursion limit exceeded, page truncated", "page", pageNum)
		} else {
			return nil, wrapPageError("interpret content stream", pageNum, fmt.Errorf("%w: %v", ErrParse, err))
		}
	}

	tp := collector.Result()
	out := make([]TextPlacement, 0, len(tp.Runs))
	for _, run := range tp.Runs {
		out = append(out, TextPlacement{
			Page:     pageNum,
			Text:     run.Text,
			FontID:   run.FontID,
			FontSize: run.FontSize,
			X:        run.Box.X,
			Y:        run.Box.Y,
			Width:    run.Box.Width,
			Height:   run.Box.Height,
			Vertical: run.Vertical,
		})
	}
	return out, nil
}

// Extract runs the pipeline synchronously over every selected page, in
// page order.
func (d *Document) Extract(opts ExtractOptions) ([]TextPlacement, error) {
	return d.ExtractWithContext(context.Background(), opts)
}

// ExtractWithContext is like Extract but aborts (returning ctx.Err())
// between pages if ctx is canceled.
func (d *Document) ExtractWithContext(ctx context.Context, opts ExtractOptions) ([]TextPlacement, error) {
	pages := d.objs.Pages()
	sel := d.selectedPages(opts)
	limit := d.recursionLimitOr(opts)

	collector := placement.NewCollector(d.fonts)
	collector.Log = placementLoggerAdapter{d.log}

	var out []TextPlacement
	for _, pageNum := range sel {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		if pageNum < 0 || pageNum >= len(pages) {
			continue
		}
		runs, err := d.extractPage(pageNum, pages[pageNum], collector, limit)
		if err != nil {
			d.log.Warn("skipping page", "page", pageNum, "err", err)
			continue
		}
		out = append(out, runs...)
	}
	return out, nil
}

// ExtractConcurrent parallelizes extraction across pages: each worker
// goroutine owns its own content.Interpreter and placement.Collector,
// sharing only the read-mostly font.Cache, per the concurrency model —
// callers who need genuinely parallel font decoding should warm the
// cache first with a single-threaded pass, since concurrent first-use
// decodes of the same font repeat the work; the first Description
// interned for a font is the one every worker keeps.
func (d *Document) ExtractConcurrent(opts ExtractOptions) ([]TextPlacement, error) {
	pages := d.objs.Pages()
	sel := d.selectedPages(opts)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sel) {
		workers = len(sel)
	}
	if workers == 0 {
		return nil, nil
	}
	limit := d.recursionLimitOr(opts)

	type result struct {
		pageNum int
		runs    []TextPlacement
	}

	jobs := make(chan int)
	results := make(chan result)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector := placement.NewCollector(d.fonts)
			collector.Log = placementLoggerAdapter{d.log}
			for pageNum := range jobs {
				if pageNum < 0 || pageNum >= len(pages) {
					continue
				}
				runs, err := d.extractPage(pageNum, pages[pageNum], collector, limit)
				if err != nil {
					d.log.Warn("skipping page", "page", pageNum, "err", err)
					continue
				}
				results <- result{pageNum, runs}
			}
		}()
	}

	go func() {
		for _, p := range sel {
			jobs <- p
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byPage := make(map[int][]TextPlacement)
	for r := range results {
		byPage[r.pageNum] = r.runs
	}

	order := make([]int, 0, len(byPage))
	for p := range byPage {
		order = append(order, p)
	}
	sort.Ints(order)

	var out []TextPlacement
	for _, p := range order {
		out = append(out, byPage[p]...)
	}
	return out, nil
}

// Reader is a read-once, query-many-times facade over a document's
// placements: it extracts every page a single time with ExtractConcurrent
// and then serves PageCount, PlacementCount, FontsByID, and page-range
// lookups against the cached result, rather than re-running the pipeline
// on every query.
type Reader struct {
	doc        *Document
	placements []TextPlacement
}

// Reader extracts the whole document (on first call only; later calls
// reuse the cached result) and returns a Reader over the result.
func (d *Document) Reader() (*Reader, error) {
	if d.reader != nil {
		return d.reader, nil
	}
	placements, err := d.ExtractConcurrent(ExtractOptions{})
	if err != nil {
		return nil, err
	}
	d.reader = &Reader{doc: d, placements: placements}
	return d.reader, nil
}

// PageCount returns the number of pages in the underlying document.
func (r *Reader) PageCount() int {
	return r.doc.PageCount()
}

// PlacementCount returns the total number of placements gathered across
// the whole document.
func (r *Reader) PlacementCount() int {
	return len(r.placements)
}

// FontsByID returns every font decoded while building this Reader.
func (r *Reader) FontsByID() map[string]FontDescription {
	return r.doc.FontsByID()
}

// Placements returns every placement whose 0-based page number falls in
// the half-open range [startPage, endPage). endPage < 0 selects
// everything from startPage to the end of the document — unlike
// ExtractOptions.EndPage, 0 is not special-cased here, matching the
// spec's own filter contract exactly.
func (r *Reader) Placements(startPage, endPage int) []TextPlacement {
	if endPage < 0 {
		endPage = r.doc.PageCount()
	}
	out := make([]TextPlacement, 0, len(r.placements))
	for _, p := range r.placements {
		if p.Page >= startPage && p.Page < endPage {
			out = append(out, p)
		}
	}
	return out
}
