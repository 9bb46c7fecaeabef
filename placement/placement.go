// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package placement

// Box is an axis-aligned bounding box in page space, with the y-axis
// increasing upward as PDF user space defines it (not top-left screen
// space): Y is the box's bottom edge, Y+Height its top edge.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// PlacedText is one contiguous glyph run shown by a single Tj/TJ/'/"
// operator invocation (TJ's per-number kerning adjustments do not start
// a new run).
type PlacedText struct {
	Text     string
	FontID   string
	FontSize float64
	Box      Box
	Vertical bool
}

// TextPlacement aggregates every PlacedText collected from one page,
// plus the page's own bounding box for callers that want an overall
// content extent without walking Runs themselves.
type TextPlacement struct {
	Page  int
	Runs  []PlacedText
	BBox  Box
	empty bool
}

func newTextPlacement(page int) *TextPlacement {
	return &TextPlacement{Page: page, empty: true}
}

func (tp *TextPlacement) add(pt PlacedText) {
	tp.Runs = append(tp.Runs, pt)
	b := pt.Box
	if tp.empty {
		tp.BBox = b
		tp.empty = false
		return
	}
	minX := min(tp.BBox.X, b.X)
	minY := min(tp.BBox.Y, b.Y)
	maxX := max(tp.BBox.X+tp.BBox.Width, b.X+b.Width)
	maxY := max(tp.BBox.Y+tp.BBox.Height, b.Y+b.Height)
	tp.BBox = Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
