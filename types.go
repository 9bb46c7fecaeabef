// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdftext

// TextPlacement is one contiguous run of text shown by a single
// Tj/TJ/'/" call, positioned in page space (origin bottom-left, y
// increasing upward, matching PDF user space — not screen space).
type TextPlacement struct {
	// Page is the document's 0-based page index: 0 is the first page.
	Page     int     `json:"page"`
	Text     string  `json:"text"`
	FontID   string  `json:"font_id"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Vertical bool    `json:"vertical,omitempty"`
}

// FontDescription is the JSON-serializable projection of a decoded font,
// keyed by FontID in Document.FontsByID.
type FontDescription struct {
	FontID       string  `json:"font_id"`
	FontName     string  `json:"font_name"`
	FamilyName   string  `json:"family_name,omitempty"`
	FontStretch  string  `json:"font_stretch,omitempty"`
	FontWeight   int     `json:"font_weight,omitempty"`
	FontFlags    int     `json:"font_flags,omitempty"`
	Ascent       float64 `json:"ascent"`
	Descent      float64 `json:"descent"`
	SpaceWidth   float64 `json:"space_width"`
	IsSimpleFont bool    `json:"is_simple_font"`
	IsMonospaced bool    `json:"is_monospaced,omitempty"`
	Vertical     bool    `json:"vertical,omitempty"`
}

// ExtractOptions configures a single extraction call: worker count, page
// range and recursion limit, plus a Password field that extraction does
// not read (see Password).
type ExtractOptions struct {
	// Workers is the number of goroutines ExtractConcurrent uses; 0
	// selects runtime.NumCPU().
	Workers int

	// StartPage and EndPage restrict extraction to the half-open,
	// 0-based page range [StartPage, EndPage): page 0 is the first page
	// of the document. EndPage <= 0 means "to the end of the document"
	// — this includes the ExtractOptions zero value, so an unset range
	// extracts every page, matching Workers/RecursionLimit's own
	// zero-means-default convention. To select a genuinely empty range,
	// or to query an explicit range outside this convenience wrapper,
	// use Document.Reader's Placements(startPage, endPage), which
	// treats only endPage < 0 as end-of-document per spec.
	StartPage int
	EndPage   int

	// RecursionLimit bounds nested Form XObject recursion; 0 selects
	// content.DefaultRecursionLimit.
	RecursionLimit int

	// Password is not read by Extract, ExtractWithContext or
	// ExtractConcurrent: decryption is set up when the document is
	// opened, so a password takes effect only when passed to
	// OpenEncrypted.
	Password string
}
