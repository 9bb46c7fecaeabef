// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package placement drives a content-stream interpreter to collect
// positioned text: it owns the graphics-state and text-object state
// machines, resolves fonts through a font.Cache, computes each shown
// glyph run's page-space bounding box, and aggregates the results into
// per-page TextPlacement records. It corresponds to the "Text Placement
// Collector" module.
package placement

import (
	"github.com/geek0x0/pdftext/content"
	"github.com/geek0x0/pdftext/font"
)

// gstate is the graphics-state frame pushed/popped by q/Q, mirroring the
// state PDF operators mutate outside a BT/ET text object plus the
// text-state parameters that persist across text objects (Tc, Tw, Tz,
// TL, Tf, Tfs, Tmode, Trise are graphics state, not text-object state;
// only Tm/Tlm reset at BT).
type gstate struct {
	CTM content.Matrix

	Tc     float64
	Tw     float64
	Th     float64 // horizontal scaling, Tz/100; default 1
	Tl     float64
	Tf     *font.Description
	Tfs    float64
	Tmode  int
	Trise  float64

	Tm  content.Matrix
	Tlm content.Matrix
}

func newGState() gstate {
	return gstate{CTM: content.Identity, Th: 1, Tm: content.Identity, Tlm: content.Identity}
}
