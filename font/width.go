// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

// widthTable holds per-code advance widths (in 1/1000 em glyph space)
// for either a simple font's FirstChar..LastChar range or a CID font's
// sparse /W array, plus the default width returned for anything outside
// the table: DW for CID fonts. Simple fonts build the table with a
// default of 0, so a miss reports not-found and Description.Width falls
// back to MissingWidth.
type widthTable struct {
	simple    map[uint32]float64
	sparse    map[uint32]float64
	def       float64
}

func newWidthTable(def float64) *widthTable {
	return &widthTable{def: def}
}

func (t *widthTable) lookup(code uint32) (float64, bool) {
	if t.simple != nil {
		if w, ok := t.simple[code]; ok {
			return w, true
		}
	}
	if t.sparse != nil {
		if w, ok := t.sparse[code]; ok {
			return w, true
		}
	}
	return t.def, t.def != 0
}

// setSimpleRange fills widths[firstChar..] from a simple font's /Widths
// array.
func (t *widthTable) setSimpleRange(firstChar int, widths []float64) {
	if t.simple == nil {
		t.simple = make(map[uint32]float64, len(widths))
	}
	for i, w := range widths {
		t.simple[uint32(firstChar+i)] = w
	}
}

// setSparse records one CID's width, from a /W array's "c [w1 w2 ...]"
// form.
func (t *widthTable) setSparse(cid uint32, w float64) {
	if t.sparse == nil {
		t.sparse = make(map[uint32]float64)
	}
	t.sparse[cid] = w
}

// setSparseRange records a uniform width across [lo,hi], from a /W
// array's "c1 c2 w" form.
func (t *widthTable) setSparseRange(lo, hi uint32, w float64) {
	if t.sparse == nil {
		t.sparse = make(map[uint32]float64)
	}
	for c := lo; c <= hi; c++ {
		t.sparse[c] = w
		if len(t.sparse) > 1_000_000 {
			break // guard against a corrupted, absurdly wide range
		}
	}
}
