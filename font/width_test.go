// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import "testing"

func TestWidthTableSimpleRange(t *testing.T) {
	tbl := newWidthTable(0)
	tbl.setSimpleRange(32, []float64{278, 278, 355})
	if w, ok := tbl.lookup(32); !ok || w != 278 {
		t.Errorf("lookup(32) = (%v,%v)", w, ok)
	}
	if w, ok := tbl.lookup(34); !ok || w != 355 {
		t.Errorf("lookup(34) = (%v,%v)", w, ok)
	}
	if _, ok := tbl.lookup(999); ok {
		t.Error("lookup(999) should miss")
	}
}

func TestWidthTableSparseAndRange(t *testing.T) {
	tbl := newWidthTable(1000)
	tbl.setSparse(5, 600)
	tbl.setSparseRange(10, 12, 500)
	if w, _ := tbl.lookup(5); w != 600 {
		t.Errorf("lookup(5) = %v, want 600", w)
	}
	if w, _ := tbl.lookup(11); w != 500 {
		t.Errorf("lookup(11) = %v, want 500", w)
	}
	if w, ok := tbl.lookup(999); !ok || w != 1000 {
		t.Errorf("lookup(999) = (%v,%v), want (1000,true)", w, ok)
	}
}

func TestDescriptionWidthMonospace(t *testing.T) {
	d := &Description{IsMonospaced: true, MonospaceWidth: 600, MissingWidth: 0, widths: newWidthTable(0)}
	if w := d.Width([]byte{'A'}); w != 600 {
		t.Errorf("Width() = %v, want 600", w)
	}
}

func TestDescriptionWidthFallsBackToMissingWidth(t *testing.T) {
	d := &Description{MissingWidth: 250, IsSimpleFont: true}
	if w := d.Width([]byte{'A'}); w != 250 {
		t.Errorf("Width() = %v, want 250", w)
	}
}
