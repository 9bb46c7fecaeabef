// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import "testing"

func TestGlyphNameToRuneAGL(t *testing.T) {
	cases := map[string]rune{
		"space": ' ', "A": 'A', "bullet": '•', "eacute": 'é',
	}
	for name, want := range cases {
		got, ok := glyphNameToRune(name)
		if !ok || got != want {
			t.Errorf("glyphNameToRune(%q) = (%q,%v), want (%q,true)", name, got, ok, want)
		}
	}
}

func TestGlyphNameToRuneUniFallback(t *testing.T) {
	got, ok := glyphNameToRune("uni00E9")
	if !ok || got != 'é' {
		t.Errorf("glyphNameToRune(uni00E9) = (%q,%v), want (é,true)", got, ok)
	}
}

func TestGlyphNameToRuneUnknown(t *testing.T) {
	if _, ok := glyphNameToRune("zzzznotaglyph"); ok {
		t.Error("expected unknown glyph name to fail")
	}
}

func TestBaseEncodingTableWinAnsi(t *testing.T) {
	tbl := baseEncodingTable("WinAnsiEncoding")
	if r, ok := tbl.lookup('A'); !ok || r != 'A' {
		t.Errorf("lookup('A') = (%q,%v)", r, ok)
	}
	if r, ok := tbl.lookup(' '); !ok || r != ' ' {
		t.Errorf("lookup(' ') = (%q,%v)", r, ok)
	}
}

func TestSimpleEncodingTableReverseSpace(t *testing.T) {
	tbl := newSimpleEncodingTable()
	tbl.set1(0x20, ' ')
	tbl.set1(0x41, 'A')
	c, ok := tbl.reverseSpace()
	if !ok || c != 0x20 {
		t.Errorf("reverseSpace() = (%v,%v), want (0x20,true)", c, ok)
	}
}

func TestApplyDifferencesOverlay(t *testing.T) {
	base := baseEncodingTable("WinAnsiEncoding")
	diffs := []diffEntry{
		{isCode: true, code: 65},
		{glyphName: "bullet"},
		{glyphName: "space"},
	}
	tbl := applyDifferences(base, diffs)
	if r, ok := tbl.lookup(65); !ok || r != '•' {
		t.Errorf("lookup(65) after Differences = (%q,%v), want (•,true)", r, ok)
	}
	if r, ok := tbl.lookup(66); !ok || r != ' ' {
		t.Errorf("lookup(66) after Differences = (%q,%v), want (space,true)", r, ok)
	}
	// Unaffected codes still resolve through the underlying base table.
	if r, ok := tbl.lookup('Z'); !ok || r != 'Z' {
		t.Errorf("lookup('Z') = (%q,%v), want (Z,true)", r, ok)
	}
}
