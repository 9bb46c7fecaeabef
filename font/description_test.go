// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import "testing"

func TestTranslateToUnicodeTier(t *testing.T) {
	cm := newCMap()
	cm.single[uint32('A')] = "Z"
	d := &Description{IsSimpleFont: true, toUnicode: cm}
	text, n, method := d.Translate([]byte{'A'})
	if text != "Z" || n != 1 || method != MethodToUnicode {
		t.Errorf("Translate = (%q,%d,%v), want (Z,1,ToUnicode)", text, n, method)
	}
}

func TestTranslateSimpleEncodingTier(t *testing.T) {
	tbl := newSimpleEncodingTable()
	tbl.set1(0x41, 'Q')
	d := &Description{IsSimpleFont: true, simpleEncoding: tbl}
	text, n, method := d.Translate([]byte{0x41})
	if text != "Q" || n != 1 || method != MethodSimpleEncoding {
		t.Errorf("Translate = (%q,%d,%v), want (Q,1,SimpleEncoding)", text, n, method)
	}
}

func TestTranslateDefaultTierSimpleFont(t *testing.T) {
	d := &Description{IsSimpleFont: true}
	text, n, method := d.Translate([]byte{'A'})
	if text != "A" || n != 1 || method != MethodDefault {
		t.Errorf("Translate('A') = (%q,%d,%v), want (A,1,Default)", text, n, method)
	}
}

func TestTranslateDefaultTierCIDFont(t *testing.T) {
	// A CID font without a ToUnicode CMap has no text mapping at all: its
	// codes are font-specific glyph selectors, not Unicode, so the default
	// tier must emit the replacement character rather than reinterpret the
	// raw code as a rune.
	d := &Description{IsSimpleFont: false, codeSpaces: []codeSpaceRange{{nbytes: 2, lo: 0, hi: 0xFFFF}}}
	text, n, method := d.Translate([]byte{0x00, 0x41})
	if n != 2 || method != MethodDefault {
		t.Errorf("Translate = (%q,%d,%v)", text, n, method)
	}
	if text != string(rune(0xFFFD)) {
		t.Errorf("text = %q, want %q (U+FFFD)", text, string(rune(0xFFFD)))
	}
}

func TestTranslateRawLatin1Fallback(t *testing.T) {
	d := &Description{IsSimpleFont: true}
	text, n, method := d.Translate([]byte{0xA9}) // not in standardEncoding
	if n != 1 || method != MethodRawLatin1 {
		t.Errorf("Translate(0xA9) = (%q,%d,%v)", text, n, method)
	}
	if text != string(rune(0xA9)) {
		t.Errorf("text = %q, want %q", text, string(rune(0xA9)))
	}
}

func TestCodeLengthCIDDefault(t *testing.T) {
	d := &Description{IsSimpleFont: false}
	if n := d.codeLength([]byte{0x00, 0x41, 0x00}); n != 2 {
		t.Errorf("codeLength() = %d, want 2 (default)", n)
	}
}

func TestCodeLengthUsesCodespace(t *testing.T) {
	d := &Description{codeSpaces: []codeSpaceRange{{nbytes: 1, lo: 0, hi: 0x7F}, {nbytes: 2, lo: 0x8000, hi: 0xFFFF}}}
	if n := d.codeLength([]byte{0x41}); n != 1 {
		t.Errorf("codeLength(0x41) = %d, want 1", n)
	}
	if n := d.codeLength([]byte{0x80, 0x01}); n != 2 {
		t.Errorf("codeLength(0x8001) = %d, want 2", n)
	}
}

func TestFindSpaceCharGlyphCodeDefault(t *testing.T) {
	d := &Description{IsSimpleFont: true}
	d.computeSpaceCode()
	c, ok := d.FindSpaceCharGlyphCode()
	if !ok || c != ' ' {
		t.Errorf("FindSpaceCharGlyphCode() = (%v,%v), want (' ',true)", c, ok)
	}
}

func TestFindSpaceCharGlyphCodeCIDFontNone(t *testing.T) {
	d := &Description{IsSimpleFont: false}
	d.computeSpaceCode()
	if _, ok := d.FindSpaceCharGlyphCode(); ok {
		t.Error("a CID font with no ToUnicode CMap should report no space code")
	}
}

func TestFindSpaceCharGlyphCodeCIDFontFromToUnicode(t *testing.T) {
	// Tw must apply to multi-byte CID fonts too: the space-representing
	// code is whatever code the font's ToUnicode CMap maps to U+0020, not
	// necessarily byte value 0x20.
	cm := newCMap()
	cm.single[0x0003] = " "
	d := &Description{IsSimpleFont: false, toUnicode: cm}
	d.computeSpaceCode()
	c, ok := d.FindSpaceCharGlyphCode()
	if !ok || c != 0x0003 {
		t.Errorf("FindSpaceCharGlyphCode() = (%v,%v), want (0x0003,true)", c, ok)
	}
}

func TestCodeOfUsesCodeLength(t *testing.T) {
	d := &Description{codeSpaces: []codeSpaceRange{{nbytes: 2, lo: 0, hi: 0xFFFF}}}
	if c := d.CodeOf([]byte{0x00, 0x03, 0xFF}); c != 0x0003 {
		t.Errorf("CodeOf() = %#x, want 0x0003", c)
	}
}
