// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"golang.org/x/text/encoding/charmap"
)

// standardEncoding maps a simple font's default character codes to
// Adobe glyph names, used as the "default" translation tier when no
// ToUnicode CMap and no explicit /Encoding entry apply. Covers the
// printable ASCII range, which is what PDF's Adobe StandardEncoding and
// WinAnsiEncoding agree on; codes above it fall through to the raw
// Latin-1 tier.
var standardEncoding = map[int]string{
	32: "space", 33: "exclam", 34: "quotedbl", 35: "numbersign",
	36: "dollar", 37: "percent", 38: "ampersand", 39: "quoteright",
	40: "parenleft", 41: "parenright", 42: "asterisk", 43: "plus",
	44: "comma", 45: "hyphen", 46: "period", 47: "slash",
	48: "zero", 49: "one", 50: "two", 51: "three", 52: "four",
	53: "five", 54: "six", 55: "seven", 56: "eight", 57: "nine",
	58: "colon", 59: "semicolon", 60: "less", 61: "equal",
	62: "greater", 63: "question", 64: "at",
	91: "bracketleft", 92: "backslash", 93: "bracketright",
	94: "asciicircum", 95: "underscore", 96: "quoteleft",
	123: "braceleft", 124: "bar", 125: "braceright", 126: "asciitilde",
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		standardEncoding[int(c)] = string(c)
	}
	for c := 'a'; c <= 'z'; c++ {
		standardEncoding[int(c)] = string(c)
	}
}

// agl is a small Adobe Glyph List subset covering the names produced by
// standardEncoding and common /Differences entries; init also adds the
// single letters A-Z and a-z. Names not present resolve only through
// glyphNameToRune's "uniXXXX" form.
var agl = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quoteright": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "quoteleft": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"bullet": '•', "endash": '–', "emdash": '—', "quotedblleft": '“',
	"quotedblright": '”', "quotesingle": '\'', "quotesinglbase": '‚',
	"ellipsis": '…', "trademark": '™', "copyright": '©', "registered": '®',
	"degree": '°', "eacute": 'é', "egrave": 'è', "agrave": 'à',
	"ccedilla": 'ç', "ntilde": 'ñ', "uuml": 'ü', "ouml": 'ö', "auml": 'ä',
	"fi": 'ﬁ', "fl": 'ﬂ',
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		agl[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		agl[string(c)] = c
	}
}

// glyphNameToRune resolves a PostScript/Adobe glyph name to a Unicode
// rune, via the AGL subset above and the "uniXXXX" convention.
func glyphNameToRune(glyphName string) (rune, bool) {
	if r, ok := agl[glyphName]; ok {
		return r, true
	}
	if len(glyphName) == 7 && glyphName[:3] == "uni" {
		var v rune
		for _, c := range glyphName[3:] {
			d := int(c)
			switch {
			case c >= '0' && c <= '9':
				d = int(c - '0')
			case c >= 'A' && c <= 'F':
				d = int(c-'A') + 10
			case c >= 'a' && c <= 'f':
				d = int(c-'a') + 10
			default:
				return 0, false
			}
			v = v<<4 | rune(d)
		}
		return v, true
	}
	return 0, false
}

// simpleEncodingTable is the "simpleEncoding" translation tier: a
// 256-entry byte-to-rune table, built from a named base encoding
// (WinAnsiEncoding/MacRomanEncoding, sourced from
// golang.org/x/text/encoding/charmap) and/or a /Differences override
// array layered on top.
type simpleEncodingTable struct {
	table [256]rune
	set   [256]bool
}

func newSimpleEncodingTable() *simpleEncodingTable {
	return &simpleEncodingTable{}
}

func (t *simpleEncodingTable) lookup(code byte) (rune, bool) {
	if t.set[code] && t.table[code] != 0 {
		return t.table[code], true
	}
	return 0, false
}

func (t *simpleEncodingTable) set1(code byte, r rune) {
	t.table[code] = r
	t.set[code] = true
}

func (t *simpleEncodingTable) reverseSpace() (byte, bool) {
	for c := 0; c < 256; c++ {
		if t.set[c] && t.table[c] == ' ' {
			return byte(c), true
		}
	}
	return 0, false
}

// baseEncodingTable fills in the 256-entry table for a named base
// encoding using x/text/encoding/charmap's byte-oriented codecs, falling
// back to Adobe StandardEncoding for the shared ASCII range.
func baseEncodingTable(name string) *simpleEncodingTable {
	t := newSimpleEncodingTable()
	var cm *charmap.Charmap
	switch name {
	case "WinAnsiEncoding":
		cm = charmap.Windows1252
	case "MacRomanEncoding":
		cm = charmap.Macintosh
	case "MacExpertEncoding":
		cm = charmap.Macintosh
	default:
		cm = charmap.Windows1252
	}
	for c := 0; c < 256; c++ {
		r := cm.DecodeByte(byte(c))
		if r != 0xFFFD && r != 0 {
			t.set1(byte(c), r)
		}
	}
	for code, glyphName := range standardEncoding {
		if !t.set[code] {
			if r, ok := glyphNameToRune(glyphName); ok {
				t.set1(byte(code), r)
			}
		}
	}
	return t
}

// applyDifferences overlays a /Differences array (alternating runs of
// "starting code, glyphName, glyphName, ..." per PDF spec 9.6.6.2) on top
// of a base table, building one from scratch if base is nil.
func applyDifferences(base *simpleEncodingTable, diffs []diffEntry) *simpleEncodingTable {
	t := base
	if t == nil {
		t = newSimpleEncodingTable()
	}
	code := 0
	for _, e := range diffs {
		if e.isCode {
			code = e.code
			continue
		}
		if r, ok := glyphNameToRune(e.glyphName); ok && code >= 0 && code < 256 {
			t.set1(byte(code), r)
		}
		code++
	}
	return t
}

type diffEntry struct {
	isCode   bool
	code     int
	glyphName string
}
