// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"strings"
	"testing"
)

func TestParseCMapBFChar(t *testing.T) {
	src := `
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0041> <0042>
<0043> <00440045>
endbfchar
endcmap
`
	cm := ParseCMap(strings.NewReader(src))
	if s, ok := cm.Lookup([]byte{0x00, 0x41}); !ok || s != "B" {
		t.Errorf("Lookup(0041) = (%q,%v), want (B,true)", s, ok)
	}
	if s, ok := cm.Lookup([]byte{0x00, 0x43}); !ok || s != "DE" {
		t.Errorf("Lookup(0043) = (%q,%v), want (DE,true)", s, ok)
	}
	spaces := cm.CodeSpaces()
	if len(spaces) != 1 || spaces[0].nbytes != 2 {
		t.Fatalf("CodeSpaces = %+v", spaces)
	}
}

func TestParseCMapBFRangeSingleOffset(t *testing.T) {
	src := `
1 beginbfrange
<0020> <007E> <0041>
endbfrange
`
	cm := ParseCMap(strings.NewReader(src))
	if s, ok := cm.Lookup([]byte{0x00, 0x20}); !ok || s != "A" {
		t.Errorf("Lookup(0020) = (%q,%v), want (A,true)", s, ok)
	}
	if s, ok := cm.Lookup([]byte{0x00, 0x21}); !ok || s != "B" {
		t.Errorf("Lookup(0021) = (%q,%v), want (B,true)", s, ok)
	}
}

func TestParseCMapBFRangeArray(t *testing.T) {
	src := `
1 beginbfrange
<0001> <0003> [<0041> <0042> <0043>]
endbfrange
`
	cm := ParseCMap(strings.NewReader(src))
	if s, ok := cm.Lookup([]byte{0x00, 0x02}); !ok || s != "B" {
		t.Errorf("Lookup(0002) = (%q,%v), want (B,true)", s, ok)
	}
}

func TestDecodeBFDestSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE encodes as the surrogate pair D83D DE00.
	got := decodeBFDest("<D83DDE00>")
	want := string(rune(0x1F600))
	if got != want {
		t.Errorf("decodeBFDest = %q, want %q", got, want)
	}
}

func TestParseHexTokenBytesOddLength(t *testing.T) {
	b, ok := parseHexTokenBytes("<4>")
	if !ok {
		t.Fatal("parseHexTokenBytes failed")
	}
	if len(b) != 1 || b[0] != 0x04 {
		t.Errorf("got %v, want [0x04] (odd hex left-padded)", b)
	}
}

func TestCMapLookupMiss(t *testing.T) {
	cm := newCMap()
	if _, ok := cm.Lookup([]byte{0, 1}); ok {
		t.Error("Lookup on empty CMap should miss")
	}
}
