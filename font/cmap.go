// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// CMap is a parsed embedded CMap stream: either a ToUnicode CMap (code
// -> UTF-16BE-decoded string) or a CID CMap (code -> CID), both of which
// use the same bfchar/bfrange & cidchar/cidrange PostScript-ish syntax.
// This module only needs the ToUnicode direction for text extraction.
type CMap struct {
	single map[uint32]string
	ranges []cmapRange
	spaces []codeSpaceRange
}

type cmapRange struct {
	lo, hi uint32
	nbytes int
	dst    []string // pre-expanded destination for small ranges, else nil
	base   uint32    // code point for code lo when dst is nil; lo+k maps to base+k
	isCID  bool
}

func newCMap() *CMap {
	return &CMap{single: map[uint32]string{}}
}

// Lookup returns the destination text for the code held in the first
// len(raw) bytes (raw must already be truncated to the code's byte
// width, from Description.codeLength).
func (m *CMap) Lookup(raw []byte) (string, bool) {
	code := decodeCode(raw)
	if s, ok := m.single[code]; ok {
		return s, true
	}
	for _, r := range m.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		offset := code - r.lo
		if r.dst != nil {
			if int(offset) < len(r.dst) {
				return r.dst[offset], true
			}
			return "", false
		}
		return string(rune(r.base + offset)), true
	}
	return "", false
}

// CodeSpaces returns the codespace ranges declared by begincodespacerange,
// used by Description.codeLength to determine multi-byte code widths.
func (m *CMap) CodeSpaces() []codeSpaceRange {
	return m.spaces
}

// ParseCMap parses an embedded CMap program's PostScript-like syntax:
// begincodespacerange/endcodespacerange and beginbfchar/endbfchar,
// beginbfrange/endbfrange blocks. Unrecognized operators (usecmap,
// cidrange blocks meant for CID CMaps, procset boilerplate) are skipped.
func ParseCMap(r io.Reader) *CMap {
	m := newCMap()
	data, _ := io.ReadAll(r)
	// Pad array brackets so "[<0041>" and "<0043>]" split into their own tokens.
	src := strings.NewReplacer("[", " [ ", "]", " ] ").Replace(string(data))
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	sc.Split(bufio.ScanWords)

	var toks []string
	for sc.Scan() {
		toks = append(toks, sc.Text())
	}

	i := 0
	for i < len(toks) {
		switch toks[i] {
		case "begincodespacerange":
			i++
			for i+1 < len(toks) && toks[i] != "endcodespacerange" {
				lo, ok1 := parseHexTokenBytes(toks[i])
				hi, ok2 := parseHexTokenBytes(toks[i+1])
				i += 2
				if ok1 && ok2 {
					nb := len(lo)
					m.spaces = append(m.spaces, codeSpaceRange{
						nbytes: nb, lo: decodeCode(lo), hi: decodeCode(hi),
					})
				}
			}
			if i < len(toks) {
				i++
			}
		case "beginbfchar":
			i++
			for i+1 < len(toks) && toks[i] != "endbfchar" {
				src, ok1 := parseHexTokenBytes(toks[i])
				dstTok := toks[i+1]
				i += 2
				if !ok1 {
					continue
				}
				code := decodeCode(src)
				m.single[code] = decodeBFDest(dstTok)
			}
			if i < len(toks) {
				i++
			}
		case "beginbfrange":
			i++
			for i+2 < len(toks) && toks[i] != "endbfrange" {
				lo, ok1 := parseHexTokenBytes(toks[i])
				hi, ok2 := parseHexTokenBytes(toks[i+1])
				dstTok := toks[i+2]
				i += 3
				if !ok1 || !ok2 {
					continue
				}
				loCode, hiCode := decodeCode(lo), decodeCode(hi)
				if dstTok == "[" {
					// bfrange with an array of individual destinations.
					var arr []string
					for i < len(toks) && toks[i] != "]" {
						arr = append(arr, decodeBFDest(toks[i]))
						i++
					}
					if i < len(toks) {
						i++
					}
					m.ranges = append(m.ranges, cmapRange{lo: loCode, hi: hiCode, dst: arr})
					continue
				}
				dst := decodeBFDest(dstTok)
				if runes := []rune(dst); len(runes) == 1 {
					m.ranges = append(m.ranges, cmapRange{lo: loCode, hi: hiCode, base: uint32(runes[0])})
				} else {
					m.single[loCode] = dst
				}
			}
			if i < len(toks) {
				i++
			}
		default:
			i++
		}
	}
	return m
}

// parseHexTokenBytes parses a "<48656C6C6F>" token into its raw bytes.
func parseHexTokenBytes(tok string) ([]byte, bool) {
	if len(tok) < 2 || tok[0] != '<' || tok[len(tok)-1] != '>' {
		return nil, false
	}
	hexStr := tok[1 : len(tok)-1]
	if len(hexStr)%2 != 0 {
		hexStr = "0" + hexStr
	}
	out := make([]byte, 0, len(hexStr)/2)
	for i := 0; i+1 < len(hexStr)+1 && i < len(hexStr); i += 2 {
		hi := unhex(hexStr[i])
		lo := 0
		if i+1 < len(hexStr) {
			lo = unhex(hexStr[i+1])
		}
		if hi < 0 || lo < 0 {
			return nil, false
		}
		out = append(out, byte(hi<<4|lo))
	}
	return out, true
}

// decodeBFDest decodes a bfchar/bfrange destination token: a hex string
// of UTF-16BE code units, per Adobe's CMap spec.
func decodeBFDest(tok string) string {
	raw, ok := parseHexTokenBytes(tok)
	if !ok {
		return ""
	}
	var out []rune
	for i := 0; i+1 < len(raw); i += 2 {
		u := uint16(raw[i])<<8 | uint16(raw[i+1])
		if u >= 0xD800 && u <= 0xDBFF && i+3 < len(raw) {
			u2 := uint16(raw[i+2])<<8 | uint16(raw[i+3])
			if u2 >= 0xDC00 && u2 <= 0xDFFF {
				r := (rune(u-0xD800) << 10) + rune(u2-0xDC00) + 0x10000
				out = append(out, r)
				i += 2
				continue
			}
		}
		out = append(out, rune(u))
	}
	return string(out)
}

func parseIntToken(tok string) int {
	n, _ := strconv.Atoi(tok)
	return n
}

func unhex(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b) - '0'
	case 'a' <= b && b <= 'f':
		return int(b) - 'a' + 10
	case 'A' <= b && b <= 'F':
		return int(b) - 'A' + 10
	}
	return -1
}
