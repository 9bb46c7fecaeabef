// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"strings"

	"github.com/geek0x0/pdftext/objects"
)

// Decode builds a Description from a resolved Font dict, following the
// same tiering the collector will later use to translate shown bytes:
// it eagerly parses whichever of ToUnicode / Differences+base-encoding /
// width tables are present, so Translate never touches the object model
// again after construction.
func Decode(fontID string, fontDict objects.Value) *Description {
	d := &Description{
		FontID:       fontID,
		FontName:     baseFontName(fontDict),
		MissingWidth: 0,
	}

	// Applied before the width tables so decodeSimple's monospace check
	// can compare each explicit width against the descriptor's
	// MissingWidth.
	applyFontDescriptor(d, descriptorOf(fontDict))

	subtype := fontDict.Key("Subtype").Name()
	if subtype == "Type0" {
		decodeType0(d, fontDict)
	} else {
		decodeSimple(d, fontDict, subtype)
	}

	if tu := fontDict.Key("ToUnicode"); tu.Kind() == objects.Stream {
		if r := tu.Reader(); r != nil {
			d.toUnicode = ParseCMap(r)
		}
	}

	d.computeSpaceCode()
	return d
}

func baseFontName(fontDict objects.Value) string {
	name := fontDict.Key("BaseFont").Name()
	if i := strings.Index(name, "+"); i == 6 { // "ABCDEF+RealName" subset tag
		name = name[i+1:]
	}
	return name
}

func descriptorOf(fontDict objects.Value) objects.Value {
	if fd := fontDict.Key("FontDescriptor"); fd.Kind() == objects.Dict {
		return fd
	}
	if desc := descendantFont(fontDict); desc.Kind() == objects.Dict {
		return desc.Key("FontDescriptor")
	}
	return objects.Value{}
}

func descendantFont(fontDict objects.Value) objects.Value {
	arr := fontDict.Key("DescendantFonts")
	if arr.Kind() != objects.Array || arr.Len() == 0 {
		return objects.Value{}
	}
	return arr.Index(0)
}

func applyFontDescriptor(d *Description, fd objects.Value) {
	if fd.Kind() != objects.Dict {
		d.Ascent = 0.718 * 1000
		d.Descent = -0.207 * 1000
		return
	}
	d.FamilyName = fd.Key("FontFamily").Name()
	if d.FamilyName == "" {
		if s := fd.Key("FontFamily"); s.Kind() == objects.String {
			d.FamilyName = s.RawString()
		}
	}
	d.FontStretch = fd.Key("FontStretch").Name()
	if w := fd.Key("FontWeight"); !w.IsNull() {
		d.FontWeight = int(w.Float64())
	}
	d.FontFlags = int(fd.Key("Flags").Int64())
	d.Ascent = fd.Key("Ascent").Float64()
	d.Descent = fd.Key("Descent").Float64()
	if mw := fd.Key("MissingWidth"); !mw.IsNull() {
		d.MissingWidth = mw.Float64()
	}
	if d.Ascent == 0 && d.Descent == 0 {
		d.Ascent = 0.718 * 1000
		d.Descent = -0.207 * 1000
	}
}

func decodeSimple(d *Description, fontDict objects.Value, subtype string) {
	d.IsSimpleFont = true

	firstChar := int(fontDict.Key("FirstChar").Int64())
	widthsVal := fontDict.Key("Widths")
	if widthsVal.Kind() == objects.Array {
		widths := make([]float64, widthsVal.Len())
		for i, e := range widthsVal.Elements() {
			widths[i] = e.Float64()
		}
		d.widths = newWidthTable(0)
		d.widths.setSimpleRange(firstChar, widths)

		if len(widths) > 1 {
			uniform := true
			for _, w := range widths {
				if w != widths[0] {
					uniform = false
					break
				}
			}
			if uniform && widths[0] > 0 && d.MissingWidth == widths[0] {
				d.IsMonospaced = true
				d.MonospaceWidth = widths[0]
			}
		}
	}

	d.SpaceWidth = d.widthOrDefault(' ')

	enc := fontDict.Key("Encoding")
	switch enc.Kind() {
	case objects.Name:
		d.simpleEncoding = baseEncodingTable(enc.Name())
	case objects.Dict:
		var base *simpleEncodingTable
		if baseName := enc.Key("BaseEncoding").Name(); baseName != "" {
			base = baseEncodingTable(baseName)
		} else {
			base = baseEncodingTable("StandardEncoding")
		}
		diffs := parseDifferences(enc.Key("Differences"))
		d.simpleEncoding = applyDifferences(base, diffs)
	case objects.Stream:
		if r := enc.Reader(); r != nil {
			if cm := ParseCMap(r); cm != nil {
				d.toUnicode = cm
			}
		}
	default:
		if subtype == "TrueType" {
			d.simpleEncoding = baseEncodingTable("WinAnsiEncoding")
		}
	}
}

func (d *Description) widthOrDefault(code byte) float64 {
	if d.widths == nil {
		return 0
	}
	if w, ok := d.widths.lookup(uint32(code)); ok {
		return w
	}
	return 0
}

func parseDifferences(v objects.Value) []diffEntry {
	if v.Kind() != objects.Array {
		return nil
	}
	var out []diffEntry
	for _, e := range v.Elements() {
		switch e.Kind() {
		case objects.Integer, objects.Real:
			out = append(out, diffEntry{isCode: true, code: int(e.Float64())})
		case objects.Name:
			out = append(out, diffEntry{glyphName: e.Name()})
		}
	}
	return out
}

func decodeType0(d *Description, fontDict objects.Value) {
	d.IsSimpleFont = false
	desc := descendantFont(fontDict)

	if desc.Key("WMode").Int64() == 1 {
		d.WritingModeV = true
	}

	dw := 1000.0
	if v := desc.Key("DW"); !v.IsNull() {
		dw = v.Float64()
	}
	d.widths = newWidthTable(dw)
	parseCIDWidths(d.widths, desc.Key("W"))
	d.SpaceWidth = dw

	encVal := fontDict.Key("Encoding")
	switch encVal.Kind() {
	case objects.Stream:
		if r := encVal.Reader(); r != nil {
			if cm := ParseCMap(r); cm != nil {
				d.codeSpaces = cm.CodeSpaces()
				if d.toUnicode == nil {
					// An embedded CID-keyed Encoding CMap is not itself a
					// text mapping, but its codespace still governs code
					// widths; a ToUnicode stream (parsed by the caller)
					// takes priority for actual text.
				}
			}
		}
	case objects.Name:
		// Identity-H/Identity-V and predefined registries: 2-byte codes,
		// which is codeLength's default when d.codeSpaces is empty.
	}
}

// parseCIDWidths parses a CID font's /W array: alternating runs of
// either "c [w1 w2 ... wn]" (per-code widths starting at c) or
// "c1 c2 w" (uniform width across the inclusive range).
func parseCIDWidths(t *widthTable, w objects.Value) {
	if w.Kind() != objects.Array {
		return
	}
	els := w.Elements()
	i := 0
	for i < len(els) {
		c1 := uint32(els[i].Float64())
		i++
		if i >= len(els) {
			break
		}
		if els[i].Kind() == objects.Array {
			arr := els[i].Elements()
			for k, wv := range arr {
				t.setSparse(c1+uint32(k), wv.Float64())
			}
			i++
			continue
		}
		c2 := uint32(els[i].Float64())
		i++
		if i >= len(els) {
			break
		}
		wv := els[i].Float64()
		i++
		t.setSparseRange(c1, c2, wv)
	}
}
