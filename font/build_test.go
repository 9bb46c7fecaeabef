// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/geek0x0/pdftext/objects"
)

// openFontFixture builds a minimal one-page PDF carrying a single Type1
// font resource and returns its resolved Font dict Value.
func openFontFixture(t *testing.T, fontBody string) objects.Value {
	t.Helper()
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		fontBody,
		"<< /Length 0 >>\nstream\n\nendstream",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objs)+1)
	for i, body := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objs)+1, xrefOffset)

	data := buf.Bytes()
	d, err := objects.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pages := d.Pages()
	if len(pages) != 1 {
		t.Fatalf("len(Pages()) = %d, want 1", len(pages))
	}
	return d.PageResources(pages[0]).Key("Font").Key("F1")
}

func TestDecodeSimpleType1Font(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/FirstChar 65 /Widths [667 667] /Encoding /WinAnsiEncoding "+
		"/FontDescriptor << /Ascent 718 /Descent -207 /Flags 32 >> >>")

	d := Decode("4.0", fontDict)
	if d.FontName != "Helvetica" {
		t.Errorf("FontName = %q, want Helvetica", d.FontName)
	}
	if !d.IsSimpleFont {
		t.Error("IsSimpleFont = false")
	}
	if d.Ascent != 718 || d.Descent != -207 {
		t.Errorf("Ascent/Descent = %v/%v", d.Ascent, d.Descent)
	}
	if w := d.Width([]byte{'A'}); w != 667 {
		t.Errorf("Width('A') = %v, want 667", w)
	}
	text, _, _ := d.Translate([]byte{'A'})
	if text != "A" {
		t.Errorf("Translate('A') = %q, want A", text)
	}
}

func TestDecodeStripsSubsetTag(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /ABCDEF+Arial-Bold >>")
	d := Decode("4.0", fontDict)
	if d.FontName != "Arial-Bold" {
		t.Errorf("FontName = %q, want Arial-Bold (subset tag stripped)", d.FontName)
	}
}

func TestDecodeDefaultsAscentDescentWhenMissing(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	d := Decode("4.0", fontDict)
	if d.Ascent != 718 || d.Descent != -207 {
		t.Errorf("default Ascent/Descent = %v/%v, want 718/-207", d.Ascent, d.Descent)
	}
}

func TestDecodeType0IdentityH(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type0 /BaseFont /Foo "+
		"/Encoding /Identity-H "+
		"/DescendantFonts [<< /Subtype /CIDFontType2 /DW 1000 "+
		"/W [3 [500 600] 10 12 700] "+
		"/FontDescriptor << /Ascent 900 /Descent -100 >> >> ] >>")

	d := Decode("4.0", fontDict)
	if d.IsSimpleFont {
		t.Error("Type0 font should not be IsSimpleFont")
	}
	if w := d.Width([]byte{0x00, 0x03}); w != 500 {
		t.Errorf("Width(CID 3) = %v, want 500", w)
	}
	if w := d.Width([]byte{0x00, 0x0B}); w != 700 {
		t.Errorf("Width(CID 11) = %v, want 700 (uniform range)", w)
	}
	if w := d.Width([]byte{0xFF, 0xFF}); w != 1000 {
		t.Errorf("Width(unknown CID) = %v, want DW 1000", w)
	}
}

func TestDecodeSimpleFontMonospaceRequiresMatchingMissingWidth(t *testing.T) {
	// Uniform explicit widths alone don't make a font monospaced: the
	// default width (MissingWidth) must equal that uniform value too,
	// since any code outside FirstChar/LastChar falls back to it.
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Mono "+
		"/FirstChar 65 /Widths [600 600] "+
		"/FontDescriptor << /Ascent 718 /Descent -207 /Flags 32 /MissingWidth 0 >> >>")
	d := Decode("4.0", fontDict)
	if d.IsMonospaced {
		t.Error("IsMonospaced = true, want false (MissingWidth 0 != uniform width 600)")
	}
}

func TestDecodeSimpleFontMonospaceWithMatchingMissingWidth(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Mono "+
		"/FirstChar 65 /Widths [600 600] "+
		"/FontDescriptor << /Ascent 718 /Descent -207 /Flags 32 /MissingWidth 600 >> >>")
	d := Decode("4.0", fontDict)
	if !d.IsMonospaced || d.MonospaceWidth != 600 {
		t.Errorf("IsMonospaced/MonospaceWidth = %v/%v, want true/600", d.IsMonospaced, d.MonospaceWidth)
	}
}

func TestDecodeSimpleFontDifferencesEncoding(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Custom "+
		"/Encoding << /BaseEncoding /WinAnsiEncoding /Differences [65 /bullet] >> >>")
	d := Decode("4.0", fontDict)
	text, _, method := d.Translate([]byte{0x41})
	if text != "•" || method != MethodSimpleEncoding {
		t.Errorf("Translate(0x41) = (%q,%v), want (bullet,SimpleEncoding)", text, method)
	}
}
