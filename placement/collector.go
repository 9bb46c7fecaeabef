// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package placement

import (
	"github.com/geek0x0/pdftext/content"
	"github.com/geek0x0/pdftext/font"
	"github.com/geek0x0/pdftext/objects"
)

// Logger receives non-fatal diagnostics at collection time. The
// Collector reports one condition through it, a Tf font name that does
// not resolve to a font dict; malformed operators and unknown ExtGState
// entries are skipped without a log entry. It matches the
// ambient pdftext.Logger shape without importing the root package,
// avoiding an import cycle; pdftext.Document adapts its Logger to this
// interface when constructing a Collector.
type Logger interface {
	Debug(msg string, kv ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Collector implements content.Handler: it maintains graphics state
// across q/Q, text-object state across BT/ET, resolves fonts through a
// shared font.Cache, and appends one PlacedText per shown glyph run to
// the in-progress TextPlacement for the page currently being walked.
type Collector struct {
	Fonts  *font.Cache
	Log    Logger

	page   *TextPlacement
	g      gstate
	gstack []gstate
	inText bool
	cur    *runBuilder
}

// NewCollector returns a Collector sharing the given font cache (safe to
// share read-mostly across concurrently extracted pages once warmed).
func NewCollector(fonts *font.Cache) *Collector {
	if fonts == nil {
		fonts = font.NewCache()
	}
	return &Collector{Fonts: fonts, Log: nopLogger{}}
}

// Begin starts collecting a fresh page, discarding any prior in-progress
// state; callers reuse one Collector across pages sequentially.
func (c *Collector) Begin(pageNum int) {
	c.page = newTextPlacement(pageNum)
	c.g = newGState()
	c.gstack = nil
	c.inText = false
	c.cur = nil
}

// Result returns the TextPlacement accumulated since the last Begin.
func (c *Collector) Result() *TextPlacement {
	c.flush()
	return c.page
}

// runBuilder accumulates consecutive glyph placements that share a font
// and size into a single PlacedText, matching the "one Tj/TJ/'/" call
// is one run" granularity: TJ's numeric kerning adjustments move the
// pen without ending the run.
type runBuilder struct {
	text     []rune
	fontID   string
	fontSize float64
	vertical bool
	minX, minY, maxX, maxY float64
	set      bool
}

func (c *Collector) flush() {
	if c.cur == nil || len(c.cur.text) == 0 {
		c.cur = nil
		return
	}
	rb := c.cur
	c.page.add(PlacedText{
		Text:     string(rb.text),
		FontID:   rb.fontID,
		FontSize: rb.fontSize,
		Vertical: rb.vertical,
		Box: Box{
			X:      rb.minX,
			Y:      rb.minY,
			Width:  rb.maxX - rb.minX,
			Height: rb.maxY - rb.minY,
		},
	})
	c.cur = nil
}

// Operate implements content.Handler.
func (c *Collector) Operate(op string, args []content.Operand, resources objects.Value) error {
	switch op {
	case "q":
		c.gstack = append(c.gstack, c.g)
	case "Q":
		if n := len(c.gstack); n > 0 {
			c.g = c.gstack[n-1]
			c.gstack = c.gstack[:n-1]
		}
	case "cm":
		if len(args) == 6 {
			m := matrixFromArgs(args)
			c.g.CTM = m.Mul(c.g.CTM)
		}
	case "gs":
		// ExtGState: only /Font [fontRef size] affects text placement
		// (alpha, blend mode, soft masks are rendering-only and not
		// interpreted here).
		if len(args) == 1 && args[0].Kind == content.OpNameLit {
			eg := resources.Key("ExtGState").Key(args[0].Name)
			if f := eg.Key("Font"); f.Kind() == objects.Array && f.Len() == 2 {
				if fontDict := f.Index(0); fontDict.Kind() == objects.Dict {
					c.g.Tf = c.Fonts.Get(fontDict)
					c.g.Tfs = f.Index(1).Float64()
				}
			}
		}
	case "BT":
		c.flush()
		c.inText = true
		c.g.Tm = content.Identity
		c.g.Tlm = content.Identity
	case "ET":
		c.flush()
		c.inText = false
	case "Tc":
		if len(args) == 1 {
			c.g.Tc = args[0].Float64()
		}
	case "Tw":
		if len(args) == 1 {
			c.g.Tw = args[0].Float64()
		}
	case "Tz":
		if len(args) == 1 {
			c.g.Th = args[0].Float64() / 100
		}
	case "TL":
		if len(args) == 1 {
			c.g.Tl = args[0].Float64()
		}
	case "Ts":
		if len(args) == 1 {
			c.g.Trise = args[0].Float64()
		}
	case "Tr":
		if len(args) == 1 {
			c.g.Tmode = args[0].Int()
		}
	case "Tf":
		if len(args) == 2 && args[0].Kind == content.OpNameLit {
			c.g.Tf = c.resolveFont(resources, args[0].Name)
			c.g.Tfs = args[1].Float64()
		}
	case "Td":
		if len(args) == 2 {
			c.flush()
			m := content.Translation(args[0].Float64(), args[1].Float64())
			c.g.Tlm = m.Mul(c.g.Tlm)
			c.g.Tm = c.g.Tlm
		}
	case "TD":
		if len(args) == 2 {
			c.flush()
			c.g.Tl = -args[1].Float64()
			m := content.Translation(args[0].Float64(), args[1].Float64())
			c.g.Tlm = m.Mul(c.g.Tlm)
			c.g.Tm = c.g.Tlm
		}
	case "Tm":
		if len(args) == 6 {
			c.flush()
			c.g.Tm = matrixFromArgs(args)
			c.g.Tlm = c.g.Tm
		}
	case "T*":
		c.flush()
		m := content.Translation(0, -c.g.Tl)
		c.g.Tlm = m.Mul(c.g.Tlm)
		c.g.Tm = c.g.Tlm
	case "Tj":
		if len(args) == 1 {
			c.flush()
			c.showText(args[0].RawString())
		}
	case "'":
		if len(args) == 1 {
			c.flush()
			m := content.Translation(0, -c.g.Tl)
			c.g.Tlm = m.Mul(c.g.Tlm)
			c.g.Tm = c.g.Tlm
			c.showText(args[0].RawString())
		}
	case "\"":
		if len(args) == 3 {
			c.g.Tw = args[0].Float64()
			c.g.Tc = args[1].Float64()
			c.flush()
			m := content.Translation(0, -c.g.Tl)
			c.g.Tlm = m.Mul(c.g.Tlm)
			c.g.Tm = c.g.Tlm
			c.showText(args[2].RawString())
		}
	case "TJ":
		if len(args) == 1 && args[0].Kind == content.OpArray {
			c.flush()
			for _, e := range args[0].Arr {
				if e.Kind == content.OpString {
					c.showText(e.Str)
					continue
				}
				tx := -e.Float64() / 1000 * c.g.Tfs * c.g.Th
				c.g.Tm = content.Translation(tx, 0).Mul(c.g.Tm)
			}
		}
	}
	return nil
}

func matrixFromArgs(args []content.Operand) content.Matrix {
	return content.FromOperands(args[0].Float64(), args[1].Float64(), args[2].Float64(),
		args[3].Float64(), args[4].Float64(), args[5].Float64())
}

// showText decodes raw (the operand bytes of Tj/'/"/TJ's string
// elements) one glyph code at a time, transforms each glyph's ascent/
// descent/advance box into page space through Trm, folds it into the
// in-progress run, and advances Tm by the glyph's displacement — the
// per-code loop described for the string-showing operators.
func (c *Collector) showText(raw []byte) {
	if c.g.Tf == nil || len(raw) == 0 {
		return
	}
	f := c.g.Tf
	spaceCode, hasSpace := f.FindSpaceCharGlyphCode()

	for len(raw) > 0 {
		text, n, _ := f.Translate(raw)
		w0 := f.Width(raw)
		isSpace := hasSpace && f.CodeOf(raw) == spaceCode
		raw = raw[n:]

		trm := content.Matrix{
			{c.g.Tfs * c.g.Th, 0, 0},
			{0, c.g.Tfs, 0},
			{0, c.g.Trise, 1},
		}.Mul(c.g.Tm).Mul(c.g.CTM)

		tx := w0/1000*c.g.Tfs + c.g.Tc
		if isSpace {
			tx += c.g.Tw
		}
		tx *= c.g.Th

		if text != "" {
			// The glyph's box spans its full advance, Tc and Tw included,
			// in the glyph units trm expects.
			boxW := w0
			if s := c.g.Tfs * c.g.Th; s != 0 {
				boxW = tx / s * 1000
			}
			c.appendGlyph(text, boxW, f, trm)
		}

		c.g.Tm = content.Translation(tx, 0).Mul(c.g.Tm)
	}
}

func (c *Collector) appendGlyph(text string, w0 float64, f *font.Description, trm content.Matrix) {
	if c.cur == nil {
		c.cur = &runBuilder{fontID: f.FontID, fontSize: c.g.Tfs, vertical: f.WritingModeV}
	} else if c.cur.fontID != f.FontID || c.cur.fontSize != c.g.Tfs {
		c.flush()
		c.cur = &runBuilder{fontID: f.FontID, fontSize: c.g.Tfs, vertical: f.WritingModeV}
	}
	c.cur.text = append(c.cur.text, []rune(text)...)

	ascent, descent := f.Ascent/1000, f.Descent/1000
	adv := w0 / 1000
	corners := [4][2]float64{
		{0, descent}, {adv, descent}, {adv, ascent}, {0, ascent},
	}
	for _, pt := range corners {
		x, y := trm.Apply(pt[0], pt[1])
		if !c.cur.set {
			c.cur.minX, c.cur.maxX = x, x
			c.cur.minY, c.cur.maxY = y, y
			c.cur.set = true
			continue
		}
		if x < c.cur.minX {
			c.cur.minX = x
		}
		if x > c.cur.maxX {
			c.cur.maxX = x
		}
		if y < c.cur.minY {
			c.cur.minY = y
		}
		if y > c.cur.maxY {
			c.cur.maxY = y
		}
	}
}

func (c *Collector) resolveFont(resources objects.Value, name string) *font.Description {
	fontDict := resources.Key("Font").Key(name)
	if fontDict.Kind() != objects.Dict {
		c.Log.Debug("unresolved font", "name", name)
		return nil
	}
	return c.Fonts.Get(fontDict)
}

// EnterForm implements content.Handler: a Form XObject invocation behaves
// like an implicit q ... cm ... (content) ... Q around its content
// stream, per PDF 32000-1 8.10.2.
func (c *Collector) EnterForm(m content.Matrix, bbox *[4]float64) {
	c.flush()
	c.gstack = append(c.gstack, c.g)
	c.g.CTM = m.Mul(c.g.CTM)
}

// ExitForm implements content.Handler.
func (c *Collector) ExitForm() {
	c.flush()
	if n := len(c.gstack); n > 0 {
		c.g = c.gstack[n-1]
		c.gstack = c.gstack[:n-1]
	}
}
