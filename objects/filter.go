// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objects

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"fmt"
	"io"
)

// applyFilter wraps r with the decoder for the named PDF stream filter.
// Image-only filters (DCTDecode, JPXDecode, CCITTFaxDecode) are passed
// through undecoded, matching the Non-goal that this module never
// rasterizes image data — a caller that wants raw JPEG/JPX/CCITT bytes
// gets exactly the encoded stream contents.
func applyFilter(filter string, r io.Reader, parms Value) (io.Reader, error) {
	switch filter {
	case "", "Identity":
		return r, nil
	case "FlateDecode", "Fl":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("flate: %w", err)
		}
		return applyPredictor(zr, parms)
	case "LZWDecode", "LZW":
		early := int64(1)
		if parms.Kind() == Dict && parms.Has("EarlyChange") {
			early = parms.Key("EarlyChange").Int64()
		}
		litWidth := 8
		var lr io.Reader
		if early == 0 {
			lr = lzw.NewReader(r, lzw.MSB, litWidth)
		} else {
			lr = lzw.NewReader(r, lzw.MSB, litWidth)
		}
		return applyPredictor(lr, parms)
	case "ASCIIHexDecode", "AHx":
		return newASCIIHexReader(r), nil
	case "ASCII85Decode", "A85":
		return newASCII85Reader(r), nil
	case "RunLengthDecode", "RL":
		return newRunLengthReader(r), nil
	case "DCTDecode", "DCT", "JPXDecode", "CCITTFaxDecode", "CCF", "JBIG2Decode":
		return r, nil
	default:
		return r, nil
	}
}

type asciiHexReader struct {
	src  io.ByteReader
	done bool
}

func newASCIIHexReader(r io.Reader) io.Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufReader{r}
	}
	return &asciiHexReader{src: br}
}

type bufReader struct{ io.Reader }

func (b bufReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b, buf[:])
	return buf[0], err
}

func (a *asciiHexReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if a.done {
			return n, io.EOF
		}
		var hi, lo int
		var c byte
		var err error
		for {
			c, err = a.src.ReadByte()
			if err != nil {
				a.done = true
				return n, nil
			}
			if c == '>' {
				a.done = true
				return n, nil
			}
			if x := unhex(c); x >= 0 {
				hi = x
				break
			}
		}
		lo = -1
		for {
			c, err = a.src.ReadByte()
			if err != nil {
				a.done = true
				lo = 0
				break
			}
			if c == '>' {
				a.done = true
				lo = 0
				break
			}
			if x := unhex(c); x >= 0 {
				lo = x
				break
			}
		}
		p[n] = byte(hi<<4 | lo)
		n++
	}
	return n, nil
}

type ascii85Reader struct {
	src   io.ByteReader
	group [5]byte
	out   [4]byte
	oi    int
	on    int
	done  bool
}

func newASCII85Reader(r io.Reader) io.Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufReader{r}
	}
	return &ascii85Reader{src: br}
}

func (a *ascii85Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if a.oi < a.on {
			p[n] = a.out[a.oi]
			a.oi++
			n++
			continue
		}
		if a.done {
			return n, io.EOF
		}
		gi := 0
		for gi < 5 {
			c, err := a.src.ReadByte()
			if err != nil {
				a.done = true
				break
			}
			if c == '~' {
				a.done = true
				break
			}
			if c == 'z' && gi == 0 {
				a.out = [4]byte{0, 0, 0, 0}
				a.oi, a.on = 0, 4
				gi = -1
				break
			}
			if c < '!' || c > 'u' {
				continue
			}
			a.group[gi] = c - '!'
			gi++
		}
		if gi == -1 {
			continue
		}
		if gi == 0 {
			a.done = true
			continue
		}
		for i := gi; i < 5; i++ {
			a.group[i] = 84
		}
		var v uint32
		for i := 0; i < 5; i++ {
			v = v*85 + uint32(a.group[i])
		}
		a.out[0] = byte(v >> 24)
		a.out[1] = byte(v >> 16)
		a.out[2] = byte(v >> 8)
		a.out[3] = byte(v)
		a.on = gi - 1
		if a.on <= 0 {
			a.on = 0
			a.done = true
		}
		a.oi = 0
	}
	return n, nil
}

type runLengthReader struct {
	src  io.ByteReader
	rep  byte
	n    int
	lit  bool
	done bool
}

func newRunLengthReader(r io.Reader) io.Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufReader{r}
	}
	return &runLengthReader{src: br}
}

func (rl *runLengthReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if rl.done {
			return n, io.EOF
		}
		if rl.n == 0 {
			lenByte, err := rl.src.ReadByte()
			if err != nil {
				rl.done = true
				return n, nil
			}
			switch {
			case lenByte == 128:
				rl.done = true
				return n, nil
			case lenByte < 128:
				rl.n = int(lenByte) + 1
				rl.lit = true
			default:
				rl.n = 257 - int(lenByte)
				rl.lit = false
				b, err := rl.src.ReadByte()
				if err != nil {
					rl.done = true
					return n, nil
				}
				rl.rep = b
			}
		}
		if rl.lit {
			b, err := rl.src.ReadByte()
			if err != nil {
				rl.done = true
				return n, nil
			}
			p[n] = b
			n++
			rl.n--
		} else {
			p[n] = rl.rep
			n++
			rl.n--
		}
	}
	return n, nil
}

// applyPredictor undoes the PNG (predictor 10-15) or TIFF (predictor 2)
// prediction filter applied before compression, per DecodeParms
// /Predictor, /Colors, /BitsPerComponent, /Columns.
func applyPredictor(r io.Reader, parms Value) (io.Reader, error) {
	if parms.Kind() != Dict {
		return r, nil
	}
	pred := parms.Key("Predictor").Int64()
	if pred <= 1 {
		return r, nil
	}
	colors := parms.Key("Colors").Int64()
	if colors == 0 {
		colors = 1
	}
	bpc := parms.Key("BitsPerComponent").Int64()
	if bpc == 0 {
		bpc = 8
	}
	columns := parms.Key("Columns").Int64()
	if columns == 0 {
		columns = 1
	}
	bpp := int((colors*bpc + 7) / 8)
	if bpp < 1 {
		bpp = 1
	}
	rowLen := int((colors*bpc*columns + 7) / 8)

	if pred == 2 {
		return newTIFFPredictorReader(r, rowLen, bpp), nil
	}
	return newPNGUpReader(r, rowLen, bpp), nil
}

type pngUpReader struct {
	src    io.Reader
	rowLen int
	bpp    int
	prev   []byte
	buf    bytes.Buffer
}

func newPNGUpReader(r io.Reader, rowLen, bpp int) io.Reader {
	return &pngUpReader{src: r, rowLen: rowLen, bpp: bpp, prev: make([]byte, rowLen)}
}

func (p *pngUpReader) Read(out []byte) (int, error) {
	for p.buf.Len() == 0 {
		tag := make([]byte, 1)
		if _, err := io.ReadFull(p.src, tag); err != nil {
			return 0, io.EOF
		}
		row := make([]byte, p.rowLen)
		n, err := io.ReadFull(p.src, row)
		if n == 0 {
			return 0, io.EOF
		}
		row = row[:n]
		cur := make([]byte, n)
		switch tag[0] {
		case 0: // None
			copy(cur, row)
		case 1: // Sub
			for i := range row {
				var left byte
				if i >= p.bpp {
					left = cur[i-p.bpp]
				}
				cur[i] = row[i] + left
			}
		case 2: // Up
			for i := range row {
				var up byte
				if i < len(p.prev) {
					up = p.prev[i]
				}
				cur[i] = row[i] + up
			}
		case 3: // Average
			for i := range row {
				var left, up int
				if i >= p.bpp {
					left = int(cur[i-p.bpp])
				}
				if i < len(p.prev) {
					up = int(p.prev[i])
				}
				cur[i] = row[i] + byte((left+up)/2)
			}
		case 4: // Paeth
			for i := range row {
				var left, up, upleft int
				if i >= p.bpp {
					left = int(cur[i-p.bpp])
				}
				if i < len(p.prev) {
					up = int(p.prev[i])
				}
				if i >= p.bpp && i-p.bpp < len(p.prev) {
					upleft = int(p.prev[i-p.bpp])
				}
				cur[i] = row[i] + byte(paeth(left, up, upleft))
			}
		default:
			copy(cur, row)
		}
		p.prev = cur
		p.buf.Write(cur)
		if err != nil {
			break
		}
	}
	return p.buf.Read(out)
}

func paeth(a, b, c int) int {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type tiffPredictorReader struct {
	src    io.Reader
	rowLen int
	bpp    int
	buf    bytes.Buffer
}

func newTIFFPredictorReader(r io.Reader, rowLen, bpp int) io.Reader {
	return &tiffPredictorReader{src: r, rowLen: rowLen, bpp: bpp}
}

func (t *tiffPredictorReader) Read(out []byte) (int, error) {
	for t.buf.Len() == 0 {
		row := make([]byte, t.rowLen)
		n, err := io.ReadFull(t.src, row)
		if n == 0 {
			return 0, io.EOF
		}
		row = row[:n]
		for i := t.bpp; i < len(row); i++ {
			row[i] += row[i-t.bpp]
		}
		t.buf.Write(row)
		if err != nil {
			break
		}
	}
	return t.buf.Read(out)
}
