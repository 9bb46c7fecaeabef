// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objects

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// ErrIO reports a failure to read the underlying file: truncated data,
// a broken io.ReaderAt, or a missing startxref/trailer. Extraction of the
// whole document should stop.
var ErrIO = errors.New("objects: i/o error reading document")

// ErrMalformedPDF reports a structural problem confined to a single
// object, page, or stream: a dangling reference, a bad xref entry, an
// undecodable filter chain. Callers should skip the affected page and
// continue with the rest of the document.
var ErrMalformedPDF = errors.New("objects: malformed pdf structure")

type xrefEntry struct {
	offset int64
	inStm  objptr // for type-2 (compressed) entries: the container ObjStm + index
	index  int
	kind   byte // 0 free, 1 offset, 2 in-stream
}

// Document is an open PDF file: parsed cross-reference table, trailer,
// and decryption state. It resolves indirect references lazily and caches
// decoded objects and decompressed object streams.
type Document struct {
	ra      io.ReaderAt
	size    int64
	xref    map[objptr]xrefEntry
	trailer dict
	root    objptr

	key    []byte
	useAES bool

	objCache    map[objptr]object
	objStmCache map[objptr][]object // decoded contents of an ObjStm, by container ptr
}

// Open parses the cross-reference table and trailer of the PDF held by ra,
// which must span exactly size bytes. It returns ErrIO if the structure
// cannot be located at all.
func Open(ra io.ReaderAt, size int64) (*Document, error) {
	d := &Document{
		ra:          ra,
		size:        size,
		xref:        make(map[objptr]xrefEntry),
		objCache:    make(map[objptr]object),
		objStmCache: make(map[objptr][]object),
	}

	start, err := d.findStartXref()
	if err != nil {
		if err := d.rebuildXref(); err != nil {
			return nil, fmt.Errorf("objects: %w: %v", ErrIO, err)
		}
	} else if err := d.readXrefChain(start); err != nil {
		if err := d.rebuildXref(); err != nil {
			return nil, fmt.Errorf("objects: %w: %v", ErrIO, err)
		}
	}

	if d.trailer == nil || d.trailer[name("Root")] == nil {
		if err := d.rebuildXref(); err != nil {
			return nil, fmt.Errorf("objects: %w: root not found: %v", ErrIO, err)
		}
	}

	root, ok := d.trailer[name("Root")].(objptr)
	if !ok {
		return nil, fmt.Errorf("objects: %w: trailer has no Root reference", ErrIO)
	}
	d.root = root

	if enc, ok := d.trailer[name("Encrypt")]; ok {
		if err := d.setupDecryption(enc); err != nil {
			return nil, fmt.Errorf("objects: %w: %v", ErrIO, err)
		}
	}

	return d, nil
}

// OpenEncrypted is like Open but supplies a user or owner password for
// documents protected by the standard security handler.
func OpenEncrypted(ra io.ReaderAt, size int64, password string) (*Document, error) {
	d, err := Open(ra, size)
	if err != nil {
		return nil, err
	}
	if d.trailer[name("Encrypt")] != nil {
		if err := d.deriveKey(password); err != nil {
			return nil, fmt.Errorf("objects: %w: %v", ErrIO, err)
		}
	}
	return d, nil
}

func (d *Document) findStartXref() (int64, error) {
	const tailLen = 2048
	off := d.size - tailLen
	if off < 0 {
		off = 0
	}
	buf := make([]byte, d.size-off)
	if _, err := d.ra.ReadAt(buf, off); err != nil && err != io.EOF {
		return 0, err
	}
	i := bytes.LastIndex(buf, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	b := newBuffer(bytes.NewReader(buf[i+len("startxref"):]), 0)
	tok := b.readToken()
	n, ok := tok.(int64)
	if !ok {
		return 0, fmt.Errorf("malformed startxref")
	}
	return n, nil
}

// readXrefChain follows the /Prev (and /XRefStm hybrid) chain starting at
// offset, merging trailers with earlier ones taking precedence for keys
// already set, and never revisiting an offset (guards against cycles).
func (d *Document) readXrefChain(offset int64) error {
	seen := map[int64]bool{}
	for offset != 0 && !seen[offset] {
		seen[offset] = true
		tr, prev, xrefstm, err := d.readXrefAt(offset)
		if err != nil {
			return err
		}
		if d.trailer == nil {
			d.trailer = tr
		} else {
			for k, v := range tr {
				if _, ok := d.trailer[k]; !ok {
					d.trailer[k] = v
				}
			}
		}
		if xrefstm != 0 && !seen[xrefstm] {
			seen[xrefstm] = true
			if _, _, _, err := d.readXrefAt(xrefstm); err != nil {
				return err
			}
		}
		offset = prev
	}
	return nil
}

func (d *Document) sectionReaderAt(offset int64) *buffer {
	sr := io.NewSectionReader(d.ra, offset, d.size-offset)
	return newBuffer(sr, offset)
}

// readXrefAt parses either a classic "xref" table or a cross-reference
// stream located at offset, filling d.xref as it goes (without
// overwriting entries already recorded from a more recent revision).
func (d *Document) readXrefAt(offset int64) (tr dict, prev int64, xrefstm int64, err error) {
	if offset < 0 || offset >= d.size {
		return nil, 0, 0, fmt.Errorf("xref offset out of range")
	}
	b := d.sectionReaderAt(offset)
	tok := b.readToken()
	if tok == keyword("xref") {
		return d.readXrefTable(b)
	}
	b = d.sectionReaderAt(offset)
	b.allowObjptr = true
	b.allowStream = true
	obj := b.readObject()
	def, ok := obj.(objdef)
	if !ok {
		return nil, 0, 0, fmt.Errorf("xref stream not an indirect object at %d", offset)
	}
	strm, ok := def.obj.(stream)
	if !ok {
		return nil, 0, 0, fmt.Errorf("xref entry at %d not a stream", offset)
	}
	return d.readXrefStream(b, strm)
}

func (d *Document) readXrefTable(b *buffer) (dict, int64, int64, error) {
	for {
		tok := b.readToken()
		if tok == keyword("trailer") {
			break
		}
		start, ok := tok.(int64)
		if !ok {
			return nil, 0, 0, fmt.Errorf("malformed xref subsection header")
		}
		countTok := b.readToken()
		count, ok := countTok.(int64)
		if !ok {
			return nil, 0, 0, fmt.Errorf("malformed xref subsection count")
		}
		for i := int64(0); i < count; i++ {
			offTok := b.readToken()
			genTok := b.readToken()
			kindTok := b.readToken()
			off, _ := offTok.(int64)
			gen, _ := genTok.(int64)
			kw, _ := kindTok.(keyword)
			id := uint32(start + i)
			ptr := objptr{id, uint16(gen)}
			if _, exists := d.xref[ptr]; exists {
				continue
			}
			if kw == "n" {
				d.xref[ptr] = xrefEntry{offset: off, kind: 1}
			} else {
				d.xref[ptr] = xrefEntry{kind: 0}
			}
		}
	}
	b.allowObjptr = true
	b.allowStream = true
	trObj := b.readObject()
	tr, _ := trObj.(dict)
	var prev, xrefstm int64
	if p, ok := tr[name("Prev")].(int64); ok {
		prev = p
	}
	if x, ok := tr[name("XRefStm")].(int64); ok {
		xrefstm = x
	}
	return tr, prev, xrefstm, nil
}

// readXrefStream decodes a PDF 1.5+ cross-reference stream: a /W array of
// field widths, an optional /Index list of (start,count) subsections
// (default the whole 0..Size range), and one packed record per object.
func (d *Document) readXrefStream(b *buffer, strm stream) (dict, int64, int64, error) {
	hdr := strm.hdr
	wArr, ok := hdr[name("W")].(array)
	if !ok || len(wArr) != 3 {
		return nil, 0, 0, fmt.Errorf("xref stream missing /W")
	}
	w := [3]int{}
	for i, e := range wArr {
		n, _ := e.(int64)
		w[i] = int(n)
	}

	size, _ := hdr[name("Size")].(int64)
	var index []int64
	if idx, ok := hdr[name("Index")].(array); ok {
		for _, e := range idx {
			n, _ := e.(int64)
			index = append(index, n)
		}
	} else {
		index = []int64{0, size}
	}

	v := Value{d, objptr{}, strm}
	data, err := io.ReadAll(v.Reader())
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding xref stream: %w", err)
	}

	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		start, count := index[s], index[s+1]
		for i := int64(0); i < count; i++ {
			if pos+rowLen > len(data) {
				break
			}
			row := data[pos : pos+rowLen]
			pos += rowLen
			f1 := readBEDefault(row[:w[0]], 1)
			f2 := readBE(row[w[0] : w[0]+w[1]])
			f3 := readBE(row[w[0]+w[1] : rowLen])
			id := uint32(start + i)

			switch f1 {
			case 0:
				ptr := objptr{id, uint16(f3)}
				if _, exists := d.xref[ptr]; !exists {
					d.xref[ptr] = xrefEntry{kind: 0}
				}
			case 1:
				ptr := objptr{id, uint16(f3)}
				if _, exists := d.xref[ptr]; !exists {
					d.xref[ptr] = xrefEntry{offset: f2, kind: 1}
				}
			case 2:
				ptr := objptr{id, 0}
				if _, exists := d.xref[ptr]; !exists {
					d.xref[ptr] = xrefEntry{inStm: objptr{uint32(f2), 0}, index: int(f3), kind: 2}
				}
			}
		}
	}

	var prev int64
	if p, ok := hdr[name("Prev")].(int64); ok {
		prev = p
	}
	return hdr, prev, 0, nil
}

func readBE(b []byte) int64 {
	var x int64
	for _, c := range b {
		x = x<<8 | int64(c)
	}
	return x
}

func readBEDefault(b []byte, def int64) int64 {
	if len(b) == 0 {
		return def
	}
	return readBE(b)
}

// objRebuildPattern locates "N G obj" markers for the recovery scanner.
var objRebuildPattern = regexp.MustCompile(`(?m)(\d+)\s+(\d+)\s+obj\b`)

// rebuildXref recovers from a missing or corrupt startxref/xref chain by
// scanning the whole file for "N G obj" markers and, separately, for a
// trailer dict; this is deliberately a single fallback strategy rather
// than the multi-heuristic recovery a full-featured reader might carry.
func (d *Document) rebuildXref() error {
	buf := make([]byte, d.size)
	if _, err := d.ra.ReadAt(buf, 0); err != nil && err != io.EOF {
		return err
	}

	for _, m := range objRebuildPattern.FindAllSubmatchIndex(buf, -1) {
		idBytes := buf[m[2]:m[3]]
		genBytes := buf[m[4]:m[5]]
		id := parseUintBytes(idBytes)
		gen := parseUintBytes(genBytes)
		ptr := objptr{uint32(id), uint16(gen)}
		d.xref[ptr] = xrefEntry{offset: int64(m[0]), kind: 1}
	}

	if d.trailer == nil {
		if i := bytes.LastIndex(buf, []byte("trailer")); i >= 0 {
			b := newBuffer(bytes.NewReader(buf[i+len("trailer"):]), 0)
			b.allowObjptr = true
			b.allowStream = true
			if tr, ok := b.readObject().(dict); ok {
				d.trailer = tr
			}
		}
	}

	if d.trailer == nil || d.trailer[name("Root")] == nil {
		for ptr := range d.xref {
			obj, err := d.fetch(ptr)
			if err != nil {
				continue
			}
			if dd, ok := obj.(dict); ok {
				if t, _ := dd[name("Type")].(name); t == "Catalog" {
					if d.trailer == nil {
						d.trailer = dict{}
					}
					d.trailer[name("Root")] = ptr
					break
				}
			}
		}
	}

	if d.trailer == nil {
		return fmt.Errorf("could not locate trailer during recovery")
	}
	return nil
}

func parseUintBytes(b []byte) uint64 {
	var x uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			continue
		}
		x = x*10 + uint64(c-'0')
	}
	return x
}

// fetch reads the raw object for ptr straight from the xref table,
// without the Value wrapping resolve() adds.
func (d *Document) fetch(ptr objptr) (object, error) {
	if obj, ok := d.objCache[ptr]; ok {
		return obj, nil
	}
	entry, ok := d.xref[ptr]
	if !ok || entry.kind == 0 {
		return nil, fmt.Errorf("%w: no such object %d %d", ErrMalformedPDF, ptr.id, ptr.gen)
	}

	if entry.kind == 2 {
		objs, err := d.decodeObjStm(entry.inStm)
		if err != nil {
			return nil, err
		}
		if entry.index < 0 || entry.index >= len(objs) {
			return nil, fmt.Errorf("%w: object stream index out of range", ErrMalformedPDF)
		}
		d.objCache[ptr] = objs[entry.index]
		return objs[entry.index], nil
	}

	b := d.sectionReaderAt(entry.offset)
	b.allowObjptr = true
	b.allowStream = true
	b.key = d.key
	b.useAES = d.useAES
	obj := b.readObject()
	def, ok := obj.(objdef)
	if !ok {
		return nil, fmt.Errorf("%w: object %d %d not found at offset", ErrMalformedPDF, ptr.id, ptr.gen)
	}
	d.objCache[ptr] = def.obj
	return def.obj, nil
}

// decodeObjStm decompresses an ObjStm container and returns the objects
// it holds, in stream order, caching the result for subsequent lookups
// into the same container.
func (d *Document) decodeObjStm(ptr objptr) ([]object, error) {
	if objs, ok := d.objStmCache[ptr]; ok {
		return objs, nil
	}
	raw, err := d.fetch(ptr)
	if err != nil {
		return nil, err
	}
	strm, ok := raw.(stream)
	if !ok {
		return nil, fmt.Errorf("%w: ObjStm %d is not a stream", ErrMalformedPDF, ptr.id)
	}
	v := Value{d, ptr, strm}
	data, err := io.ReadAll(v.Reader())
	if err != nil {
		return nil, fmt.Errorf("%w: decoding ObjStm: %v", ErrMalformedPDF, err)
	}
	n, _ := strm.hdr[name("N")].(int64)
	first, _ := strm.hdr[name("First")].(int64)

	hb := newBuffer(bytes.NewReader(data[:first]), 0)
	type pair struct{ id, off int64 }
	pairs := make([]pair, 0, n)
	for i := int64(0); i < n; i++ {
		idTok := hb.readToken()
		offTok := hb.readToken()
		id, _ := idTok.(int64)
		off, _ := offTok.(int64)
		pairs = append(pairs, pair{id, off})
	}

	objs := make([]object, len(pairs))
	for i, p := range pairs {
		start := first + p.off
		if start < 0 || start > int64(len(data)) {
			continue
		}
		ob := newBuffer(bytes.NewReader(data[start:]), 0)
		ob.allowObjptr = false
		objs[i] = ob.readObject()
	}
	d.objStmCache[ptr] = objs
	return objs, nil
}

// resolve follows indirect references, wrapping the final object as a
// Value bound to this document. parent supplies the objptr context used
// for decrypting nested strings when x is itself a literal.
func (d *Document) resolve(parent objptr, x object) Value {
	seen := 0
	for {
		ptr, ok := x.(objptr)
		if !ok {
			return Value{d, parent, x}
		}
		if seen++; seen > 64 {
			return Value{}
		}
		obj, err := d.fetch(ptr)
		if err != nil {
			return Value{}
		}
		x = obj
		parent = ptr
	}
}

// streamReader builds the decoded contents reader for a Stream value,
// applying decryption (if the object is not itself inside an ObjStm,
// which PDF never encrypts individually) and then the filter chain.
func (d *Document) streamReader(ptr objptr, s stream) io.Reader {
	length := d.resolve(ptr, s.hdr[name("Length")]).Int64()
	sr := io.NewSectionReader(d.ra, s.offset, length)

	var r io.Reader = sr
	if d.key != nil && ptr.id != 0 {
		r = newDecryptReader(d.key, d.useAES, ptr, sr)
	}

	filters := filterNames(d.resolve(ptr, s.hdr[name("Filter")]))
	parmsVal := d.resolve(ptr, s.hdr[name("DecodeParms")])
	parms := decodeParmsList(d, ptr, parmsVal, len(filters))

	for i, f := range filters {
		var err error
		r, err = applyFilter(f, r, parms[i])
		if err != nil {
			return bytes.NewReader(nil)
		}
	}
	return r
}

func filterNames(v Value) []string {
	switch v.Kind() {
	case Name:
		return []string{v.Name()}
	case Array:
		out := make([]string, 0, v.Len())
		for _, e := range v.Elements() {
			out = append(out, e.Name())
		}
		return out
	}
	return nil
}

func decodeParmsList(d *Document, ptr objptr, v Value, n int) []Value {
	out := make([]Value, n)
	switch v.Kind() {
	case Dict:
		if n > 0 {
			out[0] = v
		}
	case Array:
		els := v.Elements()
		for i := 0; i < n && i < len(els); i++ {
			out[i] = els[i]
		}
	}
	return out
}

// Root returns the document's Catalog dict.
func (d *Document) Root() Value {
	return d.resolve(objptr{}, d.root)
}

// Pages returns every page dict in the document, in document order,
// flattening the /Pages tree and following /Kids arrays, inheriting
// /Resources and /MediaBox from ancestor nodes where a page omits them.
func (d *Document) Pages() []Value {
	root := d.Root()
	pagesRoot := root.Key("Pages")
	var out []Value
	seen := map[objptr]bool{}
	var walk func(node Value, inherited dict)
	walk = func(node Value, inherited dict) {
		if node.IsNull() {
			return
		}
		if node.ptr.id != 0 {
			if seen[node.ptr] {
				return
			}
			seen[node.ptr] = true
		}
		merged := dict{}
		for k, v := range inherited {
			merged[k] = v
		}
		if nd, ok := node.data.(dict); ok {
			for _, k := range []name{"Resources", "MediaBox", "Rotate"} {
				if v, ok := nd[k]; ok {
					merged[k] = v
				}
			}
		}
		typ := node.Key("Type").Name()
		if typ == "Pages" || node.Has("Kids") {
			kids := node.Key("Kids")
			for _, kid := range kids.Elements() {
				walk(kid, merged)
			}
			return
		}
		full := dict{}
		if nd, ok := node.data.(dict); ok {
			for k, v := range nd {
				full[k] = v
			}
		}
		for k, v := range merged {
			if _, ok := full[k]; !ok {
				full[k] = v
			}
		}
		out = append(out, Value{d, node.ptr, full})
	}
	walk(pagesRoot, dict{})
	return out
}

// PageResources returns the /Resources dict for a page (already inherited
// during Pages()'s tree walk).
func (d *Document) PageResources(page Value) Value {
	return page.Key("Resources")
}

// PageBox returns the page's MediaBox as [llx, lly, urx, ury], defaulting
// to US Letter (0,0,612,792) if absent or malformed.
func (d *Document) PageBox(page Value) [4]float64 {
	box := page.Key("MediaBox")
	if box.Kind() == Array && box.Len() == 4 {
		var b [4]float64
		for i := 0; i < 4; i++ {
			b[i] = box.Index(i).Float64()
		}
		if b[2] > b[0] && b[3] > b[1] {
			return b
		}
	}
	return [4]float64{0, 0, 612, 792}
}

// PageContents concatenates a page's content stream(s) (a page may have
// either a single stream or an array of streams, per the PDF spec's
// requirement that they be treated as one logical stream with token
// boundaries preserved by inserting whitespace between parts).
func (d *Document) PageContents(page Value) (io.Reader, error) {
	c := page.Key("Contents")
	switch c.Kind() {
	case Stream:
		return c.Reader(), nil
	case Array:
		var parts []io.Reader
		for _, e := range c.Elements() {
			if e.Kind() != Stream {
				continue
			}
			parts = append(parts, e.Reader(), bytes.NewReader([]byte("\n")))
		}
		if len(parts) == 0 {
			return bytes.NewReader(nil), nil
		}
		return io.MultiReader(parts...), nil
	}
	return bytes.NewReader(nil), fmt.Errorf("%w: page has no content stream", ErrMalformedPDF)
}

// StreamContents returns the decoded contents of an arbitrary stream
// value, such as a Form XObject.
func (d *Document) StreamContents(v Value) (io.Reader, error) {
	if v.Kind() != Stream {
		return nil, fmt.Errorf("%w: value is not a stream", ErrMalformedPDF)
	}
	return v.Reader(), nil
}
