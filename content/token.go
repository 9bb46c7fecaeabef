// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"bufio"
	"io"
	"strconv"
)

// scanner tokenizes the raw bytes of a content stream into operands and
// operator keywords. It is independent of the object-model tokenizer in
// package objects: content-stream operands never contain indirect
// references, and strings here are never individually encrypted (the
// whole stream was already decrypted/filtered before reaching Run).
type scanner struct {
	r   *bufio.Reader
	tmp []byte
}

func newScanner(r io.Reader) *scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 8192)
	}
	return &scanner{r: br}
}

// next returns either an Operand (with op == "") or an operator keyword
// in op; io.EOF and other read errors are reported via err.
func (s *scanner) next() (opnd Operand, op string, err error) {
	c, err := s.skipSpaceAndComments()
	if err != nil {
		return Operand{}, "", err
	}

	switch {
	case c == '/':
		n, err := s.readName()
		if err != nil {
			return Operand{}, "", err
		}
		return Operand{Kind: OpNameLit, Name: n}, "", nil
	case c == '(':
		lit, err := s.readLiteralString()
		if err != nil {
			return Operand{}, "", err
		}
		return Operand{Kind: OpString, Str: lit}, "", nil
	case c == '<':
		c2, err := s.peek()
		if err == nil && c2 == '<' {
			s.r.ReadByte()
			d, err := s.readDict()
			if err != nil {
				return Operand{}, "", err
			}
			return Operand{Kind: OpDict, Dict: d}, "", nil
		}
		hx, err := s.readHexString()
		if err != nil {
			return Operand{}, "", err
		}
		return Operand{Kind: OpString, Str: hx}, "", nil
	case c == '[':
		arr, err := s.readArray()
		if err != nil {
			return Operand{}, "", err
		}
		return Operand{Kind: OpArray, Arr: arr}, "", nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		s.r.UnreadByte()
		n, err := s.readNumber()
		if err != nil {
			return Operand{}, "", err
		}
		return Operand{Kind: OpNumber, Num: n}, "", nil
	case c == ']' || c == '>' || c == ')' || c == '}':
		return s.next() // stray delimiter; skip and continue
	default:
		s.r.UnreadByte()
		kw, err := s.readKeyword()
		if err != nil && kw == "" {
			return Operand{}, "", err
		}
		switch kw {
		case "true":
			return Operand{Kind: OpBool, Bool: true}, "", nil
		case "false":
			return Operand{Kind: OpBool, Bool: false}, "", nil
		case "null":
			return Operand{}, "", nil
		case "BI":
			if err := s.skipInlineImage(); err != nil {
				return Operand{}, "", err
			}
			return s.next()
		}
		return Operand{}, kw, nil
	}
}

func (s *scanner) peek() (byte, error) {
	b, err := s.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *scanner) skipSpaceAndComments() (byte, error) {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if isSpace(c) {
			continue
		}
		if c == '%' {
			for {
				c, err := s.r.ReadByte()
				if err != nil {
					return 0, err
				}
				if c == '\r' || c == '\n' {
					break
				}
			}
			continue
		}
		return c, nil
	}
}

func isSpace(c byte) bool {
	switch c {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '<', '>', '(', ')', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func unhex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c) - '0'
	case 'a' <= c && c <= 'f':
		return int(c) - 'a' + 10
	case 'A' <= c && c <= 'F':
		return int(c) - 'A' + 10
	}
	return -1
}

func (s *scanner) readNumber() (float64, error) {
	tmp := s.tmp[:0]
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			break
		}
		if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			tmp = append(tmp, c)
			continue
		}
		s.r.UnreadByte()
		break
	}
	s.tmp = tmp
	f, err := strconv.ParseFloat(string(tmp), 64)
	if err != nil {
		return 0, nil // malformed numeric operand tolerated as 0, per skip-and-continue policy
	}
	return f, nil
}

func (s *scanner) readKeyword() (string, error) {
	tmp := s.tmp[:0]
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			s.tmp = tmp
			if len(tmp) == 0 {
				return "", err
			}
			return string(tmp), nil
		}
		if isDelim(c) || isSpace(c) {
			s.r.UnreadByte()
			break
		}
		tmp = append(tmp, c)
	}
	s.tmp = tmp
	return string(tmp), nil
}

func (s *scanner) readName() (string, error) {
	tmp := s.tmp[:0]
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			break
		}
		if isDelim(c) || isSpace(c) {
			s.r.UnreadByte()
			break
		}
		if c == '#' {
			b, err := s.r.Peek(2)
			if err == nil && len(b) == 2 {
				x1, x2 := unhex(b[0]), unhex(b[1])
				if x1 >= 0 && x2 >= 0 {
					s.r.Discard(2)
					tmp = append(tmp, byte(x1<<4|x2))
					continue
				}
			}
		}
		tmp = append(tmp, c)
	}
	s.tmp = tmp
	return string(tmp), nil
}

func (s *scanner) readLiteralString() ([]byte, error) {
	var out []byte
	depth := 1
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return out, nil
		}
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			if depth--; depth == 0 {
				return out, nil
			}
			out = append(out, c)
		case '\\':
			c2, err := s.r.ReadByte()
			if err != nil {
				return out, nil
			}
			switch c2 {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, c2)
			case '\r':
				if b, err := s.r.ReadByte(); err == nil && b != '\n' {
					s.r.UnreadByte()
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				x := int(c2 - '0')
				for i := 0; i < 2; i++ {
					b, err := s.r.ReadByte()
					if err != nil || b < '0' || b > '7' {
						if err == nil {
							s.r.UnreadByte()
						}
						break
					}
					x = x*8 + int(b-'0')
				}
				out = append(out, byte(x&0xFF))
			default:
				out = append(out, c2)
			}
		default:
			out = append(out, c)
		}
	}
}

func (s *scanner) readHexString() ([]byte, error) {
	var out []byte
	var hi int = -1
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return out, nil
		}
		if c == '>' {
			if hi >= 0 {
				out = append(out, byte(hi<<4))
			}
			return out, nil
		}
		if isSpace(c) {
			continue
		}
		x := unhex(c)
		if x < 0 {
			continue
		}
		if hi < 0 {
			hi = x
		} else {
			out = append(out, byte(hi<<4|x))
			hi = -1
		}
	}
}

func (s *scanner) readArray() ([]Operand, error) {
	var out []Operand
	for {
		c, err := s.skipSpaceAndComments()
		if err != nil {
			return out, nil
		}
		if c == ']' {
			return out, nil
		}
		s.r.UnreadByte()
		o, op, err := s.next()
		if err != nil {
			return out, nil
		}
		if op != "" {
			continue
		}
		out = append(out, o)
		if len(out) > maxOperandArrayLen {
			return out, nil
		}
	}
}

// maxOperandArrayLen bounds TJ-array and inline-dict allocation against
// corrupted or adversarial streams.
const maxOperandArrayLen = 100_000

func (s *scanner) readDict() (map[string]Operand, error) {
	out := map[string]Operand{}
	for {
		c, err := s.skipSpaceAndComments()
		if err != nil {
			return out, nil
		}
		if c == '>' {
			c2, err := s.r.ReadByte()
			if err == nil && c2 == '>' {
				return out, nil
			}
			continue
		}
		if c != '/' {
			s.r.UnreadByte()
			continue
		}
		key, err := s.readName()
		if err != nil {
			return out, nil
		}
		val, op, err := s.next()
		if err != nil {
			return out, nil
		}
		if op == "" {
			out[key] = val
		}
	}
}

// skipInlineImage discards a BI...ID...EI inline image block, whose raw
// data may itself contain byte sequences that look like tokens; per the
// PDF spec, EI is only valid as the terminator when preceded by
// whitespace (approximated here by scanning for "\sEI\s" or EOF).
func (s *scanner) skipInlineImage() error {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if c != 'I' {
			continue
		}
		c2, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if c2 != 'D' {
			continue
		}
		break
	}
	// data begins after one whitespace byte per spec; scan for EI.
	prevSpace := true
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return nil
		}
		if c == 'E' && prevSpace {
			c2, err := s.r.ReadByte()
			if err == nil && c2 == 'I' {
				c3, err := s.peek()
				if err != nil || isSpace(c3) || isDelim(c3) {
					return nil
				}
				s.r.UnreadByte()
			} else if err == nil {
				s.r.UnreadByte()
			}
		}
		prevSpace = isSpace(c)
	}
}
