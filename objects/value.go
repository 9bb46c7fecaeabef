// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objects

import (
	"fmt"
	"io"
)

// Kind identifies the underlying representation of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Integer
	Real
	String
	Name
	Dict
	Array
	Stream
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	case Name:
		return "name"
	case Dict:
		return "dict"
	case Array:
		return "array"
	case Stream:
		return "stream"
	}
	return "unknown"
}

// Value is a resolved PDF object: an indirect reference has already been
// followed to reach the underlying data, but nested dict/array entries
// remain lazily resolved on access.
type Value struct {
	d    *Document
	ptr  objptr
	data object
}

// IsNull reports whether v is the PDF null object or an unresolved value.
func (v Value) IsNull() bool {
	return v.data == nil
}

// Kind reports the concrete representation of v.
func (v Value) Kind() Kind {
	switch v.data.(type) {
	default:
		return Null
	case bool:
		return Bool
	case int64:
		return Integer
	case float64:
		return Real
	case string:
		return String
	case name:
		return Name
	case dict:
		return Dict
	case array:
		return Array
	case stream:
		return Stream
	}
}

// Bool returns the boolean value of v, or false if v is not a bool.
func (v Value) Bool() bool {
	x, _ := v.data.(bool)
	return x
}

// Int64 returns the integer value of v, or 0 if v is not an integer.
func (v Value) Int64() int64 {
	x, _ := v.data.(int64)
	return x
}

// Float64 returns the numeric value of v as a float64, accepting both
// Integer and Real, per the "numbers are interchangeable" PDF convention.
func (v Value) Float64() float64 {
	switch x := v.data.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// RawString returns the raw bytes of a String value with no interpretation.
func (v Value) RawString() string {
	x, _ := v.data.(string)
	return x
}

// Name returns the bare name (without leading slash), or "" if v is not a Name.
func (v Value) Name() string {
	x, _ := v.data.(name)
	return string(x)
}

// Len reports the number of elements in an Array, or 0 otherwise.
func (v Value) Len() int {
	x, ok := v.data.(array)
	if !ok {
		return 0
	}
	return len(x)
}

// Index returns the i'th element of an Array, resolving indirection.
func (v Value) Index(i int) Value {
	x, ok := v.data.(array)
	if !ok || i < 0 || i >= len(x) {
		return Value{}
	}
	return v.d.resolve(v.ptr, x[i])
}

// Elements returns every element of an Array, resolving indirection.
func (v Value) Elements() []Value {
	x, ok := v.data.(array)
	if !ok {
		return nil
	}
	out := make([]Value, len(x))
	for i, e := range x {
		out[i] = v.d.resolve(v.ptr, e)
	}
	return out
}

// Keys returns the key names of a Dict, in unspecified order.
func (v Value) Keys() []string {
	var x dict
	switch d := v.data.(type) {
	case dict:
		x = d
	case stream:
		x = d.hdr
	default:
		return nil
	}
	out := make([]string, 0, len(x))
	for k := range x {
		out = append(out, string(k))
	}
	return out
}

// Key returns the value of the named dict entry, resolving indirection.
// It works on Dict and Stream values (a Stream's header is a Dict).
func (v Value) Key(key string) Value {
	var x dict
	switch d := v.data.(type) {
	case dict:
		x = d
	case stream:
		x = d.hdr
	default:
		return Value{}
	}
	return v.d.resolve(v.ptr, x[name(key)])
}

// Has reports whether v is a Dict/Stream carrying the given key.
func (v Value) Has(key string) bool {
	var x dict
	switch d := v.data.(type) {
	case dict:
		x = d
	case stream:
		x = d.hdr
	default:
		return false
	}
	_, ok := x[name(key)]
	return ok
}

// Reader returns an io.Reader over the decoded (filter-applied,
// decrypted) contents of a Stream value.
func (v Value) Reader() io.Reader {
	x, ok := v.data.(stream)
	if !ok {
		return nil
	}
	return v.d.streamReader(v.ptr, x)
}

// String implements a debug representation; it is not the PDF text value.
func (v Value) String() string {
	return fmt.Sprintf("<%s>", v.Kind())
}

// ObjectID returns the id/generation of the indirect object v was last
// resolved through, and whether it has one at all — an inline literal
// nested directly in another object (never referenced with "N G R") has
// no stable identity of its own.
func (v Value) ObjectID() (id uint32, gen uint16, ok bool) {
	if v.ptr.id == 0 {
		return 0, 0, false
	}
	return v.ptr.id, v.ptr.gen, true
}
