// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"fmt"
	"io"

	"github.com/geek0x0/pdftext/objects"
)

// DefaultRecursionLimit bounds nested Form XObject Do recursion.
const DefaultRecursionLimit = 32

// ErrRecursionLimit is returned by Run when Form XObject nesting exceeds
// the interpreter's configured limit, aborting the rest of the current
// stream (the caller still has whatever the handler collected up to that
// point) — guards against a Form that (directly or through a cycle of
// distinct objects) invokes itself.
var ErrRecursionLimit = fmt.Errorf("content: form xobject recursion limit exceeded")

// Handler receives operator events from an Interpreter. It owns whatever
// state (graphics state, text state) those operators mutate; the
// interpreter itself is stateless with respect to that semantics and
// only manages tokenizing, resource scoping, and XObject recursion.
type Handler interface {
	// Operate handles one operator and its already-collected operands.
	// resources is the resource dict in effect for name lookups (Tf, gs,
	// Do) at the point the operator was read.
	Operate(op string, args []Operand, resources objects.Value) error

	// EnterForm is invoked before recursing into a Form XObject's content
	// stream, giving the handler a chance to push graphics state and fold
	// in the form's /Matrix and /BBox clip. ExitForm undoes it.
	EnterForm(matrix Matrix, bbox *[4]float64)
	ExitForm()
}

// Interpreter walks a content stream (a page's or a Form XObject's),
// dispatching each operator to a Handler and recursively processing
// nested Form XObjects up to RecursionLimit deep.
type Interpreter struct {
	Provider       *objects.Document
	RecursionLimit int

	resources []objects.Value
	depth     int
}

// NewInterpreter builds an Interpreter bound to an already-open document,
// used to resolve named resources and to fetch nested Form XObject
// content streams encountered via the Do operator.
func NewInterpreter(provider *objects.Document) *Interpreter {
	return &Interpreter{Provider: provider, RecursionLimit: DefaultRecursionLimit}
}

// Run interprets r (a page's or top-level Form's decoded content bytes)
// under the given resource dict, dispatching operators to h. A malformed
// operand or dangling resource reference is skipped, never fatal; the
// only error Run itself returns is ErrRecursionLimit, when a Do nests
// Form XObjects deeper than RecursionLimit.
func (ip *Interpreter) Run(r io.Reader, resources objects.Value, h Handler) error {
	ip.resources = []objects.Value{resources}
	ip.depth = 0
	return ip.run(r, h)
}

func (ip *Interpreter) currentResources() objects.Value {
	if len(ip.resources) == 0 {
		return objects.Value{}
	}
	return ip.resources[len(ip.resources)-1]
}

func (ip *Interpreter) run(r io.Reader, h Handler) error {
	sc := newScanner(r)
	var st stack
	for {
		opnd, op, err := sc.next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return nil
		}
		if op == "" {
			st.push(opnd)
			continue
		}
		args := st.drain()

		if op == "Do" {
			if err := ip.handleDo(args, h); err != nil {
				return err
			}
			continue
		}
		if op == "BX" || op == "EX" {
			continue
		}
		_ = h.Operate(op, args, ip.currentResources())
	}
}

// handleDo returns ErrRecursionLimit (never any other error) when the
// nested Do would exceed RecursionLimit, aborting the caller's run loop;
// every other malformed-or-skippable condition returns nil and simply
// does not recurse.
func (ip *Interpreter) handleDo(args []Operand, h Handler) error {
	if len(args) != 1 || args[0].Kind != OpNameLit {
		return nil
	}
	res := ip.currentResources()
	xobjects := res.Key("XObject")
	if xobjects.Kind() != objects.Dict {
		return nil
	}
	xobj := xobjects.Key(args[0].Name)
	if xobj.Kind() != objects.Stream {
		return nil
	}
	if xobj.Key("Subtype").Name() != "Form" {
		// Image XObjects: report the operator so a handler can note the
		// placement gap, but there is no nested stream to walk.
		_ = h.Operate("Do", args, res)
		return nil
	}

	if ip.depth >= ip.RecursionLimit {
		return ErrRecursionLimit
	}

	formRes := xobj.Key("Resources")
	if formRes.IsNull() {
		formRes = res
	}

	var m Matrix = Identity
	if mv := xobj.Key("Matrix"); mv.Kind() == objects.Array && mv.Len() == 6 {
		vals := mv.Elements()
		m = FromOperands(vals[0].Float64(), vals[1].Float64(), vals[2].Float64(),
			vals[3].Float64(), vals[4].Float64(), vals[5].Float64())
	}

	var bboxPtr *[4]float64
	if bv := xobj.Key("BBox"); bv.Kind() == objects.Array && bv.Len() == 4 {
		els := bv.Elements()
		bbox := [4]float64{els[0].Float64(), els[1].Float64(), els[2].Float64(), els[3].Float64()}
		bboxPtr = &bbox
	}

	content, err := ip.Provider.StreamContents(xobj)
	if err != nil {
		return nil
	}

	ip.depth++
	ip.resources = append(ip.resources, formRes)
	h.EnterForm(m, bboxPtr)
	err = ip.run(content, h)
	h.ExitForm()
	ip.resources = ip.resources[:len(ip.resources)-1]
	ip.depth--
	return err
}
