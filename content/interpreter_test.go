// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/geek0x0/pdftext/content"
	"github.com/geek0x0/pdftext/objects"
)

type recordedOp struct {
	op   string
	args []content.Operand
}

type recordingHandler struct {
	ops        []recordedOp
	forms      int
	exitForms  int
}

func (h *recordingHandler) Operate(op string, args []content.Operand, resources objects.Value) error {
	h.ops = append(h.ops, recordedOp{op, args})
	return nil
}

func (h *recordingHandler) EnterForm(m content.Matrix, bbox *[4]float64) { h.forms++ }
func (h *recordingHandler) ExitForm()                                   { h.exitForms++ }

func TestInterpreterDispatchesOperators(t *testing.T) {
	src := "q 1 0 0 1 72 720 cm BT /F1 12 Tf (Hi) Tj ET Q"
	ip := content.NewInterpreter(nil)
	h := &recordingHandler{}
	if err := ip.Run(strings.NewReader(src), objects.Value{}, h); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"q", "cm", "BT", "Tf", "Tj", "ET", "Q"}
	if len(h.ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %+v", len(h.ops), len(want), h.ops)
	}
	for i, w := range want {
		if h.ops[i].op != w {
			t.Errorf("op %d = %q, want %q", i, h.ops[i].op, w)
		}
	}

	tj := h.ops[4]
	if len(tj.args) != 1 || tj.args[0].Kind != content.OpString || string(tj.args[0].Str) != "Hi" {
		t.Errorf("Tj args = %+v", tj.args)
	}
}

func TestInterpreterSkipsBXEX(t *testing.T) {
	src := "BX /Unknown junk EX q Q"
	ip := content.NewInterpreter(nil)
	h := &recordingHandler{}
	if err := ip.Run(strings.NewReader(src), objects.Value{}, h); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Everything inside BX/EX is still tokenized and dispatched (BX/EX
	// only bracket unknown-operator tolerance, not the operators
	// themselves), so "junk" arrives as an operator too.
	var ops []string
	for _, o := range h.ops {
		ops = append(ops, o.op)
	}
	want := []string{"junk", "q", "Q"}
	if len(ops) != len(want) {
		t.Fatalf("got %v, want %v", ops, want)
	}
}

func TestInterpreterMalformedOperandsTolerated(t *testing.T) {
	src := "1 0 0 cm q"
	ip := content.NewInterpreter(nil)
	h := &recordingHandler{}
	if err := ip.Run(strings.NewReader(src), objects.Value{}, h); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.ops) != 2 || h.ops[0].op != "cm" || len(h.ops[0].args) != 3 {
		t.Fatalf("got %+v", h.ops)
	}
}

func TestTJArrayOperand(t *testing.T) {
	src := "[(AB) -120 (CD)] TJ"
	ip := content.NewInterpreter(nil)
	h := &recordingHandler{}
	if err := ip.Run(strings.NewReader(src), objects.Value{}, h); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.ops) != 1 || h.ops[0].op != "TJ" {
		t.Fatalf("got %+v", h.ops)
	}
	arr := h.ops[0].args[0].Arr
	if len(arr) != 3 {
		t.Fatalf("TJ array len = %d, want 3", len(arr))
	}
	if arr[0].Kind != content.OpString || string(arr[0].Str) != "AB" {
		t.Errorf("arr[0] = %+v", arr[0])
	}
	if arr[1].Kind != content.OpNumber || arr[1].Num != -120 {
		t.Errorf("arr[1] = %+v", arr[1])
	}
}

func TestInlineImageSkipped(t *testing.T) {
	src := "BI /W 1 /H 1 ID \xff\x00\xff EI q"
	ip := content.NewInterpreter(nil)
	h := &recordingHandler{}
	if err := ip.Run(strings.NewReader(src), objects.Value{}, h); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.ops) != 1 || h.ops[0].op != "q" {
		t.Fatalf("got %+v, want just [q]", h.ops)
	}
}

func TestMatrixMulAndApply(t *testing.T) {
	scale := content.FromOperands(2, 0, 0, 2, 0, 0)
	translate := content.Translation(10, 20)
	combined := scale.Mul(translate)
	x, y := combined.Apply(1, 1)
	if x != 12 || y != 22 {
		t.Errorf("Apply(1,1) = (%v,%v), want (12,22)", x, y)
	}
}

func TestMatrixIdentity(t *testing.T) {
	x, y := content.Identity.Apply(5, 7)
	if x != 5 || y != 7 {
		t.Errorf("Identity.Apply(5,7) = (%v,%v)", x, y)
	}
}

// selfReferencingFormPDF builds a document whose only page invokes a Form
// XObject that invokes itself via Do, so following it recursively never
// terminates on its own and must be stopped by the recursion limit.
func selfReferencingFormPDF(t *testing.T) *objects.Document {
	t.Helper()
	formContent := "q /Fx Do Q"
	pageContent := "q /Fx Do Q"
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /XObject << /Fx 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /XObject /Subtype /Form /BBox [0 0 612 792] " +
			"/Resources << /XObject << /Fx 4 0 R >> >> /Length " + fmt.Sprint(len(formContent)) +
			" >>\nstream\n" + formContent + "\nendstream",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(pageContent), pageContent),
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
	doc, err := objects.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return doc
}

func TestRunAbortsAtRecursionLimit(t *testing.T) {
	doc := selfReferencingFormPDF(t)
	pages := doc.Pages()
	if len(pages) != 1 {
		t.Fatalf("len(Pages()) = %d, want 1", len(pages))
	}
	r, err := doc.PageContents(pages[0])
	if err != nil {
		t.Fatalf("PageContents: %v", err)
	}

	ip := content.NewInterpreter(doc)
	ip.RecursionLimit = 4
	h := &recordingHandler{}
	err = ip.Run(r, doc.PageResources(pages[0]), h)
	if err != content.ErrRecursionLimit {
		t.Fatalf("Run() error = %v, want ErrRecursionLimit", err)
	}
	// Each level enters via "q" then "Do"; the abort must happen partway
	// through, not after silently skipping the offending Do and reading
	// past it, so EnterForm was called exactly RecursionLimit times and no
	// extra "q"/"Do" pairs beyond that leaked into the handler.
	if h.forms != ip.RecursionLimit {
		t.Errorf("EnterForm called %d times, want %d (RecursionLimit)", h.forms, ip.RecursionLimit)
	}
	if h.forms != h.exitForms {
		t.Errorf("EnterForm/ExitForm mismatch: %d vs %d", h.forms, h.exitForms)
	}
}
