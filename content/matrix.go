// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package content interprets a decoded PDF content stream: it tokenizes
// operators and operands, resolves named resources through a scope stack,
// and walks Form XObjects recursively (bounded), emitting each operator
// to a Handler that owns the actual graphics-state and text-placement
// semantics. It corresponds to the "Content Stream Interpreter" module.
package content

// Matrix is a PDF 2D affine transform in row-vector form:
//
//	[x' y' 1] = [x y 1] * Matrix
//
// stored as Matrix[row][col], matching the six operands (a b c d e f) of
// the cm/Tm operators as {{a,b,0},{c,d,0},{e,f,1}}.
type Matrix [3][3]float64

// Identity is the identity transform.
var Identity = Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Mul returns x*y, composing x's transform followed by y's — matching PDF's
// convention that a newly concatenated matrix premultiplies the CTM
// (cm's operand becomes the new CTM only after being combined with the
// existing one: CTM' = operand * CTM).
func (x Matrix) Mul(y Matrix) Matrix {
	var z Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += x[i][k] * y[k][j]
			}
			z[i][j] = sum
		}
	}
	return z
}

// Apply transforms the point (x,y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return x*m[0][0] + y*m[1][0] + m[2][0], x*m[0][1] + y*m[1][1] + m[2][1]
}

// Translation returns the matrix that translates by (tx,ty), used by
// Td/TD/T* to advance the line/text matrix.
func Translation(tx, ty float64) Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

// FromOperands builds a Matrix from the six numeric operands of a cm or
// Tm operator, in a b c d e f order.
func FromOperands(a, b, c, d, e, f float64) Matrix {
	return Matrix{{a, b, 0}, {c, d, 0}, {e, f, 1}}
}
