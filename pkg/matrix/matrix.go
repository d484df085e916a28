/*
Copyright 2022 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package matrix implements the affine transforms the Sheet Assembler
// writes as PDF `cm` operators.
package matrix

import "fmt"

// Matrix is a 3x3 affine transform in PDF's row-vector convention.
type Matrix [3][3]float64

// Ident is the identity matrix.
var Ident = Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Multiply returns m * n.
func (m Matrix) Multiply(n Matrix) Matrix {
	var p Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				p[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return p
}

// CMOperands returns the six operands of a PDF `cm` operator: a b c d e f.
func (m Matrix) CMOperands() (a, b, c, d, e, f float64) {
	return m[0][0], m[0][1], m[1][0], m[1][1], m[2][0], m[2][1]
}

func (m Matrix) String() string {
	a, b, c, d, e, f := m.CMOperands()
	return fmt.Sprintf("%.5f %.5f %.5f %.5f %.5f %.5f", a, b, c, d, e, f)
}

// ForRotation builds the transform matrix from spec.md §4.8's table: it maps
// a source point at (srcTrimX, srcTrimY) with source trim size
// (srcTrimW, srcTrimH) onto a destination cell whose trim origin is
// (targetX, targetY) with destination (post-rotation) trim size
// (targetTrimW, targetTrimH), for one of the four supported rotations.
func ForRotation(rotation int, targetX, targetY, srcTrimX, srcTrimY, srcTrimW, srcTrimH, targetTrimW, targetTrimH float64) Matrix {
	m := Ident

	switch rotation {
	case 0:
		m[0][0], m[0][1] = 1, 0
		m[1][0], m[1][1] = 0, 1
		m[2][0] = targetX - srcTrimX
		m[2][1] = targetY - srcTrimY

	case 90:
		m[0][0], m[0][1] = 0, 1
		m[1][0], m[1][1] = -1, 0
		m[2][0] = targetX + srcTrimY + targetTrimW
		m[2][1] = targetY - srcTrimX

	case 180:
		m[0][0], m[0][1] = -1, 0
		m[1][0], m[1][1] = 0, -1
		m[2][0] = targetX + srcTrimX + srcTrimW
		m[2][1] = targetY + srcTrimY + srcTrimH

	case 270:
		m[0][0], m[0][1] = 0, -1
		m[1][0], m[1][1] = 1, 0
		m[2][0] = targetX - srcTrimY
		m[2][1] = targetY + srcTrimX + targetTrimH

	default:
		m[2][0] = targetX - srcTrimX
		m[2][1] = targetY - srcTrimY
	}

	return m
}
