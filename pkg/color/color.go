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

// Package color provides the CMYK color values this system emits. Color
// management beyond pre-specified tuples is a non-goal: no profiles, no
// conversion from RGB or spot colors, just CMYK in, CMYK out.
package color

import "fmt"

// CMYK is a subtractive color with intensities between 0 and 1.
type CMYK struct {
	C, M, Y, K float32
}

// Named colors used for marks (§4.7).
var (
	Registration = CMYK{C: 1, M: 1, Y: 1, K: 1}
	BlackOnly    = CMYK{K: 1}
	RegMarkGray  = CMYK{K: 0.3}
)

// ColorBarSequence is the fixed twelve-patch CMYK sequence for color bars.
var ColorBarSequence = []CMYK{
	{C: 1},
	{M: 1},
	{Y: 1},
	{K: 1},
	{C: 1, M: 1},
	{C: 1, Y: 1},
	{M: 1, Y: 1},
	{C: 1, M: 1, Y: 1},
	{K: 1},
	{K: 0.75},
	{K: 0.50},
	{K: 0.25},
}

// ForName resolves the two named crop/registration colors from §4.7.
func ForName(name string) CMYK {
	if name == "black_only" {
		return BlackOnly
	}
	return Registration
}

func (c CMYK) String() string {
	return fmt.Sprintf("c=%.2f m=%.2f y=%.2f k=%.2f", c.C, c.M, c.Y, c.K)
}
