/*
Copyright © 2021 the Hypotheticube authors.
This file is part of Hypotheticube.

Hypotheticube is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hypotheticube is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hypotheticube.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ndarray holds masked, dense, n-dimensional arrays of float64 values
// and the index expressions used to select from them.
package ndarray

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// DefaultFillValue is the value stored in masked elements when no other
// fill value has been chosen.
const DefaultFillValue = 1e20

// Array is a dense array where each element may be masked (missing).
// Mask is indexed the same way as Elements.
type Array struct {
	*sparse.DenseArray

	// Mask holds true for each element that is missing.
	Mask []bool

	// FillValue is substituted for masked elements by Filled.
	FillValue float64
}

// New returns an unmasked array with the given shape. values is copied
// and must either be nil or have one entry per element.
func New(shape []int, values []float64) *Array {
	a := &Array{
		DenseArray: sparse.ZerosDense(copyShape(shape)...),
		FillValue:  DefaultFillValue,
	}
	a.Mask = make([]bool, len(a.Elements))
	if values != nil {
		if len(values) != len(a.Elements) {
			panic(fmt.Errorf("ndarray: %d values for shape %s", len(values), FormatShape(shape)))
		}
		copy(a.Elements, values)
	}
	return a
}

// Masked returns an array of the given shape in which every element is
// masked and holds fill.
func Masked(shape []int, fill float64) *Array {
	a := New(shape, nil)
	a.FillValue = fill
	for i := range a.Elements {
		a.Elements[i] = fill
		a.Mask[i] = true
	}
	return a
}

// Len returns the number of elements in the array.
func (a *Array) Len() int { return len(a.Elements) }

// IsMasked returns whether the element at the given index is masked.
func (a *Array) IsMasked(index ...int) bool {
	return a.Mask[a.Index1d(index...)]
}

// MaskWhere masks every element for which f returns true.
func (a *Array) MaskWhere(f func(v float64) bool) {
	for i, v := range a.Elements {
		if f(v) {
			a.Mask[i] = true
		}
	}
}

// Count returns the number of unmasked elements.
func (a *Array) Count() int {
	n := 0
	for _, m := range a.Mask {
		if !m {
			n++
		}
	}
	return n
}

// AllMasked returns true if no element of a holds data. An empty array
// is considered fully masked.
func (a *Array) AllMasked() bool { return a.Count() == 0 }

// Filled returns a copy of the array elements with masked elements
// replaced by FillValue.
func (a *Array) Filled() []float64 {
	out := make([]float64, len(a.Elements))
	for i, v := range a.Elements {
		if a.Mask[i] {
			out[i] = a.FillValue
		} else {
			out[i] = v
		}
	}
	return out
}

// Fix restores the unexported fields of the underlying dense array after
// it has been decoded.
func (a *Array) Fix() {
	a.DenseArray.Fix()
	if len(a.Mask) != len(a.Elements) {
		a.Mask = make([]bool, len(a.Elements))
	}
}

// Stack joins arrays of identical shape along a new leading axis.
// shape is the shape of the result, which is needed when arrays is empty.
// The fill value of the first array is kept.
func Stack(arrays []*Array, shape []int) *Array {
	out := New(shape, nil)
	n := 0
	for i, a := range arrays {
		if i == 0 {
			out.FillValue = a.FillValue
		}
		n += copy(out.Elements[n:], a.Elements)
		copy(out.Mask[n-len(a.Elements):], a.Mask)
	}
	return out
}

// FormatShape renders shape the way array shapes are conventionally
// printed, for example "(3, 4)", "(4,)" or "()".
func FormatShape(shape []int) string {
	if len(shape) == 1 {
		return fmt.Sprintf("(%d,)", shape[0])
	}
	s := make([]string, len(shape))
	for i, n := range shape {
		s[i] = fmt.Sprint(n)
	}
	return "(" + strings.Join(s, ", ") + ")"
}

// EqualShape reports whether two shapes are identical.
func EqualShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func copyShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}
