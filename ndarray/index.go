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

package ndarray

import (
	"fmt"
	"math"
)

// End can be used as Range.Stop to select through the last element of an axis.
const End = math.MaxInt

// A Selector picks elements along one axis of an array.
// The available selectors are At and Range.
type Selector interface {
	axis(n int) (axisSel, error)
}

type axisSel struct {
	start, count, step int
	drop               bool
}

// At selects a single element along an axis and removes the axis from
// the result. Negative values count back from the end of the axis.
type At int

func (a At) axis(n int) (axisSel, error) {
	i := int(a)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return axisSel{}, fmt.Errorf("ndarray: index %d is out of bounds for axis with size %d", int(a), n)
	}
	return axisSel{start: i, count: 1, step: 1, drop: true}, nil
}

// Range selects the elements Start, Start+Step, ... up to but not including
// Stop. Negative Start and Stop count back from the end of the axis, and
// both are clamped to the axis. A zero Step means 1. Note that the zero
// Range selects nothing; use End as Stop to select through the end of an axis.
type Range struct {
	Start, Stop, Step int
}

// All selects every element along an axis.
var All = Range{Start: 0, Stop: End, Step: 1}

func (r Range) axis(n int) (axisSel, error) {
	step := r.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return axisSel{}, fmt.Errorf("ndarray: negative step %d is not supported", r.Step)
	}
	start, stop := clamp(r.Start, n), clamp(r.Stop, n)
	count := 0
	if stop > start {
		count = (stop - start + step - 1) / step
	}
	return axisSel{start: start, count: count, step: step}, nil
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}

// Hyperslab is a resolved selection: for each axis of the source array,
// Count elements starting at Start and separated by Step. Axes with Drop
// set were selected with At and do not appear in the result.
type Hyperslab struct {
	Start, Count, Step []int
	Drop               []bool
}

// Resolve converts the selectors into a Hyperslab of an array with the
// given shape. Axes without a selector are selected entirely.
func Resolve(shape []int, sels ...Selector) (Hyperslab, error) {
	if len(sels) > len(shape) {
		return Hyperslab{}, fmt.Errorf("ndarray: too many indices: array %s is %d-dimensional, but %d were indexed",
			FormatShape(shape), len(shape), len(sels))
	}
	h := Hyperslab{
		Start: make([]int, len(shape)),
		Count: make([]int, len(shape)),
		Step:  make([]int, len(shape)),
		Drop:  make([]bool, len(shape)),
	}
	for i, n := range shape {
		var s Selector = All
		if i < len(sels) && sels[i] != nil {
			s = sels[i]
		}
		a, err := s.axis(n)
		if err != nil {
			return Hyperslab{}, fmt.Errorf("%v (axis %d)", err, i)
		}
		h.Start[i], h.Count[i], h.Step[i], h.Drop[i] = a.start, a.count, a.step, a.drop
	}
	return h, nil
}

// Shape returns the shape of the selected data.
func (h Hyperslab) Shape() []int {
	s := make([]int, 0, len(h.Count))
	for i, c := range h.Count {
		if !h.Drop[i] {
			s = append(s, c)
		}
	}
	return s
}

// Len returns the number of selected elements.
func (h Hyperslab) Len() int {
	n := 1
	for _, c := range h.Count {
		n *= c
	}
	return n
}

// Bounds returns the start and count of the smallest contiguous block
// containing every selected element.
func (h Hyperslab) Bounds() (start, count []int) {
	start = make([]int, len(h.Start))
	count = make([]int, len(h.Start))
	copy(start, h.Start)
	for i, c := range h.Count {
		if c > 0 {
			count[i] = (c-1)*h.Step[i] + 1
		}
	}
	return start, count
}

// Extract picks the selected elements out of block, a row-major block of
// data with the given shape whose first element is the element at
// h.Start. block is usually the result of reading Bounds.
func (h Hyperslab) Extract(block []float64, blockShape []int) []float64 {
	n := h.Len()
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	nd := len(h.Count)
	stride := make([]int, nd)
	s := 1
	for i := nd - 1; i >= 0; i-- {
		stride[i] = s * h.Step[i]
		s *= blockShape[i]
	}
	idx := make([]int, nd)
	for k := range out {
		off := 0
		for i, j := range idx {
			off += j * stride[i]
		}
		out[k] = block[off]
		for i := nd - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < h.Count[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out
}
