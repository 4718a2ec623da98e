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
	"reflect"
	"testing"
)

func TestMasked(t *testing.T) {
	a := Masked([]int{4}, -1)
	if a.Len() != 4 {
		t.Fatalf("length %d", a.Len())
	}
	if !a.AllMasked() {
		t.Error("all elements should be masked")
	}
	if !reflect.DeepEqual(a.Filled(), []float64{-1, -1, -1, -1}) {
		t.Errorf("filled: %v", a.Filled())
	}
}

func TestMaskWhere(t *testing.T) {
	a := New([]int{2, 2}, []float64{1, -999, 3, 4})
	a.FillValue = 0
	a.MaskWhere(func(v float64) bool { return v == -999 })
	if !a.IsMasked(0, 1) || a.IsMasked(1, 1) {
		t.Errorf("mask: %v", a.Mask)
	}
	if a.Count() != 3 {
		t.Errorf("count: %d", a.Count())
	}
	if have, want := a.Filled(), []float64{1, 0, 3, 4}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if a.Get(1, 0) != 3 {
		t.Errorf("get: %g", a.Get(1, 0))
	}
}

func TestStack(t *testing.T) {
	a := New([]int{2}, []float64{1, 2})
	b := Masked([]int{2}, DefaultFillValue)
	s := Stack([]*Array{a, b, a}, []int{3, 2})
	if !reflect.DeepEqual(s.Shape, []int{3, 2}) {
		t.Fatalf("shape %v", s.Shape)
	}
	if have, want := s.Mask, []bool{false, false, true, true, false, false}; !reflect.DeepEqual(have, want) {
		t.Errorf("mask: have %v, want %v", have, want)
	}
	if s.Get(2, 1) != 2 {
		t.Errorf("value: %g", s.Get(2, 1))
	}
}

func TestFormatShape(t *testing.T) {
	for want, shape := range map[string][]int{
		"(3, 5)": {3, 5},
		"(4,)":   {4},
		"()":     {},
	} {
		if have := FormatShape(shape); have != want {
			t.Errorf("have %s, want %s", have, want)
		}
	}
}
