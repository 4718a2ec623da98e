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

// Package nctest writes small NetCDF classic files for tests.
package nctest

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// Var is a variable to be written. Type is one of "byte", "short", "int",
// "float" or "double"; the default is "double".
type Var struct {
	Name   string
	Dims   []string
	Type   string
	Values []float64
	Attrs  map[string]interface{}
}

// File describes the contents of a NetCDF file. A dimension with length 0
// is the record dimension, whose length is then taken from the values of
// the first variable using it.
type File struct {
	Dims    []string
	Lengths []int
	Vars    []Var
	Attrs   map[string]interface{}
}

// Write writes f to path in the classic NetCDF format.
func Write(path string, f File) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("nctest: %v", r)
		}
	}()
	h := cdf.NewHeader(f.Dims, f.Lengths)
	for _, v := range f.Vars {
		h.AddVariable(v.Name, v.Dims, typed(v.Type, nil))
		for _, k := range sortedKeys(v.Attrs) {
			h.AddAttribute(v.Name, k, v.Attrs[k])
		}
	}
	for _, k := range sortedKeys(f.Attrs) {
		h.AddAttribute("", k, f.Attrs[k])
	}
	h.Define()

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := w.Close(); err == nil {
			err = err2
		}
	}()
	nc, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	for _, v := range f.Vars {
		if len(v.Values) == 0 {
			continue
		}
		// A nil end lets record variables grow. The writer reports io.EOF
		// once it reaches the end of a fixed size variable.
		if _, err := nc.Writer(v.Name, nil, nil).Write(typed(v.Type, v.Values)); err != nil && err != io.EOF {
			return fmt.Errorf("nctest: writing %s: %v", v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func typed(t string, vals []float64) interface{} {
	switch t {
	case "byte":
		out := make([]uint8, len(vals))
		for i, v := range vals {
			out[i] = uint8(int8(v))
		}
		return out
	case "short":
		out := make([]int16, len(vals))
		for i, v := range vals {
			out[i] = int16(v)
		}
		return out
	case "int":
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out
	case "float":
		out := make([]float32, len(vals))
		for i, v := range vals {
			out[i] = float32(v)
		}
		return out
	case "", "double":
		out := make([]float64, len(vals))
		copy(out, vals)
		return out
	}
	panic("unknown type " + t)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Grid returns a file holding a forecast field of shape (ny, nx) named
// varName, with coordinate variables y and x, and scalar
// forecast_reference_time and time coordinates in hours since 1970-01-01.
// Data element (j, i) is offset + j*nx + i.
func Grid(varName string, ny, nx int, frt, offset float64) File {
	y := make([]float64, ny)
	for j := range y {
		y[j] = float64(j)
	}
	x := make([]float64, nx)
	for i := range x {
		x[i] = float64(i) * 0.5
	}
	data := make([]float64, ny*nx)
	for k := range data {
		data[k] = offset + float64(k)
	}
	return File{
		Dims:    []string{"y", "x"},
		Lengths: []int{ny, nx},
		Vars: []Var{
			{Name: "y", Dims: []string{"y"}, Values: y, Attrs: map[string]interface{}{
				"units": "m", "standard_name": "projection_y_coordinate"}},
			{Name: "x", Dims: []string{"x"}, Values: x, Attrs: map[string]interface{}{
				"units": "m", "standard_name": "projection_x_coordinate"}},
			{Name: "forecast_reference_time", Values: []float64{frt}, Attrs: map[string]interface{}{
				"units": "hours since 1970-01-01 00:00:00", "standard_name": "forecast_reference_time"}},
			{Name: "time", Values: []float64{frt + 6}, Attrs: map[string]interface{}{
				"units": "hours since 1970-01-01 00:00:00", "standard_name": "time"}},
			{Name: varName, Dims: []string{"y", "x"}, Type: "float", Values: data, Attrs: map[string]interface{}{
				"units":         "K",
				"standard_name": varName,
				"coordinates":   "forecast_reference_time time",
				"_FillValue":    []float32{-999},
			}},
		},
		Attrs: map[string]interface{}{"source": "nctest"},
	}
}
