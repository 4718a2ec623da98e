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

package hypotheticube

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
)

// WriteNetCDF reads all of the data of c and writes it, with its
// coordinates, to a NetCDF classic file at path. Data are stored as
// doubles, with masked elements set to the fill value.
func WriteNetCDF(ctx context.Context, path string, c *Cube) (err error) {
	data, err := c.Realize(ctx)
	if err != nil {
		return err
	}
	shape := c.Shape()
	dims := make([]string, len(shape))
	for i := range shape {
		switch {
		case shape[i] == 0:
			return fmt.Errorf("hypotheticube: writing %s: dimension %d has length 0", c.Name(), i)
		case i < len(c.Dims) && c.Dims[i] != "":
			dims[i] = c.Dims[i]
		default:
			dims[i] = fmt.Sprintf("dim%d", i)
		}
	}

	type output struct {
		name   string
		values []float64
	}
	var vars []output
	used := make(map[string]bool)
	for _, d := range dims {
		used[d] = true
	}
	used[c.VarName] = true

	lengths := append([]int(nil), shape...)
	bndDims := make(map[int]string)
	bndDim := func(n int) string {
		if d, ok := bndDims[n]; ok {
			return d
		}
		d := "bnds"
		if n != 2 {
			d = fmt.Sprintf("bnds%d", n)
		}
		bndDims[n] = d
		dims = append(dims, d)
		lengths = append(lengths, n)
		return d
	}

	// Header construction panics on invalid input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hypotheticube: writing %s: %v", c.Name(), r)
		}
	}()

	type coordVar struct {
		name string
		dims []string
		c    *Coord
	}
	var coordVars []coordVar
	for i, dc := range c.DimCoords {
		if dc != nil && i < len(shape) {
			coordVars = append(coordVars, coordVar{name: dims[i], dims: []string{dims[i]}, c: dc})
		}
	}
	var auxNames []string
	for _, ac := range c.AuxCoords {
		name := ac.VarName
		if name == "" {
			name = strings.ReplaceAll(ac.Name(), " ", "_")
		}
		for base, k := name, 1; used[name]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		used[name] = true
		auxNames = append(auxNames, name)
		d := make([]string, len(ac.Dims))
		for k, dim := range ac.Dims {
			d[k] = dims[dim]
		}
		coordVars = append(coordVars, coordVar{name: name, dims: d, c: ac.Coord})
	}
	type bounds struct {
		name, dim, of string
		n             int
		values        []float64
	}
	var bnds []bounds
	for _, cv := range coordVars {
		if len(cv.c.Bounds) == 0 || len(cv.dims) != 1 {
			continue
		}
		b := bounds{name: cv.name + "_bnds", of: cv.name, n: len(cv.c.Bounds[0])}
		for _, p := range cv.c.Bounds {
			if len(p) != b.n {
				b.n = 0
				break
			}
			b.values = append(b.values, p...)
		}
		if b.n == 0 || used[b.name] {
			continue
		}
		used[b.name] = true
		b.dim = bndDim(b.n)
		bnds = append(bnds, b)
	}

	h := cdf.NewHeader(dims, lengths)
	for _, cv := range coordVars {
		h.AddVariable(cv.name, cv.dims, []float64{})
		addAttrs(h, cv.name, cv.c.StandardName, cv.c.LongName, cv.c.Units, cv.c.Attributes)
		vars = append(vars, output{name: cv.name, values: cv.c.Points})
	}
	for _, b := range bnds {
		h.AddVariable(b.name, []string{b.of, b.dim}, []float64{})
		h.AddAttribute(b.of, "bounds", b.name)
		vars = append(vars, output{name: b.name, values: b.values})
	}
	h.AddVariable(c.VarName, dims[:len(shape)], []float64{})
	addAttrs(h, c.VarName, c.StandardName, c.LongName, c.Units, c.Attributes)
	h.AddAttribute(c.VarName, "_FillValue", []float64{data.FillValue})
	if len(auxNames) > 0 {
		h.AddAttribute(c.VarName, "coordinates", strings.Join(auxNames, " "))
	}
	h.AddAttribute("", "Conventions", "CF-1.7")
	h.AddAttribute("", "history", "written by hypotheticube "+Version)
	h.Define()
	vars = append(vars, output{name: c.VarName, values: data.Filled()})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := f.Close(); err == nil {
			err = err2
		}
	}()
	nc, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("hypotheticube: writing %s: %v", path, err)
	}
	for _, v := range vars {
		if len(v.values) == 0 {
			continue
		}
		if _, err := nc.Writer(v.name, nil, nil).Write(v.values); err != nil && err != io.EOF {
			return fmt.Errorf("hypotheticube: writing %s to %s: %v", v.name, path, err)
		}
	}
	return nil
}

func addAttrs(h *cdf.Header, v, standardName, longName, units string, attrs map[string]interface{}) {
	for _, a := range []struct{ k, v string }{
		{"standard_name", standardName},
		{"long_name", longName},
		{"units", units},
	} {
		if a.v != "" {
			h.AddAttribute(v, a.k, a.v)
		}
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if !structuralAttrs[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := cdfAttr(attrs[k]); val != nil {
			h.AddAttribute(v, k, val)
		}
	}
}

// cdfAttr converts an attribute value to one of the types the classic
// format can store, or returns nil.
func cdfAttr(a interface{}) interface{} {
	switch v := a.(type) {
	case string:
		return v
	case []uint8, []int16, []int32, []float32, []float64:
		return v
	case []int8:
		out := make([]uint8, len(v))
		for i, x := range v {
			out[i] = uint8(x)
		}
		return out
	case []string:
		return strings.Join(v, " ")
	}
	rv := reflect.ValueOf(a)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() != reflect.Slice {
		if f, ok := number(rv); ok {
			return []float64{f}
		}
		return fmt.Sprint(a)
	}
	switch rv.Type().Elem().Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out := make([]float64, rv.Len())
		for i := range out {
			out[i], _ = number(rv.Index(i))
		}
		return out
	}
	return nil
}
