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

package ncfile

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// hdf5File is a NetCDF-4 file.
type hdf5File struct {
	path string
	g    api.Group
}

func openHDF5(path string) (file File, err error) {
	defer func() {
		if r := recover(); r != nil {
			file, err = nil, fmt.Errorf("ncfile: reading %s: %v", path, r)
		}
	}()
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncfile: %s: %v: %w", path, err, ErrFormat)
	}
	return &hdf5File{path: path, g: g}, nil
}

func (h *hdf5File) Variables() []string { return h.g.ListVariables() }

func (h *hdf5File) Variable(name string) (v Variable, err error) {
	found := false
	for _, n := range h.g.ListVariables() {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("ncfile: %s: %q: %w", h.path, name, ErrNoVariable)
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("ncfile: %s: %s: %v", h.path, name, r)
		}
	}()
	vg, err := h.g.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("ncfile: %s: %s: %v", h.path, name, err)
	}
	hv := &hdf5Variable{name: name, vg: vg}
	if err := hv.inspect(); err != nil {
		return nil, fmt.Errorf("ncfile: %s: %s: %v", h.path, name, err)
	}
	return hv, nil
}

func (h *hdf5File) Attributes() map[string]interface{} { return attrMap(h.g.Attributes()) }

func (h *hdf5File) Close() error {
	h.g.Close()
	return nil
}

func attrMap(am api.AttributeMap) map[string]interface{} {
	attrs := make(map[string]interface{})
	if am == nil {
		return attrs
	}
	for _, k := range am.Keys() {
		if v, ok := am.Get(k); ok {
			attrs[k] = v
		}
	}
	return attrs
}

type hdf5Variable struct {
	name  string
	vg    api.VarGetter
	shape []int
	dtype DataType
}

// inspect determines the shape and type of the variable. The type comes
// from the variable's declaration. The library returns nested slices, so
// the shape is found by inspecting the first element along each axis.
func (v *hdf5Variable) inspect() error {
	v.dtype = hdf5DataType(v.vg.Type(), v.vg.GoType())
	dims := v.vg.Dimensions()
	var sample interface{}
	var err error
	if len(dims) == 0 || v.vg.Len() == 0 {
		sample, err = v.vg.Values()
	} else {
		sample, err = v.vg.GetSlice(0, 1)
	}
	if err != nil {
		return err
	}
	v.shape = make([]int, len(dims))
	rv := reflect.ValueOf(sample)
	for i := range dims {
		if rv.Kind() != reflect.Slice {
			return fmt.Errorf("value has fewer axes than its %d dimensions", len(dims))
		}
		v.shape[i] = rv.Len()
		if rv.Len() == 0 {
			rv = reflect.Zero(rv.Type().Elem())
			continue
		}
		rv = rv.Index(0)
	}
	if len(dims) > 0 {
		v.shape[0] = int(v.vg.Len())
	}
	return nil
}

// hdf5DataType maps a declared CDL type, or failing that its Go
// equivalent, to a DataType. User-defined types are Invalid.
func hdf5DataType(cdl, goType string) DataType {
	if d, err := ParseDataType(cdl); err == nil {
		return d
	}
	return goDataTypes[goType]
}

var goDataTypes = map[string]DataType{
	"int8":    Byte,
	"uint8":   UByte,
	"int16":   Short,
	"uint16":  UShort,
	"int32":   Int,
	"uint32":  UInt,
	"int64":   Int64,
	"uint64":  UInt64,
	"float32": Float,
	"float64": Double,
	"string":  String,
}

func (v *hdf5Variable) Name() string         { return v.name }
func (v *hdf5Variable) Dimensions() []string { return v.vg.Dimensions() }
func (v *hdf5Variable) Shape() []int         { return append([]int{}, v.shape...) }
func (v *hdf5Variable) DataType() DataType   { return v.dtype }

func (v *hdf5Variable) Attributes() map[string]interface{} { return attrMap(v.vg.Attributes()) }

func (v *hdf5Variable) FillValue() (float64, bool) {
	if f, ok := AttrFloat64s(v.Attributes(), "_FillValue"); ok {
		return f[0], true
	}
	return v.dtype.DefaultFill()
}

func (v *hdf5Variable) Read(start, count []int) (out []float64, err error) {
	if !v.dtype.Numeric() {
		return nil, fmt.Errorf("ncfile: %s: cannot read %s data as numbers", v.name, v.dtype)
	}
	if err := checkBlock(v.name, v.shape, start, count); err != nil {
		return nil, err
	}
	n := product(count)
	out = make([]float64, 0, n)
	if n == 0 {
		return out, nil
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("ncfile: reading %s: %v", v.name, r)
		}
	}()
	var data interface{}
	if len(v.shape) == 0 {
		data, err = v.vg.Values()
		if err != nil {
			return nil, fmt.Errorf("ncfile: reading %s: %v", v.name, err)
		}
		return flatten(out, reflect.ValueOf(data), nil, nil)
	}
	data, err = v.vg.GetSlice(int64(start[0]), int64(start[0]+count[0]))
	if err != nil {
		return nil, fmt.Errorf("ncfile: reading %s: %v", v.name, err)
	}
	// The slice returned already begins at start[0].
	s := append([]int{0}, start[1:]...)
	return flatten(out, reflect.ValueOf(data), s, count)
}

// flatten appends the block of nested slice v selected by start and count
// to dst in row-major order.
func flatten(dst []float64, v reflect.Value, start, count []int) ([]float64, error) {
	if len(start) == 0 {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("ncfile: unexpected %s value", v.Kind())
		}
		return append(dst, f), nil
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("ncfile: expected a slice, got %s", v.Kind())
	}
	var err error
	for i := start[0]; i < start[0]+count[0]; i++ {
		if dst, err = flatten(dst, v.Index(i), start[1:], count[1:]); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
