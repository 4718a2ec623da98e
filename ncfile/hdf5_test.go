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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// memAttrs is an in-memory api.AttributeMap.
type memAttrs struct {
	keys []string
	vals map[string]interface{}
}

func (a memAttrs) Keys() []string { return a.keys }

func (a memAttrs) Get(key string) (interface{}, bool) {
	v, ok := a.vals[key]
	return v, ok
}

func (a memAttrs) GetType(key string) (string, bool) {
	v, ok := a.vals[key]
	return fmt.Sprintf("%T", v), ok
}

func (a memAttrs) GetGoType(key string) (string, bool) { return a.GetType(key) }

// memVar is an in-memory api.VarGetter holding nested slices the way
// the NetCDF-4 reader returns them.
type memVar struct {
	data    interface{}
	dims    []string
	attrs   memAttrs
	cdl, gt string
	slices  int
}

func (v *memVar) Len() int64 {
	rv := reflect.ValueOf(v.data)
	if rv.Kind() != reflect.Slice {
		return 1
	}
	return int64(rv.Len())
}

func (v *memVar) Values() (interface{}, error) { return v.data, nil }

func (v *memVar) GetSlice(begin, end int64) (interface{}, error) {
	v.slices++
	rv := reflect.ValueOf(v.data)
	if begin < 0 || end > int64(rv.Len()) || begin > end {
		return nil, fmt.Errorf("slice [%d, %d) out of range", begin, end)
	}
	return rv.Slice(int(begin), int(end)).Interface(), nil
}

func (v *memVar) Dimensions() []string         { return v.dims }
func (v *memVar) Attributes() api.AttributeMap { return v.attrs }
func (v *memVar) Type() string                 { return v.cdl }
func (v *memVar) GoType() string               { return v.gt }

// cube returns a (2, 3, 4) float32 variable whose values are 100*t+10*y+x.
func cube() *memVar {
	data := make([][][]float32, 2)
	for t := range data {
		data[t] = make([][]float32, 3)
		for y := range data[t] {
			data[t][y] = make([]float32, 4)
			for x := range data[t][y] {
				data[t][y][x] = float32(100*t + 10*y + x)
			}
		}
	}
	return &memVar{
		data: data,
		dims: []string{"time", "y", "x"},
		attrs: memAttrs{
			keys: []string{"_FillValue", "units"},
			vals: map[string]interface{}{"_FillValue": float32(-999), "units": "K"},
		},
		cdl: "float",
		gt:  "float32",
	}
}

func TestHDF5Variable(t *testing.T) {
	mv := cube()
	v := &hdf5Variable{name: "air_temperature", vg: mv}
	if err := v.inspect(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v.Shape(), []int{2, 3, 4}) {
		t.Errorf("shape %v", v.Shape())
	}
	if !reflect.DeepEqual(v.Dimensions(), []string{"time", "y", "x"}) {
		t.Errorf("dimensions %v", v.Dimensions())
	}
	if v.DataType() != Float {
		t.Errorf("type %s", v.DataType())
	}
	if fv, ok := v.FillValue(); !ok || fv != -999 {
		t.Errorf("fill value %v %v", fv, ok)
	}
	if v.Attributes()["units"] != "K" {
		t.Errorf("attributes %v", v.Attributes())
	}

	t.Run("block", func(t *testing.T) {
		got, err := v.Read([]int{1, 1, 2}, []int{1, 2, 2})
		if err != nil {
			t.Fatal(err)
		}
		if want := []float64{112, 113, 122, 123}; !reflect.DeepEqual(got, want) {
			t.Errorf("have %v, want %v", got, want)
		}
	})
	t.Run("all", func(t *testing.T) {
		got, err := v.Read([]int{0, 0, 0}, []int{2, 3, 4})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 24 || got[0] != 0 || got[23] != 123 || got[12] != 100 {
			t.Errorf("have %v", got)
		}
	})
	t.Run("empty", func(t *testing.T) {
		slices := mv.slices
		got, err := v.Read([]int{1, 0, 0}, []int{0, 3, 4})
		if err != nil || len(got) != 0 || mv.slices != slices {
			t.Errorf("have %v %v after %d reads", got, err, mv.slices-slices)
		}
	})
	t.Run("out of range", func(t *testing.T) {
		if _, err := v.Read([]int{1, 0, 0}, []int{2, 3, 4}); err == nil {
			t.Error("want an error")
		}
	})
}

func TestHDF5DataType(t *testing.T) {
	for _, test := range []struct {
		cdl, goType string
		want        DataType
	}{
		{"float", "float32", Float},
		{"double", "float64", Double},
		{"ubyte", "uint8", UByte},
		{"int64", "int64", Int64},
		{"", "int16", Short},
		{"", "uint32", UInt},
		{"compound", "struct", Invalid},
	} {
		if got := hdf5DataType(test.cdl, test.goType); got != test.want {
			t.Errorf("%q/%q: have %s, want %s", test.cdl, test.goType, got, test.want)
		}
	}
}

func TestHDF5Scalar(t *testing.T) {
	v := &hdf5Variable{name: "height", vg: &memVar{data: float64(2), cdl: "double", gt: "float64"}}
	if err := v.inspect(); err != nil {
		t.Fatal(err)
	}
	if len(v.Shape()) != 0 || v.DataType() != Double {
		t.Errorf("have %v %s", v.Shape(), v.DataType())
	}
	got, err := v.Read(nil, nil)
	if err != nil || !reflect.DeepEqual(got, []float64{2}) {
		t.Errorf("have %v %v", got, err)
	}
	if fv, ok := v.FillValue(); !ok || fv != 9.9692099683868690e+36 {
		t.Errorf("default fill value %v %v", fv, ok)
	}
}

func TestHDF5NotNumeric(t *testing.T) {
	v := &hdf5Variable{name: "station", vg: &memVar{data: []string{"a", "b"}, dims: []string{"n"}, cdl: "string", gt: "string"}}
	if err := v.inspect(); err != nil {
		t.Fatal(err)
	}
	if v.DataType() != String {
		t.Errorf("type %s", v.DataType())
	}
	if _, err := v.Read([]int{0}, []int{2}); err == nil {
		t.Error("string data should not be readable as numbers")
	}
}

func TestOpenSniffsHDF5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.nc")
	signature := []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}
	if err := os.WriteFile(path, append(signature, make([]byte, 64)...), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("a truncated NetCDF-4 file should not open")
	}
	if unknown := fmt.Sprintf("ncfile: %s: %v", path, ErrFormat); err.Error() == unknown {
		t.Errorf("the HDF5 signature was not recognized: %v", err)
	}

	other := filepath.Join(dir, "other.nc")
	if err := os.WriteFile(other, []byte("GRIB"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(other); !errors.Is(err, ErrFormat) || !strings.Contains(err.Error(), "other.nc") {
		t.Errorf("have %v", err)
	}
}
