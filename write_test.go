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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

func TestWriteNetCDF(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	if err := os.Remove(filepath.Join(dir, "c.nc")); err != nil {
		t.Fatal(err)
	}
	a := testAssembler()
	ctx := context.Background()
	uris := []string{filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc"), filepath.Join(dir, "c.nc")}
	cube, err := a.Assemble(ctx, uris[0], testVar, frtTable("2021-06-01T00:00:00Z", "2021-06-01T06:00:00Z", "2021-06-01T12:00:00Z"), uris, cloud.StorageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.nc")
	if err := WriteNetCDF(ctx, out, cube); err != nil {
		t.Fatal(err)
	}

	f, err := ncfile.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	v, err := f.Variable(testVar)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{3, 10, 10}; !reflect.DeepEqual(v.Shape(), want) {
		t.Errorf("shape: %v != %v", v.Shape(), want)
	}
	if want := []string{"forecast_reference_time", "y", "x"}; !reflect.DeepEqual(v.Dimensions(), want) {
		t.Errorf("dims: %v != %v", v.Dimensions(), want)
	}
	if units, _ := ncfile.AttrString(v.Attributes(), "units"); units != "K" {
		t.Errorf("units: %q", units)
	}
	fill, ok := v.FillValue()
	if !ok || fill != ndarray.DefaultFillValue {
		t.Errorf("fill value: %g, %v", fill, ok)
	}
	data, err := v.Read([]int{0, 0, 0}, []int{3, 10, 10})
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0 || data[199] != 199 || data[200] != fill || data[299] != fill {
		t.Errorf("data: %g %g %g %g", data[0], data[199], data[200], data[299])
	}

	frt, err := f.Variable("forecast_reference_time")
	if err != nil {
		t.Fatal(err)
	}
	pts, err := frt.Read([]int{0}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{450696, 450702, 450708}; !reflect.DeepEqual(pts, want) {
		t.Errorf("forecast_reference_time: %v != %v", pts, want)
	}
	if units, _ := ncfile.AttrString(frt.Attributes(), "units"); units != "hours since 1970-01-01 00:00:00" {
		t.Errorf("units: %q", units)
	}
	if _, err := f.Variable("time"); err == nil {
		t.Error("time should not be written")
	}

	// The written file can be used as a template.
	c, err := LoadCube(ctx, &cloud.Resolver{Log: quietLogger()}, out, testVar, cloud.StorageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != cube.String() {
		t.Errorf("%s != %s", c, cube)
	}
}

func TestCdfAttr(t *testing.T) {
	for _, test := range []struct {
		in, want interface{}
	}{
		{"text", "text"},
		{[]int8{-1, 2}, []uint8{255, 2}},
		{[]float32{1}, []float32{1}},
		{[]int64{3}, []float64{3}},
		{int64(4), []float64{4}},
		{[]string{"a", "b"}, "a b"},
		{nil, nil},
		{[]bool{true}, nil},
	} {
		if got := cdfAttr(test.in); !reflect.DeepEqual(got, test.want) {
			t.Errorf("%#v: %#v != %#v", test.in, got, test.want)
		}
	}
}
