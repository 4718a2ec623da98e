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
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/dataproxy"
	"github.com/spatialmodel/hypotheticube/internal/nctest"
	"github.com/spatialmodel/hypotheticube/ncfile"
)

func TestLoadCube(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	r := &cloud.Resolver{Log: quietLogger()}
	c, err := LoadCube(context.Background(), r, filepath.Join(dir, "a.nc"), testVar, cloud.StorageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != testVar || c.Units != "K" {
		t.Errorf("name %q units %q", c.Name(), c.Units)
	}
	if want := []string{"y", "x"}; !reflect.DeepEqual(c.Dims, want) {
		t.Errorf("dims: %v != %v", c.Dims, want)
	}
	if len(c.Attributes) != 0 {
		t.Errorf("attributes: %v", c.Attributes)
	}
	wantFRT := &AuxCoord{Coord: &Coord{
		StandardName: "forecast_reference_time",
		VarName:      "forecast_reference_time",
		Units:        "hours since 1970-01-01 00:00:00",
		Points:       []float64{450696},
		Attributes:   map[string]interface{}{},
	}, Dims: []int{}}
	if len(c.AuxCoords) != 2 {
		t.Fatalf("aux coords: %# v", pretty.Formatter(c.AuxCoords))
	}
	if diff := pretty.Diff(wantFRT, c.AuxCoords[0]); len(diff) != 0 {
		t.Errorf("forecast_reference_time: %v", diff)
	}
	if !c.AuxCoords[1].Matches("time") || c.AuxCoords[1].Points[0] != 450702 {
		t.Errorf("time: %# v", pretty.Formatter(c.AuxCoords[1]))
	}
	y := c.DimCoords[0]
	if y.Name() != "projection_y_coordinate" || len(y.Points) != 10 || y.Points[9] != 9 {
		t.Errorf("y: %# v", pretty.Formatter(y))
	}
	if x := c.DimCoords[1]; x.Points[1] != 0.5 {
		t.Errorf("x: %v", x.Points)
	}

	p, ok := c.Data.(*dataproxy.Proxy)
	if !ok {
		t.Fatalf("data is %T", c.Data)
	}
	if p.DType() != ncfile.Float || p.FillValue() != -999 || p.State() != dataproxy.NotChecked {
		t.Errorf("proxy: %s %g %s", p.DType(), p.FillValue(), p.State())
	}
}

func TestLoadCubeBounds(t *testing.T) {
	dir := t.TempDir()
	f := nctest.File{
		Dims:    []string{"z", "nv"},
		Lengths: []int{2, 2},
		Vars: []nctest.Var{
			{Name: "z", Dims: []string{"z"}, Values: []float64{5, 15},
				Attrs: map[string]interface{}{"units": "m", "bounds": "z_bnds", "positive": "up"}},
			{Name: "z_bnds", Dims: []string{"z", "nv"}, Values: []float64{0, 10, 10, 20}},
			{Name: "c", Dims: []string{"z"}, Type: "short", Values: []float64{1, 2},
				Attrs: map[string]interface{}{"coordinates": "label missing"}},
			{Name: "label", Dims: []string{"z"}, Type: "byte", Values: []float64{1, 2}},
		},
	}
	path := filepath.Join(dir, "z.nc")
	if err := nctest.Write(path, f); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCube(context.Background(), &cloud.Resolver{Log: quietLogger()}, path, "c", cloud.StorageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	z := c.DimCoords[0]
	if want := [][]float64{{0, 10}, {10, 20}}; !reflect.DeepEqual(z.Bounds, want) {
		t.Errorf("bounds: %v != %v", z.Bounds, want)
	}
	if z.Attributes["positive"] != "up" {
		t.Errorf("attributes: %v", z.Attributes)
	}
	if len(c.AuxCoords) != 1 || c.AuxCoords[0].VarName != "label" {
		t.Errorf("aux coords: %# v", pretty.Formatter(c.AuxCoords))
	}
	if c.Data.DType() != ncfile.Short {
		t.Errorf("dtype: %s", c.Data.DType())
	}
}

func TestLoadCubeErrors(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	r := &cloud.Resolver{Log: quietLogger()}
	ctx := context.Background()

	_, err := LoadCube(ctx, r, filepath.Join(dir, "a.nc"), "nothing", cloud.StorageOptions{})
	if !errors.Is(err, ncfile.ErrNoVariable) {
		t.Errorf("want ErrNoVariable, got %v", err)
	}
	_, err = LoadCube(ctx, r, filepath.Join(dir, "missing.nc"), testVar, cloud.StorageOptions{})
	var nf *cloud.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("want NotFoundError, got %v", err)
	}
}
