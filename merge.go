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
	"fmt"
	"reflect"

	"github.com/spatialmodel/hypotheticube/ndarray"
	"gonum.org/v1/gonum/floats"
)

// MergeCubes stacks cubes that differ only in the values of some of their
// scalar coordinates into one cube with a new leading dimension. The first
// such coordinate that has a different value in every cube becomes the
// coordinate of the new dimension, and the cubes are ordered by it. The
// other varying scalar coordinates become auxiliary coordinates of the
// new dimension. A single cube is returned unchanged.
func MergeCubes(cubes []*Cube) (*Cube, error) {
	if len(cubes) == 0 {
		return nil, &ConfigurationError{Msg: "no cubes to merge"}
	}
	if len(cubes) == 1 {
		return cubes[0], nil
	}
	ref := cubes[0]
	for i, c := range cubes[1:] {
		if err := mergeable(ref, c); err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("cube %d cannot be merged with cube 0", i+1), Err: err}
		}
	}

	// varying maps the index of each scalar coordinate whose value
	// differs between cubes to its values.
	varying := make(map[int][]float64)
	lead := -1
	for j, ac := range ref.AuxCoords {
		if len(ac.Dims) != 0 {
			continue
		}
		vals := make([]float64, len(cubes))
		differs := false
		for i, c := range cubes {
			vals[i] = c.AuxCoords[j].Points[0]
			if vals[i] != vals[0] {
				differs = true
			}
		}
		if !differs {
			continue
		}
		varying[j] = vals
		if lead < 0 && distinct(vals) {
			lead = j
		}
	}
	if len(varying) == 0 {
		return nil, &ConfigurationError{Msg: "no scalar coordinate differs between the cubes"}
	}
	if lead < 0 {
		return nil, &ConfigurationError{Msg: "no varying coordinate has a different value for every cube"}
	}

	sorted := append([]float64(nil), varying[lead]...)
	order := make([]int, len(sorted))
	floats.Argsort(sorted, order)

	leadCoord := ref.AuxCoords[lead].Coord.Copy()
	leadCoord.Points = sorted
	leadCoord.Bounds = nil
	dimName := leadCoord.VarName
	if dimName == "" {
		dimName = leadCoord.Name()
	}

	out := &Cube{
		StandardName: ref.StandardName,
		LongName:     ref.LongName,
		VarName:      ref.VarName,
		Units:        ref.Units,
		Attributes:   copyAttrs(ref.Attributes),
		Dims:         append([]string{dimName}, ref.Dims...),
		DimCoords:    []*Coord{leadCoord},
	}
	for _, dc := range ref.DimCoords {
		if dc != nil {
			dc = dc.Copy()
		}
		out.DimCoords = append(out.DimCoords, dc)
	}
	for j, ac := range ref.AuxCoords {
		if j == lead {
			continue
		}
		c := ac.Coord.Copy()
		if vals, ok := varying[j]; ok {
			c.Points = make([]float64, len(order))
			for k, i := range order {
				c.Points[k] = vals[i]
			}
			c.Bounds = nil
			out.AuxCoords = append(out.AuxCoords, &AuxCoord{Coord: c, Dims: []int{0}})
			continue
		}
		dims := make([]int, len(ac.Dims))
		for k, d := range ac.Dims {
			dims[k] = d + 1
		}
		out.AuxCoords = append(out.AuxCoords, &AuxCoord{Coord: c, Dims: dims})
	}

	members := make([]LazyArray, len(order))
	for k, i := range order {
		members[k] = cubes[i].Data
	}
	out.Data = &stack{members: members, shape: ref.Shape(), dtype: ref.Data.DType()}
	return out, nil
}

// mergeable returns an error describing the first difference between a and
// b other than the values of scalar coordinates.
func mergeable(a, b *Cube) error {
	switch {
	case a.Name() != b.Name() || a.VarName != b.VarName:
		return fmt.Errorf("names differ: %s and %s", a.Name(), b.Name())
	case a.Units != b.Units:
		return fmt.Errorf("units differ: %s and %s", a.Units, b.Units)
	case !reflect.DeepEqual(a.Dims, b.Dims):
		return fmt.Errorf("dimensions differ: %v and %v", a.Dims, b.Dims)
	case !ndarray.EqualShape(a.Shape(), b.Shape()):
		return fmt.Errorf("shapes differ: %s and %s", ndarray.FormatShape(a.Shape()), ndarray.FormatShape(b.Shape()))
	case a.Data.DType() != b.Data.DType():
		return fmt.Errorf("data types differ: %s and %s", a.Data.DType(), b.Data.DType())
	case !reflect.DeepEqual(a.Attributes, b.Attributes):
		return fmt.Errorf("attributes differ")
	case len(a.DimCoords) != len(b.DimCoords) || len(a.AuxCoords) != len(b.AuxCoords):
		return fmt.Errorf("coordinates differ")
	}
	for i, dc := range a.DimCoords {
		if !dc.Equal(b.DimCoords[i]) {
			return fmt.Errorf("dimension coordinate %d differs", i)
		}
	}
	for j, ac := range a.AuxCoords {
		bc := b.AuxCoords[j]
		if ac.Name() != bc.Name() || ac.Units != bc.Units || !reflect.DeepEqual(ac.Dims, bc.Dims) {
			return fmt.Errorf("coordinate %s differs from %s", ac.Name(), bc.Name())
		}
		if len(ac.Dims) == 0 {
			if len(ac.Points) != 1 || len(bc.Points) != 1 {
				return fmt.Errorf("scalar coordinate %s has more than one point", ac.Name())
			}
			continue
		}
		if !ac.Coord.Equal(bc.Coord) {
			return fmt.Errorf("coordinate %s differs", ac.Name())
		}
	}
	return nil
}

func distinct(vals []float64) bool {
	seen := make(map[float64]bool, len(vals))
	for _, v := range vals {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
