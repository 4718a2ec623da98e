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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/dataproxy"
	"github.com/spatialmodel/hypotheticube/ncfile"
)

// Attributes that are represented by Cube and Coord fields rather than
// kept in their Attributes maps.
var structuralAttrs = map[string]bool{
	"standard_name": true,
	"long_name":     true,
	"units":         true,
	"coordinates":   true,
	"bounds":        true,
	"_FillValue":    true,
	"missing_value": true,
}

// LoadCube reads the metadata of variable varName in the file at uri
// and returns a cube whose data is a dataproxy.Proxy for it.
// Dimension coordinates are taken from coordinate variables (variables
// named after their only dimension), and auxiliary coordinates from the
// variables listed in the variable's "coordinates" attribute.
func LoadCube(ctx context.Context, r *cloud.Resolver, uri, varName string, opts cloud.StorageOptions) (*Cube, error) {
	if r == nil {
		r = cloud.DefaultResolver
	}
	return loadCube(ctx, r, uri, varName, opts, logrus.StandardLogger())
}

func loadCube(ctx context.Context, r *cloud.Resolver, uri, varName string, opts cloud.StorageOptions, log logrus.FieldLogger) (*Cube, error) {
	lf, err := r.Resolve(ctx, uri, opts)
	var bad *cloud.MalformedURIError
	if errors.As(err, &bad) {
		return nil, &ConfigurationError{Msg: "invalid template URI", Err: err}
	} else if err != nil {
		return nil, fmt.Errorf("hypotheticube: loading template: %w", err)
	}
	defer lf.Release()
	f, err := ncfile.Open(lf.Path)
	if err != nil {
		return nil, fmt.Errorf("hypotheticube: loading template %s: %w", uri, err)
	}
	defer f.Close()

	c, err := cubeFromFile(f, varName, log.WithField("uri", uri))
	if err != nil {
		return nil, fmt.Errorf("hypotheticube: loading template %s: %w", uri, err)
	}
	v, _ := f.Variable(varName)
	cfg := dataproxy.Config{
		Shape:    v.Shape(),
		DType:    v.DataType(),
		URI:      uri,
		Variable: varName,
		Storage:  opts,
	}
	if fill, ok := v.FillValue(); ok {
		cfg.FillValue = &fill
	}
	c.Data = dataproxy.New(cfg, dataproxy.WithResolver(r), dataproxy.WithLogger(log))
	return c, nil
}

// cubeFromFile reads the metadata of variable varName. The Data field of
// the result is left nil.
func cubeFromFile(f ncfile.File, varName string, log logrus.FieldLogger) (*Cube, error) {
	v, err := f.Variable(varName)
	if err != nil {
		return nil, err
	}
	attrs := v.Attributes()
	c := &Cube{
		VarName:    varName,
		Dims:       v.Dimensions(),
		Attributes: make(map[string]interface{}),
	}
	c.StandardName, _ = ncfile.AttrString(attrs, "standard_name")
	c.LongName, _ = ncfile.AttrString(attrs, "long_name")
	c.Units, _ = ncfile.AttrString(attrs, "units")
	for k, a := range attrs {
		if !structuralAttrs[k] {
			c.Attributes[k] = a
		}
	}

	c.DimCoords = make([]*Coord, len(c.Dims))
	for i, d := range c.Dims {
		cv, err := f.Variable(d)
		if errors.Is(err, ncfile.ErrNoVariable) {
			continue
		} else if err != nil {
			return nil, err
		}
		if dims := cv.Dimensions(); len(dims) != 1 || dims[0] != d {
			continue
		}
		if c.DimCoords[i], err = readCoord(f, cv); err != nil {
			return nil, err
		}
	}

	names, _ := ncfile.AttrString(attrs, "coordinates")
	for _, name := range strings.Fields(names) {
		if _, err := c.Coord(name); err == nil {
			continue
		}
		cv, err := f.Variable(name)
		if errors.Is(err, ncfile.ErrNoVariable) {
			log.Warnf("variable %s lists coordinate %s, which does not exist", varName, name)
			continue
		} else if err != nil {
			return nil, err
		}
		dims, ok := dimIndices(c.Dims, cv.Dimensions())
		if !ok {
			log.Warnf("coordinate %s spans dimensions %v, which are not all dimensions of %s", name, cv.Dimensions(), varName)
			continue
		}
		if !cv.DataType().Numeric() {
			log.Debugf("skipping non-numeric coordinate %s", name)
			continue
		}
		coord, err := readCoord(f, cv)
		if err != nil {
			return nil, err
		}
		c.AuxCoords = append(c.AuxCoords, &AuxCoord{Coord: coord, Dims: dims})
	}
	return c, nil
}

func dimIndices(all, dims []string) ([]int, bool) {
	out := make([]int, len(dims))
outer:
	for i, d := range dims {
		for j, a := range all {
			if a == d {
				out[i] = j
				continue outer
			}
		}
		return nil, false
	}
	return out, true
}

// readCoord reads the values and cell bounds of a coordinate variable.
// Multi-dimensional coordinates are flattened.
func readCoord(f ncfile.File, v ncfile.Variable) (*Coord, error) {
	pts, err := readAll(v)
	if err != nil {
		return nil, err
	}
	attrs := v.Attributes()
	c := &Coord{VarName: v.Name(), Points: pts, Attributes: make(map[string]interface{})}
	c.StandardName, _ = ncfile.AttrString(attrs, "standard_name")
	c.LongName, _ = ncfile.AttrString(attrs, "long_name")
	c.Units, _ = ncfile.AttrString(attrs, "units")
	for k, a := range attrs {
		if !structuralAttrs[k] {
			c.Attributes[k] = a
		}
	}
	if name, ok := ncfile.AttrString(attrs, "bounds"); ok {
		bv, err := f.Variable(name)
		if err != nil {
			return nil, fmt.Errorf("bounds of coordinate %s: %w", v.Name(), err)
		}
		shape := bv.Shape()
		if len(shape) == 0 || product(shape[:len(shape)-1]) != len(pts) {
			return nil, fmt.Errorf("bounds %s %v do not match coordinate %s", name, shape, v.Name())
		}
		b, err := readAll(bv)
		if err != nil {
			return nil, err
		}
		nb := shape[len(shape)-1]
		c.Bounds = make([][]float64, len(pts))
		for i := range c.Bounds {
			c.Bounds[i] = b[i*nb : (i+1)*nb]
		}
	}
	return c, nil
}

func readAll(v ncfile.Variable) ([]float64, error) {
	shape := v.Shape()
	return v.Read(make([]int, len(shape)), shape)
}

func product(s []int) int {
	n := 1
	for _, v := range s {
		n *= v
	}
	return n
}
