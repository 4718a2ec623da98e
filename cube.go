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
	"strings"

	"github.com/spatialmodel/hypotheticube/dataproxy"
	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

// LazyArray is an n-dimensional array whose data is read on demand.
type LazyArray interface {
	Shape() []int
	DType() ncfile.DataType

	// Read returns the selected data. See dataproxy.Proxy.Read for the
	// meaning of the selectors.
	Read(ctx context.Context, sel ...ndarray.Selector) (*ndarray.Array, error)
}

// Cube is a lazily loaded n-dimensional field together with the
// coordinates that describe it.
type Cube struct {
	StandardName string
	LongName     string
	VarName      string
	Units        string
	Attributes   map[string]interface{}

	// Dims holds the names of the data dimensions.
	Dims []string

	// DimCoords holds the coordinate of each data dimension, or nil for
	// dimensions without one.
	DimCoords []*Coord

	AuxCoords []*AuxCoord

	Data LazyArray
}

// Name returns the standard name, long name or variable name of c,
// whichever is set first.
func (c *Cube) Name() string {
	switch {
	case c.StandardName != "":
		return c.StandardName
	case c.LongName != "":
		return c.LongName
	}
	return c.VarName
}

// Shape returns the shape of the data.
func (c *Cube) Shape() []int { return c.Data.Shape() }

// Copy returns a copy of c whose metadata is independent of c and whose
// data is data, which must have the same shape as the data of c.
func (c *Cube) Copy(data LazyArray) *Cube {
	o := &Cube{
		StandardName: c.StandardName,
		LongName:     c.LongName,
		VarName:      c.VarName,
		Units:        c.Units,
		Attributes:   copyAttrs(c.Attributes),
		Dims:         append([]string(nil), c.Dims...),
		DimCoords:    make([]*Coord, len(c.DimCoords)),
		AuxCoords:    make([]*AuxCoord, len(c.AuxCoords)),
		Data:         data,
	}
	for i, dc := range c.DimCoords {
		if dc != nil {
			o.DimCoords[i] = dc.Copy()
		}
	}
	for i, ac := range c.AuxCoords {
		o.AuxCoords[i] = &AuxCoord{Coord: ac.Coord.Copy(), Dims: append([]int(nil), ac.Dims...)}
	}
	return o
}

// Coord returns the dimension or auxiliary coordinate with the given name.
func (c *Cube) Coord(name string) (*Coord, error) {
	for _, dc := range c.DimCoords {
		if dc != nil && dc.Matches(name) {
			return dc, nil
		}
	}
	for _, ac := range c.AuxCoords {
		if ac.Matches(name) {
			return ac.Coord, nil
		}
	}
	return nil, fmt.Errorf("hypotheticube: %s: %q: %w", c.Name(), name, ErrNoCoord)
}

// RemoveCoord removes the auxiliary coordinate with the given name.
// Dimension coordinates cannot be removed.
func (c *Cube) RemoveCoord(name string) error {
	for i, ac := range c.AuxCoords {
		if ac.Matches(name) {
			c.AuxCoords = append(c.AuxCoords[:i:i], c.AuxCoords[i+1:]...)
			return nil
		}
	}
	for _, dc := range c.DimCoords {
		if dc != nil && dc.Matches(name) {
			return fmt.Errorf("hypotheticube: %s: %s is a dimension coordinate and cannot be removed", c.Name(), name)
		}
	}
	return fmt.Errorf("hypotheticube: %s: %q: %w", c.Name(), name, ErrNoCoord)
}

// Read returns the selected data.
func (c *Cube) Read(ctx context.Context, sel ...ndarray.Selector) (*ndarray.Array, error) {
	return c.Data.Read(ctx, sel...)
}

// Realize reads all of the data.
func (c *Cube) Realize(ctx context.Context) (*ndarray.Array, error) {
	return c.Data.Read(ctx)
}

type proxier interface {
	Proxies() []*dataproxy.Proxy
}

// Proxies returns the data proxies backing c.
func (c *Cube) Proxies() []*dataproxy.Proxy {
	return proxies(c.Data)
}

func proxies(a LazyArray) []*dataproxy.Proxy {
	switch d := a.(type) {
	case *dataproxy.Proxy:
		return []*dataproxy.Proxy{d}
	case proxier:
		return d.Proxies()
	}
	return nil
}

// Close releases the local copies of files held by the proxies backing c.
func (c *Cube) Close() error {
	var firstErr error
	for _, p := range c.Proxies() {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// String returns a summary of the cube, for example
// "air_temperature / (K) (forecast_reference_time: 3; y: 10; x: 10)".
func (c *Cube) String() string {
	shape := c.Shape()
	dims := make([]string, len(shape))
	for i, n := range shape {
		name := fmt.Sprintf("-- %d", i)
		if i < len(c.DimCoords) && c.DimCoords[i] != nil {
			name = c.DimCoords[i].Name()
		} else if i < len(c.Dims) {
			name = c.Dims[i]
		}
		dims[i] = fmt.Sprintf("%s: %d", name, n)
	}
	units := c.Units
	if units == "" {
		units = "unknown"
	}
	return fmt.Sprintf("%s / (%s) (%s)", c.Name(), units, strings.Join(dims, "; "))
}
