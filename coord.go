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
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spf13/cast"
)

// Coord is a coordinate: a named, one-dimensional set of points with
// optional cell bounds.
type Coord struct {
	StandardName string
	LongName     string
	VarName      string
	Units        string

	Points []float64

	// Bounds holds the bounds of each point, or nil.
	Bounds [][]float64

	Attributes map[string]interface{}
}

// AuxCoord is an auxiliary coordinate spanning the data dimensions Dims.
// Scalar coordinates span no dimensions.
type AuxCoord struct {
	*Coord
	Dims []int
}

// Name returns the standard name, long name or variable name of c,
// whichever is set first.
func (c *Coord) Name() string {
	switch {
	case c.StandardName != "":
		return c.StandardName
	case c.LongName != "":
		return c.LongName
	}
	return c.VarName
}

// Matches reports whether name is one of the names of c.
func (c *Coord) Matches(name string) bool {
	return name != "" && (name == c.StandardName || name == c.LongName || name == c.VarName)
}

// Copy returns a deep copy of c.
func (c *Coord) Copy() *Coord {
	o := *c
	o.Points = append([]float64(nil), c.Points...)
	if c.Bounds != nil {
		o.Bounds = make([][]float64, len(c.Bounds))
		for i, b := range c.Bounds {
			o.Bounds[i] = append([]float64(nil), b...)
		}
	}
	o.Attributes = copyAttrs(c.Attributes)
	return &o
}

// Equal reports whether c and o have the same names, units and values.
func (c *Coord) Equal(o *Coord) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.StandardName == o.StandardName && c.LongName == o.LongName && c.VarName == o.VarName &&
		c.Units == o.Units && reflect.DeepEqual(c.Points, o.Points) && reflect.DeepEqual(c.Bounds, o.Bounds)
}

// IsTime reports whether c has CF time units.
func (c *Coord) IsTime() bool {
	_, err := ParseTimeUnits(c.Units)
	return err == nil
}

// SetPoints replaces the points of c with v and clears the bounds. v may be
// a number or a slice of numbers; text holding whitespace separated
// numbers; or, for coordinates with time units, a time.Time, a slice of
// them, or text that can be parsed as a time. The number of values must
// match the number of points.
func (c *Coord) SetPoints(v interface{}) error {
	pts, err := numericPoints(v)
	if err != nil {
		if pts, err = textPoints(v); err != nil {
			if pts, err = c.calendarPoints(v); err != nil {
				return &ConfigurationError{
					Msg: fmt.Sprintf("cannot set the points of coordinate %s to %v (%T)", c.Name(), v, v),
					Err: err,
				}
			}
		}
	}
	if len(pts) != len(c.Points) {
		return &ConfigurationError{Msg: fmt.Sprintf("coordinate %s has %d points but %d values were given",
			c.Name(), len(c.Points), len(pts))}
	}
	c.Points = pts
	c.Bounds = nil
	return nil
}

func numericPoints(v interface{}) ([]float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("%T is not numeric", v)
		}
		out := make([]float64, rv.Len())
		for i := range out {
			f, ok := number(rv.Index(i))
			if !ok {
				return nil, fmt.Errorf("element %d of %T is not numeric", i, v)
			}
			out[i] = f
		}
		return out, nil
	}
	f, ok := number(rv)
	if !ok {
		return nil, fmt.Errorf("%T is not numeric", v)
	}
	return []float64{f}, nil
}

func number(v reflect.Value) (float64, bool) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

func textPoints(v interface{}) ([]float64, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return nil, fmt.Errorf("%T is not text", v)
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no values in %q", s)
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		var err error
		if out[i], err = strconv.ParseFloat(f, 64); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Coord) calendarPoints(v interface{}) ([]float64, error) {
	u, err := ParseTimeUnits(c.Units)
	if err != nil {
		return nil, err
	}
	if cal, ok := ncfile.AttrString(c.Attributes, "calendar"); ok && !standardCalendar(cal) {
		return nil, fmt.Errorf("calendar %q is not supported", cal)
	}
	var times []time.Time
	switch t := v.(type) {
	case time.Time:
		times = []time.Time{t}
	case []time.Time:
		times = t
	case []string:
		for _, s := range t {
			tt, err := cast.ToTimeE(s)
			if err != nil {
				return nil, err
			}
			times = append(times, tt)
		}
	case []interface{}:
		for _, e := range t {
			tt, err := cast.ToTimeE(e)
			if err != nil {
				return nil, err
			}
			times = append(times, tt)
		}
	default:
		tt, err := cast.ToTimeE(v)
		if err != nil {
			return nil, err
		}
		times = []time.Time{tt}
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = u.Date2Num(t)
	}
	return out, nil
}

func copyAttrs(a map[string]interface{}) map[string]interface{} {
	if a == nil {
		return nil
	}
	o := make(map[string]interface{}, len(a))
	for k, v := range a {
		o[k] = v
	}
	return o
}
