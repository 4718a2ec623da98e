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
	"os"

	"github.com/ctessum/cdf"
)

// classicFile is a file in the NetCDF classic or 64-bit offset format.
type classicFile struct {
	f       *os.File
	nc      *cdf.File
	numRecs int
}

func openClassic(f *os.File) (file File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.Close()
			file, err = nil, fmt.Errorf("ncfile: reading header of %s: %v", f.Name(), r)
		}
	}()
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ncfile: %s: %v: %w", f.Name(), err, ErrFormat)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ncfile: %v", err)
	}
	return &classicFile{f: f, nc: nc, numRecs: int(nc.Header.NumRecs(fi.Size()))}, nil
}

func (c *classicFile) Variables() []string { return c.nc.Header.Variables() }

func (c *classicFile) Variable(name string) (Variable, error) {
	for _, v := range c.nc.Header.Variables() {
		if v != name {
			continue
		}
		shape := append([]int{}, c.nc.Header.Lengths(name)...)
		record := c.nc.Header.IsRecordVariable(name)
		if record {
			shape[0] = c.numRecs
		}
		return &classicVariable{
			file:   c,
			name:   name,
			shape:  shape,
			record: record,
			dtype:  classicType(c.nc.Header.ZeroValue(name, 0)),
		}, nil
	}
	return nil, fmt.Errorf("ncfile: %s: %q: %w", c.f.Name(), name, ErrNoVariable)
}

func (c *classicFile) Attributes() map[string]interface{} { return c.attributes("") }

func (c *classicFile) attributes(v string) map[string]interface{} {
	attrs := make(map[string]interface{})
	for _, a := range c.nc.Header.Attributes(v) {
		val := c.nc.Header.GetAttribute(v, a)
		// Classic BYTE values are signed.
		if b, ok := val.([]uint8); ok {
			s := make([]int8, len(b))
			for i, x := range b {
				s[i] = int8(x)
			}
			val = s
		}
		attrs[a] = val
	}
	return attrs
}

func (c *classicFile) Close() error { return c.f.Close() }

func classicType(zero interface{}) DataType {
	switch zero.(type) {
	case []uint8:
		return Byte
	case string:
		return Char
	case []int16:
		return Short
	case []int32:
		return Int
	case []float32:
		return Float
	case []float64:
		return Double
	}
	return Invalid
}

type classicVariable struct {
	file   *classicFile
	name   string
	shape  []int
	record bool
	dtype  DataType
}

func (v *classicVariable) Name() string         { return v.name }
func (v *classicVariable) Dimensions() []string { return v.file.nc.Header.Dimensions(v.name) }
func (v *classicVariable) Shape() []int         { return append([]int{}, v.shape...) }
func (v *classicVariable) DataType() DataType   { return v.dtype }

func (v *classicVariable) Attributes() map[string]interface{} { return v.file.attributes(v.name) }

func (v *classicVariable) FillValue() (float64, bool) {
	if f, ok := AttrFloat64s(v.Attributes(), "_FillValue"); ok {
		return f[0], true
	}
	return v.dtype.DefaultFill()
}

// Read reads the block as a series of contiguous runs. Axes after the
// outermost partially selected axis are read whole, and a run never spans
// more than one record of a record variable.
func (v *classicVariable) Read(start, count []int) (out []float64, err error) {
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

	nd := len(v.shape)
	k := nd - 1
	for k > 0 && start[k] == 0 && count[k] == v.shape[k] {
		k--
	}
	if v.record && k == 0 {
		k = 1
	}
	if nd == 0 {
		k = 0
	}
	runLen := 1
	if k < nd {
		runLen = count[k]
		for _, l := range v.shape[k+1:] {
			runLen *= l
		}
	}

	// idx iterates over the outer axes, which are those before k.
	idx := make([]int, k)
	copy(idx, start[:k])
	for {
		begin := make([]int, nd)
		end := make([]int, nd)
		copy(begin, idx)
		copy(end, idx)
		if k < nd {
			begin[k] = start[k]
			end[k] = start[k] + count[k] - 1
			for i := k + 1; i < nd; i++ {
				end[i] = v.shape[i] - 1
			}
		}
		r := v.file.nc.Reader(v.name, begin, end)
		buf := r.Zero(runLen)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("ncfile: reading %s at %v: %v", v.name, begin, err)
		}
		out = appendClassic(out, buf)

		i := k - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < start[i]+count[i] {
				break
			}
			idx[i] = start[i]
		}
		if i < 0 {
			break
		}
	}
	return out, nil
}

func appendClassic(dst []float64, buf interface{}) []float64 {
	switch b := buf.(type) {
	case []uint8:
		for _, x := range b {
			dst = append(dst, float64(int8(x)))
		}
	case []int16:
		for _, x := range b {
			dst = append(dst, float64(x))
		}
	case []int32:
		for _, x := range b {
			dst = append(dst, float64(x))
		}
	case []float32:
		for _, x := range b {
			dst = append(dst, float64(x))
		}
	case []float64:
		dst = append(dst, b...)
	}
	return dst
}
