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

// Package ncfile reads variables from NetCDF files. Files in the classic
// and 64-bit offset formats are read with github.com/ctessum/cdf, and
// NetCDF-4 (HDF5) files with github.com/batchatco/go-native-netcdf.
package ncfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNoVariable is returned (wrapped) when a file does not contain
	// the requested variable.
	ErrNoVariable = errors.New("no such variable")

	// ErrFormat is returned (wrapped) when a file is not in a recognized
	// NetCDF format.
	ErrFormat = errors.New("not a NetCDF file")
)

// File is an open NetCDF file.
type File interface {
	// Variables returns the names of the variables in the file.
	Variables() []string

	// Variable returns the named variable, or an error wrapping
	// ErrNoVariable if it does not exist.
	Variable(name string) (Variable, error)

	// Attributes returns the global attributes of the file.
	Attributes() map[string]interface{}

	Close() error
}

// Variable is a named, typed, n-dimensional array stored in a File.
type Variable interface {
	Name() string
	Dimensions() []string
	Shape() []int
	DataType() DataType
	Attributes() map[string]interface{}

	// FillValue returns the value marking missing elements: the _FillValue
	// attribute if present, and the default fill for the data type
	// otherwise. ok is false for non-numeric variables.
	FillValue() (fill float64, ok bool)

	// Read returns the block of count elements along each axis starting at
	// start, in row-major order.
	Read(start, count []int) ([]float64, error)
}

var hdf5Magic = []byte{0x89, 'H', 'D', 'F'}

// Open opens the NetCDF file at path, choosing a reader by the file's
// magic number.
func Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncfile: %w", err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		f.Close()
		return nil, fmt.Errorf("ncfile: %s: %w", path, ErrFormat)
	}
	switch {
	case bytes.HasPrefix(magic, []byte("CDF")) && (magic[3] == 1 || magic[3] == 2):
		return openClassic(f)
	case bytes.Equal(magic, hdf5Magic):
		f.Close()
		return openHDF5(path)
	}
	f.Close()
	return nil, fmt.Errorf("ncfile: %s: %w", path, ErrFormat)
}

// checkBlock makes sure the block described by start and count lies within shape.
func checkBlock(name string, shape, start, count []int) error {
	if len(start) != len(shape) || len(count) != len(shape) {
		return fmt.Errorf("ncfile: %s: block of rank %d requested from variable of rank %d", name, len(start), len(shape))
	}
	for i, n := range shape {
		if start[i] < 0 || count[i] < 0 || start[i]+count[i] > n {
			return fmt.Errorf("ncfile: %s: block [%d, %d) out of range for axis %d of length %d",
				name, start[i], start[i]+count[i], i, n)
		}
	}
	return nil
}

func product(s []int) int {
	n := 1
	for _, v := range s {
		n *= v
	}
	return n
}
