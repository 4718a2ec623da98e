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
	"math"
	"reflect"
)

// DataType is the element type of a NetCDF variable.
type DataType int

// The NetCDF data types. The last six only occur in NetCDF-4 files.
const (
	Invalid DataType = iota
	Byte
	Char
	Short
	Int
	Float
	Double
	UByte
	UShort
	UInt
	Int64
	UInt64
	String
)

var dataTypeNames = [...]string{"invalid", "byte", "char", "short", "int", "float", "double",
	"ubyte", "ushort", "uint", "int64", "uint64", "string"}

// String returns the CDL name of the type.
func (d DataType) String() string {
	if d < 0 || int(d) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(d))
	}
	return dataTypeNames[d]
}

// ParseDataType returns the DataType with the given CDL name.
func ParseDataType(s string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == s && i != 0 {
			return DataType(i), nil
		}
	}
	return Invalid, fmt.Errorf("ncfile: unknown data type %q", s)
}

// Numeric reports whether values of type d can be represented as numbers.
func (d DataType) Numeric() bool {
	return d != Invalid && d != Char && d != String
}

// DefaultFill returns the default NetCDF fill value for the type.
func (d DataType) DefaultFill() (float64, bool) {
	switch d {
	case Byte:
		return -127, true
	case Short:
		return -32767, true
	case Int:
		return -2147483647, true
	case Float:
		return float64(float32(9.9692099683868690e+36)), true
	case Double:
		return 9.9692099683868690e+36, true
	case UByte:
		return 255, true
	case UShort:
		return 65535, true
	case UInt:
		return 4294967295, true
	case Int64:
		return -9223372036854775806, true
	case UInt64:
		return 18446744073709551614, true
	}
	return 0, false
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return math.NaN(), false
}
