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
	"reflect"
	"strings"
)

// AttrString returns the named attribute if it holds text.
func AttrString(attrs map[string]interface{}, name string) (string, bool) {
	switch v := attrs[name].(type) {
	case string:
		return strings.TrimRight(v, "\x00"), true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return "", false
}

// AttrFloat64s returns the named attribute if it holds one or more numbers.
// Attribute values may be scalars or slices of any numeric type.
func AttrFloat64s(attrs map[string]interface{}, name string) ([]float64, bool) {
	a, ok := attrs[name]
	if !ok || a == nil {
		return nil, false
	}
	v := reflect.ValueOf(a)
	if v.Kind() != reflect.Slice {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
	out := make([]float64, v.Len())
	for i := range out {
		f, ok := toFloat(v.Index(i))
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, len(out) > 0
}
