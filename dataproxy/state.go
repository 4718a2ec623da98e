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

package dataproxy

import (
	"fmt"

	"github.com/spatialmodel/hypotheticube/ndarray"
)

// State is the validation state of a Proxy.
type State int

// Proxies start out NotChecked and move once to either Valid or Failed.
const (
	NotChecked State = iota
	Valid
	Failed
)

func (s State) String() string {
	switch s {
	case NotChecked:
		return "not checked"
	case Valid:
		return "valid"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// FailureKind classifies why a Proxy failed.
type FailureKind int

// Kinds of failure.
const (
	NoFailure FailureKind = iota
	NoSuchFile
	Unreadable
	NoVariable
	ShapeMismatch
	ReadFailed
)

var kindNames = [...]string{"none", "no_such_file", "unreadable", "no_variable", "shape_mismatch", "read_failed"}

func (k FailureKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
	return kindNames[k]
}

// ShapeMismatchError reports that a file's variable does not have the
// shape the proxy was declared with.
type ShapeMismatchError struct {
	Got, Want []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape of data %s doesn't match expected %s",
		ndarray.FormatShape(e.Got), ndarray.FormatShape(e.Want))
}
