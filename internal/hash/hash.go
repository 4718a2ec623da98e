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

// Package hash computes cache keys for request payloads.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a key identifying the value of v. Values that are
// deeply equal have the same key. The key is prefixed with the type
// of v so that different request types never collide.
func Key(v interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(v); err != nil {
		// Values gob cannot encode, such as those holding NaN or
		// interface fields of unregistered types, are printed instead.
		h.Reset()
		printer.Fprintf(h, "%#v", v)
	}
	return fmt.Sprintf("%T:%s", v, sum(h))
}

func sum(h hash.Hash) string {
	b := h.Sum(nil)
	return fmt.Sprintf("%x", b[:h.Size()])
}
