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

	"github.com/spatialmodel/hypotheticube/dataproxy"
	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

// stack is a lazy array formed by stacking members of identical shape
// along a new leading axis. Reads are passed on to the selected members.
type stack struct {
	members []LazyArray
	shape   []int
	dtype   ncfile.DataType
}

func (s *stack) Shape() []int {
	return append([]int{len(s.members)}, s.shape...)
}

func (s *stack) DType() ncfile.DataType { return s.dtype }

func (s *stack) Read(ctx context.Context, sel ...ndarray.Selector) (*ndarray.Array, error) {
	h, err := ndarray.Resolve(s.Shape(), sel...)
	if err != nil {
		return nil, err
	}
	var rest []ndarray.Selector
	if len(sel) > 1 {
		rest = sel[1:]
	}
	parts := make([]*ndarray.Array, h.Count[0])
	for k := range parts {
		if parts[k], err = s.members[h.Start[0]+k*h.Step[0]].Read(ctx, rest...); err != nil {
			return nil, err
		}
	}
	if h.Drop[0] {
		return parts[0], nil
	}
	return ndarray.Stack(parts, h.Shape()), nil
}

// Proxies returns the proxies backing the members, in stacking order.
func (s *stack) Proxies() []*dataproxy.Proxy {
	var out []*dataproxy.Proxy
	for _, m := range s.members {
		out = append(out, proxies(m)...)
	}
	return out
}
