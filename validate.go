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
	"golang.org/x/sync/errgroup"
)

// Failure describes a file backing a cube that could not be used.
type Failure struct {
	URI      string
	Variable string
	Kind     dataproxy.FailureKind
	Reason   string
}

// Validate checks every file backing c, with at most workers checks at a
// time, and returns the failures in the order of the data. Failed files
// read as masked data. An error is returned only if ctx is done.
func (c *Cube) Validate(ctx context.Context, workers int) ([]Failure, error) {
	ps := c.Proxies()
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range ps {
		p := p
		g.Go(func() error {
			p.Validate(ctx)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var failures []Failure
	for _, p := range ps {
		if p.State() == dataproxy.Failed {
			failures = append(failures, Failure{
				URI:      p.URI(),
				Variable: p.Variable(),
				Kind:     p.Kind(),
				Reason:   p.Reason(),
			})
		}
	}
	return failures, nil
}
