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
	"errors"
	"fmt"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/dataproxy"
	"github.com/spatialmodel/hypotheticube/internal/hash"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

// SupersededCoord is the scalar coordinate removed from assembled cubes,
// as its template value does not apply to the assembled files.
const SupersededCoord = "time"

// Assembler builds cubes from a template and many files. Templates are
// cached, so repeated assemblies from the same template read it once.
// The zero value is ready to use.
type Assembler struct {
	// Resolver fetches templates and files. The default is
	// cloud.DefaultResolver.
	Resolver *cloud.Resolver

	// Log receives diagnostic messages. The default is the logrus
	// standard logger.
	Log logrus.FieldLogger

	// FillValue is stored in masked data elements. The default is
	// ndarray.DefaultFillValue.
	FillValue *float64

	once      sync.Once
	templates *requestcache.Cache
}

var defaultAssembler = new(Assembler)

// Assemble loads the template variable varName from templateURI and
// assembles a cube from it using table and uris, with the default
// Assembler.
func Assemble(ctx context.Context, templateURI, varName string, table ReplacementTable, uris []string, opts cloud.StorageOptions) (*Cube, error) {
	return defaultAssembler.Assemble(ctx, templateURI, varName, table, uris, opts)
}

// AssembleCube assembles a cube from template using table and uris, with
// the default Assembler.
func AssembleCube(ctx context.Context, template *Cube, table ReplacementTable, uris []string, opts cloud.StorageOptions) (*Cube, error) {
	return defaultAssembler.AssembleCube(ctx, template, table, uris, opts)
}

func (a *Assembler) resolver() *cloud.Resolver {
	if a.Resolver == nil {
		return cloud.DefaultResolver
	}
	return a.Resolver
}

func (a *Assembler) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

type templateRequest struct {
	URI      string
	Variable string
	Storage  cloud.StorageOptions
}

func (a *Assembler) templateCache() *requestcache.Cache {
	a.once.Do(func() {
		a.templates = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			r := req.(templateRequest)
			return loadCube(ctx, a.resolver(), r.URI, r.Variable, r.Storage, a.log())
		}, 2, requestcache.Memory(16))
	})
	return a.templates
}

// Template returns a copy of the cube for variable varName of the file at
// uri. Failures are not cached.
//
// Requests are not deduplicated; requestcache.Deduplicate never releases
// the key of a failed request.
func (a *Assembler) Template(ctx context.Context, uri, varName string, opts cloud.StorageOptions) (*Cube, error) {
	req := templateRequest{URI: uri, Variable: varName, Storage: opts}
	res, err := a.templateCache().NewRequest(ctx, req, hash.Key(req)).Result()
	if err != nil {
		return nil, err
	}
	t := res.(*Cube)
	return t.Copy(t.Data), nil
}

// Assemble loads the template variable varName from templateURI and
// assembles a cube from it. See AssembleCube.
func (a *Assembler) Assemble(ctx context.Context, templateURI, varName string, table ReplacementTable, uris []string, opts cloud.StorageOptions) (*Cube, error) {
	if err := table.check(uris); err != nil {
		return nil, err
	}
	template, err := a.Template(ctx, templateURI, varName, opts)
	if err != nil {
		return nil, err
	}
	return a.AssembleCube(ctx, template, table, uris, opts)
}

// AssembleCube returns a cube holding the data of the files at uris,
// stacked along a new leading dimension. Each file is expected to hold the
// template's variable with the template's shape, and is described by a
// copy of the template's metadata with the coordinate values in the
// corresponding row of table. No files are read; a missing or malformed
// file shows up as masked data when the cube is read.
//
// Problems with table, such as an unknown coordinate, are reported as a
// *ConfigurationError.
func (a *Assembler) AssembleCube(ctx context.Context, template *Cube, table ReplacementTable, uris []string, opts cloud.StorageOptions) (*Cube, error) {
	if err := table.check(uris); err != nil {
		return nil, err
	}
	if template.VarName == "" {
		return nil, &ConfigurationError{Msg: "the template cube has no variable name"}
	}
	cubes := make([]*Cube, len(uris))
	for i, uri := range uris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := a.syntheticCube(template, uri, table.Columns, table.Rows[i], opts)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, uri, err)
		}
		cubes[i] = c
	}
	cube, err := MergeCubes(cubes)
	if err != nil {
		return nil, err
	}
	if err := cube.RemoveCoord(SupersededCoord); err != nil && !errors.Is(err, ErrNoCoord) {
		return nil, err
	}
	a.log().WithFields(logrus.Fields{"cube": cube.String(), "files": len(uris)}).Info("assembled cube")
	return cube, nil
}

// syntheticCube returns a copy of template backed by a proxy for the file
// at uri, with the coordinates in cols given the values in row.
func (a *Assembler) syntheticCube(template *Cube, uri string, cols []string, row []interface{}, opts cloud.StorageOptions) (*Cube, error) {
	fill := ndarray.DefaultFillValue
	if a.FillValue != nil {
		fill = *a.FillValue
	}
	p := dataproxy.New(dataproxy.Config{
		Shape:     template.Shape(),
		DType:     template.Data.DType(),
		URI:       uri,
		Variable:  template.VarName,
		FillValue: &fill,
		Storage:   opts,
	}, dataproxy.WithResolver(a.resolver()), dataproxy.WithLogger(a.log()))
	c := template.Copy(p)
	for j, name := range cols {
		coord, err := c.Coord(name)
		if err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("the template has no coordinate %s", name), Err: err}
		}
		if err := coord.SetPoints(row[j]); err != nil {
			return nil, err
		}
	}
	return c, nil
}
