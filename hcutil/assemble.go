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

package hcutil

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube"
	"github.com/spatialmodel/hypotheticube/cloud"
)

// Assemble assembles the cube described by job, prints a summary of it to
// w, and validates and writes it if job requests that.
func Assemble(ctx context.Context, w io.Writer, job *Job) error {
	a := &hypotheticube.Assembler{}
	cube, err := a.Assemble(ctx, job.Template, job.Variable, job.Table, job.URIs, job.Storage)
	if err != nil {
		return err
	}
	defer cube.Close()
	fmt.Fprintln(w, cube)

	if job.Validate {
		failures, err := cube.Validate(ctx, job.Workers)
		if err != nil {
			return err
		}
		for _, f := range failures {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.URI, f.Kind, f.Reason)
		}
		fmt.Fprintf(w, "%d of %d files failed validation\n", len(failures), len(job.URIs))
	}

	if job.Output != "" {
		if err := hypotheticube.WriteNetCDF(ctx, job.Output, cube); err != nil {
			return err
		}
		logrus.WithField("path", job.Output).Info("wrote cube")
	}
	return nil
}

// Resolve makes local copies of the files at uris and prints their paths
// to w, one per line.
func Resolve(ctx context.Context, w io.Writer, uris []string, opts cloud.StorageOptions) error {
	for _, uri := range uris {
		f, err := cloud.Resolve(ctx, uri, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, f.Path)
	}
	return nil
}
