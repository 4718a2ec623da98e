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
	"fmt"
	"os"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/hypotheticube"
	"github.com/spatialmodel/hypotheticube/cloud"
)

// Job holds everything needed to assemble and output a cube.
type Job struct {
	Template string
	Variable string
	Table    hypotheticube.ReplacementTable
	URIs     []string
	Storage  cloud.StorageOptions

	// Output is the path of the NetCDF file to write, or empty.
	Output string

	// Validate specifies whether to check every file, using Workers
	// checks at a time.
	Validate bool
	Workers  int
}

// storageOptions returns the storage configuration in cfg.
func storageOptions(cfg *viper.Viper) cloud.StorageOptions {
	return cloud.StorageOptions{
		Anonymous: cfg.GetBool("anonymous"),
		Region:    os.ExpandEnv(cfg.GetString("region")),
		Endpoint:  os.ExpandEnv(cfg.GetString("endpoint")),
		TempDir:   os.ExpandEnv(cfg.GetString("tempdir")),
		Retries:   retries(cfg),
	}
}

// assembleJob reads the assembly configuration in cfg, including the
// replacement table or manifest it refers to.
func assembleJob(cfg *viper.Viper) (*Job, error) {
	job := &Job{
		Template: os.ExpandEnv(cfg.GetString("template")),
		Variable: cfg.GetString("variable"),
		Storage:  storageOptions(cfg),
		Validate: cfg.GetBool("validate"),
		Workers:  cfg.GetInt("workers"),
	}
	var err error
	if job.Output, err = checkOutputFile(cfg.GetString("output")); err != nil {
		return nil, err
	}

	switch manifest, table := os.ExpandEnv(cfg.GetString("manifest")), os.ExpandEnv(cfg.GetString("table")); {
	case manifest != "":
		f, err := os.Open(manifest)
		if err != nil {
			return nil, fmt.Errorf("hypotheticube: opening manifest: %v", err)
		}
		defer f.Close()
		m, err := hypotheticube.ReadManifest(f)
		if err != nil {
			return nil, err
		}
		if job.Template == "" {
			job.Template = m.Template
		}
		if job.Variable == "" {
			job.Variable = m.Variable
		}
		job.Table, job.URIs = m.Table()
	case table != "":
		f, err := os.Open(table)
		if err != nil {
			return nil, fmt.Errorf("hypotheticube: opening replacement table: %v", err)
		}
		defer f.Close()
		if job.Table, job.URIs, err = hypotheticube.ReadReplacementCSV(f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("hypotheticube: either a manifest or a replacement table must be specified")
	}

	switch {
	case job.Template == "":
		return nil, fmt.Errorf("hypotheticube: no template file is specified")
	case job.Variable == "":
		return nil, fmt.Errorf("hypotheticube: no variable is specified")
	}
	return job, nil
}

// checkOutputFile expands environment variables in f and makes sure that,
// if it is specified, its directory exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("hypotheticube: the output directory doesn't exist: %v", err)
	}
	return f, nil
}
