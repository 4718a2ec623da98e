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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/hypotheticube/internal/nctest"
)

func writeFixtures(t *testing.T, dir string, names ...string) {
	t.Helper()
	for i, name := range names {
		f := nctest.Grid("air_temperature", 4, 5, 0, float64(100*i))
		if err := nctest.Write(filepath.Join(dir, name), f); err != nil {
			t.Fatal(err)
		}
	}
}

// execute runs Root with args and the given configuration, which is
// cleared afterwards, and returns what was printed.
func execute(t *testing.T, cfg map[string]interface{}, args ...string) (string, error) {
	t.Helper()
	for k, v := range cfg {
		Cfg.Set(k, v)
	}
	defer func() {
		for _, o := range options {
			if _, ok := cfg[o.name]; ok {
				Cfg.Set(o.name, o.defaultVal)
			}
		}
	}()
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetErr(ioutil.Discard)
	Root.SetArgs(args)
	err := Root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hypotheticube v0.1.0\n" {
		t.Errorf("output: %q", out)
	}
}

func TestAssembleTable(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, "a.nc", "c.nc")
	table := filepath.Join(dir, "table.csv")
	csv := fmt.Sprintf("uri,forecast_reference_time\n%s,1\n%s,3\n%s,2\n",
		filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc"), filepath.Join(dir, "c.nc"))
	if err := ioutil.WriteFile(table, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.nc")

	out, err := execute(t, map[string]interface{}{
		"template": filepath.Join(dir, "a.nc"),
		"variable": "air_temperature",
		"table":    table,
		"output":   output,
		"validate": true,
		"workers":  2,
	}, "assemble")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"air_temperature / (K) (forecast_reference_time: 3; projection_y_coordinate: 4; projection_x_coordinate: 5)",
		filepath.Join(dir, "b.nc") + "\tno_such_file\tno such file " + filepath.Join(dir, "b.nc"),
		"1 of 3 files failed validation",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("output:\n%s\nwant:\n%s", out, strings.Join(want, "\n"))
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestAssembleManifest(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, "a.nc", "b.nc")
	t.Setenv("HC_TEST_DIR", dir)
	manifest := filepath.Join(dir, "manifest.toml")
	const m = `
Template = "${HC_TEST_DIR}/a.nc"
Variable = "air_temperature"
Columns = ["forecast_reference_time"]

[[Rows]]
URI = "${HC_TEST_DIR}/a.nc"
Values = [2021-06-01T00:00:00Z]

[[Rows]]
URI = "${HC_TEST_DIR}/b.nc"
Values = [2021-06-02T00:00:00Z]
`
	if err := ioutil.WriteFile(manifest, []byte(m), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, map[string]interface{}{"manifest": manifest}, "assemble")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "air_temperature / (K) (forecast_reference_time: 2;") {
		t.Errorf("output: %q", out)
	}
}

func TestAssembleJobErrors(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		name string
		cfg  map[string]interface{}
		msg  string
	}{
		{name: "no table", cfg: map[string]interface{}{"template": "a.nc", "variable": "v"}, msg: "manifest or a replacement table"},
		{name: "missing table", cfg: map[string]interface{}{"table": filepath.Join(dir, "none.csv")}, msg: "opening replacement table"},
		{name: "output dir", cfg: map[string]interface{}{"output": filepath.Join(dir, "none", "out.nc")}, msg: "output directory"},
		{name: "log level", cfg: map[string]interface{}{"log-level": "loud"}, msg: "loud"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := execute(t, test.cfg, "assemble")
			if err == nil || !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %v should contain %q", err, test.msg)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, "a.nc")
	path := filepath.Join(dir, "a.nc")
	out, err := execute(t, nil, "resolve", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != path+"\n" {
		t.Errorf("output: %q", out)
	}
	if _, err := execute(t, nil, "resolve", filepath.Join(dir, "b.nc")); err == nil {
		t.Error("want error for missing file")
	}
}

func TestStorageOptions(t *testing.T) {
	t.Setenv("HYPOTHETICUBE_RETRIES", "3")
	t.Setenv("HYPOTHETICUBE_REGION", "eu-west-1")
	opts := storageOptions(Cfg)
	if opts.Retries != 3 || opts.Region != "eu-west-1" {
		t.Errorf("options: %+v", opts)
	}
}
