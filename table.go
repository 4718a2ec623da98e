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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ReplacementTable gives, for each file to be assembled, new values for
// the template coordinates named in Columns. Row i belongs to the i'th
// file.
type ReplacementTable struct {
	Columns []string
	Rows    [][]interface{}
}

// check returns a *ConfigurationError if the table cannot be used to
// assemble the given URIs.
func (t ReplacementTable) check(uris []string) error {
	switch {
	case len(t.Rows) == 0:
		return &ConfigurationError{Msg: "the replacement table is empty"}
	case len(t.Rows) != len(uris):
		return &ConfigurationError{Msg: fmt.Sprintf("the replacement table has %d rows but %d files were given", len(t.Rows), len(uris))}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return &ConfigurationError{Msg: fmt.Sprintf("row %d of the replacement table has %d values but there are %d columns", i, len(row), len(t.Columns))}
		}
	}
	return nil
}

// ReadReplacementCSV reads a replacement table from CSV text whose first
// line holds the column names. A column named "uri" (in any case) holds
// the file URIs, which are returned separately. Values are kept as text.
func ReadReplacementCSV(r io.Reader) (ReplacementTable, []string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return ReplacementTable{}, nil, &ConfigurationError{Msg: "reading replacement table", Err: err}
	}
	if len(records) == 0 {
		return ReplacementTable{}, nil, &ConfigurationError{Msg: "the replacement table has no header"}
	}
	uriCol := -1
	var t ReplacementTable
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "uri") {
			uriCol = i
			continue
		}
		t.Columns = append(t.Columns, name)
	}
	var uris []string
	for _, rec := range records[1:] {
		row := make([]interface{}, 0, len(t.Columns))
		for i, v := range rec {
			v = strings.TrimSpace(v)
			if i == uriCol {
				uris = append(uris, os.ExpandEnv(v))
				continue
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, uris, nil
}

// Manifest describes a complete assembly. In TOML:
//
//	Template = "s3://bucket/template.nc"
//	Variable = "air_temperature"
//	Columns = ["forecast_reference_time"]
//
//	[[Rows]]
//	URI = "s3://bucket/run1.nc"
//	Values = [2021-06-01T00:00:00Z]
//
// Environment variables in URIs are expanded.
type Manifest struct {
	Template string
	Variable string
	Columns  []string
	Rows     []ManifestRow
}

// ManifestRow is one file of a Manifest and its coordinate values.
type ManifestRow struct {
	URI    string
	Values []interface{}
}

// ReadManifest decodes a TOML manifest.
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := new(Manifest)
	if _, err := toml.DecodeReader(r, m); err != nil {
		return nil, &ConfigurationError{Msg: "reading manifest", Err: err}
	}
	m.Template = os.ExpandEnv(m.Template)
	for i := range m.Rows {
		m.Rows[i].URI = os.ExpandEnv(m.Rows[i].URI)
	}
	return m, nil
}

// Table returns the replacement table and file URIs of m.
func (m *Manifest) Table() (ReplacementTable, []string) {
	t := ReplacementTable{Columns: m.Columns}
	uris := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		t.Rows = append(t.Rows, r.Values)
		uris[i] = r.URI
	}
	return t, uris
}
