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
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kr/pretty"
)

func timeCoord() *Coord {
	return &Coord{
		StandardName: "forecast_reference_time",
		VarName:      "forecast_reference_time",
		Units:        "hours since 1970-01-01 00:00:00",
		Points:       []float64{0},
		Bounds:       [][]float64{{-1, 1}},
	}
}

func TestSetPoints(t *testing.T) {
	for _, test := range []struct {
		name  string
		coord *Coord
		v     interface{}
		want  []float64
	}{
		{name: "float", coord: timeCoord(), v: 3.5, want: []float64{3.5}},
		{name: "int", coord: timeCoord(), v: int32(7), want: []float64{7}},
		{name: "text", coord: timeCoord(), v: " 12 ", want: []float64{12}},
		{name: "time", coord: timeCoord(), v: time.Date(1970, 1, 2, 6, 0, 0, 0, time.UTC), want: []float64{30}},
		{name: "time text", coord: timeCoord(), v: "2021-06-01T00:00:00Z", want: []float64{450696}},
		{name: "time date", coord: timeCoord(), v: "1970-01-03", want: []float64{48}},
		{
			name:  "slice",
			coord: &Coord{VarName: "height", Units: "m", Points: []float64{1, 2}},
			v:     []int{10, 20},
			want:  []float64{10, 20},
		},
		{
			name:  "text slice",
			coord: &Coord{VarName: "height", Units: "m", Points: []float64{1, 2}},
			v:     "1.5 2.5",
			want:  []float64{1.5, 2.5},
		},
		{
			name:  "time slice",
			coord: &Coord{VarName: "time", Units: "days since 2000-01-01", Points: []float64{0, 0}},
			v:     []interface{}{"2000-01-02", time.Date(2000, 1, 11, 0, 0, 0, 0, time.UTC)},
			want:  []float64{1, 10},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if err := test.coord.SetPoints(test.v); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(test.coord.Points, test.want) {
				t.Errorf("points: %v != %v", test.coord.Points, test.want)
			}
			if test.coord.Bounds != nil {
				t.Errorf("bounds not cleared: %v", test.coord.Bounds)
			}
		})
	}
}

func TestSetPointsErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		coord *Coord
		v     interface{}
	}{
		{name: "not a time", coord: timeCoord(), v: "soon"},
		{name: "not time units", coord: &Coord{VarName: "height", Units: "m", Points: []float64{0}}, v: "2021-06-01"},
		{name: "wrong length", coord: timeCoord(), v: []float64{1, 2}},
		{name: "empty text", coord: &Coord{VarName: "height", Units: "m", Points: []float64{0}}, v: "  "},
		{
			name: "calendar",
			coord: &Coord{VarName: "time", Units: "days since 2000-01-01", Points: []float64{0},
				Attributes: map[string]interface{}{"calendar": "360_day"}},
			v: "2000-01-02",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			before := test.coord.Copy()
			err := test.coord.SetPoints(test.v)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want ConfigurationError, got %v", err)
			}
			if diff := pretty.Diff(before, test.coord); len(diff) != 0 {
				t.Errorf("coordinate changed on error: %v", diff)
			}
		})
	}
}

func TestCubeCopy(t *testing.T) {
	c := &Cube{
		StandardName: testVar,
		VarName:      testVar,
		Units:        "K",
		Attributes:   map[string]interface{}{"source": "test"},
		Dims:         []string{"y"},
		DimCoords:    []*Coord{{VarName: "y", Units: "m", Points: []float64{0, 1}}},
		AuxCoords:    []*AuxCoord{{Coord: timeCoord()}},
		Data:         &constArray{shape: []int{2}},
	}
	o := c.Copy(c.Data)
	if diff := pretty.Diff(c, o); len(diff) != 0 {
		t.Fatalf("copy differs: %v", diff)
	}
	o.DimCoords[0].Points[0] = 5
	o.AuxCoords[0].Bounds[0][0] = 5
	o.Attributes["source"] = "other"
	if c.DimCoords[0].Points[0] != 0 || c.AuxCoords[0].Bounds[0][0] != -1 || c.Attributes["source"] != "test" {
		t.Error("copy shares metadata with its source")
	}

	if err := o.RemoveCoord("y"); err == nil {
		t.Error("removing a dimension coordinate should fail")
	}
	if err := o.RemoveCoord("nothing"); !errors.Is(err, ErrNoCoord) {
		t.Errorf("want ErrNoCoord, got %v", err)
	}
	if err := o.RemoveCoord("forecast_reference_time"); err != nil {
		t.Fatal(err)
	}
	if len(o.AuxCoords) != 0 || len(c.AuxCoords) != 1 {
		t.Errorf("aux coords: %d, %d", len(o.AuxCoords), len(c.AuxCoords))
	}
}

func TestTimeUnits(t *testing.T) {
	for _, test := range []struct {
		units string
		unit  time.Duration
		epoch time.Time
	}{
		{"hours since 1970-01-01 00:00:00", time.Hour, time.Unix(0, 0).UTC()},
		{"seconds since 2000-1-1 12:30:00 UTC", time.Second, time.Date(2000, 1, 1, 12, 30, 0, 0, time.UTC)},
		{"days since 1850-01-01", 24 * time.Hour, time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"minutes since 2021-06-01T06:00Z", time.Minute, time.Date(2021, 6, 1, 6, 0, 0, 0, time.UTC)},
	} {
		t.Run(test.units, func(t *testing.T) {
			u, err := ParseTimeUnits(test.units)
			if err != nil {
				t.Fatal(err)
			}
			if u.Unit != test.unit || !u.Epoch.Equal(test.epoch) {
				t.Errorf("got %v since %v", u.Unit, u.Epoch)
			}
			tt := test.epoch.Add(90 * time.Minute)
			if got := u.Num2Date(u.Date2Num(tt)); !got.Equal(tt) {
				t.Errorf("%v != %v", got, tt)
			}
		})
	}
	for _, bad := range []string{"m", "fortnights since 2000-01-01", "days since yesterday"} {
		if _, err := ParseTimeUnits(bad); err == nil {
			t.Errorf("%q: want error", bad)
		}
	}
	u, _ := ParseTimeUnits("hours since 1970-01-01")
	if u.String() != "hours since 1970-01-01 00:00:00" {
		t.Errorf("string: %s", u)
	}
}
