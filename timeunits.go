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
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeUnits are CF time units of the form "<unit> since <reference time>",
// for example "hours since 1970-01-01 00:00:00". Only the standard
// (proleptic Gregorian) calendar is supported.
type TimeUnits struct {
	Unit  time.Duration
	Epoch time.Time
}

var timeUnitNames = map[string]time.Duration{
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": 24 * time.Hour, "day": 24 * time.Hour, "d": 24 * time.Hour,
}

var epochLayouts = []string{
	"2006-1-2 15:4:5",
	"2006-1-2T15:4:5",
	"2006-1-2 15:4",
	"2006-1-2T15:4",
	"2006-1-2",
}

// ParseTimeUnits parses CF time units.
func ParseTimeUnits(s string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, fmt.Errorf("hypotheticube: %q are not time units", s)
	}
	unit, ok := timeUnitNames[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeUnits{}, fmt.Errorf("hypotheticube: unknown time unit %q in %q", parts[0], s)
	}
	ref := strings.TrimSpace(parts[1])
	for _, suffix := range []string{" UTC", " utc", " GMT", "Z"} {
		ref = strings.TrimSuffix(ref, suffix)
	}
	ref = strings.TrimSpace(ref)
	for _, layout := range epochLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return TimeUnits{Unit: unit, Epoch: t}, nil
		}
	}
	return TimeUnits{}, fmt.Errorf("hypotheticube: invalid reference time %q in %q", parts[1], s)
}

// Date2Num returns t as a number of units since the epoch.
func (u TimeUnits) Date2Num(t time.Time) float64 {
	secs := float64(t.Unix()-u.Epoch.Unix()) + float64(t.Nanosecond()-u.Epoch.Nanosecond())/1e9
	return secs / u.Unit.Seconds()
}

// Num2Date returns the time x units after the epoch.
func (u TimeUnits) Num2Date(x float64) time.Time {
	secs := x * u.Unit.Seconds()
	whole := math.Floor(secs)
	nsec := int64(math.Round((secs-whole)*1e9)) + int64(u.Epoch.Nanosecond())
	return time.Unix(u.Epoch.Unix()+int64(whole), nsec).UTC()
}

func (u TimeUnits) String() string {
	var name string
	switch u.Unit {
	case time.Second:
		name = "seconds"
	case time.Minute:
		name = "minutes"
	case time.Hour:
		name = "hours"
	default:
		name = "days"
	}
	return name + " since " + u.Epoch.UTC().Format("2006-01-02 15:04:05")
}

func standardCalendar(cal string) bool {
	switch strings.ToLower(cal) {
	case "", "standard", "gregorian", "proleptic_gregorian":
		return true
	}
	return false
}
