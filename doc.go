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

// Package hypotheticube assembles many NetCDF files, each holding one
// field on the same grid, into a single lazily loaded data cube with an
// extra leading dimension.
//
// One file serves as a template for the grid and metadata. Every other
// file is represented by a dataproxy.Proxy that defers fetching and reading
// until data is requested, and that yields fully masked data if the file
// turns out to be missing or malformed. A replacement table gives, for each
// file, the values of the coordinates that distinguish it from the others,
// such as the forecast reference time; the files are stacked in ascending
// order of the first of these that takes a different value for each file.
package hypotheticube

// Version gives the version number.
const Version = "0.1.0"
