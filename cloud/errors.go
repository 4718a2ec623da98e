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

package cloud

import "fmt"

// NotFoundError reports that the file named by URI does not exist.
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cloud: %s: no such file", e.URI)
}

// TransportError reports a failure to fetch the file named by URI for a
// reason other than the file not existing.
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cloud: fetching %s: %v", e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedURIError reports a blob URI that does not name both a bucket
// and a key.
type MalformedURIError struct {
	URI string
}

func (e *MalformedURIError) Error() string {
	return fmt.Sprintf("cloud: %s is not of the form scheme://bucket/key", e.URI)
}
