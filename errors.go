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

import "errors"

// ErrNoCoord is returned (wrapped) when a cube has no coordinate of the
// requested name.
var ErrNoCoord = errors.New("no such coordinate")

// ConfigurationError reports a problem with the inputs to an assembly,
// such as a malformed replacement table or a coordinate that cannot be
// given the requested values.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return "hypotheticube: " + e.Msg + ": " + e.Err.Error()
	}
	return "hypotheticube: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
