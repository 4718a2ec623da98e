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

import (
	"os"
	"sync"
)

// LocalFile is a file on the local filesystem holding the contents of
// the file at URI.
type LocalFile struct {
	Path string
	URI  string

	// Temporary is set when Path is a copy that is removed by Release.
	Temporary bool

	once sync.Once
	err  error
}

// Exists reports whether the file is still present.
func (f *LocalFile) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// Release removes a temporary copy. It may be called more than once;
// only the first call has an effect. Files that are not temporary are
// left alone.
func (f *LocalFile) Release() error {
	if f == nil || !f.Temporary {
		return nil
	}
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			f.err = err
		}
	})
	return f.err
}
