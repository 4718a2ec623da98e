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
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// compression returns the compression suffix of name, or "" if the file
// is not compressed.
func compression(name string) string {
	for _, s := range []string{".gz", ".zst"} {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

func decompress(r io.Reader, suffix string) (io.ReadCloser, error) {
	switch suffix {
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}
