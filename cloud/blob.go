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
	"context"
	"io"
	"net/url"
	"strings"

	"gocloud.dev/gcerrors"
)

// IsBlob returns whether the given URI names an object in a storage
// bucket (i.e., if it starts with 's3://', 'gs://', 'mem://' or another
// scheme with a registered opener).
func (r *Resolver) IsBlob(uri string) bool {
	_, ok := r.blobScheme(uri)
	return ok
}

func (r *Resolver) blobScheme(uri string) (string, bool) {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return "", false
	}
	scheme := uri[:i]
	_, ok := r.opener(scheme)
	return scheme, ok
}

// splitBlobURI splits scheme://bucket/key into its bucket and key.
func splitBlobURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", &MalformedURIError{URI: uri}
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", &MalformedURIError{URI: uri}
	}
	return u.Host, key, nil
}

// openBlob opens a reader for the given key in the given bucket.
func (r *Resolver) openBlob(ctx context.Context, uri, scheme, bucket, key string, opts StorageOptions) (io.ReadCloser, error) {
	b, err := r.OpenBucket(ctx, scheme, bucket, opts)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	rc, err := b.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, &NotFoundError{URI: uri}
		}
		return nil, &TransportError{URI: uri, Err: err}
	}
	return rc, nil
}
