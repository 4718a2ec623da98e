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

// Package cloud makes local copies of files stored in the cloud, on web
// servers, or on the local filesystem.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// StorageOptions configure access to remote storage.
type StorageOptions struct {
	// Anonymous disables credential lookup for cloud buckets.
	Anonymous bool

	// Region is the AWS region. It defaults to $AWS_REGION, then us-east-1.
	Region string

	// Endpoint overrides the S3 service endpoint, for example to use an
	// S3 compatible service.
	Endpoint string

	// TempDir is where downloaded files are stored. The default is the
	// system temporary directory.
	TempDir string

	// Retries is the number of times a failed download is retried.
	// Missing files are never retried.
	Retries uint64
}

// Resolver makes local copies of files named by URIs.
// The zero value is ready to use.
type Resolver struct {
	// Client is used for http and https downloads. If nil,
	// http.DefaultClient is used.
	Client *http.Client

	// Openers overrides the bucket openers for the given URI schemes.
	Openers map[string]BucketOpener

	// Log receives progress and diagnostic messages. If nil, the
	// logrus standard logger is used.
	Log logrus.FieldLogger

	bucketsOnce sync.Once
	buckets     *cache.Cache
}

// DefaultResolver is used by Resolve and by values that are not given a
// Resolver of their own.
var DefaultResolver = new(Resolver)

// Resolve makes a local copy of the file at uri using DefaultResolver.
func Resolve(ctx context.Context, uri string, opts StorageOptions) (*LocalFile, error) {
	return DefaultResolver.Resolve(ctx, uri, opts)
}

func (r *Resolver) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func (r *Resolver) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

// Resolve returns a local file holding the contents of the file at uri.
// uri may be an http or https URL, a bucket URI such as s3://bucket/key
// or gs://bucket/key, a file:// URL, or a local path. Local files are
// used in place unless they are compressed; everything else is copied to
// a temporary file which the caller must Release.
//
// A missing file results in a *NotFoundError, and a failed transfer in a
// *TransportError. If ctx is cancelled, its error is returned.
func (r *Resolver) Resolve(ctx context.Context, uri string, opts StorageOptions) (*LocalFile, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return r.materialize(ctx, uri, "http", opts, func(ctx context.Context) (io.ReadCloser, error) {
			return r.openHTTP(ctx, uri)
		})
	}
	if scheme, ok := r.blobScheme(uri); ok {
		bucket, key, err := splitBlobURI(uri)
		if err != nil {
			return nil, err
		}
		return r.materialize(ctx, uri, scheme, opts, func(ctx context.Context) (io.ReadCloser, error) {
			return r.openBlob(ctx, uri, scheme, bucket, key, opts)
		})
	}
	p := strings.TrimPrefix(uri, "file://")
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			fetches.WithLabelValues("file", "not_found").Inc()
			return nil, &NotFoundError{URI: uri}
		}
		return nil, fmt.Errorf("cloud: %s: %v", uri, err)
	}
	if compression(p) != "" {
		return r.materialize(ctx, uri, "file", opts, func(ctx context.Context) (io.ReadCloser, error) {
			return os.Open(p)
		})
	}
	return &LocalFile{Path: p, URI: uri}, nil
}

// EnsureLocal returns f if it still exists. If f is a temporary copy that
// has been removed, f is released and the file is fetched again.
// Local files that have disappeared are returned unchanged so that the
// caller's attempt to open them reports the problem.
func (r *Resolver) EnsureLocal(ctx context.Context, f *LocalFile, opts StorageOptions) (*LocalFile, error) {
	if f.Exists() || !f.Temporary {
		return f, nil
	}
	r.log().WithFields(logrus.Fields{"uri": f.URI, "path": f.Path}).Debug("local copy is gone; fetching again")
	f.Release()
	return r.Resolve(ctx, f.URI, opts)
}

// materialize copies the stream returned by open into a temporary file,
// retrying transport failures up to opts.Retries times.
func (r *Resolver) materialize(ctx context.Context, uri, scheme string, opts StorageOptions,
	open func(context.Context) (io.ReadCloser, error)) (*LocalFile, error) {
	log := r.log().WithFields(logrus.Fields{"uri": uri})
	start := time.Now()

	var lf *LocalFile
	op := func() error {
		rc, err := open(ctx)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer rc.Close()
		lf, err = writeTemp(rc, uri, scheme, opts.TempDir)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	var b backoff.BackOff = &backoff.StopBackOff{}
	if opts.Retries > 0 {
		b = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), opts.Retries)
	}
	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		log.WithField("wait", d).Warnf("fetch failed; retrying: %v", err)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			fetches.WithLabelValues(scheme, "not_found").Inc()
			log.Debug("file not found")
			return nil, err
		}
		fetches.WithLabelValues(scheme, "error").Inc()
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{URI: uri, Err: err}
		}
		return nil, err
	}
	fetches.WithLabelValues(scheme, "ok").Inc()
	log.WithFields(logrus.Fields{"path": lf.Path, "duration": time.Since(start)}).Debug("fetched file")
	return lf, nil
}

// writeTemp copies rc into a new temporary file, decompressing it if the
// name of uri calls for it. The file is removed if the copy fails.
func writeTemp(rc io.Reader, uri, scheme, dir string) (*LocalFile, error) {
	name := baseName(uri)
	comp := compression(name)
	name = strings.TrimSuffix(name, comp)
	src, err := decompress(rc, comp)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	defer src.Close()

	f, err := os.CreateTemp(dir, "hypotheticube-*"+path.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("cloud: creating temporary file for %s: %v", uri, err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, &TransportError{URI: uri, Err: err}
	}
	fetchedBytes.WithLabelValues(scheme).Add(float64(n))
	return &LocalFile{Path: f.Name(), URI: uri, Temporary: true}, nil
}

// baseName returns the last element of the path of uri.
func baseName(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(uri)
}
