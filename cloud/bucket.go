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
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/patrickmn/go-cache"
	"gocloud.dev/blob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// A BucketOpener opens the named bucket of one storage provider.
type BucketOpener func(ctx context.Context, name string, opts StorageOptions) (*blob.Bucket, error)

// bucketTTL is how long an unused bucket handle is kept open.
const bucketTTL = 10 * time.Minute

func defaultOpeners() map[string]BucketOpener {
	return map[string]BucketOpener{
		"s3":  s3Bucket,
		"gs":  gsBucket,
		"mem": memBucket,
	}
}

// OpenBucket returns the bucket called name from the storage provider
// registered for scheme. The currently accepted providers are "gs" for
// Google Cloud Storage, "s3" for AWS S3 (or any S3 compatible service
// when opts.Endpoint is set) and "mem" for process-wide in-memory buckets.
// Bucket handles other than in-memory ones are cached and reused until
// they have been idle for a while.
func (r *Resolver) OpenBucket(ctx context.Context, scheme, name string, opts StorageOptions) (*blob.Bucket, error) {
	open, ok := r.opener(scheme)
	if !ok {
		return nil, fmt.Errorf("cloud: invalid provider %s", scheme)
	}
	if scheme == "mem" {
		return open(ctx, name, opts)
	}
	key := fmt.Sprintf("%s://%s?anon=%t&region=%s&endpoint=%s", scheme, name, opts.Anonymous, opts.Region, opts.Endpoint)
	c := r.bucketCache()
	if b, ok := c.Get(key); ok {
		c.SetDefault(key, b) // Extend the idle timeout.
		return b.(*blob.Bucket), nil
	}
	b, err := open(ctx, name, opts)
	if err != nil {
		return nil, fmt.Errorf("cloud: opening bucket %s://%s: %v", scheme, name, err)
	}
	if err := c.Add(key, b, cache.DefaultExpiration); err != nil {
		// Another goroutine opened the same bucket first.
		b.Close()
		if cached, ok := c.Get(key); ok {
			return cached.(*blob.Bucket), nil
		}
		return nil, fmt.Errorf("cloud: opening bucket %s://%s: %v", scheme, name, err)
	}
	return b, nil
}

func (r *Resolver) opener(scheme string) (BucketOpener, bool) {
	if o, ok := r.Openers[scheme]; ok && o != nil {
		return o, true
	}
	o, ok := defaultOpeners()[scheme]
	return o, ok
}

func (r *Resolver) bucketCache() *cache.Cache {
	r.bucketsOnce.Do(func() {
		r.buckets = cache.New(bucketTTL, bucketTTL/2)
		r.buckets.OnEvicted(func(key string, b interface{}) {
			if err := b.(*blob.Bucket).Close(); err != nil {
				r.log().WithField("bucket", key).Warnf("closing bucket: %v", err)
			}
		})
	})
	return r.buckets
}

// Close closes every cached bucket handle.
func (r *Resolver) Close() error {
	c := r.bucketCache()
	var firstErr error
	for key, item := range c.Items() {
		if err := item.Object.(*blob.Bucket).Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cloud: closing bucket %s: %v", key, err)
		}
	}
	c.Flush()
	return firstErr
}

func gsBucket(ctx context.Context, name string, opts StorageOptions) (*blob.Bucket, error) {
	if opts.Anonymous {
		return gcsblob.OpenBucket(ctx, gcp.NewAnonymousHTTPClient(gcp.DefaultTransport()), name, nil)
	}
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. Unless opts.Anonymous is set,
// credentials are found the usual way: the AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY environment variables, the shared credentials
// file, or an instance role.
func s3Bucket(ctx context.Context, name string, opts StorageOptions) (*blob.Bucket, error) {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}
	c := aws.NewConfig().WithRegion(region)
	if opts.Anonymous {
		c = c.WithCredentials(credentials.AnonymousCredentials)
	}
	if opts.Endpoint != "" {
		c = c.WithEndpoint(opts.Endpoint).WithS3ForcePathStyle(true)
	}
	s, err := session.NewSessionWithOptions(session.Options{
		Config:            *c,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

var (
	memBucketsMu sync.Mutex
	memBuckets   = make(map[string]*blob.Bucket)
)

// memBucket returns the in-memory bucket called name, creating it on
// first use. The buckets live for the life of the process.
func memBucket(ctx context.Context, name string, opts StorageOptions) (*blob.Bucket, error) {
	memBucketsMu.Lock()
	defer memBucketsMu.Unlock()
	b, ok := memBuckets[name]
	if !ok {
		b = memblob.OpenBucket(nil)
		memBuckets[name] = b
	}
	return b, nil
}
