// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package s3 provides access to objects in an S3-compatible store,
// such as MinIO.
package s3

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/s3utils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DirDelim is the directory delimiter used in S3.
	DirDelim = "/"
)

// Config has the parameters used to connect to S3.
type Config struct {
	AccessKey    string // AWS Access Key
	Endpoint     string // The host:port of the server.
	Insecure     bool   // For testing against self hosted S3 providers.
	Region       string // Optional region.
	SecretKey    string // Secret associated to the Access Key
	SessionToken string // Optional session token.
}

// Provider reads objects named by URL locations. It holds no per-call
// state and is safe for concurrent use.
type Provider struct {
	client s3Access
}

var _ types.FileSource = (*Provider)(nil)

// New returns a file source backed by an S3 provider.
func New(config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("no s3 configuration")
	}
	c, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return &Provider{client: c}, nil
}

// ParseLocation splits a location of the form
// scheme://host[:port]/<bucket>/<object-key...> into a bucket name and
// an object key. The object key may contain path separators. A
// malformed location, or one whose bucket or key the store would reject,
// is reported as [types.ErrFileAccess].
func ParseLocation(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", types.FileAccessError(location, errors.WithStack(err), "malformed object location")
	}
	if u.Scheme == "" {
		return "", "", types.FileAccessError(location, nil, "object location has no scheme")
	}
	if u.Host == "" {
		return "", "", types.FileAccessError(location, nil, "object location has no host")
	}
	path := u.Path
	if len(path) <= len(DirDelim) {
		return "", "", types.FileAccessError(location, nil, "object location has no bucket")
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(path, DirDelim), DirDelim)
	if bucket == "" {
		return "", "", types.FileAccessError(location, nil, "object location has no bucket")
	}
	if key == "" {
		return "", "", types.FileAccessError(location, nil, "object location has no object key")
	}
	if err := s3utils.CheckValidBucketName(bucket); err != nil {
		return "", "", types.FileAccessError(location, errors.WithStack(err), "invalid bucket name")
	}
	if err := s3utils.CheckValidObjectName(key); err != nil {
		return "", "", types.FileAccessError(location, errors.WithStack(err), "invalid object key")
	}
	return bucket, key, nil
}

// Fetch implements [types.FileSource].
func (p *Provider) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"bucket": bucket,
		"key":    key,
	}).Debug("fetching object")
	obj, err := p.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, types.StorageAccessError(location, errors.WithStack(err), "could not get object")
	}
	// Surface missing objects and credential problems here, rather
	// than on the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, types.StorageAccessError(location, errors.WithStack(err), "could not stat object")
	}
	return obj, nil
}
