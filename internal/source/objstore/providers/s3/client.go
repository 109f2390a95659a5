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

package s3

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// object is the part of *minio.Object that Fetch uses. The minio client
// does not contact the server until the object is first read or
// inspected.
type object interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

// s3Access is the part of the minio SDK that Provider uses. Tests
// replace it with an in-memory store.
type s3Access interface {
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (object, error)
}

// client adapts *minio.Client to s3Access.
type client struct {
	minio *minio.Client
}

var _ s3Access = (*client)(nil)

// newClient connects to the endpoint with static credentials. The
// minio client signs requests anonymously if the keys are empty.
func newClient(config *Config) (*client, error) {
	mc, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, config.SessionToken),
		Region: config.Region,
		Secure: !config.Insecure,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not create s3 client for %s", config.Endpoint)
	}
	return &client{minio: mc}, nil
}

// GetObject implements s3Access.
func (c *client) GetObject(
	ctx context.Context, bucket, key string, opts minio.GetObjectOptions,
) (object, error) {
	return c.minio.GetObject(ctx, bucket, key, opts)
}
