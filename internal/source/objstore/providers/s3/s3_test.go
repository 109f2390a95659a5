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
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/eventmosaic/em-adapter/internal/source/objstore/providers/storetest"
	"github.com/eventmosaic/em-adapter/internal/types"
	minio "github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errNoSuchBucket = errors.New("bucket not found")
	errNoSuchKey    = errors.New("key not found")
	errUnreachable  = errors.New("connection refused")
)

// mockObject defers its error until Stat is called, like minio.
type mockObject struct {
	io.Reader
	closed *bool
	err    error
}

func (o *mockObject) Close() error {
	*o.closed = true
	return nil
}

func (o *mockObject) Stat() (minio.ObjectInfo, error) {
	return minio.ObjectInfo{}, o.err
}

// mockS3 is in memory S3 bucket.
type mockS3 struct {
	bucketName string
	down       bool
	files      sync.Map

	mu struct {
		sync.Mutex
		calls  int
		closed []*bool
	}
}

var _ s3Access = &mockS3{}

// GetObject implements s3Access.
func (m *mockS3) GetObject(
	_ context.Context, bucketName string, objectName string, _ minio.GetObjectOptions,
) (object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mu.calls++
	if m.down {
		return nil, errUnreachable
	}
	closed := new(bool)
	m.mu.closed = append(m.mu.closed, closed)
	obj := &mockObject{Reader: bytes.NewReader(nil), closed: closed}
	if bucketName != m.bucketName {
		obj.err = errNoSuchBucket
		return obj, nil
	}
	file, ok := m.files.Load(objectName)
	if !ok {
		obj.err = errNoSuchKey
		return obj, nil
	}
	obj.Reader = bytes.NewReader(file.([]byte))
	return obj, nil
}

func TestParseLocation(t *testing.T) {
	tcs := []struct {
		location string
		bucket   string
		key      string
		wantErr  string
	}{
		{
			location: "http://minio:9000/event-mosaic/data/file.csv",
			bucket:   "event-mosaic",
			key:      "data/file.csv",
		},
		{
			location: "https://s3.amazonaws.com/bucket/20250323151500.export.CSV",
			bucket:   "bucket",
			key:      "20250323151500.export.CSV",
		},
		{
			location: "http://minio:9000/event-mosaic/a/b/c/",
			bucket:   "event-mosaic",
			key:      "a/b/c/",
		},
		{
			location: "http://minio:9000/event-mosaic/with%20space.csv",
			bucket:   "event-mosaic",
			key:      "with space.csv",
		},
		{location: "http://minio:9000/event-mosaic/", wantErr: "no object key"},
		{location: "http://minio:9000/event-mosaic", wantErr: "no object key"},
		{location: "http://minio:9000/", wantErr: "no bucket"},
		{location: "http://minio:9000", wantErr: "no bucket"},
		{location: "http://minio:9000//key", wantErr: "no bucket"},
		{location: "http://[::1", wantErr: "malformed"},
		{location: "", wantErr: "no scheme"},
		{location: "event-mosaic/data/file.csv", wantErr: "no scheme"},
		{location: "/event-mosaic/data/file.csv", wantErr: "no scheme"},
		{location: "http:///event-mosaic/data/file.csv", wantErr: "no host"},
		{location: "http://minio:9000/Bad_Bucket!/data/file.csv", wantErr: "invalid bucket name"},
		{location: "http://minio:9000/ab/data/file.csv", wantErr: "invalid bucket name"},
		{location: "http://minio:9000/event-mosaic/data/%ff.csv", wantErr: "invalid object key"},
	}

	for _, tc := range tcs {
		t.Run(tc.location, func(t *testing.T) {
			a := assert.New(t)
			bucket, key, err := ParseLocation(tc.location)
			if tc.wantErr != "" {
				a.ErrorIs(err, types.ErrFileAccess)
				a.NotErrorIs(err, types.ErrStorageAccess)
				a.ErrorContains(err, tc.wantErr)
				return
			}
			a.NoError(err)
			a.Equal(tc.bucket, bucket)
			a.Equal(tc.key, key)
		})
	}
}

func TestFetch(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	mock := &mockS3{bucketName: "event-mosaic"}
	mock.files.Store("data/20250323151500.export.CSV", []byte("1\n2\n"))
	p := &Provider{client: mock}

	rd, err := p.Fetch(context.Background(), "http://minio:9000/event-mosaic/data/20250323151500.export.CSV")
	r.NoError(err)
	buf, err := io.ReadAll(rd)
	r.NoError(err)
	a.Equal("1\n2\n", string(buf))
	r.NoError(rd.Close())
}

func TestFetchErrors(t *testing.T) {
	tcs := []struct {
		name     string
		location string
		down     bool
		kind     error
		cause    error
		calls    int
	}{
		{
			name:     "no object key",
			location: "http://minio:9000/event-mosaic/",
			kind:     types.ErrFileAccess,
		},
		{
			name:     "no scheme",
			location: "event-mosaic/data/file.csv",
			kind:     types.ErrFileAccess,
		},
		{
			name:     "no host",
			location: "http:///event-mosaic/data/file.csv",
			kind:     types.ErrFileAccess,
		},
		{
			name:     "invalid bucket",
			location: "http://minio:9000/Bad_Bucket!/data/file.csv",
			kind:     types.ErrFileAccess,
		},
		{
			name:     "missing object",
			location: "http://minio:9000/event-mosaic/data/missing.CSV",
			kind:     types.ErrStorageAccess,
			cause:    errNoSuchKey,
			calls:    1,
		},
		{
			name:     "missing bucket",
			location: "http://minio:9000/other/data/file.CSV",
			kind:     types.ErrStorageAccess,
			cause:    errNoSuchBucket,
			calls:    1,
		},
		{
			name:     "unreachable",
			location: "http://minio:9000/event-mosaic/data/file.CSV",
			down:     true,
			kind:     types.ErrStorageAccess,
			cause:    errUnreachable,
			calls:    1,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			mock := &mockS3{bucketName: "event-mosaic", down: tc.down}
			p := &Provider{client: mock}

			rd, err := p.Fetch(context.Background(), tc.location)
			a.Nil(rd)
			a.ErrorIs(err, tc.kind)
			if tc.cause != nil {
				a.ErrorIs(err, tc.cause)
			}
			a.Contains(err.Error(), tc.location)
			a.Equal(tc.calls, mock.mu.calls)
			for _, closed := range mock.mu.closed {
				a.True(*closed, "object handle must be released")
			}
		})
	}
}

func TestNew(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	p, err := New(&Config{
		AccessKey: "minioadmin",
		Endpoint:  "minio:9000",
		Insecure:  true,
		SecretKey: "minioadmin",
	})
	r.NoError(err)
	a.NotNil(p.client)

	_, err = New(nil)
	a.Error(err)
}

// mockWriter stores files in a mockS3 bucket.
type mockWriter struct {
	mock *mockS3
}

var _ storetest.Writer = (*mockWriter)(nil)

func (w *mockWriter) Location(name string) string {
	return "http://minio:9000/" + w.mock.bucketName + "/data/" + name
}

func (w *mockWriter) Store(_ context.Context, name string, buf []byte) error {
	w.mock.files.Store("data/"+name, buf)
	return nil
}

func TestSuite(t *testing.T) {
	mock := &mockS3{bucketName: "event-mosaic"}
	suite := &storetest.Suite{
		NotFound: types.ErrStorageAccess,
		Source:   &Provider{client: mock},
		Writer:   &mockWriter{mock: mock},
	}
	suite.Run(t)
}
