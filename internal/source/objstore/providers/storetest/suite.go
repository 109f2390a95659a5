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

// Package storetest defines the tests that the file source providers
// must pass.
package storetest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Writer allows the test suite to add files to the storage.
type Writer interface {
	// Location returns the location of a named file, whether or not
	// it exists.
	Location(name string) string
	// Store writes the content of a named file.
	Store(ctx context.Context, name string, buf []byte) error
}

// Suite verifies that a [types.FileSource] reads files from its
// storage.
type Suite struct {
	NotFound error            // The failure kind expected for a missing file.
	Source   types.FileSource // The interface we are testing.
	Writer   Writer           // The interface used to load files for testing.
}

// Run executes every test in the suite.
func (s *Suite) Run(t *testing.T) {
	t.Run("Fetch", s.Fetch)
	t.Run("Overwrite", s.Overwrite)
	t.Run("Concurrent", s.Concurrent)
}

// Fetch validates that existing files are read in full and that
// missing files are classified.
func (s *Suite) Fetch(t *testing.T) {
	r := require.New(t)
	tests := []struct {
		name    string
		file    string
		want    string
		wantErr error
	}{
		{"found", "20250323151500.export.CSV", "1\t2\n", nil},
		{"notfound", "20250323153000.export.CSV", "", s.NotFound},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.NoError(s.Writer.Store(ctx, "20250323151500.export.CSV", []byte("1\t2\n")))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			r := require.New(t)
			got, err := s.read(ctx, tt.file)
			if tt.wantErr != nil {
				a.ErrorIs(err, tt.wantErr)
				a.Contains(err.Error(), s.Writer.Location(tt.file))
				return
			}
			r.NoError(err)
			a.Equal(tt.want, got)
		})
	}
}

// Overwrite validates that the latest version of a file is read.
func (s *Suite) Overwrite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := require.New(t)
	a := assert.New(t)
	name := "20250323154500.mentions.CSV"
	for _, v := range []string{"v0", "v1", "v2", "v3"} {
		r.NoError(s.Writer.Store(ctx, name, []byte(v)))
		got, err := s.read(ctx, name)
		r.NoError(err)
		a.Equal(v, got)
	}
}

// Concurrent validates that the source may be used by several cycles
// at once.
func (s *Suite) Concurrent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := require.New(t)
	a := assert.New(t)
	names := []string{
		"20250323160000.export.CSV",
		"20250323161500.export.CSV",
		"20250323163000.export.CSV",
		"20250323164500.export.CSV",
	}
	for _, name := range names {
		r.NoError(s.Writer.Store(ctx, name, []byte(name)))
	}
	eg, egCtx := errgroup.WithContext(ctx)
	got := make([]string, len(names))
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			var err error
			got[i], err = s.read(egCtx, name)
			return err
		})
	}
	r.NoError(eg.Wait())
	a.Equal(names, got)
}

// read fetches the named file and returns its content.
func (s *Suite) read(ctx context.Context, name string) (string, error) {
	rd, err := s.Source.Fetch(ctx, s.Writer.Location(name))
	if err != nil {
		return "", err
	}
	defer rd.Close()
	buf, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
