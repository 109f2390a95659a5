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

// Package local provides access to files on the local filesystem.
package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
)

// Provider opens filesystem paths. It holds no per-call state and is
// safe for concurrent use.
type Provider struct {
	root fs.FS
}

var _ types.FileSource = (*Provider)(nil)

// New creates a file source for the local filesystem.
func New() *Provider {
	return &Provider{root: os.DirFS("/")}
}

// Fetch implements [types.FileSource]. The location is a filesystem
// path, which is expected to be absolute. Relative paths are resolved
// against the working directory.
func (p *Provider) Fetch(_ context.Context, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, types.FileAccessError(location, nil, "empty location")
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, types.FileAccessError(location, errors.WithStack(err), "could not resolve path")
	}
	name := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	if name == "" {
		name = "."
	}
	f, err := p.root.Open(name)
	if err != nil {
		return nil, types.FileAccessError(location, errors.WithStack(err), "could not open file")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, types.FileAccessError(location, errors.WithStack(err), "could not stat file")
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, types.FileAccessError(location, nil, "location is a directory")
	}
	return f, nil
}
