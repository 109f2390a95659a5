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

// Package objstore selects the file source used to read export files.
package objstore

import (
	"context"
	"io"
	"time"

	"github.com/eventmosaic/em-adapter/internal/source/objstore/providers/local"
	"github.com/eventmosaic/em-adapter/internal/source/objstore/providers/s3"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/google/wire"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Set is used by Wire.
var Set = wire.NewSet(
	ProvideSource,
)

// ProvideSource is called by Wire to construct the file source that
// was selected by the configuration. The configuration must have been
// preflighted.
func ProvideSource(config *Config) (types.FileSource, error) {
	var delegate types.FileSource
	switch config.provider {
	case LocalStorage:
		delegate = local.New()
	case S3Storage:
		p, err := s3.New(config.s3)
		if err != nil {
			return nil, err
		}
		delegate = p
	default:
		return nil, errors.Errorf("file source %q was not configured", config.FileSource)
	}
	log.Infof("reading files from %s storage", config.provider)
	return &instrumented{
		delegate: delegate,
		label:    config.provider.String(),
	}, nil
}

// instrumented records metrics around another FileSource.
type instrumented struct {
	delegate types.FileSource
	label    string
}

var _ types.FileSource = (*instrumented)(nil)

// Fetch implements [types.FileSource].
func (s *instrumented) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	start := time.Now()
	ret, err := s.delegate.Fetch(ctx, location)
	if err != nil {
		fetchErrors.WithLabelValues(s.label, types.KindOf(err)).Inc()
		return nil, err
	}
	fetchDuration.WithLabelValues(s.label).Observe(time.Since(start).Seconds())
	return ret, nil
}
