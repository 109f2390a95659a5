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

// Package ingest turns a file location into published records.
package ingest

import (
	"context"

	"github.com/eventmosaic/em-adapter/internal/parser"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
)

// Orchestrator reads one file with the parser registered for a schema.
// It holds no mutable state and is safe for concurrent use.
type Orchestrator struct {
	Encoding encoding.Encoding // The character set of the files; nil for UTF-8.
	Parsers  *parser.Registry
	Source   types.FileSource
}

// Ingest reads the file at the location and returns its valid records
// in file order. File and storage access failures are returned
// unchanged. Any other failure is reported as [types.ErrParsing],
// carrying the location and the original cause.
func (o *Orchestrator) Ingest(
	ctx context.Context, location string, schema types.Schema,
) ([]types.Record, error) {
	p, err := o.Parsers.Lookup(schema)
	if err != nil {
		return nil, err
	}
	rd, err := o.Source.Fetch(ctx, location)
	if err != nil {
		return nil, classify(err, location)
	}
	defer func() {
		if err := rd.Close(); err != nil {
			log.WithError(err).WithField("location", location).Warn("could not close file")
		}
	}()

	recs, err := p.Parse(ctx, rd, o.Encoding)
	if err != nil {
		return nil, classify(err, location)
	}
	return recs, nil
}

// classify preserves classified failures and wraps everything else as
// a parsing failure.
func classify(err error, location string) error {
	switch {
	case errors.Is(err, types.ErrFileAccess),
		errors.Is(err, types.ErrStorageAccess),
		errors.Is(err, types.ErrParserNotFound):
		return err
	case errors.Is(err, types.ErrParsing):
		return types.WithLocation(err, location)
	default:
		return types.ParsingError(location, err, "unexpected failure")
	}
}
