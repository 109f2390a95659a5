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

// Package types contains data types and interfaces that define the
// major functional blocks of code within em-adapter. The goal of
// placing the types into this package is to make it easy to compose
// functionality as the adapter evolves.
package types

import (
	"context"
	"io"

	"golang.org/x/text/encoding"
)

// A FileSource retrieves the raw bytes of an export file. The location
// is interpreted by the implementation: a filesystem path for local
// storage or a URL for object storage.
//
// Implementations must be safe for concurrent use.
type FileSource interface {
	// Fetch opens the file at the given location. The caller must
	// close the returned reader.
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// A Parser converts a tab-delimited byte stream into typed records of
// a single Schema.
type Parser interface {
	// Parse reads the stream to completion. Rows without a valid
	// identifier are dropped. A nil encoding means UTF-8.
	Parse(ctx context.Context, r io.Reader, enc encoding.Encoding) ([]Record, error)
	// Schema returns the schema that the Parser produces.
	Schema() Schema
}

// A Publisher emits records to the downstream message sink.
type Publisher interface {
	// Publish emits exactly one message per record, in order. The
	// batch identifier is attached to each message when hasBatchID is
	// true. The returned slice contains one error for each message
	// that the sink rejected; it is empty when every message was
	// accepted.
	Publish(ctx context.Context, schema Schema, records []Record, batchID string, hasBatchID bool) []error
}

// A Record is a single typed row produced by a Parser.
type Record interface {
	// Key returns the stringified record identifier, used as the
	// outbound message key.
	Key() string
	// Schema returns the schema that produced the record.
	Schema() Schema
}
