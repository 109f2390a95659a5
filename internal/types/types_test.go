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

package types

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"file", FileAccessError("/tmp/x", cause, "could not open file"), ErrFileAccess, "file_access"},
		{"storage", StorageAccessError("http://h/b/o", cause, "get object"), ErrStorageAccess, "storage_access"},
		{"parser", ParserNotFoundError(SchemaMention), ErrParserNotFound, "parser_not_found"},
		{"parsing", ParsingError("/tmp/x", cause, "read"), ErrParsing, "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			a.ErrorIs(tt.err, tt.kind)
			a.Equal(tt.want, KindOf(tt.err))
			// Wrapping must not hide the classification.
			a.ErrorIs(errors.Wrap(tt.err, "outer"), tt.kind)
			a.Equal(tt.want, KindOf(errors.Wrap(tt.err, "outer")))
			for _, other := range []error{ErrFileAccess, ErrStorageAccess, ErrParserNotFound, ErrParsing} {
				if other != tt.kind {
					a.NotErrorIs(tt.err, other)
				}
			}
		})
	}
	a := assert.New(t)
	a.Equal("none", KindOf(nil))
	a.Equal("unknown", KindOf(cause))
}

func TestErrorPreservesCause(t *testing.T) {
	a := assert.New(t)
	err := FileAccessError("/no/such/file", fs.ErrNotExist, "could not open file")
	a.ErrorIs(err, fs.ErrNotExist)
	a.Equal(fs.ErrNotExist, errors.Cause(err))

	var typed *Error
	a.True(errors.As(err, &typed))
	a.Equal("/no/such/file", typed.Location)
	a.Equal("file access failure: could not open file [/no/such/file]: file does not exist", err.Error())
}

func TestParseSchema(t *testing.T) {
	a := assert.New(t)
	for _, s := range Schemas {
		got, err := ParseSchema(s.String())
		a.NoError(err)
		a.Equal(s, got)
	}
	got, err := ParseSchema(" Event ")
	a.NoError(err)
	a.Equal(SchemaEvent, got)

	_, err = ParseSchema("gkg")
	a.ErrorContains(err, "unknown schema")
	a.Equal("unknown", SchemaUnknown.String())
}

func TestRecordKeys(t *testing.T) {
	a := assert.New(t)
	ev := &EventRecord{GlobalEventID: 1219144758}
	a.Equal("1219144758", ev.Key())
	a.Equal(SchemaEvent, ev.Schema())

	mn := &MentionRecord{GlobalEventID: -5}
	a.Equal("-5", mn.Key())
	a.Equal(SchemaMention, mn.Schema())
}

// Missing attributes must serialize as null rather than being elided
// or replaced by a zero value.
func TestRecordJSONKeepsNulls(t *testing.T) {
	r := require.New(t)
	a := assert.New(t)
	tone := -2.5
	buf, err := json.Marshal(&MentionRecord{GlobalEventID: 7, MentionDocTone: &tone})
	r.NoError(err)

	var decoded map[string]any
	r.NoError(json.Unmarshal(buf, &decoded))
	a.Len(decoded, 15)
	a.Equal(float64(7), decoded["globalEventId"])
	a.Equal(-2.5, decoded["mentionDocTone"])
	a.Contains(decoded, "confidence")
	a.Nil(decoded["confidence"])

	buf, err = json.Marshal(&EventRecord{GlobalEventID: 1})
	r.NoError(err)
	decoded = nil
	r.NoError(json.Unmarshal(buf, &decoded))
	a.Len(decoded, 61)
	a.Nil(decoded["sourceUrl"])
}

func TestWithLocation(t *testing.T) {
	a := assert.New(t)
	cause := errors.New("short read")

	orig := ParsingError("", cause, "could not read rows")
	located := WithLocation(orig, "/data/file.csv")
	a.ErrorIs(located, ErrParsing)
	a.ErrorIs(located, cause)
	a.Contains(located.Error(), "[/data/file.csv]")
	a.NotContains(orig.Error(), "[/data/file.csv]")

	// An existing location is kept.
	a.Equal(located, WithLocation(located, "/other"))

	// Unclassified errors pass through.
	a.Equal(cause, WithLocation(cause, "/data/file.csv"))
}
