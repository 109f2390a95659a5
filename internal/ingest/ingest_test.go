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

package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/eventmosaic/em-adapter/internal/parser"
	"github.com/eventmosaic/em-adapter/internal/source/objstore/providers/local"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

// eventRow is a fully-populated event row.
var eventRow = strings.Join([]string{
	"1219144758", "20250323", "202503", "2025", "2025.2247",
	"USA", "UNITED STATES", "USA", "", "", "", "", "GOV", "", "",
	"RUS", "RUSSIA", "RUS", "", "", "", "", "MIL", "", "",
	"1", "043", "043", "04", "1", "2.8", "10", "2", "10", "-1.93",
	"3", "Washington, District of Columbia, United States", "US", "USDC", "DC001", "38.8951", "-77.0364", "531871",
	"4", "Moscow, Moskva, Russia", "RS", "RS48", "RS481", "55.7522", "37.6156", "-2960561",
	"4", "Geneva, Geneve, Switzerland", "SZ", "SZ07", "SZ071", "46.2", "6.15", "-2552035",
	"20250323151500", "https://example.com/news/article.html",
}, "\t")

// emptyIDRow has every column but the identifier.
var emptyIDRow = "\t" + strings.SplitN(eventRow, "\t", 2)[1]

// trackingReader records whether it was closed.
type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

// fakeSource serves fixed contents or a fixed error.
type fakeSource struct {
	contents io.Reader
	err      error

	fetched []string
	opened  []*trackingReader
}

func (s *fakeSource) Fetch(_ context.Context, location string) (io.ReadCloser, error) {
	s.fetched = append(s.fetched, location)
	if s.err != nil {
		return nil, s.err
	}
	rd := &trackingReader{Reader: s.contents}
	s.opened = append(s.opened, rd)
	return rd, nil
}

// fakeParser returns a fixed error.
type fakeParser struct {
	err error
}

func (p *fakeParser) Parse(context.Context, io.Reader, encoding.Encoding) ([]types.Record, error) {
	return nil, p.err
}

func (p *fakeParser) Schema() types.Schema { return types.SchemaEvent }

type publishCall struct {
	schema     types.Schema
	keys       []string
	batchID    string
	hasBatchID bool
}

// fakePublisher records what it was asked to publish.
type fakePublisher struct {
	fail func(types.Record) error

	mu struct {
		sync.Mutex
		calls []publishCall
	}
}

func (p *fakePublisher) Publish(
	_ context.Context, schema types.Schema, records []types.Record, batchID string, hasBatchID bool,
) []error {
	call := publishCall{schema: schema, batchID: batchID, hasBatchID: hasBatchID}
	var errs []error
	for _, rec := range records {
		call.keys = append(call.keys, rec.Key())
		if p.fail != nil {
			if err := p.fail(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mu.calls = append(p.mu.calls, call)
	return errs
}

func newOrchestrator(t *testing.T, src types.FileSource) *Orchestrator {
	t.Helper()
	return &Orchestrator{
		Parsers: parser.DefaultRegistry(&parser.Config{}),
		Source:  src,
	}
}

func TestIngestParserNotFound(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	reg, err := parser.NewRegistry(parser.NewMentionParser(parser.DefaultMaxLineSize))
	r.NoError(err)
	src := &fakeSource{contents: strings.NewReader("1\n")}
	o := &Orchestrator{Parsers: reg, Source: src}

	_, err = o.Ingest(context.Background(), "/data/x.CSV", types.SchemaEvent)
	a.ErrorIs(err, types.ErrParserNotFound)
	a.Empty(src.fetched)
}

func TestIngestSourceFailures(t *testing.T) {
	boom := errors.New("boom")
	tcs := []struct {
		name      string
		err       error
		kind      error
		unchanged bool
	}{
		{
			name:      "file access",
			err:       types.FileAccessError("/data/x.CSV", boom, "could not open file"),
			kind:      types.ErrFileAccess,
			unchanged: true,
		},
		{
			name:      "storage access",
			err:       types.StorageAccessError("/data/x.CSV", boom, "could not get object"),
			kind:      types.ErrStorageAccess,
			unchanged: true,
		},
		{
			name: "unclassified",
			err:  boom,
			kind: types.ErrParsing,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			o := newOrchestrator(t, &fakeSource{err: tc.err})

			recs, err := o.Ingest(context.Background(), "/data/x.CSV", types.SchemaEvent)
			a.Nil(recs)
			a.ErrorIs(err, tc.kind)
			a.ErrorIs(err, boom)
			a.Contains(err.Error(), "/data/x.CSV")
			if tc.unchanged {
				a.Same(tc.err, err)
			}
		})
	}
}

func TestIngestParseFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("stream fault", func(t *testing.T) {
		a := assert.New(t)
		src := &fakeSource{contents: iotest.ErrReader(boom)}
		o := newOrchestrator(t, src)

		_, err := o.Ingest(context.Background(), "/data/x.CSV", types.SchemaMention)
		a.ErrorIs(err, types.ErrParsing)
		a.ErrorIs(err, boom)
		a.NotErrorIs(err, types.ErrFileAccess)
		a.Contains(err.Error(), "[/data/x.CSV]")
		a.True(src.opened[0].closed)
	})

	t.Run("unexpected parser error", func(t *testing.T) {
		a := assert.New(t)
		r := require.New(t)
		reg, err := parser.NewRegistry(&fakeParser{err: boom})
		r.NoError(err)
		src := &fakeSource{contents: strings.NewReader("")}
		o := &Orchestrator{Parsers: reg, Source: src}

		_, err = o.Ingest(context.Background(), "/data/x.CSV", types.SchemaEvent)
		a.ErrorIs(err, types.ErrParsing)
		a.ErrorIs(err, boom)
		a.Contains(err.Error(), "[/data/x.CSV]")
		a.True(src.opened[0].closed)
	})

	t.Run("cancelled", func(t *testing.T) {
		a := assert.New(t)
		src := &fakeSource{contents: strings.NewReader(eventRow + "\n")}
		o := newOrchestrator(t, src)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := o.Ingest(ctx, "/data/x.CSV", types.SchemaEvent)
		a.ErrorIs(err, types.ErrParsing)
		a.ErrorIs(err, context.Canceled)
		a.True(src.opened[0].closed)
	})
}

func TestIngestClosesOnSuccess(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)
	src := &fakeSource{contents: strings.NewReader("1\n2\n")}
	o := newOrchestrator(t, src)

	recs, err := o.Ingest(context.Background(), "/data/x.CSV", types.SchemaMention)
	r.NoError(err)
	r.Len(recs, 2)
	a.Equal(types.SchemaMention, recs[0].Schema())
	a.True(src.opened[0].closed)
}

// TestEndToEnd reads a two-row event file from disk, where the second
// row has no identifier.
func TestEndToEnd(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "20250323151500.export.CSV")
	r.NoError(os.WriteFile(path, []byte(eventRow+"\n"+emptyIDRow+"\n"), 0644))

	o := newOrchestrator(t, local.New())
	pub := &fakePublisher{}
	cycle := &Cycle{Orchestrator: o, Publisher: pub}

	recs, err := o.Ingest(context.Background(), path, types.SchemaEvent)
	r.NoError(err)
	r.Len(recs, 1)

	expected, err := parser.NewEventParser(parser.DefaultMaxLineSize).ParseEvents(
		context.Background(), strings.NewReader(eventRow), nil)
	r.NoError(err)
	r.Len(expected, 1)
	a.Equal(expected[0], recs[0])

	ev, ok := recs[0].(*types.EventRecord)
	r.True(ok)
	a.Equal(int64(1219144758), ev.GlobalEventID)
	a.Equal("UNITED STATES", *ev.Actor1Name)
	a.Nil(ev.Actor1KnownGroupCode)
	a.Equal(-1.93, *ev.AvgTone)
	a.Equal("https://example.com/news/article.html", *ev.SourceURL)

	r.NoError(cycle.Process(context.Background(), types.SchemaEvent, path))
	r.Len(pub.mu.calls, 1)
	a.Equal(publishCall{
		schema:     types.SchemaEvent,
		keys:       []string{"1219144758"},
		batchID:    "20250323151500",
		hasBatchID: true,
	}, pub.mu.calls[0])
}

func TestCycle(t *testing.T) {
	boom := errors.New("boom")
	tcs := []struct {
		name     string
		location string
		contents string
		fetchErr error
		fail     func(types.Record) error
		wantErr  string
		kind     error
		calls    []publishCall
	}{
		{
			name:     "publishes",
			location: "http://minio:9000/bucket/20250323151500.mentions.CSV",
			contents: "7\n8\n",
			calls: []publishCall{{
				schema:     types.SchemaMention,
				keys:       []string{"7", "8"},
				batchID:    "20250323151500",
				hasBatchID: true,
			}},
		},
		{
			name:     "no batch identifier",
			location: "/data/.hidden",
			contents: "7\n",
			calls: []publishCall{{
				schema: types.SchemaMention,
				keys:   []string{"7"},
			}},
		},
		{
			name:     "empty file",
			location: "/data/20250323151500.mentions.CSV",
			contents: "\n",
		},
		{
			name:     "fetch failure",
			location: "/data/20250323151500.mentions.CSV",
			fetchErr: types.FileAccessError("/data/20250323151500.mentions.CSV", boom, "could not open file"),
			kind:     types.ErrFileAccess,
		},
		{
			name:     "publish failures",
			location: "/data/20250323151500.mentions.CSV",
			contents: "7\n8\n9\n",
			fail: func(rec types.Record) error {
				if rec.Key() == "7" {
					return nil
				}
				return errors.Wrap(boom, rec.Key())
			},
			wantErr: "2 of 3 records could not be published: 8: boom",
			calls: []publishCall{{
				schema:     types.SchemaMention,
				keys:       []string{"7", "8", "9"},
				batchID:    "20250323151500",
				hasBatchID: true,
			}},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			src := &fakeSource{contents: strings.NewReader(tc.contents), err: tc.fetchErr}
			pub := &fakePublisher{fail: tc.fail}
			cycle := &Cycle{Orchestrator: newOrchestrator(t, src), Publisher: pub}

			err := cycle.Process(context.Background(), types.SchemaMention, tc.location)
			switch {
			case tc.kind != nil:
				a.ErrorIs(err, tc.kind)
			case tc.wantErr != "":
				a.EqualError(err, tc.wantErr)
				a.ErrorIs(err, boom)
			default:
				a.NoError(err)
			}
			a.Equal(tc.calls, pub.mu.calls)
		})
	}
}

func TestCycleDiagnostic(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	src := &fakeSource{contents: strings.NewReader("7\n8\n")}
	pub := &fakePublisher{}
	cycle := &Cycle{Orchestrator: newOrchestrator(t, src), Publisher: pub}
	a.Empty(cycle.Diagnostic(context.Background()))

	ok := "http://minio:9000/bucket/20250323151500.mentions.CSV"
	r.NoError(cycle.Process(context.Background(), types.SchemaMention, ok))

	missing := "/data/20250323153000.mentions.CSV"
	src.err = types.FileAccessError(missing, errors.New("boom"), "could not open file")
	r.Error(cycle.Process(context.Background(), types.SchemaMention, missing))

	report, isMap := cycle.Diagnostic(context.Background()).(map[string]CycleStats)
	r.True(isMap)
	r.Contains(report, "mention")
	stats := report["mention"]
	a.Equal(int64(2), stats.Cycles)
	a.Equal(int64(1), stats.Failures)
	a.Equal(int64(2), stats.Records)
	a.Equal(missing, stats.LastLocation)
	a.Empty(stats.LastBatch)
	a.Contains(stats.LastError, "boom")
	a.False(stats.LastFinished.IsZero())
}
