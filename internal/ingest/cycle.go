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
	"sync"
	"time"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/batchid"
	"github.com/eventmosaic/em-adapter/internal/util/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Cycle performs one ingestion-to-publish pass for a single file.
// Cycles share only their injected collaborators and may run
// concurrently.
type Cycle struct {
	Orchestrator *Orchestrator
	Publisher    types.Publisher

	mu struct {
		sync.Mutex
		stats map[types.Schema]*CycleStats
	}
}

// CycleStats summarizes the cycles run for one schema.
type CycleStats struct {
	Cycles       int64     `json:"cycles"`
	Failures     int64     `json:"failures"`
	Records      int64     `json:"records"`
	LastBatch    string    `json:"lastBatch,omitempty"`
	LastError    string    `json:"lastError,omitempty"`
	LastFinished time.Time `json:"lastFinished"`
	LastLocation string    `json:"lastLocation"`
}

// Process reads the file at the location and publishes its records,
// tagged with the batch identifier derived from the file name. Each
// record that could not be published is logged; the first such
// failure is returned.
func (c *Cycle) Process(ctx context.Context, schema types.Schema, location string) error {
	start := time.Now()
	logger := log.WithFields(log.Fields{
		"cycle":    uuid.NewString(),
		"location": location,
		"schema":   schema.String(),
	})
	logger.Debug("starting cycle")

	count, batchID, err := c.process(ctx, logger, schema, location)
	cycleDuration.WithLabelValues(schema.String(), metrics.Outcome(err)).
		Observe(time.Since(start).Seconds())
	c.record(schema, location, batchID, count, err)
	if err != nil {
		logger.WithError(err).WithField("kind", types.KindOf(err)).Warn("cycle failed")
	}
	return err
}

// Diagnostic implements [diag.Diagnostic], reporting a summary of the
// cycles run so far, keyed by schema name.
func (c *Cycle) Diagnostic(context.Context) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := make(map[string]CycleStats, len(c.mu.stats))
	for schema, stats := range c.mu.stats {
		ret[schema.String()] = *stats
	}
	return ret
}

func (c *Cycle) record(schema types.Schema, location, batchID string, count int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mu.stats == nil {
		c.mu.stats = make(map[types.Schema]*CycleStats)
	}
	stats, ok := c.mu.stats[schema]
	if !ok {
		stats = &CycleStats{}
		c.mu.stats[schema] = stats
	}
	stats.Cycles++
	stats.Records += int64(count)
	stats.LastBatch = batchID
	stats.LastFinished = time.Now().UTC()
	stats.LastLocation = location
	stats.LastError = ""
	if err != nil {
		stats.Failures++
		stats.LastError = err.Error()
	}
}

// process returns the number of records read from the file and its
// batch identifier, if any.
func (c *Cycle) process(
	ctx context.Context, logger *log.Entry, schema types.Schema, location string,
) (int, string, error) {
	recs, err := c.Orchestrator.Ingest(ctx, location, schema)
	if err != nil {
		return 0, "", err
	}
	cycleRecords.WithLabelValues(schema.String()).Add(float64(len(recs)))

	batchID, hasBatchID := batchid.FromLocation(location)
	if hasBatchID {
		logger = logger.WithField("batch", batchID)
	} else {
		logger.Warn("no batch identifier in file name; records will not be tagged")
	}

	if len(recs) == 0 {
		logger.Info("file contained no records")
		return 0, batchID, nil
	}

	errs := c.Publisher.Publish(ctx, schema, recs, batchID, hasBatchID)
	for _, err := range errs {
		logger.WithError(err).Warn("could not publish record")
	}
	if len(errs) > 0 {
		return len(recs), batchID, errors.Wrapf(errs[0],
			"%d of %d records could not be published", len(errs), len(recs))
	}
	logger.WithField("records", len(recs)).Info("published file")
	return len(recs), batchID, nil
}
