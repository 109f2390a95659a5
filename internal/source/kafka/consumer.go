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

package kafka

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/IBM/sarama"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A Processor runs one ingestion cycle for the file at a location.
type Processor interface {
	Process(ctx context.Context, schema types.Schema, location string) error
}

var _ sarama.ConsumerGroupHandler = (*Handler)(nil)

// Handler represents a Sarama consumer group consumer. Each message
// announces one file; the topic that carried the message determines
// the schema of the file.
type Handler struct {
	processor Processor
	schemas   map[string]types.Schema
	sessions  atomic.Int32
}

// NewHandler constructs a Handler that sends each announced file to
// the Processor.
func NewHandler(processor Processor, schemas map[string]types.Schema) *Handler {
	return &Handler{processor: processor, schemas: schemas}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (h *Handler) Setup(session sarama.ConsumerGroupSession) error {
	h.sessions.Add(1)
	log.WithField("claims", session.Claims()).Debug("consumer session started")
	return nil
}

// Active reports whether a consumer group session is in progress.
func (h *Handler) Active() bool {
	return h.sessions.Load() > 0
}

// Cleanup is run at the end of a session, once all ConsumeClaim
// goroutines have exited.
func (h *Handler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.sessions.Add(-1)
	if err := session.Context().Err(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("session terminated with an error")
		return err
	}
	return nil
}

// ConsumeClaim processes new messages for the topic/partition
// specified in the claim. Messages are handled one at a time and are
// marked once their cycle has finished, whether or not it succeeded.
func (h *Handler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	log.Debugf("ConsumeClaim topic=%s partition=%d offset=%d",
		claim.Topic(), claim.Partition(), claim.InitialOffset())
	ctx := session.Context()
	// ConsumeClaim is already called within its own goroutine.
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				log.Debugf("message channel for topic=%s partition=%d was closed",
					claim.Topic(), claim.Partition())
				return nil
			}
			h.handle(ctx, message)
			// An interrupted cycle is left unmarked so that the file
			// is announced again to the next owner of the partition.
			if ctx.Err() != nil {
				return nil
			}
			session.MarkMessage(message, "")
		// Must return when the session ends, otherwise a rebalance
		// will stall. See https://github.com/IBM/sarama/issues/1192
		case <-ctx.Done():
			return nil
		}
	}
}

// handle runs a single cycle. Failures are counted, but are not
// returned, since a file that cannot be ingested now will not succeed
// on an immediate retry. The cycle logs its own failures.
func (h *Handler) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	location := strings.TrimSpace(string(msg.Value))
	logger := log.WithFields(log.Fields{
		"location":  location,
		"offset":    msg.Offset,
		"partition": msg.Partition,
		"topic":     msg.Topic,
	})

	var err error
	if schema, ok := h.schemas[msg.Topic]; ok {
		err = h.processor.Process(ctx, schema, location)
	} else {
		err = errors.Errorf("no schema is associated with topic %s", msg.Topic)
		logger.WithError(err).Warn("ignoring file notification")
	}
	triggerCount.WithLabelValues(msg.Topic, metrics.Outcome(err)).Inc()
	if err != nil {
		kind := types.KindOf(err)
		triggerFailures.WithLabelValues(msg.Topic, kind).Inc()
		logger.WithField("kind", kind).Debug("file notification failed")
		return
	}
	logger.Debug("processed file notification")
}
