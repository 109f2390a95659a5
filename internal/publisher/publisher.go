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

// Package publisher emits parsed records to Kafka, one message per
// record.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Producer is the subset of [sarama.SyncProducer] that is used to send
// messages.
type Producer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
}

var _ Producer = (sarama.SyncProducer)(nil)

// SendError reports a record that could not be published.
type SendError struct {
	Topic string
	Key   string
	Err   error
}

// Error implements error.
func (e *SendError) Error() string {
	return fmt.Sprintf("could not publish record %s to %s: %v", e.Key, e.Topic, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SendError) Unwrap() error { return e.Err }

// Publisher sends records to the topic for their schema. It is safe
// for concurrent use if the Producer is.
type Publisher struct {
	config   *Config
	producer Producer
}

var _ types.Publisher = (*Publisher)(nil)

// New constructs a Publisher. The configuration must have been
// preflighted.
func New(config *Config, producer Producer) *Publisher {
	return &Publisher{config: config, producer: producer}
}

// Publish implements [types.Publisher]. Records are sent in order, each
// keyed by its identifier. If hasBatchID is set, every message carries
// the batch identifier in a header. A record that cannot be sent does
// not prevent the others from being sent; one error is returned for
// each such record. There are no retries at this level.
func (p *Publisher) Publish(
	ctx context.Context,
	schema types.Schema,
	records []types.Record,
	batchID string,
	hasBatchID bool,
) []error {
	if len(records) == 0 {
		return nil
	}
	topic, ok := p.config.Topic(schema)
	if !ok {
		err := errors.Errorf("no outbound topic for schema %s", schema)
		ret := make([]error, len(records))
		for i, rec := range records {
			ret[i] = &SendError{Key: rec.Key(), Err: err}
		}
		return ret
	}

	var headers []sarama.RecordHeader
	if hasBatchID {
		headers = []sarama.RecordHeader{{
			Key:   []byte(p.config.BatchHeader),
			Value: []byte(batchID),
		}}
	}

	var ret []error
	for _, rec := range records {
		if err := p.send(ctx, topic, rec, headers); err != nil {
			errorsCount.WithLabelValues(topic).Inc()
			ret = append(ret, &SendError{Topic: topic, Key: rec.Key(), Err: err})
			continue
		}
		messagesCount.WithLabelValues(topic).Inc()
	}
	log.WithFields(log.Fields{
		"failed":  len(ret),
		"records": len(records),
		"topic":   topic,
	}).Debug("published records")
	return ret
}

func (p *Publisher) send(
	ctx context.Context, topic string, rec types.Record, headers []sarama.RecordHeader,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "could not encode record")
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(rec.Key()),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}
	log.Tracef("published %s to %s@%d:%d", rec.Key(), topic, partition, offset)
	return nil
}
