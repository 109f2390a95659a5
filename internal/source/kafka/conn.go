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
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Conn owns the consumer group membership. It receives file
// notifications and hands them to the Handler.
type Conn struct {
	// The connector configuration.
	config *Config
	// The group used when connecting to the broker.
	group sarama.ConsumerGroup
	// The handler that processes the notifications.
	handler sarama.ConsumerGroupHandler
}

// Start joins the consumer group and consumes from the inbound topics
// until the context is stopped. If more than one process is started,
// the partitions are allocated to each process based on the chosen
// rebalance strategy.
func (c *Conn) Start(ctx *stopper.Context) error {
	if c.group == nil {
		group, err := sarama.NewConsumerGroup(c.config.Brokers, c.config.Group, c.config.saramaConfig)
		if err != nil {
			return errors.Wrap(err, "error creating consumer group client")
		}
		c.group = group
	}

	// Closing the group interrupts a blocked Consume call.
	ctx.Go(func(ctx *stopper.Context) error {
		<-ctx.Stopping()
		if err := c.group.Close(); err != nil {
			log.WithError(err).Warn("could not close consumer group")
		}
		return nil
	})

	ctx.Go(func(ctx *stopper.Context) error {
		c.consume(ctx)
		return nil
	})
	return nil
}

// consume is the main loop. A session that ends cleanly, as it does
// on every rebalance, is re-joined immediately; a session that fails is
// re-joined after an exponential delay.
func (c *Conn) consume(ctx *stopper.Context) {
	topics := c.config.Topics()
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0
	for !ctx.IsStopping() {
		err := c.group.Consume(ctx, topics, c.handler)
		switch {
		case err == nil:
			bo.Reset()
			continue
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return
		}
		wait := bo.NextBackOff()
		rejoinCount.Inc()
		log.WithError(err).WithField("delay", wait).Warn("error while consuming notifications; will retry")
		select {
		case <-ctx.Stopping():
			return
		case <-time.After(wait):
		}
	}
}
