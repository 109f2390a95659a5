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

package publisher

import (
	"strings"

	"github.com/IBM/sarama"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Defaults for the flags defined in Config.
const (
	DefaultBatchHeader  = "batchId"
	DefaultEventTopic   = "adapter-event"
	DefaultMentionTopic = "adapter-mention"
)

// Config contains the outbound topic configuration.
type Config struct {
	BatchHeader  string // The message header that carries the batch id.
	EventTopic   string
	MentionTopic string
	ProducerAcks string // One of all, local, or none.

	// The following are computed.

	acks sarama.RequiredAcks
}

// Bind adds flags to the set.
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.BatchHeader, "batchHeader", DefaultBatchHeader,
		"the name of the message header that carries the batch identifier")
	f.StringVar(&c.EventTopic, "eventTopicOut", DefaultEventTopic,
		"the topic that event records are published to")
	f.StringVar(&c.MentionTopic, "mentionTopicOut", DefaultMentionTopic,
		"the topic that mention records are published to")
	f.StringVar(&c.ProducerAcks, "producerAcks", "all",
		"the acknowledgement required from the brokers: all, local, or none")
}

// Preflight updates the configuration with sane defaults or returns an
// error if there are missing options for which a default cannot be
// provided.
func (c *Config) Preflight() error {
	if c.BatchHeader == "" {
		c.BatchHeader = DefaultBatchHeader
	}
	if c.EventTopic == "" {
		c.EventTopic = DefaultEventTopic
	}
	if c.MentionTopic == "" {
		c.MentionTopic = DefaultMentionTopic
	}
	if c.EventTopic == c.MentionTopic {
		return errors.Errorf("event and mention records must use different topics: %s", c.EventTopic)
	}
	switch strings.ToLower(c.ProducerAcks) {
	case "", "all":
		c.acks = sarama.WaitForAll
	case "local":
		c.acks = sarama.WaitForLocal
	case "none":
		c.acks = sarama.NoResponse
	default:
		return errors.Errorf("unknown producerAcks value %q", c.ProducerAcks)
	}
	return nil
}

// Apply sets the producer options in a sarama configuration. A
// synchronous producer requires successes to be returned.
func (c *Config) Apply(sc *sarama.Config) {
	sc.Producer.RequiredAcks = c.acks
	sc.Producer.Return.Errors = true
	sc.Producer.Return.Successes = true
}

// Topic returns the outbound topic for the schema.
func (c *Config) Topic(schema types.Schema) (string, bool) {
	switch schema {
	case types.SchemaEvent:
		return c.EventTopic, true
	case types.SchemaMention:
		return c.MentionTopic, true
	default:
		return "", false
	}
}
