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
	"github.com/eventmosaic/em-adapter/internal/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rejoinCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kafka_session_rejoins_total",
		Help: "the number of times the consumer group session was re-joined after an error",
	})
	triggerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_trigger_failures_total",
		Help: "the number of file notifications that could not be processed, by failure kind",
	}, metrics.TopicKindLabels)
	triggerCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_triggers_total",
		Help: "the number of file notifications consumed, by outcome",
	}, metrics.TopicOutcomeLabels)
)
