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

// Package metrics contains shared helpers for Prometheus collectors.
package metrics

import (
	"math"
	"time"
)

const (
	kindLabel     = "kind"
	outcomeLabel  = "outcome"
	providerLabel = "provider"
	schemaLabel   = "schema"
	topicLabel    = "topic"
)

// Outcome label values.
const (
	OutcomeFailure = "failure"
	OutcomeSuccess = "success"
)

var (
	// LatencyBuckets is a default collection of histogram buckets
	// for latency metrics. The values in this slice assume that the
	// metric's base units are measured in seconds.
	LatencyBuckets = Buckets(time.Millisecond.Seconds(), time.Minute.Seconds())
	// ProviderLabels are applied to file-source metrics.
	ProviderLabels = []string{providerLabel}
	// SchemaLabels are applied to per-schema vector metrics.
	SchemaLabels = []string{schemaLabel}
	// SchemaOutcomeLabels add the result of an operation to SchemaLabels.
	SchemaOutcomeLabels = []string{schemaLabel, outcomeLabel}
	// TopicLabels are applied to Kafka topic metrics.
	TopicLabels = []string{topicLabel}
	// TopicKindLabels add a failure kind to TopicLabels.
	TopicKindLabels = []string{topicLabel, kindLabel}
	// TopicOutcomeLabels add the result of an operation to TopicLabels.
	TopicOutcomeLabels = []string{topicLabel, outcomeLabel}
)

// Buckets computes a linear-within-a-decade series of histogram
// buckets between base and max.
func Buckets(base, max float64) []float64 {
	var ret []float64
	for {
		for i := 0; i < 9; i++ {
			// next = i*base + base
			next := math.FMA(float64(i), base, base)
			if next > max {
				return ret
			}
			// Round to three decimal places to avoid awkward mantissas.
			next = math.Round(next*1000) / 1000
			ret = append(ret, next)
		}
		base *= 10
	}
}

// Outcome returns the outcome label value for an error.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
