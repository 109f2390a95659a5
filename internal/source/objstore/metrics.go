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

package objstore

import (
	"github.com/eventmosaic/em-adapter/internal/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filesource_fetch_seconds",
		Help:    "the time spent in opening a file or object",
		Buckets: metrics.LatencyBuckets,
	}, metrics.ProviderLabels)
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filesource_errors_total",
		Help: "the number of files or objects that could not be opened",
	}, []string{"provider", "kind"})
)
