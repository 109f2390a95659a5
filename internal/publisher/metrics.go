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
	"github.com/eventmosaic/em-adapter/internal/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publisher_messages_total",
		Help: "the number of records published",
	}, metrics.TopicLabels)
	errorsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publisher_errors_total",
		Help: "the number of records that could not be published",
	}, metrics.TopicLabels)
)
