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

package parser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsOversized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parser_rows_oversized_total",
		Help: "the number of rows dropped for exceeding the maximum line size",
	}, []string{"schema"})
	rowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parser_rows_parsed_total",
		Help: "the number of rows converted into records",
	}, []string{"schema"})
	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parser_rows_skipped_total",
		Help: "the number of rows dropped for lack of a valid identifier",
	}, []string{"schema"})
)
