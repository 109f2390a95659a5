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

// Package kafka consumes file notifications from a Kafka cluster and
// runs an ingestion cycle for each announced file.
package kafka

import (
	"github.com/eventmosaic/em-adapter/internal/util/diag"
	"github.com/eventmosaic/em-adapter/internal/util/stdlogical"
	"github.com/pkg/errors"
)

// Kafka is a running notification consumer.
type Kafka struct {
	Conn        *Conn
	Diagnostics *diag.Diagnostics
	Handler     *Handler
}

var (
	_ stdlogical.HasDiagnostics = (*Kafka)(nil)
	_ stdlogical.HasReadiness   = (*Kafka)(nil)
)

// GetDiagnostics implements [stdlogical.HasDiagnostics].
func (k *Kafka) GetDiagnostics() *diag.Diagnostics {
	return k.Diagnostics
}

// Ready implements [stdlogical.HasReadiness]. The consumer is ready
// once it has joined the consumer group.
func (k *Kafka) Ready() error {
	if !k.Handler.Active() {
		return errors.New("no active consumer group session")
	}
	return nil
}
