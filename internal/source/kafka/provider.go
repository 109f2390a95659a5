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

	"github.com/IBM/sarama"
	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/eventmosaic/em-adapter/internal/ingest"
	"github.com/eventmosaic/em-adapter/internal/parser"
	"github.com/eventmosaic/em-adapter/internal/publisher"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/diag"
	"github.com/google/wire"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Set is used by Wire.
var Set = wire.NewSet(
	ProvideConn,
	ProvideCycle,
	ProvideDiagnostics,
	ProvideEagerConfig,
	ProvideHandler,
	ProvideOrchestrator,
	ProvideProducer,
	ProvidePublisher,
	ProvideRegistry,
	wire.Bind(new(Processor), new(*ingest.Cycle)),
	wire.Bind(new(types.Publisher), new(*publisher.Publisher)),
)

// ProvideConn is called by Wire to construct the consumer group
// connection. The connection is started before it is returned.
func ProvideConn(ctx *stopper.Context, config *EagerConfig, handler *Handler) (*Conn, error) {
	ret := &Conn{
		config:  (*Config)(config),
		handler: handler,
	}
	return ret, ret.Start(ctx)
}

// ProvideCycle is called by Wire.
func ProvideCycle(orc *ingest.Orchestrator, pub types.Publisher) *ingest.Cycle {
	return &ingest.Cycle{Orchestrator: orc, Publisher: pub}
}

// ProvideDiagnostics is called by Wire to construct the diagnostics
// registry, with sections for the configuration, the consumer group and
// the ingestion cycles.
func ProvideDiagnostics(
	ctx *stopper.Context, config *EagerConfig, handler *Handler, cycle *ingest.Cycle,
) (*diag.Diagnostics, error) {
	ret := diag.New(ctx)
	if err := ret.Register("config", (*Config)(config)); err != nil {
		return nil, err
	}
	if err := ret.Register("consumer", diag.DiagnosticFn(func(context.Context) any {
		return map[string]any{"active": handler.Active()}
	})); err != nil {
		return nil, err
	}
	if err := ret.Register("ingest", cycle); err != nil {
		return nil, err
	}
	return ret, nil
}

// ProvideEagerConfig is a hack to move the evaluation of the
// configuration to the start of the injector, so that every other
// provider sees preflighted values.
func ProvideEagerConfig(ctx context.Context, cfg *Config) (*EagerConfig, error) {
	if err := cfg.Preflight(ctx); err != nil {
		return nil, err
	}
	return (*EagerConfig)(cfg), nil
}

// ProvideHandler is called by Wire.
func ProvideHandler(config *EagerConfig, processor Processor) *Handler {
	return NewHandler(processor, (*Config)(config).Schemas())
}

// ProvideOrchestrator is called by Wire.
func ProvideOrchestrator(
	config *parser.Config, registry *parser.Registry, source types.FileSource,
) *ingest.Orchestrator {
	return &ingest.Orchestrator{
		Encoding: config.Encoding(),
		Parsers:  registry,
		Source:   source,
	}
}

// ProvideProducer is called by Wire to construct the outbound
// producer. It shares the sarama configuration of the consumer group
// and is closed once the context has stopped.
func ProvideProducer(ctx *stopper.Context, config *EagerConfig) (sarama.SyncProducer, error) {
	ret, err := sarama.NewSyncProducer(config.Brokers, config.saramaConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error creating producer")
	}
	ctx.Defer(func() {
		if err := ret.Close(); err != nil {
			log.WithError(err).Warn("could not close producer")
		}
	})
	return ret, nil
}

// ProvidePublisher is called by Wire.
func ProvidePublisher(config *publisher.Config, producer sarama.SyncProducer) *publisher.Publisher {
	return publisher.New(config, producer)
}

// ProvideRegistry is called by Wire.
func ProvideRegistry(config *parser.Config) *parser.Registry {
	return parser.DefaultRegistry(config)
}
