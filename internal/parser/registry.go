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
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
)

// Registry maps each supported schema to its parser. It is immutable
// once constructed and safe for concurrent use.
type Registry struct {
	parsers map[types.Schema]types.Parser
}

// NewRegistry constructs a Registry from the given parsers. It is an
// error to register more than one parser for a schema.
func NewRegistry(parsers ...types.Parser) (*Registry, error) {
	ret := &Registry{parsers: make(map[types.Schema]types.Parser, len(parsers))}
	for _, p := range parsers {
		schema := p.Schema()
		if schema == types.SchemaUnknown {
			return nil, errors.Errorf("parser %T does not declare a schema", p)
		}
		if _, dup := ret.parsers[schema]; dup {
			return nil, errors.Errorf("duplicate parser for schema %s", schema)
		}
		ret.parsers[schema] = p
	}
	return ret, nil
}

// DefaultRegistry returns a Registry containing the event and mention
// parsers.
func DefaultRegistry(cfg *Config) *Registry {
	ret, err := NewRegistry(
		NewEventParser(cfg.MaxLineSize),
		NewMentionParser(cfg.MaxLineSize),
	)
	if err != nil {
		// The parsers above declare distinct schemas.
		panic(err)
	}
	return ret
}

// Lookup returns the parser for the schema. A missing parser is
// reported as [types.ErrParserNotFound].
func (r *Registry) Lookup(schema types.Schema) (types.Parser, error) {
	if p, ok := r.parsers[schema]; ok {
		return p, nil
	}
	return nil, types.ParserNotFoundError(schema)
}

// Schemas returns the schemas known to the Registry, in declaration
// order.
func (r *Registry) Schemas() []types.Schema {
	var ret []types.Schema
	for _, s := range types.Schemas {
		if _, ok := r.parsers[s]; ok {
			ret = append(ret, s)
		}
	}
	return ret
}
