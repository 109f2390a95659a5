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

package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Schema identifies one of the fixed-column export formats.
type Schema int

// The supported schemas. The zero value is deliberately invalid so that
// an uninitialized Schema never selects a parser.
const (
	SchemaUnknown Schema = iota
	SchemaEvent
	SchemaMention
)

// Schemas lists every supported schema.
var Schemas = []Schema{SchemaEvent, SchemaMention}

// ParseSchema returns the Schema with the given name.
func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "event":
		return SchemaEvent, nil
	case "mention":
		return SchemaMention, nil
	default:
		return SchemaUnknown, errors.Errorf("unknown schema %q", name)
	}
}

func (s Schema) String() string {
	switch s {
	case SchemaEvent:
		return "event"
	case SchemaMention:
		return "mention"
	default:
		return "unknown"
	}
}
