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
	"context"
	"io"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/coerce"
	"golang.org/x/text/encoding"
)

// Column positions in the event export.
const (
	evGlobalEventID = iota
	evDay
	evMonthYear
	evYear
	evFractionDate
	evActor1Code
	evActor1Name
	evActor1CountryCode
	evActor1KnownGroupCode
	evActor1EthnicCode
	evActor1Religion1Code
	evActor1Religion2Code
	evActor1Type1Code
	evActor1Type2Code
	evActor1Type3Code
	evActor2Code
	evActor2Name
	evActor2CountryCode
	evActor2KnownGroupCode
	evActor2EthnicCode
	evActor2Religion1Code
	evActor2Religion2Code
	evActor2Type1Code
	evActor2Type2Code
	evActor2Type3Code
	evIsRootEvent
	evEventCode
	evEventBaseCode
	evEventRootCode
	evQuadClass
	evGoldsteinScale
	evNumMentions
	evNumSources
	evNumArticles
	evAvgTone
	evActor1GeoType
	evActor1GeoFullName
	evActor1GeoCountryCode
	evActor1GeoAdm1Code
	evActor1GeoAdm2Code
	evActor1GeoLat
	evActor1GeoLong
	evActor1GeoFeatureID
	evActor2GeoType
	evActor2GeoFullName
	evActor2GeoCountryCode
	evActor2GeoAdm1Code
	evActor2GeoAdm2Code
	evActor2GeoLat
	evActor2GeoLong
	evActor2GeoFeatureID
	evActionGeoType
	evActionGeoFullName
	evActionGeoCountryCode
	evActionGeoAdm1Code
	evActionGeoAdm2Code
	evActionGeoLat
	evActionGeoLong
	evActionGeoFeatureID
	evDateAdded
	evSourceURL

	// EventColumns is the number of columns in an event row.
	EventColumns
)

// EventParser reads the event export.
type EventParser struct {
	rows rowParser[*types.EventRecord]
}

var _ types.Parser = (*EventParser)(nil)

// NewEventParser constructs an EventParser that accepts lines of up to
// maxLineSize bytes.
func NewEventParser(maxLineSize int) *EventParser {
	return &EventParser{rows: rowParser[*types.EventRecord]{
		build:       buildEvent,
		maxLineSize: maxLineSize,
		schema:      types.SchemaEvent,
	}}
}

// Parse implements [types.Parser].
func (p *EventParser) Parse(
	ctx context.Context, r io.Reader, enc encoding.Encoding,
) ([]types.Record, error) {
	events, err := p.ParseEvents(ctx, r, enc)
	if err != nil {
		return nil, err
	}
	return asRecords(events), nil
}

// ParseEvents is a typed variant of Parse.
func (p *EventParser) ParseEvents(
	ctx context.Context, r io.Reader, enc encoding.Encoding,
) ([]*types.EventRecord, error) {
	return p.rows.parse(ctx, r, enc)
}

// Schema implements [types.Parser].
func (p *EventParser) Schema() types.Schema { return types.SchemaEvent }

func buildEvent(row coerce.Row) (*types.EventRecord, bool) {
	id := coerce.Int64(row, evGlobalEventID)
	if id == nil {
		return nil, false
	}
	return &types.EventRecord{
		GlobalEventID: *id,
		Day:           coerce.Int(row, evDay),
		MonthYear:     coerce.Int(row, evMonthYear),
		Year:          coerce.Int(row, evYear),
		FractionDate:  coerce.Float(row, evFractionDate),

		Actor1Code:           coerce.String(row, evActor1Code),
		Actor1Name:           coerce.String(row, evActor1Name),
		Actor1CountryCode:    coerce.String(row, evActor1CountryCode),
		Actor1KnownGroupCode: coerce.String(row, evActor1KnownGroupCode),
		Actor1EthnicCode:     coerce.String(row, evActor1EthnicCode),
		Actor1Religion1Code:  coerce.String(row, evActor1Religion1Code),
		Actor1Religion2Code:  coerce.String(row, evActor1Religion2Code),
		Actor1Type1Code:      coerce.String(row, evActor1Type1Code),
		Actor1Type2Code:      coerce.String(row, evActor1Type2Code),
		Actor1Type3Code:      coerce.String(row, evActor1Type3Code),

		Actor2Code:           coerce.String(row, evActor2Code),
		Actor2Name:           coerce.String(row, evActor2Name),
		Actor2CountryCode:    coerce.String(row, evActor2CountryCode),
		Actor2KnownGroupCode: coerce.String(row, evActor2KnownGroupCode),
		Actor2EthnicCode:     coerce.String(row, evActor2EthnicCode),
		Actor2Religion1Code:  coerce.String(row, evActor2Religion1Code),
		Actor2Religion2Code:  coerce.String(row, evActor2Religion2Code),
		Actor2Type1Code:      coerce.String(row, evActor2Type1Code),
		Actor2Type2Code:      coerce.String(row, evActor2Type2Code),
		Actor2Type3Code:      coerce.String(row, evActor2Type3Code),

		IsRootEvent:    coerce.Int(row, evIsRootEvent),
		EventCode:      coerce.String(row, evEventCode),
		EventBaseCode:  coerce.String(row, evEventBaseCode),
		EventRootCode:  coerce.String(row, evEventRootCode),
		QuadClass:      coerce.Int(row, evQuadClass),
		GoldsteinScale: coerce.Float(row, evGoldsteinScale),
		NumMentions:    coerce.Int(row, evNumMentions),
		NumSources:     coerce.Int(row, evNumSources),
		NumArticles:    coerce.Int(row, evNumArticles),
		AvgTone:        coerce.Float(row, evAvgTone),

		Actor1GeoType:        coerce.Int(row, evActor1GeoType),
		Actor1GeoFullName:    coerce.String(row, evActor1GeoFullName),
		Actor1GeoCountryCode: coerce.String(row, evActor1GeoCountryCode),
		Actor1GeoAdm1Code:    coerce.String(row, evActor1GeoAdm1Code),
		Actor1GeoAdm2Code:    coerce.String(row, evActor1GeoAdm2Code),
		Actor1GeoLat:         coerce.Float(row, evActor1GeoLat),
		Actor1GeoLong:        coerce.Float(row, evActor1GeoLong),
		Actor1GeoFeatureID:   coerce.String(row, evActor1GeoFeatureID),

		Actor2GeoType:        coerce.Int(row, evActor2GeoType),
		Actor2GeoFullName:    coerce.String(row, evActor2GeoFullName),
		Actor2GeoCountryCode: coerce.String(row, evActor2GeoCountryCode),
		Actor2GeoAdm1Code:    coerce.String(row, evActor2GeoAdm1Code),
		Actor2GeoAdm2Code:    coerce.String(row, evActor2GeoAdm2Code),
		Actor2GeoLat:         coerce.Float(row, evActor2GeoLat),
		Actor2GeoLong:        coerce.Float(row, evActor2GeoLong),
		Actor2GeoFeatureID:   coerce.String(row, evActor2GeoFeatureID),

		ActionGeoType:        coerce.Int(row, evActionGeoType),
		ActionGeoFullName:    coerce.String(row, evActionGeoFullName),
		ActionGeoCountryCode: coerce.String(row, evActionGeoCountryCode),
		ActionGeoAdm1Code:    coerce.String(row, evActionGeoAdm1Code),
		ActionGeoAdm2Code:    coerce.String(row, evActionGeoAdm2Code),
		ActionGeoLat:         coerce.Float(row, evActionGeoLat),
		ActionGeoLong:        coerce.Float(row, evActionGeoLong),
		ActionGeoFeatureID:   coerce.String(row, evActionGeoFeatureID),

		DateAdded: coerce.Int64(row, evDateAdded),
		SourceURL: coerce.String(row, evSourceURL),
	}, true
}
