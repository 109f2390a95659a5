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

import "strconv"

// An EventRecord describes one coded action from the event export.
// Every attribute other than GlobalEventID is optional because the
// upstream feed is frequently incomplete; a nil pointer is a missing
// value and is never substituted with a zero.
type EventRecord struct {
	GlobalEventID int64    `json:"globalEventId"`
	Day           *int     `json:"day"`          // YYYYMMDD
	MonthYear     *int     `json:"monthYear"`    // YYYYMM
	Year          *int     `json:"year"`         // YYYY
	FractionDate  *float64 `json:"fractionDate"` // YYYY.FFFF

	Actor1Code           *string `json:"actor1Code"`
	Actor1Name           *string `json:"actor1Name"`
	Actor1CountryCode    *string `json:"actor1CountryCode"`
	Actor1KnownGroupCode *string `json:"actor1KnownGroupCode"`
	Actor1EthnicCode     *string `json:"actor1EthnicCode"`
	Actor1Religion1Code  *string `json:"actor1Religion1Code"`
	Actor1Religion2Code  *string `json:"actor1Religion2Code"`
	Actor1Type1Code      *string `json:"actor1Type1Code"`
	Actor1Type2Code      *string `json:"actor1Type2Code"`
	Actor1Type3Code      *string `json:"actor1Type3Code"`

	Actor2Code           *string `json:"actor2Code"`
	Actor2Name           *string `json:"actor2Name"`
	Actor2CountryCode    *string `json:"actor2CountryCode"`
	Actor2KnownGroupCode *string `json:"actor2KnownGroupCode"`
	Actor2EthnicCode     *string `json:"actor2EthnicCode"`
	Actor2Religion1Code  *string `json:"actor2Religion1Code"`
	Actor2Religion2Code  *string `json:"actor2Religion2Code"`
	Actor2Type1Code      *string `json:"actor2Type1Code"`
	Actor2Type2Code      *string `json:"actor2Type2Code"`
	Actor2Type3Code      *string `json:"actor2Type3Code"`

	IsRootEvent    *int     `json:"isRootEvent"`
	EventCode      *string  `json:"eventCode"`
	EventBaseCode  *string  `json:"eventBaseCode"`
	EventRootCode  *string  `json:"eventRootCode"`
	QuadClass      *int     `json:"quadClass"`      // 1-4
	GoldsteinScale *float64 `json:"goldsteinScale"` // -10 to +10
	NumMentions    *int     `json:"numMentions"`
	NumSources     *int     `json:"numSources"`
	NumArticles    *int     `json:"numArticles"`
	AvgTone        *float64 `json:"avgTone"` // -100 to +100

	Actor1GeoType        *int     `json:"actor1GeoType"`
	Actor1GeoFullName    *string  `json:"actor1GeoFullName"`
	Actor1GeoCountryCode *string  `json:"actor1GeoCountryCode"`
	Actor1GeoAdm1Code    *string  `json:"actor1GeoAdm1Code"`
	Actor1GeoAdm2Code    *string  `json:"actor1GeoAdm2Code"`
	Actor1GeoLat         *float64 `json:"actor1GeoLat"`
	Actor1GeoLong        *float64 `json:"actor1GeoLong"`
	Actor1GeoFeatureID   *string  `json:"actor1GeoFeatureId"`

	Actor2GeoType        *int     `json:"actor2GeoType"`
	Actor2GeoFullName    *string  `json:"actor2GeoFullName"`
	Actor2GeoCountryCode *string  `json:"actor2GeoCountryCode"`
	Actor2GeoAdm1Code    *string  `json:"actor2GeoAdm1Code"`
	Actor2GeoAdm2Code    *string  `json:"actor2GeoAdm2Code"`
	Actor2GeoLat         *float64 `json:"actor2GeoLat"`
	Actor2GeoLong        *float64 `json:"actor2GeoLong"`
	Actor2GeoFeatureID   *string  `json:"actor2GeoFeatureId"`

	ActionGeoType        *int     `json:"actionGeoType"`
	ActionGeoFullName    *string  `json:"actionGeoFullName"`
	ActionGeoCountryCode *string  `json:"actionGeoCountryCode"`
	ActionGeoAdm1Code    *string  `json:"actionGeoAdm1Code"`
	ActionGeoAdm2Code    *string  `json:"actionGeoAdm2Code"`
	ActionGeoLat         *float64 `json:"actionGeoLat"`
	ActionGeoLong        *float64 `json:"actionGeoLong"`
	ActionGeoFeatureID   *string  `json:"actionGeoFeatureId"`

	DateAdded *int64  `json:"dateAdded"` // YYYYMMDDHHMMSS
	SourceURL *string `json:"sourceUrl"`
}

var _ Record = (*EventRecord)(nil)

// Key implements [Record].
func (e *EventRecord) Key() string { return strconv.FormatInt(e.GlobalEventID, 10) }

// Schema implements [Record].
func (e *EventRecord) Schema() Schema { return SchemaEvent }
