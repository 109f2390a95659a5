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

// A MentionRecord links one news mention to an event. As with
// EventRecord, only GlobalEventID is mandatory.
type MentionRecord struct {
	GlobalEventID             int64    `json:"globalEventId"`
	EventTimeDate             *int64   `json:"eventTimeDate"`   // YYYYMMDDHHMMSS
	MentionTimeDate           *int64   `json:"mentionTimeDate"` // YYYYMMDDHHMMSS
	MentionType               *int     `json:"mentionType"`     // 1-6
	MentionSourceName         *string  `json:"mentionSourceName"`
	MentionIdentifier         *string  `json:"mentionIdentifier"`
	SentenceID                *int     `json:"sentenceId"`
	Actor1CharOffset          *int     `json:"actor1CharOffset"`
	Actor2CharOffset          *int     `json:"actor2CharOffset"`
	ActionCharOffset          *int     `json:"actionCharOffset"`
	InRawText                 *int     `json:"inRawText"`
	Confidence                *int     `json:"confidence"` // percent
	MentionDocLen             *int     `json:"mentionDocLen"`
	MentionDocTone            *float64 `json:"mentionDocTone"`
	MentionDocTranslationInfo *string  `json:"mentionDocTranslationInfo"`
}

var _ Record = (*MentionRecord)(nil)

// Key implements [Record].
func (m *MentionRecord) Key() string { return strconv.FormatInt(m.GlobalEventID, 10) }

// Schema implements [Record].
func (m *MentionRecord) Schema() Schema { return SchemaMention }
