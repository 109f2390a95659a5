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

// Column positions in the mention export.
const (
	mnGlobalEventID = iota
	mnEventTimeDate
	mnMentionTimeDate
	mnMentionType
	mnMentionSourceName
	mnMentionIdentifier
	mnSentenceID
	mnActor1CharOffset
	mnActor2CharOffset
	mnActionCharOffset
	mnInRawText
	mnConfidence
	mnMentionDocLen
	mnMentionDocTone
	mnMentionDocTranslationInfo

	// MentionColumns is the number of columns in a mention row.
	MentionColumns
)

// MentionParser reads the mention export.
type MentionParser struct {
	rows rowParser[*types.MentionRecord]
}

var _ types.Parser = (*MentionParser)(nil)

// NewMentionParser constructs a MentionParser that accepts lines of up
// to maxLineSize bytes.
func NewMentionParser(maxLineSize int) *MentionParser {
	return &MentionParser{rows: rowParser[*types.MentionRecord]{
		build:       buildMention,
		maxLineSize: maxLineSize,
		schema:      types.SchemaMention,
	}}
}

// Parse implements [types.Parser].
func (p *MentionParser) Parse(
	ctx context.Context, r io.Reader, enc encoding.Encoding,
) ([]types.Record, error) {
	mentions, err := p.ParseMentions(ctx, r, enc)
	if err != nil {
		return nil, err
	}
	return asRecords(mentions), nil
}

// ParseMentions is a typed variant of Parse.
func (p *MentionParser) ParseMentions(
	ctx context.Context, r io.Reader, enc encoding.Encoding,
) ([]*types.MentionRecord, error) {
	return p.rows.parse(ctx, r, enc)
}

// Schema implements [types.Parser].
func (p *MentionParser) Schema() types.Schema { return types.SchemaMention }

func buildMention(row coerce.Row) (*types.MentionRecord, bool) {
	id := coerce.Int64(row, mnGlobalEventID)
	if id == nil {
		return nil, false
	}
	return &types.MentionRecord{
		GlobalEventID:             *id,
		EventTimeDate:             coerce.Int64(row, mnEventTimeDate),
		MentionTimeDate:           coerce.Int64(row, mnMentionTimeDate),
		MentionType:               coerce.Int(row, mnMentionType),
		MentionSourceName:         coerce.String(row, mnMentionSourceName),
		MentionIdentifier:         coerce.String(row, mnMentionIdentifier),
		SentenceID:                coerce.Int(row, mnSentenceID),
		Actor1CharOffset:          coerce.Int(row, mnActor1CharOffset),
		Actor2CharOffset:          coerce.Int(row, mnActor2CharOffset),
		ActionCharOffset:          coerce.Int(row, mnActionCharOffset),
		InRawText:                 coerce.Int(row, mnInRawText),
		Confidence:                coerce.Int(row, mnConfidence),
		MentionDocLen:             coerce.Int(row, mnMentionDocLen),
		MentionDocTone:            coerce.Float(row, mnMentionDocTone),
		MentionDocTranslationInfo: coerce.String(row, mnMentionDocTranslationInfo),
	}, true
}
