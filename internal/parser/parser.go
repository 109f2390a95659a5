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

// Package parser converts tab-delimited export files into typed
// records. Columns are positional; the export format has no reliable
// header row.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/coerce"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const delimiter = "\t"

// A builder converts one row into a record. It returns false if the
// row does not carry a valid identifier.
type builder[T types.Record] func(row coerce.Row) (T, bool)

// rowParser holds the behavior common to all schemas.
type rowParser[T types.Record] struct {
	build       builder[T]
	maxLineSize int
	schema      types.Schema
}

// parse reads the stream, returning the records in row order. A row
// longer than the maximum line size is skipped.
func (p *rowParser[T]) parse(
	ctx context.Context, r io.Reader, enc encoding.Encoding,
) ([]T, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	label := p.schema.String()
	maxLine := p.maxLineSize
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}
	lr := newLineReader(enc.NewDecoder().Reader(r), maxLine)

	var ret []T
	skipped := 0
	for line := 1; ; line++ {
		buf, tooLong, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, types.ParsingError("", errors.WithStack(err),
				fmt.Sprintf("could not read line %d", line))
		}
		if err := ctx.Err(); err != nil {
			return nil, types.ParsingError("", err, "parsing interrupted")
		}
		if tooLong {
			skipped++
			rowsOversized.WithLabelValues(label).Inc()
			log.WithFields(log.Fields{
				"line":        line,
				"maxLineSize": maxLine,
				"schema":      label,
			}).Warn("skipping row longer than the maximum line size")
			continue
		}
		buf = bytes.TrimRight(buf, "\r")
		if len(bytes.TrimSpace(buf)) == 0 {
			continue
		}
		row := coerce.Row(strings.Split(string(buf), delimiter))
		rec, ok := p.build(row)
		if !ok {
			skipped++
			rowsSkipped.WithLabelValues(label).Inc()
			log.WithFields(log.Fields{
				"line":   line,
				"schema": label,
			}).Warn("skipping row with empty or invalid GlobalEventID")
			continue
		}
		ret = append(ret, rec)
	}
	rowsParsed.WithLabelValues(label).Add(float64(len(ret)))
	log.WithFields(log.Fields{
		"records": len(ret),
		"schema":  label,
		"skipped": skipped,
	}).Debug("parsed file")
	return ret, nil
}

// lineReader splits a stream into newline-terminated lines, holding at
// most max bytes of any one line in memory.
type lineReader struct {
	buf []byte
	max int
	rd  *bufio.Reader
}

func newLineReader(r io.Reader, max int) *lineReader {
	return &lineReader{max: max, rd: bufio.NewReader(r)}
}

// next returns the next line without its terminator. The slice is only
// valid until the following call. If the line exceeds the maximum size,
// the rest of it is discarded and tooLong is set. At the end of the
// stream, next returns io.EOF.
func (l *lineReader) next() (line []byte, tooLong bool, err error) {
	l.buf = l.buf[:0]
	read := false
	for {
		chunk, err := l.rd.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		content := bytes.TrimSuffix(chunk, []byte("\n"))
		if !tooLong {
			if len(l.buf)+len(content) > l.max {
				tooLong = true
				l.buf = l.buf[:0]
			} else {
				l.buf = append(l.buf, content...)
			}
		}
		switch {
		case err == nil:
			return l.buf, tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !read {
				return nil, false, io.EOF
			}
			return l.buf, tooLong, nil
		default:
			return nil, false, err
		}
	}
}

// asRecords converts a typed slice to the interface slice used by
// [types.Parser].
func asRecords[T types.Record](in []T) []types.Record {
	ret := make([]types.Record, len(in))
	for i := range in {
		ret[i] = in[i]
	}
	return ret
}
