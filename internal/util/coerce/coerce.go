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

// Package coerce converts the cells of a delimited row into typed,
// optional values. A cell that is missing, blank, or malformed yields
// nil; the functions in this package never fail.
package coerce

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A Row holds the cells of a single input line.
type Row []string

// String returns the trimmed cell at the index, or nil if the cell is
// absent or blank.
func String(row Row, idx int) *string {
	s, ok := cell(row, idx)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the cell as a 32-bit signed integer.
func Int(row Row, idx int) *int {
	return convert(row, idx, "int", func(s string) (int, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		return int(v), err
	})
}

// Int64 returns the cell as a 64-bit signed integer.
func Int64(row Row, idx int) *int64 {
	return convert(row, idx, "int64", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Float returns the cell as a float64. NaN and infinities are not
// valid feed values and are rejected.
func Float(row Row, idx int) *float64 {
	return convert(row, idx, "float", func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.Errorf("non-finite value %q", s)
		}
		return v, nil
	})
}

// cell returns the trimmed value at idx and whether it is present.
func cell(row Row, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	s := strings.TrimSpace(row[idx])
	return s, s != ""
}

func convert[T any](row Row, idx int, kind string, fn func(string) (T, error)) *T {
	s, ok := cell(row, idx)
	if !ok {
		return nil
	}
	v, err := fn(s)
	if err != nil {
		failureCount.WithLabelValues(kind).Inc()
		log.WithError(err).WithFields(log.Fields{
			"column": idx,
			"kind":   kind,
		}).Warn("could not convert value; using null")
		return nil
	}
	return &v
}
