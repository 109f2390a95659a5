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

package coerce

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	row := Row{"value1", "", "  value3  ", "   "}
	tests := []struct {
		name string
		idx  int
		want *string
	}{
		{"present", 0, ptr("value1")},
		{"empty", 1, nil},
		{"trimmed", 2, ptr("value3")},
		{"blank", 3, nil},
		{"past end", 4, nil},
		{"negative", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(row, tt.idx))
		})
	}
}

func TestInt(t *testing.T) {
	row := Row{"123", "abc", "456", "", "1.5", "2147483648", "-7", "+8"}
	tests := []struct {
		idx  int
		want *int
	}{
		{0, ptr(123)},
		{1, nil},
		{2, ptr(456)},
		{3, nil},
		{4, nil},
		{5, nil}, // Out of 32-bit range.
		{6, ptr(-7)},
		{7, ptr(8)},
		{8, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Int(row, tt.idx), "column %d", tt.idx)
	}
}

func TestInt64(t *testing.T) {
	row := Row{"123456789012345", "not-a-number", "987654321098765", "20250106214500"}
	a := assert.New(t)
	a.Equal(ptr(int64(123456789012345)), Int64(row, 0))
	a.Nil(Int64(row, 1))
	a.Equal(ptr(int64(987654321098765)), Int64(row, 2))
	a.Equal(ptr(int64(20250106214500)), Int64(row, 3))
	a.Nil(Int64(row, 4))
}

func TestFloat(t *testing.T) {
	row := Row{"123.45", "invalid", "-10", "NaN", "+Inf", "1.78571428571429", "1e3"}
	a := assert.New(t)
	a.Equal(ptr(123.45), Float(row, 0))
	a.Nil(Float(row, 1))
	a.Equal(ptr(-10.0), Float(row, 2))
	a.Nil(Float(row, 3))
	a.Nil(Float(row, 4))
	a.Equal(ptr(1.78571428571429), Float(row, 5))
	a.Equal(ptr(1000.0), Float(row, 6))
	a.Nil(Float(row, 7))
}

func TestFailuresAreCounted(t *testing.T) {
	a := assert.New(t)
	before := testutil.ToFloat64(failureCount.WithLabelValues("int64"))
	a.Nil(Int64(Row{"x"}, 0))
	// Absent and blank cells are not conversion failures.
	a.Nil(Int64(Row{""}, 0))
	a.Nil(Int64(Row{}, 3))
	a.Equal(before+1, testutil.ToFloat64(failureCount.WithLabelValues("int64")))
}

func ptr[T any](v T) *T { return &v }
