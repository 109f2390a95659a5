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

// Package batchid derives the correlation token that groups the
// records read from one export file.
package batchid

import (
	"net/url"
	"strings"
)

// FromLocation returns the leading dot-delimited segment of the file
// name at the end of the location. The location may be a filesystem
// path or an object-storage URL. The boolean result is false if the
// location does not end in a usable file name.
func FromLocation(location string) (string, bool) {
	path := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	}
	name := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		name = path[idx+1:]
	}
	id, _, _ := strings.Cut(name, ".")
	if id == "" {
		return "", false
	}
	return id, true
}
