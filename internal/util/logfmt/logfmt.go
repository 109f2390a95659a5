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

// Package logfmt decorates log entries before they are formatted.
package logfmt

import (
	"fmt"

	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	detailKey   = "detail"
	kindKey     = "kind"
	locationKey = "location"
)

// Wrap adds a workaround for there being no support for automatically
// printing the details of an error to expose the stack trace. This
// formatter adds an extra detail field to log entries that contain an
// ErrorKey. If the error is a classified ingestion failure, its kind
// and file location are also added.
//
// https://github.com/sirupsen/logrus/issues/895
func Wrap(f log.Formatter) log.Formatter {
	return &detailer{f}
}

type detailer struct {
	log.Formatter
}

// Format implements log.Formatter.
func (d *detailer) Format(e *log.Entry) ([]byte, error) {
	messageCount.WithLabelValues(e.Level.String()).Inc()
	if e.Data == nil {
		return d.Formatter.Format(e)
	}
	err, ok := e.Data[log.ErrorKey].(error)
	if !ok {
		return d.Formatter.Format(e)
	}
	// Don't overwrite anywhere there may already be a field.
	setIfAbsent(e.Data, detailKey, fmt.Sprintf("%+v", err))
	if typed := (*types.Error)(nil); errors.As(err, &typed) {
		setIfAbsent(e.Data, kindKey, types.KindOf(typed))
		if typed.Location != "" {
			setIfAbsent(e.Data, locationKey, typed.Location)
		}
	}
	return d.Formatter.Format(e)
}

func setIfAbsent(data log.Fields, key string, value any) {
	if _, existing := data[key]; !existing {
		data[key] = value
	}
}
