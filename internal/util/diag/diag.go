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

// Package diag collects structured diagnostic reports from the running
// components of em-adapter.
package diag

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SectionParam selects a single section of the report in
// [Diagnostics.Handler].
const SectionParam = "section"

// Diagnostic is implemented by components that can describe their
// state. The returned value must be json-serializable.
type Diagnostic interface {
	Diagnostic(context.Context) any
}

// DiagnosticFn adapts a function to [Diagnostic].
type DiagnosticFn func(context.Context) any

// Diagnostic implements Diagnostic.
func (fn DiagnosticFn) Diagnostic(ctx context.Context) any { return fn(ctx) }

// Diagnostics is a registry of named report sections. Sections may be
// evaluated concurrently.
type Diagnostics struct {
	mu struct {
		sync.RWMutex
		sections map[string]Diagnostic
	}
}

// New constructs a Diagnostics with the process-level sections
// already registered. The report is logged when the process receives
// SIGUSR1.
func New(ctx *stopper.Context) *Diagnostics {
	started := time.Now().UTC()
	ret := &Diagnostics{}
	ret.mu.sections = map[string]Diagnostic{
		"build": DiagnosticFn(buildInfo),
		"process": DiagnosticFn(func(context.Context) any {
			return map[string]any{
				"args":       os.Args,
				"goroutines": runtime.NumGoroutine(),
				"started":    started,
				"uptime":     time.Since(started).Round(time.Second).String(),
			}
		}),
	}
	logOnSignal(ctx, ret)
	return ret
}

func buildInfo(context.Context) any {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return map[string]any{
		"go":       bi.GoVersion,
		"module":   bi.Main.Path,
		"settings": settings,
		"version":  bi.Main.Version,
	}
}

// Register adds a named section to the report. Registering the same
// name twice is an error.
func (d *Diagnostics) Register(name string, section Diagnostic) error {
	if section == nil {
		return errors.Errorf("%s: nil diagnostic", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.mu.sections[name]; dup {
		return errors.Errorf("%s already registered", name)
	}
	d.mu.sections[name] = section
	return nil
}

// Unregister removes a section.
func (d *Diagnostics) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.mu.sections, name)
}

// Names returns the registered section names in sorted order.
func (d *Diagnostics) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ret := make([]string, 0, len(d.mu.sections))
	for name := range d.mu.sections {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Section evaluates a single section.
func (d *Diagnostics) Section(ctx context.Context, name string) (any, bool) {
	d.mu.RLock()
	section, ok := d.mu.sections[name]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return section.Diagnostic(ctx), true
}

// Payload evaluates every section.
func (d *Diagnostics) Payload(ctx context.Context) map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ret := make(map[string]any, len(d.mu.sections))
	for name, section := range d.mu.sections {
		ret[name] = section.Diagnostic(ctx)
	}
	return ret
}

// Write encodes the full report as JSON.
func (d *Diagnostics) Write(ctx context.Context, w io.Writer, pretty bool) error {
	return encode(w, d.Payload(ctx), pretty)
}

// Handler serves the report as JSON. A section query parameter limits
// the response to that section.
func (d *Diagnostics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body any
		if name := req.URL.Query().Get(SectionParam); name != "" {
			section, ok := d.Section(req.Context(), name)
			if !ok {
				http.Error(w, "unknown section "+name, http.StatusNotFound)
				return
			}
			body = section
		} else {
			body = d.Payload(req.Context())
		}
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusOK)
		if req.Method == http.MethodHead {
			return
		}
		if err := encode(w, body, true); err != nil {
			log.WithError(err).Warn("could not write diagnostics")
		}
	})
}

// logReport writes one log entry per section.
func (d *Diagnostics) logReport(ctx context.Context) {
	for _, name := range d.Names() {
		section, ok := d.Section(ctx, name)
		if !ok {
			continue
		}
		log.WithFields(log.Fields{
			"section": name,
			"report":  section,
		}).Info("diagnostics")
	}
}

func encode(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if pretty {
		enc.SetIndent("", " ")
	}
	return errors.WithStack(enc.Encode(v))
}
