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

//go:build !windows

package diag

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/field-eng-powertools/stopper"
)

// logOnSignal logs the report each time SIGUSR1 is received, until the
// context stops.
func logOnSignal(ctx *stopper.Context, d *Diagnostics) {
	dump := make(chan os.Signal, 1)
	signal.Notify(dump, syscall.SIGUSR1)
	ctx.Go(func(ctx *stopper.Context) error {
		defer signal.Stop(dump)
		for {
			select {
			case <-ctx.Stopping():
				return nil
			case <-dump:
				d.logReport(ctx)
			}
		}
	})
}
