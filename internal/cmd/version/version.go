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

// Package version contains a command to print the build information.
package version

import (
	"runtime"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// BuildVersion is set by the go linker at build time.
var BuildVersion = "<unknown>"

// Command returns a command to print the build version and, optionally,
// its bill-of-materials.
func Command() *cobra.Command {
	var deps bool
	cmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Short: "print the build version",
		Use:   "version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := log.Fields{
				"arch":    runtime.GOARCH,
				"build":   BuildVersion,
				"os":      runtime.GOOS,
				"runtime": runtime.Version(),
			}
			bi, ok := debug.ReadBuildInfo()
			if ok {
				for _, s := range bi.Settings {
					if s.Key == "vcs.revision" {
						fields["revision"] = s.Value
					}
				}
			}
			log.WithFields(fields).Info("em-adapter")

			if !deps || !ok {
				return nil
			}
			for _, m := range bi.Deps {
				for m.Replace != nil {
					m = m.Replace
				}
				log.WithFields(log.Fields{
					"sum":     m.Sum,
					"version": m.Version,
				}).Info(m.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deps, "deps", false, "also print the versions of all dependencies")
	return cmd
}
