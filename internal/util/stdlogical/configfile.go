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

package stdlogical

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ConfigFileFlag is the flag that names an optional YAML file of
// option values.
const ConfigFileFlag = "configFile"

// ApplyConfigFile reads a YAML mapping of flag names to values and
// sets each flag that was not given on the command line. A sequence
// sets a repeatable flag once per element.
func ApplyConfigFile(flags *pflag.FlagSet, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read config file %s", path)
	}
	var values map[string]any
	if err := yaml.Unmarshal(buf, &values); err != nil {
		return errors.Wrapf(err, "could not parse config file %s", path)
	}
	for name, value := range values {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("unknown option %q in config file %s", name, path)
		}
		// The command line takes precedence.
		if flag.Changed {
			continue
		}
		elts, ok := value.([]any)
		if !ok {
			elts = []any{value}
		}
		for _, elt := range elts {
			if err := flags.Set(name, fmt.Sprint(elt)); err != nil {
				return errors.Wrapf(err, "invalid value for %q in config file %s", name, path)
			}
		}
		log.WithField("option", name).Trace("option set from config file")
	}
	return nil
}
