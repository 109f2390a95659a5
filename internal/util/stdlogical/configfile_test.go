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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		args    []string
		brokers []string
		group   string
		oldest  bool
		wantErr string
	}{
		{
			name: "values",
			yaml: `
broker:
  - kafka-1:9092
  - kafka-2:9092
group: adapter
oldest: true
`,
			brokers: []string{"kafka-1:9092", "kafka-2:9092"},
			group:   "adapter",
			oldest:  true,
		},
		{
			name:    "command line wins",
			yaml:    "group: from-file\nbroker: kafka-1:9092\n",
			args:    []string{"--group", "from-args"},
			brokers: []string{"kafka-1:9092"},
			group:   "from-args",
		},
		{
			name:    "unknown option",
			yaml:    "nope: 1\n",
			wantErr: `unknown option "nope"`,
		},
		{
			name:    "bad value",
			yaml:    "oldest: sometimes\n",
			wantErr: `invalid value for "oldest"`,
		},
		{
			name:    "malformed",
			yaml:    "group: [\n",
			wantErr: "could not parse config file",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := assert.New(t)
			r := require.New(t)

			path := filepath.Join(t.TempDir(), "adapter.yaml")
			r.NoError(os.WriteFile(path, []byte(test.yaml), 0644))

			var brokers []string
			var group string
			var oldest bool
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.StringArrayVar(&brokers, "broker", nil, "")
			flags.StringVar(&group, "group", "", "")
			flags.BoolVar(&oldest, "oldest", false, "")
			r.NoError(flags.Parse(test.args))

			err := ApplyConfigFile(flags, path)
			if test.wantErr != "" {
				a.ErrorContains(err, test.wantErr)
				return
			}
			r.NoError(err)
			a.Equal(test.brokers, brokers)
			a.Equal(test.group, group)
			a.Equal(test.oldest, oldest)
		})
	}
}

func TestApplyConfigFileMissing(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := ApplyConfigFile(flags, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "could not read config file")
}
