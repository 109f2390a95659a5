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

package parser

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Defaults for the flags defined in Config.
const (
	DefaultEncoding    = "utf-8"
	DefaultMaxLineSize = 1 << 20
)

// Config controls how export files are decoded.
type Config struct {
	EncodingName string // An IANA or WHATWG character set name.
	MaxLineSize  int    // The longest line, in bytes, that will be read.

	// The following are computed.

	encoding encoding.Encoding
}

// Bind adds flags to the set.
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.EncodingName, "encoding", DefaultEncoding,
		"the character set of the export files")
	f.IntVar(&c.MaxLineSize, "maxLineSize", DefaultMaxLineSize,
		"the maximum length of a single row, in bytes")
}

// Encoding returns the character set resolved by Preflight.
func (c *Config) Encoding() encoding.Encoding {
	return c.encoding
}

// Preflight resolves the encoding and applies defaults.
func (c *Config) Preflight() error {
	if c.EncodingName == "" {
		c.EncodingName = DefaultEncoding
	}
	if c.MaxLineSize == 0 {
		c.MaxLineSize = DefaultMaxLineSize
	}
	if c.MaxLineSize < 0 {
		return errors.Errorf("maxLineSize must be positive: %d", c.MaxLineSize)
	}
	enc, err := htmlindex.Get(c.EncodingName)
	if err != nil {
		return errors.Wrapf(err, "unknown encoding %q", c.EncodingName)
	}
	c.encoding = enc
	return nil
}
