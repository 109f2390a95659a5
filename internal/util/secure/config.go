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

package secure

import (
	"crypto/tls"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config holds the TLS options used to reach the Kafka brokers.
type Config struct {
	CaCert     string
	ClientCert string
	ClientKey  string
	MinVersion string // 1.2 or 1.3.
	ServerName string // Overrides the name checked against the broker certificate.
	SkipVerify bool

	built *tls.Config // computed by Preflight
}

// Bind adds flags to the set.
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.CaCert, "tlsCACertificate", "",
		"the path of a PEM file of CA certificates trusted in addition to the system pool")
	f.StringVar(&c.ClientCert, "tlsCertificate", "", "the path of the PEM client certificate")
	f.StringVar(&c.ClientKey, "tlsPrivateKey", "", "the path of the PEM client private key")
	f.StringVar(&c.MinVersion, "tlsMinVersion", "", "the minimum TLS version to negotiate: 1.2 or 1.3")
	f.StringVar(&c.ServerName, "tlsServerName", "", "the server name expected in broker certificates")
	f.BoolVar(&c.SkipVerify, "insecureSkipVerify", false,
		"if true, broker certificates are not verified")
}

// Preflight builds the tls.Config. TLS stays disabled unless at least
// one option is set.
func (c *Config) Preflight() error {
	c.built = nil
	if c.CaCert == "" && c.ClientCert == "" && c.ClientKey == "" &&
		c.MinVersion == "" && c.ServerName == "" && !c.SkipVerify {
		return nil
	}
	minVersion, err := ParseVersion(c.MinVersion)
	if err != nil {
		return err
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		MinVersion:         minVersion,
		ServerName:         c.ServerName,
	}
	switch {
	case c.ClientCert != "" && c.ClientKey == "":
		return errors.New("tlsPrivateKey must be specified with tlsCertificate")
	case c.ClientCert == "" && c.ClientKey != "":
		return errors.New("tlsCertificate must be specified with tlsPrivateKey")
	case c.ClientCert != "":
		pair, err := LoadKeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return errors.Wrap(err, "cannot load certificate or key")
		}
		cfg.Certificates = []tls.Certificate{pair}
	}
	if c.CaCert != "" {
		roots, err := LoadRoots(c.CaCert)
		if err != nil {
			return errors.Wrap(err, "cannot load CA certificate")
		}
		cfg.RootCAs = roots
	}
	c.built = cfg
	return nil
}

// AsTLSConfig returns the tls.Config built by Preflight, or nil if TLS
// is disabled.
func (c *Config) AsTLSConfig() *tls.Config {
	return c.built
}
