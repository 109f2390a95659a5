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

package objstore

import (
	"net/url"
	"os"
	"strings"

	"github.com/eventmosaic/em-adapter/internal/source/objstore/providers/s3"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Provider identifies the type of file source.
type Provider int

const (
	// UnknownStorage identifies other storage not currently supported.
	UnknownStorage Provider = iota
	// LocalStorage reads files from the local filesystem.
	LocalStorage
	// S3Storage reads objects from an S3-compatible store such as MinIO.
	S3Storage
)

// Providers maps a flag value to a Provider.
var Providers = map[string]Provider{
	"local": LocalStorage,
	"s3":    S3Storage,
}

func (p Provider) String() string {
	switch p {
	case LocalStorage:
		return "local"
	case S3Storage:
		return "s3"
	default:
		return "unknown"
	}
}

// Environment variables consulted when a credential flag is not set.
const (
	envAccessKey    = "AWS_ACCESS_KEY_ID"
	envEndpoint     = "AWS_ENDPOINT"
	envRegion       = "AWS_REGION"
	envSecretKey    = "AWS_SECRET_ACCESS_KEY"
	envSessionToken = "AWS_SESSION_TOKEN"
)

// Config selects and configures the file source.
type Config struct {
	FileSource  string // One of the keys in Providers.
	S3AccessKey string
	S3Endpoint  string // A URL, such as http://minio:9000.
	S3Region    string
	S3SecretKey string
	S3Token     string

	// The following are computed.

	provider Provider
	s3       *s3.Config
}

// Bind adds flags to the set.
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.FileSource, "fileSource", "local",
		"where export files are read from: local or s3")
	f.StringVar(&c.S3AccessKey, "s3AccessKey", "",
		"the access key for the object store; defaults to $"+envAccessKey)
	f.StringVar(&c.S3Endpoint, "s3Endpoint", "",
		"the URL of the object store, e.g. http://minio:9000; defaults to $"+envEndpoint)
	f.StringVar(&c.S3Region, "s3Region", "",
		"the region of the object store; defaults to $"+envRegion)
	f.StringVar(&c.S3SecretKey, "s3SecretKey", "",
		"the secret key for the object store; defaults to $"+envSecretKey)
	f.StringVar(&c.S3Token, "s3SessionToken", "",
		"an optional session token for the object store; defaults to $"+envSessionToken)
}

// Preflight updates the configuration with sane defaults or returns an
// error if there are missing options for which a default cannot be
// provided.
func (c *Config) Preflight() error {
	if c.FileSource == "" {
		c.FileSource = "local"
	}
	c.provider = Providers[strings.ToLower(c.FileSource)]
	switch c.provider {
	case LocalStorage:
		c.s3 = nil
		return nil
	case S3Storage:
		return c.preflightS3()
	default:
		return errors.Errorf("unknown file source %q", c.FileSource)
	}
}

// Provider returns the selected file source, once Preflight has been
// called.
func (c *Config) Provider() Provider {
	return c.provider
}

func (c *Config) preflightS3() error {
	endpoint := envDefault(c.S3Endpoint, envEndpoint)
	if endpoint == "" {
		return errors.New("s3Endpoint must be set when fileSource is s3")
	}
	// Accept a bare host:port for convenience.
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "malformed s3Endpoint")
	}
	if u.Host == "" {
		return errors.Errorf("s3Endpoint %q has no host", endpoint)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return errors.Errorf("s3Endpoint scheme must be http or https: %q", u.Scheme)
	}
	c.s3 = &s3.Config{
		AccessKey:    envDefault(c.S3AccessKey, envAccessKey),
		Endpoint:     u.Host,
		Insecure:     u.Scheme == "http",
		Region:       envDefault(c.S3Region, envRegion),
		SecretKey:    envDefault(c.S3SecretKey, envSecretKey),
		SessionToken: envDefault(c.S3Token, envSessionToken),
	}
	return nil
}

// envDefault returns the value if it is set; otherwise it retrieves a
// value from the environment.
func envDefault(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
