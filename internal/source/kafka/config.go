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

package kafka

import (
	"context"
	"net/url"

	"github.com/IBM/sarama"
	"github.com/eventmosaic/em-adapter/internal/parser"
	"github.com/eventmosaic/em-adapter/internal/publisher"
	"github.com/eventmosaic/em-adapter/internal/source/objstore"
	"github.com/eventmosaic/em-adapter/internal/types"
	"github.com/eventmosaic/em-adapter/internal/util/secure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2/clientcredentials"
)

// Default inbound topics.
const (
	DefaultEventTopic   = "collector-event"
	DefaultMentionTopic = "collector-mention"
)

// EagerConfig is a hack to get Wire to preflight the configuration
// before any of the sub-configurations are handed to their providers.
type EagerConfig Config

// Config contains the configuration necessary for consuming file
// notifications and publishing the records that the files contain.
type Config struct {
	Objstore  objstore.Config
	Parser    parser.Config
	Publisher publisher.Config
	SASL      SASLConfig
	TLS       secure.Config

	Brokers      []string // The address of the Kafka brokers.
	EventTopic   string   // Notifications for event files.
	Group        string   // The Kafka consumer group id.
	MentionTopic string   // Notifications for mention files.
	Oldest       bool     // Start a new group from the oldest offset.
	Strategy     string   // Kafka consumer group re-balance strategy.
	Version      string   // The Kafka protocol version.

	// The kafka connector configuration, computed by Preflight.
	saramaConfig *sarama.Config
}

// SASLConfig contains the SASL authentication options.
type SASLConfig struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Mechanism    string
	Password     string
	Scopes       []string
	TokenURL     string
	User         string
}

// Bind adds flags to the set. It delegates to the embedded configs.
func (c *Config) Bind(f *pflag.FlagSet) {
	c.Objstore.Bind(f)
	c.Parser.Bind(f)
	c.Publisher.Bind(f)
	c.TLS.Bind(f)

	f.StringArrayVar(&c.Brokers, "broker", nil, "address of Kafka broker(s)")
	f.StringVar(&c.EventTopic, "eventTopicIn", DefaultEventTopic,
		"the topic that announces event files")
	f.StringVar(&c.Group, "group", "", "the Kafka consumer group id")
	f.StringVar(&c.MentionTopic, "mentionTopicIn", DefaultMentionTopic,
		"the topic that announces mention files")
	f.BoolVar(&c.Oldest, "oldest", false,
		"start a new consumer group from the oldest available offset")
	f.StringVar(&c.Strategy, "strategy", "sticky",
		"Kafka consumer group re-balance strategy; one of sticky, roundrobin, or range")
	f.StringVar(&c.Version, "kafkaVersion", "",
		"the Kafka protocol version to use; defaults to the client's default")

	// SASL
	f.StringVar(&c.SASL.ClientID, "saslClientId", "", "client ID for OAuth authentication from a third-party provider")
	f.StringVar(&c.SASL.ClientSecret, "saslClientSecret", "", "Client secret for OAuth authentication from a third-party provider")
	f.StringVar(&c.SASL.GrantType, "saslGrantType", "", "Override the default OAuth client credentials grant type for other implementations")
	f.StringVar(&c.SASL.Mechanism, "saslMechanism", "", "Can be set to OAUTHBEARER, SCRAM-SHA-256, SCRAM-SHA-512, or PLAIN")
	f.StringArrayVar(&c.SASL.Scopes, "saslScope", nil, "Scopes that the OAuth token should have access for.")
	f.StringVar(&c.SASL.TokenURL, "saslTokenURL", "", "Client token URL for OAuth authentication from a third-party provider")
	f.StringVar(&c.SASL.User, "saslUser", "", "SASL username")
	f.StringVar(&c.SASL.Password, "saslPassword", "", "SASL password")
}

// Preflight updates the configuration with sane defaults or returns an
// error if there are missing options for which a default cannot be
// provided.
func (c *Config) Preflight(ctx context.Context) error {
	if err := c.Objstore.Preflight(); err != nil {
		return err
	}
	if err := c.Parser.Preflight(); err != nil {
		return err
	}
	if err := c.Publisher.Preflight(); err != nil {
		return err
	}
	return c.preflight(ctx)
}

func (c *Config) preflight(ctx context.Context) error {
	if c.Group == "" {
		return errors.New("no group was configured")
	}
	if len(c.Brokers) == 0 {
		return errors.New("no brokers were configured")
	}
	if c.EventTopic == "" {
		c.EventTopic = DefaultEventTopic
	}
	if c.MentionTopic == "" {
		c.MentionTopic = DefaultMentionTopic
	}
	if c.EventTopic == c.MentionTopic {
		return errors.Errorf("event and mention files cannot share the inbound topic %s", c.EventTopic)
	}

	sc := sarama.NewConfig()
	if c.Version != "" {
		version, err := sarama.ParseKafkaVersion(c.Version)
		if err != nil {
			return errors.Wrap(err, "malformed kafka version")
		}
		// Record headers carry the batch identifier.
		if !version.IsAtLeast(sarama.V0_11_0_0) {
			return errors.Errorf("kafka version %s does not support record headers", version)
		}
		sc.Version = version
	}

	switch c.Strategy {
	case "sticky":
		sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	case "roundrobin":
		sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	case "range":
		sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	default:
		return errors.Errorf("unrecognized consumer rebalance strategy: %s", c.Strategy)
	}

	if err := c.TLS.Preflight(); err != nil {
		return err
	}
	sc.Net.TLS.Config = c.TLS.AsTLSConfig()
	sc.Net.TLS.Enable = sc.Net.TLS.Config != nil
	// if the mechanism is set, then authentication is done via SASL.
	if c.SASL.Mechanism != "" {
		sc.Net.SASL.Enable = true
		switch c.SASL.Mechanism {
		case sarama.SASLTypeSCRAMSHA512:
			sc.Net.SASL.SCRAMClientGeneratorFunc = sha512ClientGenerator
		case sarama.SASLTypeSCRAMSHA256:
			sc.Net.SASL.SCRAMClientGeneratorFunc = sha256ClientGenerator
		case sarama.SASLTypeOAuth:
			var err error
			sc.Net.SASL.TokenProvider, err = c.newTokenProvider(ctx)
			if err != nil {
				return err
			}
		}
		sc.Net.SASL.Mechanism = sarama.SASLMechanism(c.SASL.Mechanism)
		sc.Net.SASL.User = c.SASL.User
		sc.Net.SASL.Password = c.SASL.Password
		log.Infof("Using SASL %s", c.SASL.Mechanism)
	}
	if c.Oldest {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	c.Publisher.Apply(sc)
	c.saramaConfig = sc
	return sc.Validate()
}

// Schemas maps each inbound topic to the schema of the files that it
// announces.
func (c *Config) Schemas() map[string]types.Schema {
	return map[string]types.Schema{
		c.EventTopic:   types.SchemaEvent,
		c.MentionTopic: types.SchemaMention,
	}
}

// Diagnostic implements [diag.Diagnostic]. Credentials are omitted.
func (c *Config) Diagnostic(context.Context) any {
	return map[string]any{
		"brokers":       c.Brokers,
		"fileSource":    c.Objstore.Provider().String(),
		"group":         c.Group,
		"inbound":       c.Topics(),
		"outbound":      []string{c.Publisher.EventTopic, c.Publisher.MentionTopic},
		"saslMechanism": c.SASL.Mechanism,
		"strategy":      c.Strategy,
		"tls":           c.TLS.AsTLSConfig() != nil,
		"version":       c.Version,
	}
}

// Topics returns the inbound topics in a stable order.
func (c *Config) Topics() []string {
	return []string{c.EventTopic, c.MentionTopic}
}

func (c *Config) newTokenProvider(ctx context.Context) (sarama.AccessTokenProvider, error) {
	// grant_type is by default going to be set to 'client_credentials' by
	// the clientcredentials library, however non-compliant auth server
	// implementations may want a custom type.
	var endpointParams url.Values
	if c.SASL.GrantType != `` {
		endpointParams = url.Values{"grant_type": {c.SASL.GrantType}}
	}
	if c.SASL.TokenURL == "" {
		return nil, errors.New("OAUTH2 requires a token URL")
	}
	tokenURL, err := url.Parse(c.SASL.TokenURL)
	if err != nil {
		return nil, errors.Wrap(err, "malformed token url")
	}
	if c.SASL.ClientID == "" {
		return nil, errors.New("OAUTH2 requires a client id")
	}
	if c.SASL.ClientSecret == "" {
		return nil, errors.New("OAUTH2 requires a client secret")
	}
	// The TokenSource caches a token until it expires and then
	// requests a new one from the endpoint.
	cfg := clientcredentials.Config{
		ClientID:       c.SASL.ClientID,
		ClientSecret:   c.SASL.ClientSecret,
		TokenURL:       tokenURL.String(),
		Scopes:         c.SASL.Scopes,
		EndpointParams: endpointParams,
	}
	return &tokenProvider{
		tokenSource: cfg.TokenSource(ctx),
	}, nil
}
