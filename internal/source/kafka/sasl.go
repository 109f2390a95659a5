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
	"github.com/IBM/sarama"
	"github.com/xdg-go/scram"
	"golang.org/x/oauth2"
)

// SCRAM client factories, used as a sarama SCRAMClientGeneratorFunc.
var (
	sha256ClientGenerator = func() sarama.SCRAMClient {
		return &scramClient{hashFn: scram.SHA256}
	}
	sha512ClientGenerator = func() sarama.SCRAMClient {
		return &scramClient{hashFn: scram.SHA512}
	}
)

// scramClient adapts an xdg-go/scram conversation to sarama.
type scramClient struct {
	conv   *scram.ClientConversation
	hashFn scram.HashGeneratorFcn
}

var _ sarama.SCRAMClient = (*scramClient)(nil)

// Begin starts a new conversation for the user.
func (c *scramClient) Begin(userName, password, authzID string) error {
	client, err := c.hashFn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.conv = client.NewConversation()
	return nil
}

// Step advances the conversation with the server's challenge.
func (c *scramClient) Step(challenge string) (string, error) {
	return c.conv.Step(challenge)
}

// Done reports whether the conversation has completed.
func (c *scramClient) Done() bool {
	return c.conv.Done()
}

// tokenProvider supplies OAUTHBEARER tokens to sarama.
type tokenProvider struct {
	tokenSource oauth2.TokenSource
}

var _ sarama.AccessTokenProvider = (*tokenProvider)(nil)

// Token implements [sarama.AccessTokenProvider]. Sarama calls this
// when connecting to a broker and retries the connection if an error
// is returned.
func (t *tokenProvider) Token() (*sarama.AccessToken, error) {
	token, err := t.tokenSource.Token()
	if err != nil {
		return nil, err
	}
	return &sarama.AccessToken{Token: token.AccessToken}, nil
}
