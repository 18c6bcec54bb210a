// Copyright 2024 Helios Technologies, Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package internal contains utilities for running integration tests.
package internal

import (
	"context"
	"io/ioutil"
	"strings"

	helios "github.com/helios-identity/helios-admin-go"
	"google.golang.org/api/option"
)

const certPath = "../testdata/integration_cert.json"
const apiKeyPath = "../testdata/integration_apikey.txt"

// NewTestApp creates a new App instance for integration tests.
//
// NewTestApp looks for a service account JSON file named integration_cert.json in the
// integration/testdata directory. This file is used to initialize the newly created App
// instance.
func NewTestApp(ctx context.Context) (*helios.App, error) {
	return helios.NewApp(ctx, nil, option.WithCredentialsFile(certPath))
}

// APIKey fetches the web API key of the project used for integration tests.
//
// APIKey reads the key string from a file named integration_apikey.txt in the
// integration/testdata directory.
func APIKey() (string, error) {
	b, err := ioutil.ReadFile(apiKeyPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
