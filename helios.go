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

// Package helios is the entry point to the Helios Admin SDK. It provides functionality for initializing App
// instances, which serve as the central entities that provide access to the various other Helios services
// exposed from the SDK.
package helios

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/helios-identity/helios-admin-go/auth"
	"github.com/helios-identity/helios-admin-go/internal"
	"google.golang.org/api/option"
	"google.golang.org/api/transport"
)

// Version of the Helios Go Admin SDK.
const Version = "1.4.0"

// heliosEnvName is the name of the environment variable with the Config.
const heliosEnvName = "HELIOS_CONFIG"

var heliosScopes = []string{
	"https://auth.heliosplatform.com/scopes/cloud-platform",
	"https://auth.heliosplatform.com/scopes/identity",
	"https://auth.heliosplatform.com/scopes/userinfo.email",
}

// An App holds configuration and state common to all Helios services that are exposed from the SDK.
type App struct {
	projectID        string
	serviceAccountID string
	opts             []option.ClientOption
}

// Config represents the configuration used to initialize an App.
type Config struct {
	ProjectID        string `json:"projectId"`
	ServiceAccountID string `json:"serviceAccountId"`
}

// Auth returns an instance of auth.Client.
func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	conf := &internal.AuthConfig{
		ProjectID:        a.projectID,
		Opts:             a.opts,
		ServiceAccountID: a.serviceAccountID,
		Version:          Version,
	}
	return auth.NewClient(ctx, conf)
}

// NewApp creates a new App from the provided config and client options.
//
// If the client options contain a valid credential (a service account file, a refresh token
// file or an oauth2.TokenSource) the App will be authenticated using that credential. Otherwise,
// NewApp attempts to authenticate the App with application default credentials.
// If `config` is nil, the SDK will attempt to load the config options from the
// `HELIOS_CONFIG` environment variable. If the value in it starts with a `{` it is parsed as a
// JSON object, otherwise it is assumed to be the name of the JSON file containing the options.
func NewApp(ctx context.Context, config *Config, opts ...option.ClientOption) (*App, error) {
	o := []option.ClientOption{option.WithScopes(heliosScopes...)}
	o = append(o, opts...)
	if config == nil {
		var err error
		if config, err = getConfigDefaults(); err != nil {
			return nil, err
		}
	}

	return &App{
		projectID:        projectID(ctx, config, o...),
		serviceAccountID: config.ServiceAccountID,
		opts:             o,
	}, nil
}

// getConfigDefaults reads the default config file, defined by the HELIOS_CONFIG
// env variable, used only when the config is nil.
func getConfigDefaults() (*Config, error) {
	conf := &Config{}
	confFileName := os.Getenv(heliosEnvName)
	if confFileName == "" {
		return conf, nil
	}
	var dat []byte
	if confFileName[0] == byte('{') {
		dat = []byte(confFileName)
	} else {
		var err error
		if dat, err = ioutil.ReadFile(confFileName); err != nil {
			return nil, err
		}
	}

	d := json.NewDecoder(strings.NewReader(string(dat)))
	d.DisallowUnknownFields()
	if err := d.Decode(conf); err != nil {
		return nil, fmt.Errorf("invalid %s: %v", heliosEnvName, err)
	}
	return conf, nil
}

func projectID(ctx context.Context, config *Config, opts ...option.ClientOption) string {
	if config.ProjectID != "" {
		return config.ProjectID
	}

	creds, _ := transport.Creds(ctx, opts...)
	if creds != nil && creds.ProjectID != "" {
		return creds.ProjectID
	}

	if pid := os.Getenv("HELIOS_CLOUD_PROJECT"); pid != "" {
		return pid
	}

	return os.Getenv("HELIOS_PROJECT")
}
