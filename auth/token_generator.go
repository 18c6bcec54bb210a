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

package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/transport"

	"github.com/helios-identity/helios-admin-go/internal"
)

type jwtHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
	KeyID     string `json:"kid,omitempty"`
}

type customToken struct {
	Iss      string                 `json:"iss"`
	Aud      string                 `json:"aud"`
	Exp      int64                  `json:"exp"`
	Iat      int64                  `json:"iat"`
	Sub      string                 `json:"sub,omitempty"`
	UID      string                 `json:"uid,omitempty"`
	TenantID string                 `json:"tenant_id,omitempty"`
	Claims   map[string]interface{} `json:"claims,omitempty"`
}

type jwtInfo struct {
	header  jwtHeader
	payload interface{}
}

// Token creates a signed JWT with the encapsulated header and payload.
func (info *jwtInfo) Token(ctx context.Context, signer cryptoSigner) (string, error) {
	encode := func(i interface{}) (string, error) {
		b, err := json.Marshal(i)
		if err != nil {
			return "", err
		}
		return base64.RawURLEncoding.EncodeToString(b), nil
	}

	header, err := encode(info.header)
	if err != nil {
		return "", err
	}
	payload, err := encode(info.payload)
	if err != nil {
		return "", err
	}
	ss := fmt.Sprintf("%s.%s", header, payload)
	sig, err := signer.Sign(ctx, []byte(ss))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", ss, base64.RawURLEncoding.EncodeToString(sig)), nil
}

// cryptoSigner is used to cryptographically sign data, and query the identity of the signer.
type cryptoSigner interface {
	Sign(context.Context, []byte) ([]byte, error)
	Email(context.Context) (string, error)
}

// serviceAccountSigner signs data locally with an RSA private key loaded from a service
// account JSON file.
type serviceAccountSigner struct {
	privateKey  *rsa.PrivateKey
	clientEmail string
}

type serviceAccount struct {
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

func newServiceAccountSigner(sa serviceAccount) (*serviceAccountSigner, error) {
	block, _ := pem.Decode([]byte(sa.PrivateKey))
	if block == nil {
		return nil, errors.New("no private key data found")
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		k, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("private key should be a PEM or plain PKCS1 or PKCS8; parse error: %v", err)
		}
	}
	rsaKey, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}

	return &serviceAccountSigner{
		privateKey:  rsaKey,
		clientEmail: sa.ClientEmail,
	}, nil
}

func (s *serviceAccountSigner) Sign(ctx context.Context, b []byte) ([]byte, error) {
	hash := sha256.New()
	hash.Write(b)
	return rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, hash.Sum(nil))
}

func (s *serviceAccountSigner) Email(ctx context.Context) (string, error) {
	return s.clientEmail, nil
}

// iamSigner signs data remotely by sending them to the Helios signBlob API.
type iamSigner struct {
	mutex        *sync.Mutex
	httpClient   *internal.HTTPClient
	serviceAcct  string
	metadataHost string
	iamHost      string
}

func newIAMSigner(ctx context.Context, config *internal.AuthConfig) (*iamSigner, error) {
	hc, _, err := internal.NewHTTPClient(ctx, config.Opts...)
	if err != nil {
		return nil, err
	}

	version := fmt.Sprintf("Go/Admin/%s", config.Version)
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader("X-Client-Version", version),
	}
	return &iamSigner{
		mutex:        &sync.Mutex{},
		httpClient:   hc,
		serviceAcct:  config.ServiceAccountID,
		metadataHost: "http://metadata.cloud.heliosplatform.com",
		iamHost:      "https://iamcredentials.heliosplatform.com",
	}, nil
}

func (s *iamSigner) Sign(ctx context.Context, b []byte) ([]byte, error) {
	account, err := s.Email(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/projects/-/serviceAccounts/%s:signBlob", s.iamHost, account)
	body := map[string]interface{}{
		"payload": base64.StdEncoding.EncodeToString(b),
	}
	req := &internal.Request{
		Method: http.MethodPost,
		URL:    url,
		Body:   internal.NewJSONEntity(body),
	}
	var signResponse struct {
		Signature string `json:"signedBlob"`
	}
	if _, err := s.httpClient.DoAndUnmarshal(ctx, req, &signResponse); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(signResponse.Signature)
}

func (s *iamSigner) Email(ctx context.Context) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.serviceAcct != "" {
		return s.serviceAcct, nil
	}

	// Attempt to discover the service account email from the local metadata service. This
	// is available when the SDK is deployed on a managed Helios runtime.
	result, err := s.callMetadataService(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to determine service account: %v; initialize the SDK "+
			"with service account credentials or specify a service account with the "+
			"serviceAccountId option", err)
	}
	s.serviceAcct = result
	return result, nil
}

func (s *iamSigner) callMetadataService(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/computeMetadata/v1/instance/service-accounts/default/email", s.metadataHost)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Metadata-Flavor", "Helios")
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected metadata service response: %d: %s", resp.StatusCode, string(b))
	}
	result := strings.TrimSpace(string(b))
	if result == "" {
		return "", errors.New("unexpected metadata service response: empty body")
	}
	return result, nil
}

// signerForCredentials creates the most capable cryptoSigner available for the given
// configuration.
//
// When the client options carry a service account JSON key, tokens are signed locally with
// the key. Otherwise signing is delegated to the remote signBlob API, with the signer
// identity taken from the ServiceAccountID option or discovered from the environment.
func signerForCredentials(ctx context.Context, config *internal.AuthConfig) (cryptoSigner, error) {
	if config.ServiceAccountID != "" {
		return newIAMSigner(ctx, config)
	}

	creds, _ := transport.Creds(ctx, config.Opts...)
	if creds != nil && len(creds.JSON) > 0 {
		var sa serviceAccount
		if err := json.Unmarshal(creds.JSON, &sa); err != nil {
			return nil, err
		}
		if sa.PrivateKey != "" && sa.ClientEmail != "" {
			return newServiceAccountSigner(sa)
		}
	}
	return newIAMSigner(ctx, config)
}
