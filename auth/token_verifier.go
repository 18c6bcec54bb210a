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
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"github.com/helios-identity/helios-admin-go/internal"
)

const (
	idTokenCertURL            = "https://certs.heliosplatform.com/v1/securetoken/x509"
	idTokenIssuerPrefix       = "https://securetoken.heliosplatform.com/"
	sessionCookieJWKSURL      = "https://certs.heliosplatform.com/v1/sessioncookies/jwks.json"
	sessionCookieIssuerPrefix = "https://session.heliosplatform.com/"

	clockSkewSeconds = 300
)

// tokenVerifier verifies different types of Helios token strings, including ID tokens and
// session cookies.
type tokenVerifier struct {
	shortName         string
	articledShortName string
	docURL            string
	projectID         string
	issuerPrefix      string
	invalidTokenCode  string
	expiredTokenCode  string
	sigVerifier       signatureVerifier
	clock             internal.Clock
}

func newIDTokenVerifier(ctx context.Context, projectID string) (*tokenVerifier, error) {
	ks, err := newHTTPKeySource(ctx, idTokenCertURL)
	if err != nil {
		return nil, err
	}
	return &tokenVerifier{
		shortName:         "ID token",
		articledShortName: "an ID token",
		docURL:            "https://docs.heliosplatform.com/auth/admin/verify-id-tokens",
		projectID:         projectID,
		issuerPrefix:      idTokenIssuerPrefix,
		invalidTokenCode:  idTokenInvalid,
		expiredTokenCode:  idTokenExpired,
		sigVerifier:       &certSignatureVerifier{keySource: ks},
		clock:             &internal.SystemClock{},
	}, nil
}

func newSessionCookieVerifier(ctx context.Context, projectID string) (*tokenVerifier, error) {
	return &tokenVerifier{
		shortName:         "session cookie",
		articledShortName: "a session cookie",
		docURL:            "https://docs.heliosplatform.com/auth/admin/manage-cookies",
		projectID:         projectID,
		issuerPrefix:      sessionCookieIssuerPrefix,
		invalidTokenCode:  sessionCookieInvalid,
		expiredTokenCode:  sessionCookieExpired,
		sigVerifier:       newJWKSSignatureVerifier(sessionCookieJWKSURL),
		clock:             &internal.SystemClock{},
	}, nil
}

// VerifyToken verifies that the given token string is a valid Helios JWT.
//
// VerifyToken considers a token string to be valid if all the following conditions are met:
//   - The token string is a valid RS256 JWT.
//   - The JWT contains a valid key ID (kid) claim.
//   - The JWT is not expired, and it has been issued some time in the past.
//   - The JWT contains valid issuer (iss) and audience (aud) claims as determined by the
//     tokenVerifier.
//   - The JWT contains a valid subject (sub) claim.
//   - The JWT is signed by one of the currently valid signing keys of the service.
func (tv *tokenVerifier) VerifyToken(ctx context.Context, token string) (*Token, error) {
	if tv.projectID == "" {
		return nil, errors.New("project id not available")
	}

	// Validate the content of the token before checking the signature. This maximizes the
	// stability of the error messages, since they do not depend on how a particular JWT
	// library reports signature failures.
	payload, err := tv.verifyContent(token)
	if err != nil {
		return nil, &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    err.Error(),
			Ext: map[string]interface{}{
				authErrorCode: tv.invalidTokenCode,
			},
		}
	}

	if err := tv.verifyTimestamps(payload); err != nil {
		return nil, err
	}

	if err := tv.sigVerifier.VerifySignature(ctx, token); err != nil {
		if pe, ok := err.(*internal.PlatformError); ok {
			return nil, pe
		}
		return nil, &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    fmt.Sprintf("failed to verify %s signature: %v", tv.shortName, err),
			Ext: map[string]interface{}{
				authErrorCode: tv.invalidTokenCode,
			},
		}
	}

	return payload, nil
}

func (tv *tokenVerifier) verifyContent(token string) (*Token, error) {
	if token == "" {
		return nil, fmt.Errorf("%s must be a non-empty string", tv.shortName)
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("incorrect number of segments; %s", tv.getVerifyTokenMessage())
	}

	var header jwtHeader
	if err := decodeSegment(segments[0], &header); err != nil {
		return nil, fmt.Errorf("error while parsing token header: %v; %s", err, tv.getVerifyTokenMessage())
	}
	payload, err := tv.decodePayload(segments[1])
	if err != nil {
		return nil, fmt.Errorf("error while parsing token payload: %v; %s", err, tv.getVerifyTokenMessage())
	}

	issuer := tv.issuerPrefix + tv.projectID
	var detail string
	if header.KeyID == "" {
		if payload.Audience == tokenAudience {
			detail = fmt.Sprintf("expected %s but got a custom token", tv.articledShortName)
		} else {
			detail = fmt.Sprintf("%s has no 'kid' header", tv.shortName)
		}
	} else if header.Algorithm != "RS256" {
		detail = fmt.Sprintf(
			"%s has invalid algorithm; expected 'RS256' but got %q", tv.shortName, header.Algorithm)
	} else if payload.Audience != tv.projectID {
		detail = fmt.Sprintf(
			"%s has invalid 'aud' (audience) claim; expected %q but got %q; %s",
			tv.shortName, tv.projectID, payload.Audience, tv.getProjectIDMatchMessage())
	} else if payload.Issuer != issuer {
		detail = fmt.Sprintf(
			"%s has invalid 'iss' (issuer) claim; expected %q but got %q; %s",
			tv.shortName, issuer, payload.Issuer, tv.getProjectIDMatchMessage())
	} else if payload.Subject == "" {
		detail = fmt.Sprintf("%s has empty 'sub' (subject) claim", tv.shortName)
	} else if len(payload.Subject) > 128 {
		detail = fmt.Sprintf("%s has a 'sub' (subject) claim longer than 128 characters", tv.shortName)
	}

	if detail != "" {
		return nil, fmt.Errorf("%s; %s", detail, tv.getVerifyTokenMessage())
	}
	return payload, nil
}

func (tv *tokenVerifier) verifyTimestamps(payload *Token) error {
	now := tv.clock.Now().Unix()
	if payload.IssuedAt > now+clockSkewSeconds {
		return &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    fmt.Sprintf("%s issued at future timestamp: %d", tv.shortName, payload.IssuedAt),
			Ext: map[string]interface{}{
				authErrorCode: tv.invalidTokenCode,
			},
		}
	}
	if payload.Expires < now-clockSkewSeconds {
		return &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    fmt.Sprintf("%s has expired at: %d", tv.shortName, payload.Expires),
			Ext: map[string]interface{}{
				authErrorCode: tv.expiredTokenCode,
			},
		}
	}
	return nil
}

func (tv *tokenVerifier) decodePayload(segment string) (*Token, error) {
	var payload Token
	if err := decodeSegment(segment, &payload); err != nil {
		return nil, err
	}

	allClaims := make(map[string]interface{})
	if err := decodeSegment(segment, &allClaims); err != nil {
		return nil, err
	}
	// Remove the standard claims, so that only the custom claims remain.
	for _, r := range []string{"iss", "aud", "exp", "iat", "sub", "uid", "auth_time", "helios"} {
		delete(allClaims, r)
	}
	payload.Claims = allClaims
	payload.UID = payload.Subject
	return &payload, nil
}

func (tv *tokenVerifier) getVerifyTokenMessage() string {
	return fmt.Sprintf("see %s for details on how to retrieve %s", tv.docURL, tv.articledShortName)
}

func (tv *tokenVerifier) getProjectIDMatchMessage() string {
	return fmt.Sprintf(
		"make sure the %s comes from the same Helios project as the credential used to"+
			" authenticate this SDK", tv.shortName)
}

func decodeSegment(segment string, v interface{}) error {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return err
	}
	return json.Unmarshal(decoded, v)
}

// signatureVerifier verifies RS256 JWT signatures against a set of remotely hosted public keys.
type signatureVerifier interface {
	VerifySignature(ctx context.Context, token string) error
}

// certSignatureVerifier verifies signatures with the x509 certificates exposed by the ID token
// signing service.
type certSignatureVerifier struct {
	keySource keySource
}

func (c *certSignatureVerifier) VerifySignature(ctx context.Context, token string) error {
	segments := strings.Split(token, ".")
	var header jwtHeader
	if err := decodeSegment(segments[0], &header); err != nil {
		return err
	}

	keys, err := c.keySource.Keys(ctx)
	if err != nil {
		return &internal.PlatformError{
			ErrorCode: internal.Unknown,
			String:    fmt.Sprintf("failed to fetch token signing certificates: %v", err),
			Ext: map[string]interface{}{
				authErrorCode: certificateFetchFailed,
			},
		}
	}

	signingString := strings.Join(segments[:2], ".")
	for _, k := range keys {
		if k.Kid != header.KeyID {
			continue
		}
		if err := jwt.SigningMethodRS256.Verify(signingString, segments[2], k.Key); err == nil {
			return nil
		}
	}
	return errors.New("failed to verify token signature")
}

// jwksSignatureVerifier verifies signatures with the JSON web key set exposed by the session
// cookie signing service.
//
// The key set is fetched lazily on first use, and kept fresh by the keyfunc library from
// that point on.
type jwksSignatureVerifier struct {
	url  string
	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

func newJWKSSignatureVerifier(url string) *jwksSignatureVerifier {
	return &jwksSignatureVerifier{url: url}
}

func (j *jwksSignatureVerifier) VerifySignature(ctx context.Context, token string) error {
	jwks, err := j.keySet(ctx)
	if err != nil {
		return &internal.PlatformError{
			ErrorCode: internal.Unknown,
			String:    fmt.Sprintf("failed to fetch token signing keys: %v", err),
			Ext: map[string]interface{}{
				authErrorCode: certificateFetchFailed,
			},
		}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.Parse(token, jwks.Keyfunc); err != nil {
		return errors.New("failed to verify token signature")
	}
	return nil
}

func (j *jwksSignatureVerifier) keySet(ctx context.Context) (*keyfunc.JWKS, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.jwks == nil {
		jwks, err := keyfunc.Get(j.url, keyfunc.Options{
			Ctx:             ctx,
			RefreshInterval: time.Hour,
		})
		if err != nil {
			return nil, err
		}
		j.jwks = jwks
	}
	return j.jwks, nil
}

// keySource is used to obtain a set of public keys, which can be used to verify cryptographic
// signatures.
type keySource interface {
	Keys(ctx context.Context) ([]*publicKey, error)
}

type publicKey struct {
	Kid string
	Key *rsa.PublicKey
}

// httpKeySource fetches RSA public keys from a remote HTTP server, and caches them in
// memory. It also handles cache invalidation and refresh based on the response cache-control
// headers.
type httpKeySource struct {
	KeyURI     string
	HTTPClient *http.Client
	CachedKeys []*publicKey
	ExpiryTime time.Time
	Clock      internal.Clock
	Mutex      *sync.Mutex
}

func newHTTPKeySource(ctx context.Context, uri string) (*httpKeySource, error) {
	return &httpKeySource{
		KeyURI:     uri,
		HTTPClient: http.DefaultClient,
		Clock:      &internal.SystemClock{},
		Mutex:      &sync.Mutex{},
	}, nil
}

// Keys returns the RSA public keys currently cached in this key source. If the cache is stale
// or empty, the keys are refreshed over the network first.
func (k *httpKeySource) Keys(ctx context.Context) ([]*publicKey, error) {
	k.Mutex.Lock()
	defer k.Mutex.Unlock()
	if len(k.CachedKeys) == 0 || k.hasExpired() {
		err := k.refreshKeys(ctx)
		if err != nil && len(k.CachedKeys) == 0 {
			return nil, err
		}
	}
	return k.CachedKeys, nil
}

// hasExpired indicates whether the cache has expired.
func (k *httpKeySource) hasExpired() bool {
	return k.Clock.Now().After(k.ExpiryTime)
}

func (k *httpKeySource) refreshKeys(ctx context.Context) error {
	k.CachedKeys = nil
	req, err := http.NewRequest(http.MethodGet, k.KeyURI, nil)
	if err != nil {
		return err
	}

	resp, err := k.HTTPClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	contents, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid response (%d) while retrieving public keys: %s",
			resp.StatusCode, string(contents))
	}

	newKeys, err := parsePublicKeys(contents)
	if err != nil {
		return err
	}

	maxAge, err := findMaxAge(resp)
	if err != nil {
		return err
	}
	k.CachedKeys = append([]*publicKey(nil), newKeys...)
	k.ExpiryTime = k.Clock.Now().Add(*maxAge)
	return nil
}

func findMaxAge(resp *http.Response) (*time.Duration, error) {
	cc := resp.Header.Get("cache-control")
	for _, value := range strings.Split(cc, ",") {
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "max-age=") {
			sep := strings.Index(value, "=")
			seconds, err := strconv.ParseInt(value[sep+1:], 10, 64)
			if err != nil {
				return nil, err
			}
			duration := time.Duration(seconds) * time.Second
			return &duration, nil
		}
	}
	return nil, errors.New("could not find expiry time from HTTP headers")
}

func parsePublicKeys(keys []byte) ([]*publicKey, error) {
	m := make(map[string]string)
	if err := json.Unmarshal(keys, &m); err != nil {
		return nil, err
	}
	var result []*publicKey
	for kid, key := range m {
		pubKey, err := parsePublicKey(kid, []byte(key))
		if err != nil {
			return nil, err
		}
		result = append(result, pubKey)
	}
	return result, nil
}

func parsePublicKey(kid string, key []byte) (*publicKey, error) {
	pk, err := jwt.ParseRSAPublicKeyFromPEM(key)
	if err != nil {
		return nil, err
	}
	return &publicKey{kid, pk}, nil
}
