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
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/option"

	"github.com/helios-identity/helios-admin-go/internal"
)

const (
	testProjectID     = "mock-project-id"
	testVersion       = "test.version"
	testToken         = "test.token"
	testClientEmail   = "mock-project-id@heliosplatform-sa.iam.example.com"
	testMockKeyID     = "mock-key-id-1"
	testCertsFile     = "../testdata/public_certs.json"
	testSAFile        = "../testdata/service_account.json"
	testIDTokenIssuer = idTokenIssuerPrefix + testProjectID
)

var (
	client            *Client
	testIDToken       string
	testSessionCookie string
	testClock         *internal.MockClock
)

func TestMain(m *testing.M) {
	var err error
	conf := &internal.AuthConfig{
		Opts: []option.ClientOption{
			option.WithCredentialsFile(testSAFile),
		},
		ProjectID: testProjectID,
		Version:   testVersion,
	}
	client, err = NewClient(context.Background(), conf)
	if err != nil {
		log.Fatalln(err)
	}
	client.baseClient.httpClient.RetryConfig = nil

	testClock = &internal.MockClock{Timestamp: time.Now()}
	client.clock = testClock
	client.idTokenVerifier.clock = testClock
	client.cookieVerifier.clock = testClock

	ks := &fileKeySource{FilePath: testCertsFile}
	client.idTokenVerifier.sigVerifier = &certSignatureVerifier{keySource: ks}
	client.cookieVerifier.sigVerifier = &certSignatureVerifier{keySource: ks}

	testIDToken = getIDToken(nil)
	testSessionCookie = getSessionCookie(nil)
	os.Exit(m.Run())
}

func TestNewClientWithServiceAccountCredentials(t *testing.T) {
	conf := &internal.AuthConfig{
		Opts: []option.ClientOption{
			option.WithCredentialsFile(testSAFile),
		},
		ProjectID: testProjectID,
		Version:   testVersion,
	}
	client, err := NewClient(context.Background(), conf)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := client.signer.(*serviceAccountSigner); !ok {
		t.Errorf("NewClient().signer = %#v; want = serviceAccountSigner", client.signer)
	}
	email, err := client.signer.Email(context.Background())
	if email != testClientEmail || err != nil {
		t.Errorf("NewClient().signer.Email() = (%q, %v); want = (%q, nil)", email, err, testClientEmail)
	}
	if client.idTokenVerifier == nil {
		t.Error("NewClient().idTokenVerifier = nil; want non-nil")
	}
	if client.cookieVerifier == nil {
		t.Error("NewClient().cookieVerifier = nil; want non-nil")
	}
	if client.TenantManager == nil {
		t.Error("NewClient().TenantManager = nil; want non-nil")
	}
}

func TestNewClientWithoutCredentials(t *testing.T) {
	conf := &internal.AuthConfig{
		Opts: []option.ClientOption{
			option.WithTokenSource(&internal.MockTokenSource{AccessToken: testToken}),
		},
		ProjectID: testProjectID,
		Version:   testVersion,
	}
	client, err := NewClient(context.Background(), conf)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := client.signer.(*iamSigner); !ok {
		t.Errorf("NewClient().signer = %#v; want = iamSigner", client.signer)
	}
}

func TestNewClientWithServiceAccountID(t *testing.T) {
	conf := &internal.AuthConfig{
		Opts: []option.ClientOption{
			option.WithTokenSource(&internal.MockTokenSource{AccessToken: testToken}),
		},
		ProjectID:        testProjectID,
		ServiceAccountID: "explicit-service-account",
		Version:          testVersion,
	}
	client, err := NewClient(context.Background(), conf)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := client.signer.(*iamSigner); !ok {
		t.Errorf("NewClient().signer = %#v; want = iamSigner", client.signer)
	}
	email, err := client.signer.Email(context.Background())
	if email != "explicit-service-account" || err != nil {
		t.Errorf("signer.Email() = (%q, %v); want = (explicit-service-account, nil)", email, err)
	}
}

func TestCustomToken(t *testing.T) {
	token, err := client.CustomToken(context.Background(), "user1")
	if err != nil {
		t.Fatal(err)
	}
	verifyCustomToken(context.Background(), t, token, "user1", nil, "")
}

func TestCustomTokenWithClaims(t *testing.T) {
	claims := map[string]interface{}{
		"foo":     "bar",
		"premium": true,
		"count":   float64(123),
	}
	token, err := client.CustomTokenWithClaims(context.Background(), "user1", claims)
	if err != nil {
		t.Fatal(err)
	}
	verifyCustomToken(context.Background(), t, token, "user1", claims, "")
}

func TestCustomTokenWithNilClaims(t *testing.T) {
	token, err := client.CustomTokenWithClaims(context.Background(), "user1", nil)
	if err != nil {
		t.Fatal(err)
	}
	verifyCustomToken(context.Background(), t, token, "user1", nil, "")
}

func TestCustomTokenForTenant(t *testing.T) {
	tc, err := client.TenantManager.AuthForTenant("tenantID")
	if err != nil {
		t.Fatal(err)
	}
	tc.clock = testClock

	token, err := tc.CustomToken(context.Background(), "user1")
	if err != nil {
		t.Fatal(err)
	}
	verifyCustomToken(context.Background(), t, token, "user1", nil, "tenantID")
}

func TestCustomTokenError(t *testing.T) {
	cases := []struct {
		name   string
		uid    string
		claims map[string]interface{}
		want   string
	}{
		{
			name: "EmptyName",
			uid:  "",
			want: "uid must be non-empty, and not longer than 128 characters",
		},
		{
			name: "LongUID",
			uid:  strings.Repeat("a", 129),
			want: "uid must be non-empty, and not longer than 128 characters",
		},
		{
			name:   "ReservedClaim",
			uid:    "user1",
			claims: map[string]interface{}{"sub": "1234"},
			want:   `developer claim "sub" is reserved and cannot be specified`,
		},
		{
			name:   "ReservedHeliosClaim",
			uid:    "user1",
			claims: map[string]interface{}{"helios": "token"},
			want:   `developer claim "helios" is reserved and cannot be specified`,
		},
		{
			name:   "MultipleReservedClaims",
			uid:    "user1",
			claims: map[string]interface{}{"aud": "foo", "iss": "bar"},
			want:   `developer claims "aud, iss" are reserved and cannot be specified`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := client.CustomTokenWithClaims(context.Background(), tc.uid, tc.claims)
			if token != "" || err == nil {
				t.Errorf("CustomTokenWithClaims(%q) = (%q, %v); want = (\"\", error)", tc.name, token, err)
			}
			if err.Error() != tc.want {
				t.Errorf("CustomTokenWithClaims(%q) = %v; want = %q", tc.name, err, tc.want)
			}
		})
	}
}

func TestCustomTokenInvalidSigner(t *testing.T) {
	signer := client.signer
	defer func() {
		client.signer = signer
	}()
	client.signer = &mockFailingSigner{}

	token, err := client.CustomToken(context.Background(), "user1")
	if token != "" || err == nil {
		t.Errorf("CustomToken() = (%q, %v); want = (\"\", error)", token, err)
	}
}

func TestSessionCookie(t *testing.T) {
	s := echoServer([]byte(`{"sessionCookie": "expectedCookie"}`), t)
	defer s.Close()

	cookie, err := s.Client.SessionCookie(context.Background(), "idToken", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if cookie != "expectedCookie" {
		t.Errorf("SessionCookie() = %q; want = %q", cookie, "expectedCookie")
	}

	var got map[string]interface{}
	if err := json.Unmarshal(s.Rbody, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"idToken":       "idToken",
		"validDuration": float64(1800),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("SessionCookie() Req[%q] = %v; want = %v", k, got[k], v)
		}
	}

	wantPath := "/projects/mock-project-id:createSessionCookie"
	if s.Req[0].URL.Path != wantPath {
		t.Errorf("SessionCookie() URL = %q; want = %q", s.Req[0].URL.Path, wantPath)
	}
}

func TestSessionCookieError(t *testing.T) {
	cases := []struct {
		name      string
		idToken   string
		expiresIn time.Duration
		want      string
	}{
		{
			name:      "EmptyIDToken",
			idToken:   "",
			expiresIn: 30 * time.Minute,
			want:      "id token must not be empty",
		},
		{
			name:      "ShortExpiresIn",
			idToken:   "idToken",
			expiresIn: 5*time.Minute - time.Second,
			want:      "expiry duration must be between 5 minutes and 14 days",
		},
		{
			name:      "LongExpiresIn",
			idToken:   "idToken",
			expiresIn: 14*24*time.Hour + time.Second,
			want:      "expiry duration must be between 5 minutes and 14 days",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cookie, err := client.SessionCookie(context.Background(), tc.idToken, tc.expiresIn)
			if cookie != "" || err == nil || err.Error() != tc.want {
				t.Errorf("SessionCookie() = (%q, %v); want = (\"\", %q)", cookie, err, tc.want)
			}
		})
	}
}

func TestVerifyIDTokenAndCheckRevokedValid(t *testing.T) {
	s := echoServer(testGetUserResponse, t)
	defer s.Close()
	s.Client.idTokenVerifier = client.idTokenVerifier

	ft, err := s.Client.VerifyIDTokenAndCheckRevoked(context.Background(), testIDToken)
	if err != nil {
		t.Fatal(err)
	}
	if ft.Claims["admin"] != true {
		t.Errorf("Claims['admin'] = %v; want = true", ft.Claims["admin"])
	}
	if ft.UID != ft.Subject {
		t.Errorf("UID = %q; Subject = %q; want equal", ft.UID, ft.Subject)
	}
}

func TestVerifyIDTokenAndCheckRevokedDoNotCheck(t *testing.T) {
	s := echoServer(testGetUserResponse, t)
	defer s.Close()
	s.Client.idTokenVerifier = client.idTokenVerifier
	revokedToken := getIDToken(mockIDTokenPayload{"iat": 1494364000})

	ft, err := s.Client.VerifyIDToken(context.Background(), revokedToken)
	if err != nil {
		t.Fatal(err)
	}
	if ft.Claims["admin"] != true {
		t.Errorf("Claims['admin'] = %v; want = true", ft.Claims["admin"])
	}
}

func TestVerifyIDTokenAndCheckRevokedInvalidated(t *testing.T) {
	s := echoServer(testGetUserResponse, t)
	defer s.Close()
	s.Client.idTokenVerifier = client.idTokenVerifier
	revokedToken := getIDToken(mockIDTokenPayload{"iat": 1494364000})

	p, err := s.Client.VerifyIDTokenAndCheckRevoked(context.Background(), revokedToken)
	we := "ID token has been revoked"
	if p != nil || err == nil || err.Error() != we {
		t.Errorf("VerifyIDTokenAndCheckRevoked() = (%v, %v); want = (nil, %q)", p, err, we)
	}
	if !IsIDTokenRevoked(err) {
		t.Error("IsIDTokenRevoked() = false; want = true")
	}
	if !IsIDTokenInvalid(err) {
		t.Error("IsIDTokenInvalid() = false; want = true")
	}
}

func TestVerifyIDTokenAndCheckRevokedDisabled(t *testing.T) {
	resp := `{
		"users": [{
			"localId": "testuser",
			"disabled": true
		}]
	}`
	s := echoServer([]byte(resp), t)
	defer s.Close()
	s.Client.idTokenVerifier = client.idTokenVerifier

	p, err := s.Client.VerifyIDTokenAndCheckRevoked(context.Background(), testIDToken)
	we := "user has been disabled"
	if p != nil || err == nil || err.Error() != we {
		t.Errorf("VerifyIDTokenAndCheckRevoked() = (%v, %v); want = (nil, %q)", p, err, we)
	}
	if !IsUserDisabled(err) {
		t.Error("IsUserDisabled() = false; want = true")
	}
}

func TestVerifySessionCookieAndCheckRevokedValid(t *testing.T) {
	s := echoServer(testGetUserResponse, t)
	defer s.Close()
	s.Client.cookieVerifier = client.cookieVerifier

	ft, err := s.Client.VerifySessionCookieAndCheckRevoked(context.Background(), testSessionCookie)
	if err != nil {
		t.Fatal(err)
	}
	if ft.Claims["admin"] != true {
		t.Errorf("Claims['admin'] = %v; want = true", ft.Claims["admin"])
	}
}

func TestVerifySessionCookieAndCheckRevokedInvalidated(t *testing.T) {
	s := echoServer(testGetUserResponse, t)
	defer s.Close()
	s.Client.cookieVerifier = client.cookieVerifier
	revokedCookie := getSessionCookie(mockIDTokenPayload{"iat": 1494364000})

	p, err := s.Client.VerifySessionCookieAndCheckRevoked(context.Background(), revokedCookie)
	we := "session cookie has been revoked"
	if p != nil || err == nil || err.Error() != we {
		t.Errorf("VerifySessionCookieAndCheckRevoked() = (%v, %v); want = (nil, %q)", p, err, we)
	}
	if !IsSessionCookieRevoked(err) {
		t.Error("IsSessionCookieRevoked() = false; want = true")
	}
	if !IsSessionCookieInvalid(err) {
		t.Error("IsSessionCookieInvalid() = false; want = true")
	}
}

func verifyCustomToken(
	ctx context.Context, t *testing.T, token, uid string, expected map[string]interface{}, tenantID string) {
	t.Helper()

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("CustomToken() segments = %d; want = 3", len(segments))
	}

	var header jwtHeader
	if err := decodeSegment(segments[0], &header); err != nil {
		t.Fatal(err)
	}
	var payload customToken
	if err := decodeSegment(segments[1], &payload); err != nil {
		t.Fatal(err)
	}

	ks := &fileKeySource{FilePath: testCertsFile}
	keys, err := ks.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	signingString := strings.Join(segments[:2], ".")
	verified := false
	for _, k := range keys {
		if jwt.SigningMethodRS256.Verify(signingString, segments[2], k.Key) == nil {
			verified = true
			break
		}
	}
	if !verified {
		t.Fatal("CustomToken() signature verification failed")
	}

	if header.Algorithm != "RS256" {
		t.Errorf("CustomToken() Algorithm = %q; want = 'RS256'", header.Algorithm)
	}
	if header.Type != "JWT" {
		t.Errorf("CustomToken() Type = %q; want = 'JWT'", header.Type)
	}
	if payload.Aud != tokenAudience {
		t.Errorf("CustomToken() Audience = %q; want = %q", payload.Aud, tokenAudience)
	}
	if payload.Iss != testClientEmail || payload.Sub != testClientEmail {
		t.Errorf("CustomToken() Iss, Sub = (%q, %q); want = %q", payload.Iss, payload.Sub, testClientEmail)
	}
	if payload.UID != uid {
		t.Errorf("CustomToken() UID = %q; want = %q", payload.UID, uid)
	}
	now := testClock.Now().Unix()
	if payload.Iat != now {
		t.Errorf("CustomToken() Iat = %d; want = %d", payload.Iat, now)
	}
	if payload.Exp != now+oneHourInSeconds {
		t.Errorf("CustomToken() Exp = %d; want = %d", payload.Exp, now+oneHourInSeconds)
	}
	if payload.TenantID != tenantID {
		t.Errorf("CustomToken() TenantID = %q; want = %q", payload.TenantID, tenantID)
	}

	for k, v := range expected {
		if payload.Claims[k] != v {
			t.Errorf("CustomToken() Claims[%q] = %v; want = %v", k, payload.Claims[k], v)
		}
	}
}

type mockIDTokenPayload map[string]interface{}

func getIDToken(p mockIDTokenPayload) string {
	return getIDTokenWithKid(testMockKeyID, p)
}

func getIDTokenWithKid(kid string, p mockIDTokenPayload) string {
	pCopy := mockIDTokenPayload{
		"aud":       testProjectID,
		"iss":       testIDTokenIssuer,
		"iat":       testClock.Now().Unix() - 100,
		"exp":       testClock.Now().Unix() + 3600,
		"auth_time": testClock.Now().Unix() - 100,
		"sub":       "1234567890",
		"admin":     true,
	}
	for k, v := range p {
		if v == nil {
			delete(pCopy, k)
		} else {
			pCopy[k] = v
		}
	}

	info := &jwtInfo{
		header:  jwtHeader{Algorithm: "RS256", Type: "JWT", KeyID: kid},
		payload: pCopy,
	}
	token, err := info.Token(context.Background(), client.signer)
	if err != nil {
		log.Fatalln(err)
	}
	return token
}

func getSessionCookie(p mockIDTokenPayload) string {
	pCopy := mockIDTokenPayload{"iss": sessionCookieIssuerPrefix + testProjectID}
	for k, v := range p {
		pCopy[k] = v
	}
	return getIDToken(pCopy)
}

// fileKeySource loads a set of public keys from the local file system.
type fileKeySource struct {
	FilePath   string
	CachedKeys []*publicKey
}

func (f *fileKeySource) Keys(ctx context.Context) ([]*publicKey, error) {
	if f.CachedKeys == nil {
		certs, err := ioutil.ReadFile(f.FilePath)
		if err != nil {
			return nil, err
		}
		f.CachedKeys, err = parsePublicKeys(certs)
		if err != nil {
			return nil, err
		}
	}
	return f.CachedKeys, nil
}

type mockFailingSigner struct{}

func (s *mockFailingSigner) Sign(ctx context.Context, b []byte) ([]byte, error) {
	return nil, errors.New("sign error")
}

func (s *mockFailingSigner) Email(ctx context.Context) (string, error) {
	return "", errors.New("email error")
}
