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

// Package auth contains functions for minting custom authentication tokens, verifying Helios ID
// tokens, and managing users in a Helios Identity Platform project.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helios-identity/helios-admin-go/internal"
)

const (
	authErrorCode       = "authErrorCode"
	clientVersionHeader = "X-Client-Version"

	defaultAuthURL      = "https://identity.heliosplatform.com"
	idToolkitV1Endpoint = defaultAuthURL + "/v1"
	idToolkitV2Endpoint = defaultAuthURL + "/v2"

	// tokenAudience is the audience custom tokens are minted for. The client SDKs present
	// custom tokens to this service in exchange for ID tokens.
	tokenAudience = "https://identity.heliosplatform.com/helios.identity.v1.IdentityService"

	oneHourInSeconds = 3600
)

// Auth-specific error codes, reported alongside the platform error codes.
const (
	certificateFetchFailed   = "CERTIFICATE_FETCH_FAILED"
	configurationNotFound    = "CONFIGURATION_NOT_FOUND"
	emailAlreadyExists       = "EMAIL_ALREADY_EXISTS"
	idTokenExpired           = "ID_TOKEN_EXPIRED"
	idTokenInvalid           = "ID_TOKEN_INVALID"
	idTokenRevoked           = "ID_TOKEN_REVOKED"
	phoneNumberAlreadyExists = "PHONE_NUMBER_ALREADY_EXISTS"
	sessionCookieExpired     = "SESSION_COOKIE_EXPIRED"
	sessionCookieInvalid     = "SESSION_COOKIE_INVALID"
	sessionCookieRevoked     = "SESSION_COOKIE_REVOKED"
	tenantIDMismatch         = "TENANT_ID_MISMATCH"
	tenantNotFound           = "TENANT_NOT_FOUND"
	uidAlreadyExists         = "UID_ALREADY_EXISTS"
	unauthorizedContinueURI  = "UNAUTHORIZED_CONTINUE_URI"
	userDisabled             = "USER_DISABLED"
	userNotFound             = "USER_NOT_FOUND"
)

var reservedClaims = []string{
	"acr", "amr", "at_hash", "aud", "auth_time", "azp", "cnf", "c_hash",
	"exp", "iat", "iss", "jti", "nbf", "nonce", "sub", "helios",
}

// Client is the interface for the Helios Auth service.
//
// Client facilitates generating custom JWT tokens for Helios clients, and verifying ID tokens
// issued by Helios backend services.
type Client struct {
	baseClient
	TenantManager *TenantManager
}

// NewClient creates a new instance of the Helios Auth Client.
//
// This function can only be invoked from within the SDK. Client applications should access the
// Auth service through helios.App.
func NewClient(ctx context.Context, conf *internal.AuthConfig) (*Client, error) {
	signer, err := signerForCredentials(ctx, conf)
	if err != nil {
		return nil, err
	}

	idTokenVerifier, err := newIDTokenVerifier(ctx, conf.ProjectID)
	if err != nil {
		return nil, err
	}
	cookieVerifier, err := newSessionCookieVerifier(ctx, conf.ProjectID)
	if err != nil {
		return nil, err
	}

	hc, _, err := internal.NewHTTPClient(ctx, conf.Opts...)
	if err != nil {
		return nil, err
	}
	hc.CreateErrFn = handleHTTPError
	hc.SuccessFn = internal.HasSuccessStatus
	hc.Opts = []internal.HTTPOption{
		internal.WithHeader(clientVersionHeader, fmt.Sprintf("Go/Admin/%s", conf.Version)),
	}

	base := &baseClient{
		userManagementEndpoint: idToolkitV1Endpoint,
		providerConfigEndpoint: idToolkitV2Endpoint,
		tenantMgtEndpoint:      idToolkitV2Endpoint,
		projectID:              conf.ProjectID,
		httpClient:             hc,
		idTokenVerifier:        idTokenVerifier,
		cookieVerifier:         cookieVerifier,
		signer:                 signer,
		clock:                  &internal.SystemClock{},
	}
	return &Client{
		baseClient:    *base,
		TenantManager: newTenantManager(hc, conf, base),
	}, nil
}

// Token represents a decoded Helios ID token.
//
// Token provides typed accessors to the common JWT fields such as Audience (aud) and Expires
// (exp). Additionally it provides a UID field, which indicates the user ID of the account to
// which this token belongs. Any additional JWT claims can be accessed via the Claims map of
// Token.
type Token struct {
	AuthTime int64                  `json:"auth_time"`
	Issuer   string                 `json:"iss"`
	Audience string                 `json:"aud"`
	Expires  int64                  `json:"exp"`
	IssuedAt int64                  `json:"iat"`
	Subject  string                 `json:"sub,omitempty"`
	UID      string                 `json:"uid,omitempty"`
	Helios   HeliosInfo             `json:"helios"`
	Claims   map[string]interface{} `json:"-"`
}

// HeliosInfo represents the information about the sign-in event, including which auth provider
// was used and provider-specific identity details.
//
// This data is provided by the Helios Auth service and is a reserved claim in the ID token.
type HeliosInfo struct {
	SignInProvider string                 `json:"sign_in_provider"`
	Tenant         string                 `json:"tenant"`
	Identities     map[string]interface{} `json:"identities"`
}

// baseClient exposes the APIs common to both auth.Client and auth.TenantClient.
type baseClient struct {
	userManagementEndpoint string
	providerConfigEndpoint string
	tenantMgtEndpoint      string
	projectID              string
	tenantID               string
	httpClient             *internal.HTTPClient
	idTokenVerifier        *tokenVerifier
	cookieVerifier         *tokenVerifier
	signer                 cryptoSigner
	clock                  internal.Clock
}

func (c *baseClient) withTenantID(tenantID string) *baseClient {
	copied := *c
	copied.tenantID = tenantID
	return &copied
}

// CustomToken creates a signed custom authentication token with the specified user ID.
//
// The resulting JWT can be used in a Helios client SDK to trigger an authentication flow. See
// https://docs.heliosplatform.com/auth/admin/create-custom-tokens for more details on how to
// use custom tokens for client authentication.
//
// CustomToken follows the protocol outlined below to sign the generated tokens:
//   - If the SDK was initialized with service account credentials, uses the private key
//     present in the credentials to sign tokens locally.
//   - If a service account email was specified during initialization (via helios.Config
//     struct), calls the remote signBlob service to sign tokens using that service account.
//   - If the code is deployed in a managed Helios runtime, uses the metadata service to
//     auto discover a service account email. This is used in conjunction with the signBlob
//     service to sign tokens.
func (c *baseClient) CustomToken(ctx context.Context, uid string) (string, error) {
	return c.CustomTokenWithClaims(ctx, uid, nil)
}

// CustomTokenWithClaims is similar to CustomToken, but in addition to the user ID, it also
// encodes all the key-value pairs in the provided map as claims in the resulting JWT.
func (c *baseClient) CustomTokenWithClaims(ctx context.Context, uid string, devClaims map[string]interface{}) (string, error) {
	iss, err := c.signer.Email(ctx)
	if err != nil {
		return "", err
	}

	if len(uid) == 0 || len(uid) > 128 {
		return "", errors.New("uid must be non-empty, and not longer than 128 characters")
	}

	var disallowed []string
	for _, k := range reservedClaims {
		if _, contains := devClaims[k]; contains {
			disallowed = append(disallowed, k)
		}
	}
	if len(disallowed) == 1 {
		return "", fmt.Errorf("developer claim %q is reserved and cannot be specified", disallowed[0])
	} else if len(disallowed) > 1 {
		return "", fmt.Errorf("developer claims %q are reserved and cannot be specified", strings.Join(disallowed, ", "))
	}

	now := c.clock.Now().Unix()
	info := &jwtInfo{
		header: jwtHeader{Algorithm: "RS256", Type: "JWT"},
		payload: &customToken{
			Iss:      iss,
			Sub:      iss,
			Aud:      tokenAudience,
			UID:      uid,
			Iat:      now,
			Exp:      now + oneHourInSeconds,
			TenantID: c.tenantID,
			Claims:   devClaims,
		},
	}
	return info.Token(ctx, c.signer)
}

// SessionCookie creates a new Helios session cookie from the given ID token and expiry
// duration. The returned JWT can be set as a server-side session cookie with a custom cookie
// policy. Expiry duration must be at least five minutes but may not exceed 14 days.
func (c *Client) SessionCookie(
	ctx context.Context,
	idToken string,
	expiresIn time.Duration,
) (string, error) {
	return c.baseClient.createSessionCookie(ctx, idToken, expiresIn)
}

func (c *baseClient) createSessionCookie(
	ctx context.Context,
	idToken string,
	expiresIn time.Duration,
) (string, error) {
	if idToken == "" {
		return "", errors.New("id token must not be empty")
	}

	if expiresIn < 5*time.Minute || expiresIn > 14*24*time.Hour {
		return "", errors.New("expiry duration must be between 5 minutes and 14 days")
	}

	payload := map[string]interface{}{
		"idToken":       idToken,
		"validDuration": int64(expiresIn.Seconds()),
	}

	var result struct {
		SessionCookie string `json:"sessionCookie"`
	}
	if _, err := c.post(ctx, ":createSessionCookie", payload, &result); err != nil {
		return "", err
	}
	return result.SessionCookie, nil
}

// VerifyIDToken verifies the signature and payload of the provided ID token.
//
// VerifyIDToken accepts a signed JWT token string, and verifies that it is current, issued for
// the correct Helios project, and signed by the Helios Auth service in the cloud. It returns
// a Token containing the decoded claims in the input JWT. See
// https://docs.heliosplatform.com/auth/admin/verify-id-tokens for more details on how to
// obtain an ID token in a client app.
//
// In non-emulator mode, this function does not make any RPC calls most of the time. The only
// time it makes an RPC call is when the signing keys need to be refreshed.
//
// This does not check whether or not the token has been revoked or disabled. Use
// VerifyIDTokenAndCheckRevoked when a revocation check is needed.
func (c *baseClient) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	decoded, err := c.idTokenVerifier.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if c.tenantID != "" && c.tenantID != decoded.Helios.Tenant {
		return nil, &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    fmt.Sprintf("invalid tenant id: %q", decoded.Helios.Tenant),
			Ext: map[string]interface{}{
				authErrorCode: tenantIDMismatch,
			},
		}
	}
	return decoded, nil
}

// VerifyIDTokenAndCheckRevoked verifies the provided ID token, and additionally checks that the
// token has not been revoked or disabled.
//
// Unlike VerifyIDToken, this function must make an RPC call to perform the revocation check.
// Developers are advised to take this additional overhead into consideration when including
// this function in an authorization flow that gets executed often.
func (c *baseClient) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*Token, error) {
	decoded, err := c.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if err := c.checkRevokedOrDisabled(ctx, decoded, idTokenRevoked, "ID token has been revoked"); err != nil {
		return nil, err
	}
	return decoded, nil
}

// VerifySessionCookie verifies the signature and payload of the provided Helios session cookie.
//
// VerifySessionCookie accepts a signed JWT token string, and verifies that it is current,
// issued for the correct Helios project, and signed by the Helios Auth service in the cloud.
// It returns a Token containing the decoded claims in the input JWT. See
// https://docs.heliosplatform.com/auth/admin/manage-cookies for more details on how to obtain
// a session cookie.
//
// This does not check whether or not the cookie has been revoked. Use
// VerifySessionCookieAndCheckRevoked when a revocation check is needed.
func (c *Client) VerifySessionCookie(ctx context.Context, sessionCookie string) (*Token, error) {
	return c.cookieVerifier.VerifyToken(ctx, sessionCookie)
}

// VerifySessionCookieAndCheckRevoked verifies the provided session cookie, and additionally
// checks that the cookie has not been revoked and the user has not been disabled.
//
// Unlike VerifySessionCookie, this function must make an RPC call to perform the revocation
// check. Developers are advised to take this additional overhead into consideration when
// including this function in an authorization flow that gets executed often.
func (c *Client) VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*Token, error) {
	decoded, err := c.VerifySessionCookie(ctx, sessionCookie)
	if err != nil {
		return nil, err
	}

	if err := c.checkRevokedOrDisabled(ctx, decoded, sessionCookieRevoked, "session cookie has been revoked"); err != nil {
		return nil, err
	}
	return decoded, nil
}

// checkRevokedOrDisabled checks whether the user with the given token is disabled, and whether
// the token itself was issued before the user's tokens were last revoked.
func (c *baseClient) checkRevokedOrDisabled(ctx context.Context, token *Token, errCode string, errMessage string) error {
	user, err := c.GetUser(ctx, token.UID)
	if err != nil {
		return err
	}
	if user.Disabled {
		return &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    "user has been disabled",
			Ext: map[string]interface{}{
				authErrorCode: userDisabled,
			},
		}
	}
	if token.IssuedAt*1000 < user.TokensValidAfterMillis {
		return &internal.PlatformError{
			ErrorCode: internal.InvalidArgument,
			String:    errMessage,
			Ext: map[string]interface{}{
				authErrorCode: errCode,
			},
		}
	}
	return nil
}

// IsIDTokenExpired checks if the given error was due to an expired ID token.
func IsIDTokenExpired(err error) bool {
	return hasAuthErrorCode(err, idTokenExpired)
}

// IsIDTokenInvalid checks if the given error was due to an invalid ID token.
//
// An ID token is considered invalid when it is malformed (i.e. contains incorrect data), expired
// or has an invalid signature.
func IsIDTokenInvalid(err error) bool {
	return hasAuthErrorCode(err, idTokenInvalid) || IsIDTokenExpired(err) ||
		IsIDTokenRevoked(err) || IsUserDisabled(err) || IsCertificateFetchFailed(err)
}

// IsIDTokenRevoked checks if the given error was due to a revoked ID token.
//
// When IsIDTokenRevoked returns true, IsIDTokenInvalid is guaranteed to return true.
func IsIDTokenRevoked(err error) bool {
	return hasAuthErrorCode(err, idTokenRevoked)
}

// IsSessionCookieExpired checks if the given error was due to an expired session cookie.
func IsSessionCookieExpired(err error) bool {
	return hasAuthErrorCode(err, sessionCookieExpired)
}

// IsSessionCookieInvalid checks if the given error was due to an invalid session cookie.
//
// A session cookie is considered invalid when it is malformed (i.e. contains incorrect data),
// expired or has an invalid signature.
func IsSessionCookieInvalid(err error) bool {
	return hasAuthErrorCode(err, sessionCookieInvalid) || IsSessionCookieExpired(err) ||
		IsSessionCookieRevoked(err) || IsUserDisabled(err) || IsCertificateFetchFailed(err)
}

// IsSessionCookieRevoked checks if the given error was due to a revoked session cookie.
func IsSessionCookieRevoked(err error) bool {
	return hasAuthErrorCode(err, sessionCookieRevoked)
}

// IsTenantIDMismatch checks if the given error was due to a mismatched tenant ID in a JWT.
func IsTenantIDMismatch(err error) bool {
	return hasAuthErrorCode(err, tenantIDMismatch)
}

// IsCertificateFetchFailed checks if the given error was caused by a failure to fetch the
// public key certificates required to verify a JWT.
func IsCertificateFetchFailed(err error) bool {
	return hasAuthErrorCode(err, certificateFetchFailed)
}

// IsUserDisabled checks if the given error was due to a disabled user account.
func IsUserDisabled(err error) bool {
	return hasAuthErrorCode(err, userDisabled)
}

func hasAuthErrorCode(err error, code string) bool {
	pe, ok := err.(*internal.PlatformError)
	return ok && pe.Ext[authErrorCode] == code
}
