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
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/helios-identity/helios-admin-go/internal"
)

const (
	maxImportUsers             = 1000
	maxDeleteAccountsBatchSize = 1000
	maxLenPayloadCC            = 1000
	defaultProviderID          = "helios"
)

// UserInfo is a collection of standard profile information for a user.
type UserInfo struct {
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	// ProviderID can be short domain name (e.g. google.com) or the identifier of an OIDC or
	// SAML identity provider. For the default (email/password) provider it is "helios".
	ProviderID string `json:"providerId,omitempty"`
	// UID is an identifier uniquely associated with this provider. For the default provider it
	// is the same as UserRecord.UID.
	UID string `json:"rawId,omitempty"`
}

// UserMetadata contains additional metadata associated with a user account.
// Timestamps are in milliseconds since epoch.
type UserMetadata struct {
	CreationTimestamp  int64
	LastLogInTimestamp int64
	// The time at which the user was last active (ID token refreshed), or 0 if
	// the user was never active.
	LastRefreshTimestamp int64
}

// UserRecord contains metadata associated with a Helios user account.
type UserRecord struct {
	*UserInfo
	CustomClaims           map[string]interface{}
	Disabled               bool
	EmailVerified          bool
	ProviderUserInfo       []*UserInfo
	TokensValidAfterMillis int64 // milliseconds since epoch.
	UserMetadata           *UserMetadata
	TenantID               string
}

// ExportedUserRecord is the returned user value used when listing all the users.
type ExportedUserRecord struct {
	*UserRecord
	PasswordHash string
	PasswordSalt string
}

// UserToCreate is the parameter struct for the CreateUser function.
type UserToCreate struct {
	params map[string]interface{}
}

func (u *UserToCreate) set(key string, value interface{}) *UserToCreate {
	if u.params == nil {
		u.params = make(map[string]interface{})
	}
	u.params[key] = value
	return u
}

// Disabled setter.
func (u *UserToCreate) Disabled(disabled bool) *UserToCreate {
	return u.set("disabled", disabled)
}

// DisplayName setter.
func (u *UserToCreate) DisplayName(name string) *UserToCreate {
	return u.set("displayName", name)
}

// Email setter.
func (u *UserToCreate) Email(email string) *UserToCreate {
	return u.set("email", email)
}

// EmailVerified setter.
func (u *UserToCreate) EmailVerified(verified bool) *UserToCreate {
	return u.set("emailVerified", verified)
}

// Password setter.
func (u *UserToCreate) Password(pw string) *UserToCreate {
	return u.set("password", pw)
}

// PhoneNumber setter.
func (u *UserToCreate) PhoneNumber(phone string) *UserToCreate {
	return u.set("phoneNumber", phone)
}

// PhotoURL setter.
func (u *UserToCreate) PhotoURL(url string) *UserToCreate {
	return u.set("photoURL", url)
}

// UID setter.
func (u *UserToCreate) UID(uid string) *UserToCreate {
	return u.set("uid", uid)
}

func (u *UserToCreate) validatedRequest() (map[string]interface{}, error) {
	req := make(map[string]interface{})
	for key, value := range u.params {
		switch key {
		case "disabled":
			req["disableUser"] = value
		case "displayName":
			if err := validateDisplayName(value.(string)); err != nil {
				return nil, err
			}
			req["displayName"] = value
		case "email":
			if err := validateEmail(value.(string)); err != nil {
				return nil, err
			}
			req["email"] = value
		case "emailVerified":
			req["emailVerified"] = value
		case "password":
			if err := validatePassword(value.(string)); err != nil {
				return nil, err
			}
			req["password"] = value
		case "phoneNumber":
			if err := validatePhone(value.(string)); err != nil {
				return nil, err
			}
			req["phoneNumber"] = value
		case "photoURL":
			if err := validatePhotoURL(value.(string)); err != nil {
				return nil, err
			}
			req["photoUrl"] = value
		case "uid":
			if err := validateUID(value.(string)); err != nil {
				return nil, err
			}
			req["localId"] = value
		}
	}
	return req, nil
}

// UserToUpdate is the parameter struct for the UpdateUser function.
type UserToUpdate struct {
	params map[string]interface{}
}

func (u *UserToUpdate) set(key string, value interface{}) *UserToUpdate {
	if u.params == nil {
		u.params = make(map[string]interface{})
	}
	u.params[key] = value
	return u
}

// CustomClaims setter.
func (u *UserToUpdate) CustomClaims(claims map[string]interface{}) *UserToUpdate {
	return u.set("customClaims", claims)
}

// Disabled setter.
func (u *UserToUpdate) Disabled(disabled bool) *UserToUpdate {
	return u.set("disabled", disabled)
}

// DisplayName setter. Set to empty string to remove the current display name.
func (u *UserToUpdate) DisplayName(name string) *UserToUpdate {
	return u.set("displayName", name)
}

// Email setter.
func (u *UserToUpdate) Email(email string) *UserToUpdate {
	return u.set("email", email)
}

// EmailVerified setter.
func (u *UserToUpdate) EmailVerified(verified bool) *UserToUpdate {
	return u.set("emailVerified", verified)
}

// Password setter.
func (u *UserToUpdate) Password(pw string) *UserToUpdate {
	return u.set("password", pw)
}

// PhoneNumber setter. Set to empty string to remove the current phone number.
func (u *UserToUpdate) PhoneNumber(phone string) *UserToUpdate {
	return u.set("phoneNumber", phone)
}

// PhotoURL setter. Set to empty string to remove the current photo URL.
func (u *UserToUpdate) PhotoURL(url string) *UserToUpdate {
	return u.set("photoURL", url)
}

// revokeRefreshTokens revokes all refresh tokens for a user by setting the validSince property
// to the present in epoch seconds.
func (u *UserToUpdate) revokeRefreshTokens() *UserToUpdate {
	return u.set("validSince", time.Now().Unix())
}

func (u *UserToUpdate) validatedRequest() (map[string]interface{}, error) {
	if len(u.params) == 0 {
		return nil, errors.New("update parameters must not be nil or empty")
	}

	req := make(map[string]interface{})
	for key, value := range u.params {
		switch key {
		case "customClaims":
			claims, err := marshalCustomClaims(value.(map[string]interface{}))
			if err != nil {
				return nil, err
			}
			req["customAttributes"] = claims
		case "disabled":
			req["disableUser"] = value
		case "displayName":
			if value.(string) == "" {
				req["deleteAttribute"] = appendSentinel(req, "deleteAttribute", "DISPLAY_NAME")
			} else {
				req["displayName"] = value
			}
		case "email":
			if err := validateEmail(value.(string)); err != nil {
				return nil, err
			}
			req["email"] = value
		case "emailVerified":
			req["emailVerified"] = value
		case "password":
			if err := validatePassword(value.(string)); err != nil {
				return nil, err
			}
			req["password"] = value
		case "phoneNumber":
			if value.(string) == "" {
				req["deleteProvider"] = appendSentinel(req, "deleteProvider", "phone")
			} else {
				if err := validatePhone(value.(string)); err != nil {
					return nil, err
				}
				req["phoneNumber"] = value
			}
		case "photoURL":
			if value.(string) == "" {
				req["deleteAttribute"] = appendSentinel(req, "deleteAttribute", "PHOTO_URL")
			} else {
				req["photoUrl"] = value
			}
		case "validSince":
			req["validSince"] = fmt.Sprintf("%d", value.(int64))
		}
	}

	// Sort the delete sentinel lists for deterministic request payloads.
	for _, key := range []string{"deleteAttribute", "deleteProvider"} {
		if list, ok := req[key].([]string); ok {
			sort.Strings(list)
		}
	}
	return req, nil
}

func appendSentinel(req map[string]interface{}, key, value string) []string {
	existing, _ := req[key].([]string)
	return append(existing, value)
}

func marshalCustomClaims(claims map[string]interface{}) (string, error) {
	for _, key := range reservedClaims {
		if _, ok := claims[key]; ok {
			return "", fmt.Errorf("claim %q is reserved and must not be set", key)
		}
	}

	// The customAttributes wire field carries the claims as a serialized JSON string. An
	// empty claims map is sent as "{}", which clears any previously set claims.
	if claims == nil {
		claims = map[string]interface{}{}
	}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("custom claims marshaling error: %v", err)
	}
	if s := string(b); len(s) <= maxLenPayloadCC {
		return s, nil
	}
	return "", fmt.Errorf("serialized custom claims must not exceed %d characters", maxLenPayloadCC)
}

// CreateUser creates a new user with the specified properties.
func (c *baseClient) CreateUser(ctx context.Context, user *UserToCreate) (*UserRecord, error) {
	uid, err := c.createUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return c.GetUser(ctx, uid)
}

func (c *baseClient) createUser(ctx context.Context, user *UserToCreate) (string, error) {
	if user == nil {
		user = &UserToCreate{}
	}
	request, err := user.validatedRequest()
	if err != nil {
		return "", err
	}

	var result struct {
		UID string `json:"localId"`
	}
	if _, err := c.post(ctx, "/accounts", request, &result); err != nil {
		return "", err
	}
	return result.UID, nil
}

// UpdateUser updates an existing user account with the specified properties.
func (c *baseClient) UpdateUser(ctx context.Context, uid string, user *UserToUpdate) (ur *UserRecord, err error) {
	if err := c.updateUser(ctx, uid, user); err != nil {
		return nil, err
	}
	return c.GetUser(ctx, uid)
}

func (c *baseClient) updateUser(ctx context.Context, uid string, user *UserToUpdate) error {
	if err := validateUID(uid); err != nil {
		return err
	}
	if user == nil {
		return errors.New("update parameters must not be nil or empty")
	}
	request, err := user.validatedRequest()
	if err != nil {
		return err
	}
	request["localId"] = uid

	_, err = c.post(ctx, "/accounts:update", request, nil)
	return err
}

// SetCustomUserClaims sets additional claims on an existing user account.
//
// Custom claims set via this function can be used to define user roles and privilege levels.
// These claims propagate to all the devices where the user is already signed in (after token
// expiration or when token refresh is forced), and next time the user signs in. The claims
// can be accessed via the user's ID token JWT. If a reserved OIDC claim is specified (sub,
// iat, iss, etc), an error is thrown. Claims payload must also not be larger than 1000
// characters when serialized into a JSON string.
func (c *baseClient) SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error {
	if len(customClaims) == 0 {
		customClaims = map[string]interface{}{}
	}
	return c.updateUser(ctx, uid, (&UserToUpdate{}).CustomClaims(customClaims))
}

// RevokeRefreshTokens revokes all refresh tokens issued to a user.
//
// RevokeRefreshTokens updates the user's TokensValidAfterMillis to the current UTC second.
// It is important that the server on which this is called has its clock set correctly and
// synchronized.
//
// While this revokes all sessions for a specified user and disables any new ID tokens for
// existing sessions from getting minted, existing ID tokens may remain active until their
// natural expiration (one hour). To verify that ID tokens are revoked, use
// VerifyIDTokenAndCheckRevoked.
func (c *baseClient) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return c.updateUser(ctx, uid, (&UserToUpdate{}).revokeRefreshTokens())
}

// GetUser gets the user data corresponding to the specified user ID.
func (c *baseClient) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	if err := validateUID(uid); err != nil {
		return nil, err
	}
	return c.getUser(ctx, &userQuery{field: "localId", value: uid, label: "uid"})
}

// GetUserByEmail gets the user data corresponding to the specified email.
func (c *baseClient) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return c.getUser(ctx, &userQuery{field: "email", value: email})
}

// GetUserByPhoneNumber gets the user data corresponding to the specified user phone number.
func (c *baseClient) GetUserByPhoneNumber(ctx context.Context, phone string) (*UserRecord, error) {
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	return c.getUser(ctx, &userQuery{field: "phoneNumber", value: phone, label: "phone number"})
}

type userQuery struct {
	field string
	value string
	label string
}

func (q *userQuery) description() string {
	label := q.label
	if label == "" {
		label = q.field
	}
	return fmt.Sprintf("%s: %q", label, q.value)
}

func (q *userQuery) build() map[string]interface{} {
	return map[string]interface{}{
		q.field: []string{q.value},
	}
}

func (c *baseClient) getUser(ctx context.Context, query *userQuery) (*UserRecord, error) {
	var parsed struct {
		Users []*userQueryResponse `json:"users"`
	}
	resp, err := c.post(ctx, "/accounts:lookup", query.build(), &parsed)
	if err != nil {
		return nil, err
	}

	if len(parsed.Users) == 0 {
		return nil, &internal.PlatformError{
			ErrorCode: internal.NotFound,
			String:    fmt.Sprintf("cannot find user from %s", query.description()),
			Response:  resp.LowLevelResponse(),
			Ext: map[string]interface{}{
				authErrorCode: userNotFound,
			},
		}
	}
	return parsed.Users[0].makeUserRecord()
}

// DeleteUser deletes the user by the given UID.
func (c *baseClient) DeleteUser(ctx context.Context, uid string) error {
	if err := validateUID(uid); err != nil {
		return err
	}

	payload := map[string]interface{}{
		"localId": uid,
	}
	_, err := c.post(ctx, "/accounts:delete", payload, nil)
	return err
}

// DeleteUsersResult represents the result of the DeleteUsers call.
type DeleteUsersResult struct {
	// The number of users that were deleted successfully (possibly zero). Users that did not
	// exist prior to calling DeleteUsers count as successfully deleted.
	SuccessCount int

	// The number of users that failed to be deleted (possibly zero).
	FailureCount int

	// A list of DeleteUsersErrorInfo instances describing the errors that were encountered
	// during the deletion. Length of this list is equal to the value of FailureCount.
	Errors []*DeleteUsersErrorInfo
}

// DeleteUsersErrorInfo represents an error encountered while deleting a user account.
//
// The Index field corresponds to the index of the failed user in the uids array that was
// passed to DeleteUsers.
type DeleteUsersErrorInfo struct {
	Index  int    `json:"index,omitempty"`
	Reason string `json:"message,omitempty"`
}

// DeleteUsers deletes the users specified by the given identifiers.
//
// Deleting a non-existing user does not generate an error (the resulting DeleteUsersResult
// considers it successfully deleted). A maximum of 1000 identifiers may be supplied. If more
// than 1000 identifiers are supplied, this function returns an error.
//
// This API has a rate limit of 1 QPS. Exceeding the limit may result in a quota exceeded
// error. If you want to delete more than 1000 users, we suggest adding a delay to ensure you
// don't exceed this limit.
func (c *baseClient) DeleteUsers(ctx context.Context, uids []string) (*DeleteUsersResult, error) {
	if len(uids) == 0 {
		return &DeleteUsersResult{}, nil
	} else if len(uids) > maxDeleteAccountsBatchSize {
		return nil, fmt.Errorf(
			"`uids` parameter must have <= %d entries", maxDeleteAccountsBatchSize)
	}

	for _, uid := range uids {
		if err := validateUID(uid); err != nil {
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"localIds": uids,
		"force":    true,
	}
	var result struct {
		Errors []*DeleteUsersErrorInfo `json:"errors"`
	}
	if _, err := c.post(ctx, "/accounts:batchDelete", payload, &result); err != nil {
		return nil, err
	}

	return &DeleteUsersResult{
		SuccessCount: len(uids) - len(result.Errors),
		FailureCount: len(result.Errors),
		Errors:       result.Errors,
	}, nil
}

type userQueryResponse struct {
	UID                string      `json:"localId,omitempty"`
	DisplayName        string      `json:"displayName,omitempty"`
	Email              string      `json:"email,omitempty"`
	PhoneNumber        string      `json:"phoneNumber,omitempty"`
	PhotoURL           string      `json:"photoUrl,omitempty"`
	CreationTimestamp  int64       `json:"createdAt,string,omitempty"`
	LastLogInTimestamp int64       `json:"lastLoginAt,string,omitempty"`
	LastRefreshAt      string      `json:"lastRefreshAt,omitempty"`
	ProviderID         string      `json:"providerId,omitempty"`
	CustomAttributes   string      `json:"customAttributes,omitempty"`
	Disabled           bool        `json:"disabled,omitempty"`
	EmailVerified      bool        `json:"emailVerified,omitempty"`
	ProviderUserInfo   []*UserInfo `json:"providerUserInfo,omitempty"`
	PasswordHash       string      `json:"passwordHash,omitempty"`
	PasswordSalt       string      `json:"salt,omitempty"`
	TenantID           string      `json:"tenantId,omitempty"`
	ValidSinceSeconds  int64       `json:"validSince,string,omitempty"`
}

func (r *userQueryResponse) makeUserRecord() (*UserRecord, error) {
	exported, err := r.makeExportedUserRecord()
	if err != nil {
		return nil, err
	}
	return exported.UserRecord, nil
}

func (r *userQueryResponse) makeExportedUserRecord() (*ExportedUserRecord, error) {
	var customClaims map[string]interface{}
	if r.CustomAttributes != "" {
		if err := json.Unmarshal([]byte(r.CustomAttributes), &customClaims); err != nil {
			return nil, err
		}
		if len(customClaims) == 0 {
			customClaims = nil
		}
	}

	// If the password hash is redacted (probably due to missing permissions) then clear it
	// out, similar to how the salt is returned. (Otherwise, it could give the impression that
	// the hash is the string "REDACTED").
	hash := r.PasswordHash
	if hash == "REDACTED" {
		hash = ""
	}

	var lastRefreshTimestamp int64
	if r.LastRefreshAt != "" {
		t, err := time.Parse(time.RFC3339, r.LastRefreshAt)
		if err != nil {
			return nil, err
		}
		lastRefreshTimestamp = t.Unix() * 1000
	}

	return &ExportedUserRecord{
		UserRecord: &UserRecord{
			UserInfo: &UserInfo{
				DisplayName: r.DisplayName,
				Email:       r.Email,
				PhoneNumber: r.PhoneNumber,
				PhotoURL:    r.PhotoURL,
				ProviderID:  defaultProviderID,
				UID:         r.UID,
			},
			CustomClaims:           customClaims,
			Disabled:               r.Disabled,
			EmailVerified:          r.EmailVerified,
			ProviderUserInfo:       r.ProviderUserInfo,
			TokensValidAfterMillis: r.ValidSinceSeconds * 1000,
			UserMetadata: &UserMetadata{
				LastLogInTimestamp:   r.LastLogInTimestamp,
				CreationTimestamp:    r.CreationTimestamp,
				LastRefreshTimestamp: lastRefreshTimestamp,
			},
			TenantID: r.TenantID,
		},
		PasswordHash: hash,
		PasswordSalt: r.PasswordSalt,
	}, nil
}

// IsUserNotFound checks if the given error was due to a non-existing user.
func IsUserNotFound(err error) bool {
	return hasAuthErrorCode(err, userNotFound)
}

// IsEmailAlreadyExists checks if the given error was due to a duplicate email.
func IsEmailAlreadyExists(err error) bool {
	return hasAuthErrorCode(err, emailAlreadyExists)
}

// IsPhoneNumberAlreadyExists checks if the given error was due to a duplicate phone number.
func IsPhoneNumberAlreadyExists(err error) bool {
	return hasAuthErrorCode(err, phoneNumberAlreadyExists)
}

// IsUIDAlreadyExists checks if the given error was due to a duplicate uid.
func IsUIDAlreadyExists(err error) bool {
	return hasAuthErrorCode(err, uidAlreadyExists)
}

// IsConfigurationNotFound checks if the given error was due to a non-existing identity
// provider configuration.
func IsConfigurationNotFound(err error) bool {
	return hasAuthErrorCode(err, configurationNotFound)
}

// IsTenantNotFound checks if the given error was due to a non-existing tenant.
func IsTenantNotFound(err error) bool {
	return hasAuthErrorCode(err, tenantNotFound)
}

// IsUnauthorizedContinueURI checks if the given error was due to an unauthorized continue URI
// domain.
func IsUnauthorizedContinueURI(err error) bool {
	return hasAuthErrorCode(err, unauthorizedContinueURI)
}

// serverError maps the error strings sent by the Helios identity service to the auth error
// codes exposed by this SDK.
var serverError = map[string]string{
	"CONFIGURATION_NOT_FOUND": configurationNotFound,
	"DUPLICATE_EMAIL":         emailAlreadyExists,
	"DUPLICATE_LOCAL_ID":      uidAlreadyExists,
	"EMAIL_EXISTS":            emailAlreadyExists,
	"PHONE_NUMBER_EXISTS":     phoneNumberAlreadyExists,
	"TENANT_NOT_FOUND":        tenantNotFound,
	"UNAUTHORIZED_DOMAIN":     unauthorizedContinueURI,
	"USER_NOT_FOUND":          userNotFound,
}

func handleHTTPError(resp *internal.Response) error {
	err := internal.NewPlatformErrorFromPayload(resp)

	var httpErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	json.Unmarshal(resp.Body, &httpErr) // ignore any json parse errors at this level

	// Error messages are of the form "CODE" or "CODE : details".
	serverCode := strings.TrimSpace(strings.SplitN(httpErr.Error.Message, ":", 2)[0])
	if clientCode, ok := serverError[serverCode]; ok {
		err.Ext[authErrorCode] = clientCode
	}
	return err
}

func (c *baseClient) post(ctx context.Context, path string, body, v interface{}) (*internal.Response, error) {
	return c.makeRequest(ctx, http.MethodPost, path, internal.NewJSONEntity(body), v)
}

func (c *baseClient) get(ctx context.Context, path string, v interface{}, opts ...internal.HTTPOption) (*internal.Response, error) {
	req := &internal.Request{
		Method: http.MethodGet,
		Opts:   opts,
	}
	return c.makeUserMgtRequest(ctx, req, path, v)
}

func (c *baseClient) makeRequest(
	ctx context.Context, method, path string, body internal.HTTPEntity, v interface{}) (*internal.Response, error) {

	req := &internal.Request{
		Method: method,
		Body:   body,
	}
	return c.makeUserMgtRequest(ctx, req, path, v)
}

func (c *baseClient) makeUserMgtRequest(
	ctx context.Context, req *internal.Request, path string, v interface{}) (*internal.Response, error) {

	if c.projectID == "" {
		return nil, errors.New("project id not available")
	}
	if c.tenantID != "" {
		req.URL = fmt.Sprintf("%s/projects/%s/tenants/%s%s", c.userManagementEndpoint, c.projectID, c.tenantID, path)
	} else {
		req.URL = fmt.Sprintf("%s/projects/%s%s", c.userManagementEndpoint, c.projectID, path)
	}
	return c.httpClient.DoAndUnmarshal(ctx, req, v)
}

var phoneNumberPattern = regexp.MustCompile(`\+.*[0-9A-Za-z]`)

func validateUID(uid string) error {
	if uid == "" {
		return fmt.Errorf("uid must be a non-empty string")
	}
	if len(uid) > 128 {
		return fmt.Errorf("uid string must not be longer than 128 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email must be a non-empty string")
	}
	if parts := strings.Split(email, "@"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("malformed email string: %q", email)
	}
	return nil
}

func validatePassword(val string) error {
	if len(val) < 6 {
		return fmt.Errorf("password must be a string at least 6 characters long")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number must be a non-empty string")
	}
	if !phoneNumberPattern.MatchString(phone) {
		return fmt.Errorf("phone number must be a valid, E.164 compliant identifier")
	}
	return nil
}

func validateDisplayName(val string) error {
	if val == "" {
		return fmt.Errorf("display name must be a non-empty string")
	}
	return nil
}

func validatePhotoURL(val string) error {
	if val == "" {
		return fmt.Errorf("photo url must be a non-empty string")
	}
	return nil
}
