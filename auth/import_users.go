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
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/helios-identity/helios-admin-go/internal"
)

// UserImportOption is an option for the ImportUsers function.
type UserImportOption interface {
	applyTo(req map[string]interface{}) error
}

// UserImportResult represents the result of an ImportUsers call.
type UserImportResult struct {
	// Users successfully imported.
	SuccessCount int

	// Users that failed to import.
	FailureCount int

	// Errors for the users that failed to import. The Index field corresponds to the index of
	// the failed user in the users array that was passed to ImportUsers.
	Errors []*ErrorInfo
}

// ErrorInfo represents an error encountered while importing a single user account.
type ErrorInfo struct {
	Index  int    `json:"index"`
	Reason string `json:"message"`
}

// UserImportHash represents a hash algorithm and the associated configuration that can be used
// to hash user passwords.
//
// A UserImportHash must be specified in the form of a UserImportOption when importing users
// with passwords. See ImportUsers and WithHash functions.
type UserImportHash interface {
	Config() (internal.HashConfig, error)
}

// WithHash returns a UserImportOption that specifies a hash configuration.
func WithHash(hash UserImportHash) UserImportOption {
	return withHash{hash}
}

type withHash struct {
	hash UserImportHash
}

func (w withHash) applyTo(req map[string]interface{}) error {
	conf, err := w.hash.Config()
	if err != nil {
		return err
	}
	for k, v := range conf {
		req[k] = v
	}
	return nil
}

// UserToImport represents a user account that can be bulk imported into Helios Auth.
type UserToImport struct {
	info map[string]interface{}
}

// UserProvider represents a user identity provider.
//
// One or more user providers can be specified for each user when importing in bulk.
// See UserToImport type.
type UserProvider struct {
	UID         string `json:"rawId"`
	ProviderID  string `json:"providerId"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// UID setter. This field is required.
func (u *UserToImport) UID(uid string) *UserToImport {
	return u.set("localId", uid)
}

// CustomClaims setter.
func (u *UserToImport) CustomClaims(claims map[string]interface{}) *UserToImport {
	return u.set("customClaims", claims)
}

// Disabled setter.
func (u *UserToImport) Disabled(disabled bool) *UserToImport {
	return u.set("disabled", disabled)
}

// DisplayName setter.
func (u *UserToImport) DisplayName(displayName string) *UserToImport {
	return u.set("displayName", displayName)
}

// Email setter.
func (u *UserToImport) Email(email string) *UserToImport {
	return u.set("email", email)
}

// EmailVerified setter.
func (u *UserToImport) EmailVerified(emailVerified bool) *UserToImport {
	return u.set("emailVerified", emailVerified)
}

// Metadata setter.
func (u *UserToImport) Metadata(metadata *UserMetadata) *UserToImport {
	return u.set("metadata", metadata)
}

// PasswordHash setter. When set a valid hash configuration must be specified as an option to
// the ImportUsers function.
func (u *UserToImport) PasswordHash(password []byte) *UserToImport {
	return u.set("passwordHash", password)
}

// PasswordSalt setter.
func (u *UserToImport) PasswordSalt(salt []byte) *UserToImport {
	return u.set("salt", salt)
}

// PhoneNumber setter.
func (u *UserToImport) PhoneNumber(phoneNumber string) *UserToImport {
	return u.set("phoneNumber", phoneNumber)
}

// PhotoURL setter.
func (u *UserToImport) PhotoURL(url string) *UserToImport {
	return u.set("photoUrl", url)
}

// ProviderData setter.
func (u *UserToImport) ProviderData(providers []*UserProvider) *UserToImport {
	return u.set("providerUserInfo", providers)
}

func (u *UserToImport) set(key string, value interface{}) *UserToImport {
	if u.info == nil {
		u.info = make(map[string]interface{})
	}
	u.info[key] = value
	return u
}

// ImportUsers imports an array of users to Helios Auth.
//
// No more than 1000 users can be imported in a single call. If at least one user specifies a
// password, a UserImportHash must be specified as an option.
func (c *baseClient) ImportUsers(ctx context.Context, users []*UserToImport, opts ...UserImportOption) (*UserImportResult, error) {
	if len(users) == 0 {
		return nil, errors.New("users list must not be empty")
	}
	if len(users) > maxImportUsers {
		return nil, fmt.Errorf("users list must not contain more than %d elements", maxImportUsers)
	}

	req := make(map[string]interface{})
	hashRequired := false
	var validatedUsers []map[string]interface{}
	for _, u := range users {
		vu, err := u.validatedUserInfo()
		if err != nil {
			return nil, err
		}
		if _, ok := vu["passwordHash"]; ok {
			hashRequired = true
		}
		validatedUsers = append(validatedUsers, vu)
	}
	req["users"] = validatedUsers

	for _, opt := range opts {
		if err := opt.applyTo(req); err != nil {
			return nil, err
		}
	}

	if hashRequired {
		if _, ok := req["hashAlgorithm"]; !ok {
			return nil, errors.New("hash algorithm option is required to import users with passwords")
		}
	}

	var parsed struct {
		Error []*ErrorInfo `json:"error"`
	}
	if _, err := c.post(ctx, "/accounts:batchCreate", req, &parsed); err != nil {
		return nil, err
	}

	return &UserImportResult{
		SuccessCount: len(users) - len(parsed.Error),
		FailureCount: len(parsed.Error),
		Errors:       parsed.Error,
	}, nil
}

func (u *UserToImport) validatedUserInfo() (map[string]interface{}, error) {
	if len(u.info) == 0 {
		return nil, errors.New("no parameters are set on the user to import")
	}

	info := make(map[string]interface{})
	for key, value := range u.info {
		switch key {
		case "customClaims":
			claims, err := marshalCustomClaims(value.(map[string]interface{}))
			if err != nil {
				return nil, err
			}
			info["customAttributes"] = claims
		case "email":
			if err := validateEmail(value.(string)); err != nil {
				return nil, err
			}
			info["email"] = value
		case "localId":
			if err := validateUID(value.(string)); err != nil {
				return nil, err
			}
			info["localId"] = value
		case "metadata":
			metadata := value.(*UserMetadata)
			if metadata.CreationTimestamp != 0 {
				info["createdAt"] = metadata.CreationTimestamp
			}
			if metadata.LastLogInTimestamp != 0 {
				info["lastLoginAt"] = metadata.LastLogInTimestamp
			}
		case "passwordHash":
			info["passwordHash"] = base64.RawURLEncoding.EncodeToString(value.([]byte))
		case "salt":
			info["salt"] = base64.RawURLEncoding.EncodeToString(value.([]byte))
		case "phoneNumber":
			if err := validatePhone(value.(string)); err != nil {
				return nil, err
			}
			info["phoneNumber"] = value
		case "providerUserInfo":
			providers := value.([]*UserProvider)
			for _, p := range providers {
				if p.UID == "" {
					return nil, errors.New("user provider must specify a uid")
				}
				if p.ProviderID == "" {
					return nil, errors.New("user provider must specify a provider ID")
				}
			}
			info["providerUserInfo"] = providers
		default:
			info[key] = value
		}
	}

	if _, ok := info["localId"]; !ok {
		return nil, errors.New("no uid specified for user")
	}
	return info, nil
}
