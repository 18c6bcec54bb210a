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
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"github.com/helios-identity/helios-admin-go/auth"
	"github.com/helios-identity/helios-admin-go/auth/hash"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	uid := randomUID()
	email := uid + "@example.com"

	create := (&auth.UserToCreate{}).
		UID(uid).
		Email(email).
		DisplayName("Integration User").
		PhoneNumber(randomPhoneNumber()).
		Password("password")
	user, err := client.CreateUser(ctx, create)
	require.NoError(t, err)
	defer deleteUser(uid)
	require.Equal(t, uid, user.UID)
	require.Equal(t, email, user.Email)
	require.Equal(t, "Integration User", user.DisplayName)

	got, err := client.GetUser(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, user.UID, got.UID)

	got, err = client.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, uid, got.UID)

	got, err = client.GetUserByPhoneNumber(ctx, user.PhoneNumber)
	require.NoError(t, err)
	require.Equal(t, uid, got.UID)

	update := (&auth.UserToUpdate{}).
		DisplayName("Updated User").
		EmailVerified(true)
	got, err = client.UpdateUser(ctx, uid, update)
	require.NoError(t, err)
	require.Equal(t, "Updated User", got.DisplayName)
	require.True(t, got.EmailVerified)

	// Clearing attributes uses the delete sentinels under the hood.
	got, err = client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName("").PhoneNumber(""))
	require.NoError(t, err)
	require.Empty(t, got.DisplayName)
	require.Empty(t, got.PhoneNumber)

	require.NoError(t, client.DeleteUser(ctx, uid))
	_, err = client.GetUser(ctx, uid)
	require.True(t, auth.IsUserNotFound(err))
}

func TestCustomClaims(t *testing.T) {
	ctx := context.Background()
	uid := randomUID()

	_, err := client.CreateUser(ctx, (&auth.UserToCreate{}).UID(uid))
	require.NoError(t, err)
	defer deleteUser(uid)

	claims := map[string]interface{}{"admin": true, "package": "gold"}
	require.NoError(t, client.SetCustomUserClaims(ctx, uid, claims))

	got, err := client.GetUser(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, true, got.CustomClaims["admin"])
	require.Equal(t, "gold", got.CustomClaims["package"])

	require.NoError(t, client.SetCustomUserClaims(ctx, uid, nil))
	got, err = client.GetUser(ctx, uid)
	require.NoError(t, err)
	require.Empty(t, got.CustomClaims)
}

func TestUserIterator(t *testing.T) {
	ctx := context.Background()
	var uids []string
	for i := 0; i < 3; i++ {
		uid := randomUID()
		_, err := client.CreateUser(ctx, (&auth.UserToCreate{}).UID(uid))
		require.NoError(t, err)
		uids = append(uids, uid)
	}
	defer func() {
		for _, uid := range uids {
			deleteUser(uid)
		}
	}()

	seen := make(map[string]bool)
	it := client.Users(ctx, "")
	for {
		user, err := it.Next()
		if err == iterator.Done {
			break
		}
		require.NoError(t, err)
		seen[user.UID] = true
	}
	for _, uid := range uids {
		require.True(t, seen[uid], "user %s not returned by iterator", uid)
	}
}

func TestDeleteUsers(t *testing.T) {
	ctx := context.Background()
	var uids []string
	for i := 0; i < 3; i++ {
		uid := randomUID()
		_, err := client.CreateUser(ctx, (&auth.UserToCreate{}).UID(uid))
		require.NoError(t, err)
		uids = append(uids, uid)
	}

	result, err := client.DeleteUsers(ctx, uids)
	require.NoError(t, err)
	require.Equal(t, len(uids), result.SuccessCount)
	require.Zero(t, result.FailureCount)
}

func TestImportUsers(t *testing.T) {
	ctx := context.Background()
	uid := randomUID()

	users := []*auth.UserToImport{
		(&auth.UserToImport{}).
			UID(uid).
			Email(uid + "@example.com").
			PasswordHash([]byte("password-hash")).
			PasswordSalt([]byte("salt")),
	}
	result, err := client.ImportUsers(ctx, users, auth.WithHash(hash.HMACSHA256{
		Key: []byte("secret"),
	}))
	require.NoError(t, err)
	defer deleteUser(uid)
	require.Equal(t, 1, result.SuccessCount)
	require.Zero(t, result.FailureCount)

	got, err := client.GetUser(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, uid, got.UID)
}

func TestEmailActionLinks(t *testing.T) {
	ctx := context.Background()
	uid := randomUID()
	email := uid + "@example.com"

	_, err := client.CreateUser(ctx, (&auth.UserToCreate{}).UID(uid).Email(email).Password("password"))
	require.NoError(t, err)
	defer deleteUser(uid)

	link, err := client.PasswordResetLink(ctx, email)
	require.NoError(t, err)
	require.NotEmpty(t, link)

	link, err = client.EmailVerificationLink(ctx, email)
	require.NoError(t, err)
	require.NotEmpty(t, link)
}

func randomPhoneNumber() string {
	// uuid.UUID.ID() is a uint32, which always fits in ten digits.
	return fmt.Sprintf("+1%010d", uuid.New().ID())
}
