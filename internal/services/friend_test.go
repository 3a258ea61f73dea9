package services

import (
	"context"
	"strings"
	"testing"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendService_RequestAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")

	sent, err := env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "boris", sent.User.Username)

	requests, err := env.friends.ListRequests(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "anna", requests[0].User.Username)

	toB := env.notificationsOf(t, b.ID)
	require.Len(t, toB, 1)
	assert.Equal(t, "anna sent you a friend request", toB[0].Content)

	answered, err := env.friends.Respond(ctx, b.ID, requests[0].ID, models.FriendshipAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, answered.Status)
	assert.Equal(t, "anna", answered.User.Username)

	friendsOfA, err := env.friends.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friendsOfA, 1)
	assert.Equal(t, "boris", friendsOfA[0].User.Username)

	friendsOfB, err := env.friends.ListFriends(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, friendsOfB, 1)
	assert.Equal(t, "anna", friendsOfB[0].User.Username)

	toA := env.notificationsOf(t, a.ID)
	require.Len(t, toA, 1)
	assert.Equal(t, models.NotificationFriendRequest, toA[0].Type)
	assert.True(t, strings.Contains(toA[0].Content, "accepted"))

	requests, err = env.friends.ListRequests(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestFriendService_SendRequestRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")
	c := env.store.CreateUser(t, "chen")

	_, err := env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	declined, err := env.friends.SendRequest(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = env.friends.Respond(ctx, a.ID, declined.ID, models.FriendshipDeclined)
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to int64
		kind     apperror.Kind
	}{
		{"self request", a.ID, a.ID, apperror.KindInvalidInput},
		{"same direction duplicate", a.ID, b.ID, apperror.KindInvalidInput},
		{"reverse direction duplicate", b.ID, a.ID, apperror.KindInvalidInput},
		{"declined pair stays blocked", a.ID, c.ID, apperror.KindInvalidInput},
		{"unknown addressee", a.ID, 9999, apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.friends.SendRequest(ctx, tt.from, tt.to)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestFriendService_RespondRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")
	c := env.store.CreateUser(t, "chen")

	req, err := env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = env.friends.Respond(ctx, b.ID, req.ID, "maybe")
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))

	_, err = env.friends.Respond(ctx, a.ID, req.ID, models.FriendshipAccepted)
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "requester cannot accept own request")

	_, err = env.friends.Respond(ctx, c.ID, req.ID, models.FriendshipAccepted)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = env.friends.Respond(ctx, b.ID, 9999, models.FriendshipAccepted)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = env.friends.Respond(ctx, b.ID, req.ID, models.FriendshipDeclined)
	require.NoError(t, err)

	_, err = env.friends.Respond(ctx, b.ID, req.ID, models.FriendshipAccepted)
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput), "declined is final")
}
