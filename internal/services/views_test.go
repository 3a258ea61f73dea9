package services

import (
	"context"
	"encoding/json"
	"testing"

	"photoshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewAssembler_ImageWithoutSharesHasEmptySets(t *testing.T) {
	env := newTestEnv(t)
	owner := env.store.CreateUser(t, "owner")
	img := env.store.CreateImage(t, owner.ID)

	view, err := env.views.ImageWithShares(context.Background(), img)
	require.NoError(t, err)
	require.NotNil(t, view.Shares.Users)
	require.NotNil(t, view.Shares.Groups)
	assert.Empty(t, view.Shares.Users)
	assert.Empty(t, view.Shares.Groups)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shares":{"users":[],"groups":[]}`)
}

func TestViewAssembler_ImagePartitionsShares(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.store.CreateUser(t, "owner")
	alice := env.store.CreateUser(t, "alice")
	gone := env.store.CreateUser(t, "gone")
	group := env.store.CreateGroup(t, "friends", owner.ID)
	img := env.store.CreateImage(t, owner.ID)

	require.NoError(t, env.store.Shares().Create(ctx, models.NewUserShare(img.ID, alice.ID)))
	require.NoError(t, env.store.Shares().Create(ctx, models.NewUserShare(img.ID, gone.ID)))
	require.NoError(t, env.store.Shares().Create(ctx, models.NewGroupShare(img.ID, group.ID)))
	env.store.DeleteUser(gone.ID)

	view, err := env.views.ImageWithShares(ctx, img)
	require.NoError(t, err)

	require.Len(t, view.Shares.Users, 1)
	assert.Equal(t, "alice", view.Shares.Users[0].Username)
	require.Len(t, view.Shares.Groups, 1)
	assert.Equal(t, "friends", view.Shares.Groups[0].Name)
}

func TestViewAssembler_FriendWithUserIsOtherParty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")
	f := models.NewFriendRequest(a.ID, b.ID)
	require.NoError(t, env.store.Friendships().Create(ctx, f))

	fromA, err := env.views.FriendWithUser(ctx, f, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "boris", fromA.User.Username)

	fromB, err := env.views.FriendWithUser(ctx, f, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", fromB.User.Username)

	env.store.DeleteUser(a.ID)
	missing, err := env.views.FriendWithUser(ctx, f, b.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := env.views.FriendsWithUsers(ctx, []*models.Friendship{f}, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestViewAssembler_GroupDropsMissingMembers(t *testing.T) {
	env := newTestEnv(t)

	owner := env.store.CreateUser(t, "owner")
	kept := env.store.CreateUser(t, "kept")
	gone := env.store.CreateUser(t, "gone")
	group := env.store.CreateGroup(t, "g", owner.ID, kept.ID, gone.ID)
	env.store.DeleteUser(gone.ID)

	view, err := env.views.GroupWithMembers(context.Background(), group)
	require.NoError(t, err)

	names := []string{}
	for _, m := range view.Members {
		names = append(names, m.Username)
	}
	assert.Equal(t, []string{"owner", "kept"}, names)
}

func TestViewAssembler_NotificationDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sender := env.store.CreateUser(t, "sender")
	recipient := env.store.CreateUser(t, "recipient")
	group := env.store.CreateGroup(t, "g", sender.ID, recipient.ID)
	img := env.store.CreateImage(t, sender.ID)

	n := models.NewNotification(recipient.ID, models.NotificationImageShare, "hi").
		WithSender(sender.ID).WithGroup(group.ID).WithImage(img.ID)
	require.NoError(t, env.store.Notifications().Create(ctx, n))

	full, err := env.views.NotificationWithDetails(ctx, n)
	require.NoError(t, err)
	require.NotNil(t, full.Sender)
	require.NotNil(t, full.Group)
	require.NotNil(t, full.Image)
	assert.Equal(t, "sender", full.Sender.Username)

	env.store.DeleteUser(sender.ID)
	env.store.DeleteGroup(group.ID)
	require.NoError(t, env.store.Images().Delete(ctx, img.ID))

	dangling, err := env.views.NotificationWithDetails(ctx, n)
	require.NoError(t, err)
	assert.Nil(t, dangling.Sender)
	assert.Nil(t, dangling.Group)
	assert.Nil(t, dangling.Image)

	data, err := json.Marshal(dangling)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"sender"`)
	assert.NotContains(t, string(data), `"group"`)
	assert.NotContains(t, string(data), `"image"`)

	plain := models.NewNotification(recipient.ID, models.NotificationFriendRequest, "plain")
	view, err := env.views.NotificationWithDetails(ctx, plain)
	require.NoError(t, err)
	assert.Nil(t, view.Sender)
}
