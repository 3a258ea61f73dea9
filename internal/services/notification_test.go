package services

import (
	"context"
	"testing"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_ReadState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")
	c := env.store.CreateUser(t, "chen")

	_, err := env.friends.SendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = env.friends.SendRequest(ctx, c.ID, a.ID)
	require.NoError(t, err)
	env.upload(t, b.ID, []int64{a.ID}, nil)

	list, err := env.notifications.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, models.NotificationImageShare, list[0].Type, "newest first")
	require.NotNil(t, list[0].Image)
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, "boris", list[0].Sender.Username)

	count, err := env.notifications.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = env.notifications.MarkRead(ctx, b.ID, list[0].ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = env.notifications.MarkRead(ctx, a.ID, 9999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	read, err := env.notifications.MarkRead(ctx, a.ID, list[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	updated, err := env.notifications.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err = env.notifications.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
