package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"photoshare-backend/internal/models"
	"photoshare-backend/internal/storage"
	"photoshare-backend/internal/testutil"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

type testEnv struct {
	store    *testutil.MemoryStore
	recorder *testutil.Recorder
	assetDir string

	access        *AccessResolver
	views         *ViewAssembler
	dispatcher    *Dispatcher
	users         *UserService
	images        *ImageService
	friends       *FriendService
	groups        *GroupService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.NewMemoryStore()
	recorder := testutil.NewRecorder()
	dir := t.TempDir()
	assets, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	users, images, shares := store.Users(), store.Images(), store.Shares()
	friendships, groups, notifications := store.Friendships(), store.Groups(), store.Notifications()

	access := NewAccessResolver(images, shares, groups)
	views := NewViewAssembler(users, images, shares, groups)
	dispatcher := NewDispatcher(notifications, users, groups, views, recorder, recorder)

	return &testEnv{
		store:         store,
		recorder:      recorder,
		assetDir:      dir,
		access:        access,
		views:         views,
		dispatcher:    dispatcher,
		users:         NewUserService(users, testSecret, time.Hour),
		images:        NewImageService(images, shares, users, groups, access, views, dispatcher, assets, 10<<20),
		friends:       NewFriendService(friendships, users, views, dispatcher),
		groups:        NewGroupService(groups, users, images, access, views, dispatcher),
		notifications: NewNotificationService(notifications, views),
	}
}

// upload sends a small PNG owned by ownerID with the given targets
func (e *testEnv) upload(t *testing.T, ownerID int64, userIDs, groupIDs []int64) *models.ImageWithShares {
	t.Helper()
	data := testutil.PNG(t)
	view, err := e.images.Upload(context.Background(), UploadInput{
		OwnerID:  ownerID,
		File:     bytes.NewReader(data),
		Size:     int64(len(data)),
		UserIDs:  userIDs,
		GroupIDs: groupIDs,
	})
	require.NoError(t, err)
	return view
}

// notificationsOf returns the stored notifications of a user, newest first
func (e *testEnv) notificationsOf(t *testing.T, userID int64) []*models.Notification {
	t.Helper()
	list, err := e.store.Notifications().ListByRecipient(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func countType(list []*models.Notification, typ models.NotificationType) int {
	n := 0
	for _, item := range list {
		if item.Type == typ {
			n++
		}
	}
	return n
}
