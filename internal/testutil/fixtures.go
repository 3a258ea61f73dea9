package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"photoshare-backend/internal/models"

	"github.com/stretchr/testify/require"
)

// PNG returns a small valid PNG image.
func PNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// CreateUser inserts a user with a placeholder password hash.
func (s *MemoryStore) CreateUser(t testing.TB, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, "not-a-real-hash")
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

// CreateGroup inserts a group created by creatorID with the given extra members.
func (s *MemoryStore) CreateGroup(t testing.TB, name string, creatorID int64, memberIDs ...int64) *models.Group {
	t.Helper()
	ctx := context.Background()
	group := models.NewGroup(name, nil, creatorID)
	require.NoError(t, s.Groups().Create(ctx, group))
	for _, id := range memberIDs {
		require.NoError(t, s.Groups().AddMember(ctx, models.NewGroupMembership(group.ID, id)))
	}
	return group
}

// CreateImage inserts an image owned by ownerID.
func (s *MemoryStore) CreateImage(t testing.TB, ownerID int64) *models.Image {
	t.Helper()
	img := models.NewImage(ownerID, "/uploads/test.png", nil)
	require.NoError(t, s.Images().Create(context.Background(), img))
	return img
}
