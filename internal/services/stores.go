package services

import (
	"context"
	"time"

	"photoshare-backend/internal/models"
)

// The store interfaces below are satisfied by the repository package and by
// the in-memory store used in tests.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, query string, excludeID int64, limit int) ([]*models.User, error)
	UpdatePushToken(ctx context.Context, userID int64, pushToken *string) error
}

type ImageStore interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id int64) (*models.Image, error)
	GetByPath(ctx context.Context, path string) (*models.Image, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Image, error)
	ListByOwnerBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]*models.Image, error)
	ListDates(ctx context.Context, ownerID int64) ([]models.ImageDate, error)
	ListSharedWithUser(ctx context.Context, userID int64) ([]*models.Image, error)
	ListSharedWithGroup(ctx context.Context, groupID int64) ([]*models.Image, error)
	Delete(ctx context.Context, id int64) error
}

type ShareStore interface {
	Create(ctx context.Context, share *models.ImageShare) error
	ListByImage(ctx context.Context, imageID int64) ([]*models.ImageShare, error)
	HasUserShare(ctx context.Context, imageID, userID int64) (bool, error)
	HasGroupShareForMember(ctx context.Context, imageID, userID int64) (bool, error)
}

type FriendshipStore interface {
	Create(ctx context.Context, f *models.Friendship) error
	GetByID(ctx context.Context, id int64) (*models.Friendship, error)
	GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error)
	ListAccepted(ctx context.Context, userID int64) ([]*models.Friendship, error)
	ListPendingFor(ctx context.Context, addresseeID int64) ([]*models.Friendship, error)
	Respond(ctx context.Context, id int64, status models.FriendshipStatus) (bool, error)
}

type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	ListByMember(ctx context.Context, userID int64) ([]*models.Group, error)
	AddMember(ctx context.Context, membership *models.GroupMembership) error
	RemoveMember(ctx context.Context, groupID, userID int64) (bool, error)
	ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMembership, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	ListByRecipient(ctx context.Context, userID int64) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}
