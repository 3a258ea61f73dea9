package services

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"
)

// AccessResolver answers who may see or change images, groups and friend requests
type AccessResolver struct {
	images ImageStore
	shares ShareStore
	groups GroupStore
}

// NewAccessResolver creates a new access resolver
func NewAccessResolver(images ImageStore, shares ShareStore, groups GroupStore) *AccessResolver {
	return &AccessResolver{images: images, shares: shares, groups: groups}
}

// HasImageAccess reports whether userID owns the image, has a direct share,
// or belongs to a group the image is shared with. A missing image yields false.
func (a *AccessResolver) HasImageAccess(ctx context.Context, userID, imageID int64) (bool, error) {
	image, err := a.images.GetByID(ctx, imageID)
	if err != nil {
		return false, err
	}
	if image == nil {
		return false, nil
	}
	return a.CanView(ctx, userID, image)
}

// CanView is HasImageAccess for an already loaded image
func (a *AccessResolver) CanView(ctx context.Context, userID int64, image *models.Image) (bool, error) {
	if image.OwnerID == userID {
		return true, nil
	}

	direct, err := a.shares.HasUserShare(ctx, image.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check direct share: %w", err)
	}
	if direct {
		return true, nil
	}

	viaGroup, err := a.shares.HasGroupShareForMember(ctx, image.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check group share: %w", err)
	}
	return viaGroup, nil
}

// IsGroupMember reports whether userID belongs to groupID
func (a *AccessResolver) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return a.groups.IsMember(ctx, groupID, userID)
}

// CanRemoveMember: members may remove themselves, only the creator may remove others.
func CanRemoveMember(group *models.Group, actorID, targetID int64) bool {
	return actorID == targetID || group.CreatedBy == actorID
}

// CanRespondToRequest: only the addressee may answer a request. Whether it is
// still pending is checked separately so the caller can tell the two apart.
func CanRespondToRequest(f *models.Friendship, actorID int64) bool {
	return f.AddresseeID == actorID
}
