package services

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"
)

// ViewAssembler joins normalized rows into response shapes. It never writes.
// Rows referenced by a foreign key that no longer exist are left out.
type ViewAssembler struct {
	users  UserStore
	images ImageStore
	shares ShareStore
	groups GroupStore
}

// NewViewAssembler creates a new view assembler
func NewViewAssembler(users UserStore, images ImageStore, shares ShareStore, groups GroupStore) *ViewAssembler {
	return &ViewAssembler{users: users, images: images, shares: shares, groups: groups}
}

// ImageWithShares partitions an image's shares into users and groups
func (v *ViewAssembler) ImageWithShares(ctx context.Context, image *models.Image) (*models.ImageWithShares, error) {
	shares, err := v.shares.ListByImage(ctx, image.ID)
	if err != nil {
		return nil, err
	}

	view := &models.ImageWithShares{
		Image: *image,
		Shares: models.ImageShares{
			Users:  []*models.User{},
			Groups: []*models.Group{},
		},
	}

	for _, share := range shares {
		switch {
		case share.UserID != nil:
			user, err := v.users.GetByID(ctx, *share.UserID)
			if err != nil {
				return nil, err
			}
			if user != nil {
				view.Shares.Users = append(view.Shares.Users, user)
			}
		case share.GroupID != nil:
			group, err := v.groups.GetByID(ctx, *share.GroupID)
			if err != nil {
				return nil, err
			}
			if group != nil {
				view.Shares.Groups = append(view.Shares.Groups, group)
			}
		}
	}

	return view, nil
}

// ImagesWithShares assembles a list of images, keeping order
func (v *ViewAssembler) ImagesWithShares(ctx context.Context, images []*models.Image) ([]*models.ImageWithShares, error) {
	views := make([]*models.ImageWithShares, 0, len(images))
	for _, image := range images {
		view, err := v.ImageWithShares(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble image %d: %w", image.ID, err)
		}
		views = append(views, view)
	}
	return views, nil
}

// FriendWithUser attaches the other party relative to viewerID.
// It returns nil when that user no longer exists.
func (v *ViewAssembler) FriendWithUser(ctx context.Context, f *models.Friendship, viewerID int64) (*models.FriendWithUser, error) {
	user, err := v.users.GetByID(ctx, f.OtherParty(viewerID))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &models.FriendWithUser{Friendship: *f, User: user}, nil
}

// FriendsWithUsers assembles a list of friendships, dropping those whose other party is gone
func (v *ViewAssembler) FriendsWithUsers(ctx context.Context, friendships []*models.Friendship, viewerID int64) ([]*models.FriendWithUser, error) {
	views := make([]*models.FriendWithUser, 0, len(friendships))
	for _, f := range friendships {
		view, err := v.FriendWithUser(ctx, f, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble friendship %d: %w", f.ID, err)
		}
		if view != nil {
			views = append(views, view)
		}
	}
	return views, nil
}

// GroupWithMembers resolves a group's memberships to users
func (v *ViewAssembler) GroupWithMembers(ctx context.Context, group *models.Group) (*models.GroupWithMembers, error) {
	memberships, err := v.groups.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	view := &models.GroupWithMembers{Group: *group, Members: []*models.User{}}
	for _, m := range memberships {
		user, err := v.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			view.Members = append(view.Members, user)
		}
	}
	return view, nil
}

// GroupsWithMembers assembles a list of groups, keeping order
func (v *ViewAssembler) GroupsWithMembers(ctx context.Context, groups []*models.Group) ([]*models.GroupWithMembers, error) {
	views := make([]*models.GroupWithMembers, 0, len(groups))
	for _, group := range groups {
		view, err := v.GroupWithMembers(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble group %d: %w", group.ID, err)
		}
		views = append(views, view)
	}
	return views, nil
}

// NotificationWithDetails attaches sender, group and image when their keys are set and the rows exist
func (v *ViewAssembler) NotificationWithDetails(ctx context.Context, n *models.Notification) (*models.NotificationWithDetails, error) {
	view := &models.NotificationWithDetails{Notification: *n}

	if n.SenderID != nil {
		sender, err := v.users.GetByID(ctx, *n.SenderID)
		if err != nil {
			return nil, err
		}
		view.Sender = sender
	}
	if n.GroupID != nil {
		group, err := v.groups.GetByID(ctx, *n.GroupID)
		if err != nil {
			return nil, err
		}
		view.Group = group
	}
	if n.ImageID != nil {
		image, err := v.images.GetByID(ctx, *n.ImageID)
		if err != nil {
			return nil, err
		}
		view.Image = image
	}

	return view, nil
}

// NotificationsWithDetails assembles a list of notifications, keeping order
func (v *ViewAssembler) NotificationsWithDetails(ctx context.Context, notifications []*models.Notification) ([]*models.NotificationWithDetails, error) {
	views := make([]*models.NotificationWithDetails, 0, len(notifications))
	for _, n := range notifications {
		view, err := v.NotificationWithDetails(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble notification %d: %w", n.ID, err)
		}
		views = append(views, view)
	}
	return views, nil
}
