package services

import (
	"context"
	"errors"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// GroupService handles groups, memberships and group image listings
type GroupService struct {
	groups     GroupStore
	users      UserStore
	images     ImageStore
	access     *AccessResolver
	views      *ViewAssembler
	dispatcher *Dispatcher
}

// NewGroupService creates a new group service
func NewGroupService(
	groups GroupStore,
	users UserStore,
	images ImageStore,
	access *AccessResolver,
	views *ViewAssembler,
	dispatcher *Dispatcher,
) *GroupService {
	return &GroupService{
		groups:     groups,
		users:      users,
		images:     images,
		access:     access,
		views:      views,
		dispatcher: dispatcher,
	}
}

// Create creates a group with creatorID as its first member
func (s *GroupService) Create(ctx context.Context, creatorID int64, name string, description *string) (*models.GroupWithMembers, error) {
	name = sanitizeText(name, maxGroupNameLength)
	if name == "" {
		return nil, apperror.InvalidInput("Group name is required")
	}

	group := models.NewGroup(name, optionalText(description, maxDescriptionLength), creatorID)
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperror.Unexpected(err, "failed to create group")
	}

	log.Info().Int64("user_id", creatorID).Int64("group_id", group.ID).Msg("Group created")

	return s.withMembers(ctx, group)
}

// List returns the caller's groups with members
func (s *GroupService) List(ctx context.Context, userID int64) ([]*models.GroupWithMembers, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get groups")
	}
	views, err := s.views.GroupsWithMembers(ctx, groups)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load group members")
	}
	return views, nil
}

// Get returns a group the caller belongs to
func (s *GroupService) Get(ctx context.Context, userID, groupID int64) (*models.GroupWithMembers, error) {
	group, err := s.loadForMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	return s.withMembers(ctx, group)
}

// AddMember adds userID to the group and notifies them. Any member may add users.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID int64) (*models.GroupWithMembers, error) {
	group, err := s.loadForMember(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get user")
	}
	if target == nil {
		return nil, apperror.NotFound("User not found")
	}

	if err := s.groups.AddMember(ctx, models.NewGroupMembership(groupID, userID)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.InvalidInput("User is already a member of this group")
		}
		return nil, apperror.Unexpected(err, "failed to add group member")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get user")
	}
	if actor != nil && actorID != userID {
		s.dispatcher.MemberAdded(ctx, group, actor, userID)
	}

	log.Info().
		Int64("group_id", groupID).
		Int64("actor_id", actorID).
		Int64("user_id", userID).
		Msg("Group member added")

	return s.withMembers(ctx, group)
}

// RemoveMember removes userID from the group. Members may leave; only the creator removes others.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID int64) error {
	group, err := s.loadForMember(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if !CanRemoveMember(group, actorID, userID) {
		return apperror.Forbidden("Only the group creator can remove other members")
	}

	removed, err := s.groups.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return apperror.Unexpected(err, "failed to remove group member")
	}
	if !removed {
		return apperror.NotFound("User is not a member of this group")
	}

	log.Info().
		Int64("group_id", groupID).
		Int64("actor_id", actorID).
		Int64("user_id", userID).
		Msg("Group member removed")
	return nil
}

// ListImages returns the images shared with a group the caller belongs to
func (s *GroupService) ListImages(ctx context.Context, userID, groupID int64) ([]*models.ImageWithShares, error) {
	if _, err := s.loadForMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	images, err := s.images.ListSharedWithGroup(ctx, groupID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get group images")
	}
	views, err := s.views.ImagesWithShares(ctx, images)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load image shares")
	}
	return views, nil
}

// loadForMember returns the group, NotFound when missing or Forbidden when userID is not a member
func (s *GroupService) loadForMember(ctx context.Context, userID, groupID int64) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get group")
	}
	if group == nil {
		return nil, apperror.NotFound("Group not found")
	}

	member, err := s.access.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to check group membership")
	}
	if !member {
		return nil, apperror.Forbidden("You are not a member of this group")
	}
	return group, nil
}

func (s *GroupService) withMembers(ctx context.Context, group *models.Group) (*models.GroupWithMembers, error) {
	view, err := s.views.GroupWithMembers(ctx, group)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load group members")
	}
	return view, nil
}
