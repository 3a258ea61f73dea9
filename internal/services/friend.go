package services

import (
	"context"
	"errors"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// FriendService handles friend requests and friend lists
type FriendService struct {
	friendships FriendshipStore
	users       UserStore
	views       *ViewAssembler
	dispatcher  *Dispatcher
}

// NewFriendService creates a new friend service
func NewFriendService(friendships FriendshipStore, users UserStore, views *ViewAssembler, dispatcher *Dispatcher) *FriendService {
	return &FriendService{
		friendships: friendships,
		users:       users,
		views:       views,
		dispatcher:  dispatcher,
	}
}

// SendRequest creates a pending request from requesterID to addresseeID.
// Only one friendship may exist per pair of users, whatever its status or direction.
func (s *FriendService) SendRequest(ctx context.Context, requesterID, addresseeID int64) (*models.FriendWithUser, error) {
	if requesterID == addresseeID {
		return nil, apperror.InvalidInput("You cannot send a friend request to yourself")
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get requester")
	}
	if requester == nil {
		return nil, apperror.Unauthenticated("Unauthorized")
	}

	addressee, err := s.users.GetByID(ctx, addresseeID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get addressee")
	}
	if addressee == nil {
		return nil, apperror.NotFound("User not found")
	}

	existing, err := s.friendships.GetBetween(ctx, requesterID, addresseeID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to check existing friendship")
	}
	if existing != nil {
		return nil, apperror.InvalidInput("Friend request already exists")
	}

	f := models.NewFriendRequest(requesterID, addresseeID)
	if err := s.friendships.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.InvalidInput("Friend request already exists")
		}
		return nil, apperror.Unexpected(err, "failed to create friend request")
	}

	s.dispatcher.FriendRequestSent(ctx, f, requester)

	log.Info().
		Int64("requester_id", requesterID).
		Int64("addressee_id", addresseeID).
		Int64("friendship_id", f.ID).
		Msg("Friend request sent")

	return &models.FriendWithUser{Friendship: *f, User: addressee}, nil
}

// Respond accepts or declines a pending request addressed to actorID
func (s *FriendService) Respond(ctx context.Context, actorID, requestID int64, status models.FriendshipStatus) (*models.FriendWithUser, error) {
	if !models.ValidResponse(status) {
		return nil, apperror.InvalidInput("Status must be accepted or declined")
	}

	f, err := s.friendships.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get friend request")
	}
	if f == nil {
		return nil, apperror.NotFound("Friend request not found")
	}
	if !CanRespondToRequest(f, actorID) {
		return nil, apperror.Forbidden("Only the recipient can respond to this request")
	}
	if f.Status != models.FriendshipPending {
		return nil, apperror.InvalidInput("Friend request has already been answered")
	}

	updated, err := s.friendships.Respond(ctx, requestID, status)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to update friend request")
	}
	if !updated {
		return nil, apperror.InvalidInput("Friend request has already been answered")
	}
	f.Status = status

	addressee, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get addressee")
	}
	if addressee != nil {
		s.dispatcher.FriendRequestAnswered(ctx, f, addressee)
	}

	log.Info().
		Int64("friendship_id", f.ID).
		Str("status", string(status)).
		Msg("Friend request answered")

	view, err := s.views.FriendWithUser(ctx, f, actorID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load requester")
	}
	if view == nil {
		return &models.FriendWithUser{Friendship: *f}, nil
	}
	return view, nil
}

// ListFriends returns accepted friendships with the other party attached
func (s *FriendService) ListFriends(ctx context.Context, userID int64) ([]*models.FriendWithUser, error) {
	friendships, err := s.friendships.ListAccepted(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get friends")
	}
	views, err := s.views.FriendsWithUsers(ctx, friendships, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load friends")
	}
	return views, nil
}

// ListRequests returns pending requests addressed to userID with the requester attached
func (s *FriendService) ListRequests(ctx context.Context, userID int64) ([]*models.FriendWithUser, error) {
	friendships, err := s.friendships.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get friend requests")
	}
	views, err := s.views.FriendsWithUsers(ctx, friendships, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load friend requests")
	}
	return views, nil
}
