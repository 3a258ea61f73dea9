package services

import (
	"context"
	"fmt"

	"photoshare-backend/internal/metrics"
	"photoshare-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Broadcaster delivers a stored notification to the recipient's live connections
type Broadcaster interface {
	Publish(ctx context.Context, recipientID int64, n *models.NotificationWithDetails) error
}

// Pusher sends a device push for a stored notification
type Pusher interface {
	Push(ctx context.Context, deviceToken string, n *models.Notification) error
}

// Dispatcher creates notifications as a side effect of other writes.
// Delivery is best-effort: failures are logged and counted but never returned
// to the caller, and the triggering write is not rolled back.
type Dispatcher struct {
	notifications NotificationStore
	users         UserStore
	groups        GroupStore
	views         *ViewAssembler
	broadcaster   Broadcaster
	pusher        Pusher
}

// NewDispatcher creates a new dispatcher. broadcaster and pusher may be nil.
func NewDispatcher(
	notifications NotificationStore,
	users UserStore,
	groups GroupStore,
	views *ViewAssembler,
	broadcaster Broadcaster,
	pusher Pusher,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		groups:        groups,
		views:         views,
		broadcaster:   broadcaster,
		pusher:        pusher,
	}
}

// FriendRequestSent notifies the addressee
func (d *Dispatcher) FriendRequestSent(ctx context.Context, f *models.Friendship, requester *models.User) {
	n := models.NewNotification(f.AddresseeID, models.NotificationFriendRequest,
		fmt.Sprintf("%s sent you a friend request", requester.Username)).
		WithSender(requester.ID)
	d.dispatch(ctx, n)
}

// FriendRequestAnswered notifies the original requester of the outcome
func (d *Dispatcher) FriendRequestAnswered(ctx context.Context, f *models.Friendship, addressee *models.User) {
	n := models.NewNotification(f.RequesterID, models.NotificationFriendRequest,
		fmt.Sprintf("%s %s your friend request", addressee.Username, f.Status)).
		WithSender(addressee.ID)
	d.dispatch(ctx, n)
}

// ImageShared notifies every direct recipient and every member of the shared
// groups except the owner. A recipient reached through several targets is
// notified once, for the first target that reaches them.
func (d *Dispatcher) ImageShared(ctx context.Context, image *models.Image, owner *models.User, userIDs []int64, groups []*models.Group) {
	notified := map[int64]bool{owner.ID: true}

	for _, userID := range userIDs {
		if notified[userID] {
			continue
		}
		notified[userID] = true

		n := models.NewNotification(userID, models.NotificationImageShare,
			fmt.Sprintf("%s shared an image with you", owner.Username)).
			WithSender(owner.ID).
			WithImage(image.ID)
		d.dispatch(ctx, n)
	}

	for _, group := range groups {
		members, err := d.groups.ListMembers(ctx, group.ID)
		if err != nil {
			metrics.RecordNotification(string(models.NotificationImageShare), err)
			log.Error().
				Err(err).
				Int64("group_id", group.ID).
				Int64("image_id", image.ID).
				Msg("Failed to list group members for share notifications")
			continue
		}

		for _, m := range members {
			if notified[m.UserID] {
				continue
			}
			notified[m.UserID] = true

			n := models.NewNotification(m.UserID, models.NotificationImageShare,
				fmt.Sprintf("%s shared an image with %s", owner.Username, group.Name)).
				WithSender(owner.ID).
				WithGroup(group.ID).
				WithImage(image.ID)
			d.dispatch(ctx, n)
		}
	}
}

// MemberAdded notifies a user who was added to a group
func (d *Dispatcher) MemberAdded(ctx context.Context, group *models.Group, actor *models.User, addedUserID int64) {
	n := models.NewNotification(addedUserID, models.NotificationGroupInvite,
		fmt.Sprintf("%s added you to %s", actor.Username, group.Name)).
		WithSender(actor.ID).
		WithGroup(group.ID)
	d.dispatch(ctx, n)
}

func (d *Dispatcher) dispatch(ctx context.Context, n *models.Notification) {
	err := d.notifications.Create(ctx, n)
	metrics.RecordNotification(string(n.Type), err)
	if err != nil {
		log.Error().
			Err(err).
			Int64("recipient_id", n.UserID).
			Str("type", string(n.Type)).
			Msg("Failed to store notification")
		return
	}

	if d.broadcaster != nil {
		d.publish(ctx, n)
	}
	if d.pusher != nil {
		d.push(ctx, n)
	}
}

func (d *Dispatcher) publish(ctx context.Context, n *models.Notification) {
	details, err := d.views.NotificationWithDetails(ctx, n)
	if err != nil {
		log.Error().Err(err).Int64("notification_id", n.ID).Msg("Failed to assemble notification for delivery")
		return
	}
	if err := d.broadcaster.Publish(ctx, n.UserID, details); err != nil {
		log.Warn().Err(err).Int64("recipient_id", n.UserID).Msg("Failed to publish notification")
	}
}

func (d *Dispatcher) push(ctx context.Context, n *models.Notification) {
	recipient, err := d.users.GetByID(ctx, n.UserID)
	if err != nil {
		log.Error().Err(err).Int64("recipient_id", n.UserID).Msg("Failed to load push recipient")
		return
	}
	if recipient == nil || recipient.PushToken == nil || *recipient.PushToken == "" {
		return
	}
	if err := d.pusher.Push(ctx, *recipient.PushToken, n); err != nil {
		log.Warn().Err(err).Int64("recipient_id", n.UserID).Msg("Failed to send push notification")
	}
}
