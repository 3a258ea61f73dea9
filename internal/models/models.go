package models

import "time"

// FriendshipStatus is the state of a friend request
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// NotificationType identifies what triggered a notification
type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationGroupInvite   NotificationType = "group_invite"
	NotificationImageShare    NotificationType = "image_share"
)

// User represents a registered account
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image represents an uploaded image owned by one user
type Image struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"userId"`
	Path        string    `json:"path"`
	Description *string   `json:"description,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Friendship links a requester and an addressee
type Friendship struct {
	ID          int64            `json:"id"`
	RequesterID int64            `json:"requesterId"`
	AddresseeID int64            `json:"addresseeId"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Group is a named set of users created by one of them
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupMembership links a user to a group
type GroupMembership struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"groupId"`
	UserID   int64     `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ImageShare grants a user or a group visibility into an image.
// Exactly one of UserID and GroupID is set.
type ImageShare struct {
	ID       int64     `json:"id"`
	ImageID  int64     `json:"imageId"`
	UserID   *int64    `json:"userId,omitempty"`
	GroupID  *int64    `json:"groupId,omitempty"`
	SharedAt time.Time `json:"sharedAt"`
}

// Notification is created as a side effect of friend requests, group invites and shares
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	Type      NotificationType `json:"type"`
	Content   string           `json:"content"`
	SenderID  *int64           `json:"senderId,omitempty"`
	GroupID   *int64           `json:"groupId,omitempty"`
	ImageID   *int64           `json:"imageId,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ImageDate is a month bucket with at least one image. Month is zero-indexed (January = 0).
type ImageDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewUser builds a user from a username and an already hashed password
func NewUser(username, passwordHash string) *User {
	return &User{Username: username, Password: passwordHash}
}

// NewImage builds an image owned by ownerID stored at path
func NewImage(ownerID int64, path string, description *string) *Image {
	return &Image{OwnerID: ownerID, Path: path, Description: description}
}

// NewFriendRequest builds a pending friendship from requester to addressee
func NewFriendRequest(requesterID, addresseeID int64) *Friendship {
	return &Friendship{RequesterID: requesterID, AddresseeID: addresseeID, Status: FriendshipPending}
}

// NewGroup builds a group created by createdBy
func NewGroup(name string, description *string, createdBy int64) *Group {
	return &Group{Name: name, Description: description, CreatedBy: createdBy}
}

// NewGroupMembership builds a membership of userID in groupID
func NewGroupMembership(groupID, userID int64) *GroupMembership {
	return &GroupMembership{GroupID: groupID, UserID: userID}
}

// NewUserShare builds a share of an image with one user
func NewUserShare(imageID, userID int64) *ImageShare {
	return &ImageShare{ImageID: imageID, UserID: &userID}
}

// NewGroupShare builds a share of an image with a group
func NewGroupShare(imageID, groupID int64) *ImageShare {
	return &ImageShare{ImageID: imageID, GroupID: &groupID}
}

// NewNotification builds an unread notification for recipientID
func NewNotification(recipientID int64, typ NotificationType, content string) *Notification {
	return &Notification{UserID: recipientID, Type: typ, Content: content}
}

// WithSender sets the acting user
func (n *Notification) WithSender(senderID int64) *Notification {
	n.SenderID = &senderID
	return n
}

// WithGroup sets the related group
func (n *Notification) WithGroup(groupID int64) *Notification {
	n.GroupID = &groupID
	return n
}

// WithImage sets the related image
func (n *Notification) WithImage(imageID int64) *Notification {
	n.ImageID = &imageID
	return n
}

// OtherParty returns the id of the user on the other side of the friendship from viewerID
func (f *Friendship) OtherParty(viewerID int64) int64 {
	if f.RequesterID == viewerID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// Involves reports whether userID is the requester or the addressee
func (f *Friendship) Involves(userID int64) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// ValidResponse reports whether status is an allowed answer to a pending request
func ValidResponse(status FriendshipStatus) bool {
	return status == FriendshipAccepted || status == FriendshipDeclined
}
