package models

// ImageShares partitions an image's shares into users and groups
type ImageShares struct {
	Users  []*User  `json:"users"`
	Groups []*Group `json:"groups"`
}

// ImageWithShares is an image with its resolved share targets
type ImageWithShares struct {
	Image
	Shares ImageShares `json:"shares"`
}

// FriendWithUser is a friendship with the other party attached
type FriendWithUser struct {
	Friendship
	User *User `json:"user"`
}

// GroupWithMembers is a group with its members resolved to users
type GroupWithMembers struct {
	Group
	Members []*User `json:"members"`
}

// NotificationWithDetails is a notification with whichever referenced rows still exist
type NotificationWithDetails struct {
	Notification
	Sender *User  `json:"sender,omitempty"`
	Group  *Group `json:"group,omitempty"`
	Image  *Image `json:"image,omitempty"`
}
