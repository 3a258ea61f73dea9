// Package testutil provides an in-memory entity store for service and handler tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"photoshare-backend/internal/models"
	"photoshare-backend/internal/repository"
)

// ErrInjected is returned by stores configured to fail.
var ErrInjected = errors.New("injected store failure")

// MemoryStore keeps every entity in maps guarded by one mutex. It mirrors the
// constraints of the PostgreSQL schema that services rely on.
type MemoryStore struct {
	mu sync.Mutex

	// Clock stamps created rows. The default ticks one second per call so ordering is deterministic.
	Clock func() time.Time
	// FailNotifications makes notification inserts fail.
	FailNotifications bool

	nextID        int64
	users         map[int64]*models.User
	images        map[int64]*models.Image
	shares        map[int64]*models.ImageShare
	friendships   map[int64]*models.Friendship
	groups        map[int64]*models.Group
	memberships   map[int64]*models.GroupMembership
	notifications map[int64]*models.Notification
}

func NewMemoryStore() *MemoryStore {
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	var tick int64
	s := &MemoryStore{
		users:         map[int64]*models.User{},
		images:        map[int64]*models.Image{},
		shares:        map[int64]*models.ImageShare{},
		friendships:   map[int64]*models.Friendship{},
		groups:        map[int64]*models.Group{},
		memberships:   map[int64]*models.GroupMembership{},
		notifications: map[int64]*models.Notification{},
	}
	s.Clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func (s *MemoryStore) Users() *MemoryUsers                 { return &MemoryUsers{s} }
func (s *MemoryStore) Images() *MemoryImages               { return &MemoryImages{s} }
func (s *MemoryStore) Shares() *MemoryShares               { return &MemoryShares{s} }
func (s *MemoryStore) Friendships() *MemoryFriendships     { return &MemoryFriendships{s} }
func (s *MemoryStore) Groups() *MemoryGroups               { return &MemoryGroups{s} }
func (s *MemoryStore) Notifications() *MemoryNotifications { return &MemoryNotifications{s} }

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) isMember(groupID, userID int64) bool {
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			return true
		}
	}
	return false
}

// SharesOf returns every share row of an image. Used to assert cascades.
func (s *MemoryStore) SharesOf(imageID int64) []*models.ImageShare {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ImageShare
	for _, sh := range s.shares {
		if sh.ImageID == imageID {
			c := *sh
			out = append(out, &c)
		}
	}
	return out
}

// NotificationsAbout returns every notification referencing an image.
func (s *MemoryStore) NotificationsAbout(imageID int64) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.ImageID != nil && *n.ImageID == imageID {
			c := *n
			out = append(out, &c)
		}
	}
	return out
}

// DeleteUser removes a user row without touching references, simulating a dangling key.
func (s *MemoryStore) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// DeleteGroup removes a group row without touching references.
func (s *MemoryStore) DeleteGroup(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, id)
}

// MemoryUsers implements the user store.
type MemoryUsers struct{ s *MemoryStore }

func (m *MemoryUsers) Create(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.s.id()
	user.CreatedAt = m.s.Clock()
	c := *user
	m.s.users[user.ID] = &c
	return nil
}

func (m *MemoryUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *MemoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, username) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryUsers) Search(ctx context.Context, query string, excludeID int64, limit int) ([]*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q := strings.ToLower(query)
	users := []*models.User{}
	for _, u := range m.s.users {
		if u.ID != excludeID && strings.Contains(strings.ToLower(u.Username), q) {
			c := *u
			users = append(users, &c)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *MemoryUsers) UpdatePushToken(ctx context.Context, userID int64, pushToken *string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

// MemoryImages implements the image store.
type MemoryImages struct{ s *MemoryStore }

func (m *MemoryImages) Create(ctx context.Context, image *models.Image) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	image.ID = m.s.id()
	image.UploadedAt = m.s.Clock()
	c := *image
	m.s.images[image.ID] = &c
	return nil
}

func (m *MemoryImages) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	img, ok := m.s.images[id]
	if !ok {
		return nil, nil
	}
	c := *img
	return &c, nil
}

func (m *MemoryImages) GetByPath(ctx context.Context, path string) (*models.Image, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, img := range m.s.images {
		if img.Path == path {
			c := *img
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryImages) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Image, error) {
	return m.filter(func(img *models.Image) bool { return img.OwnerID == ownerID }), nil
}

func (m *MemoryImages) ListByOwnerBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]*models.Image, error) {
	return m.filter(func(img *models.Image) bool {
		return img.OwnerID == ownerID && !img.UploadedAt.Before(from) && img.UploadedAt.Before(to)
	}), nil
}

func (m *MemoryImages) ListDates(ctx context.Context, ownerID int64) ([]models.ImageDate, error) {
	seen := map[models.ImageDate]bool{}
	dates := []models.ImageDate{}
	for _, img := range m.filter(func(img *models.Image) bool { return img.OwnerID == ownerID }) {
		t := img.UploadedAt.UTC()
		d := models.ImageDate{Year: t.Year(), Month: int(t.Month()) - 1}
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		if dates[i].Year != dates[j].Year {
			return dates[i].Year > dates[j].Year
		}
		return dates[i].Month > dates[j].Month
	})
	return dates, nil
}

func (m *MemoryImages) ListSharedWithUser(ctx context.Context, userID int64) ([]*models.Image, error) {
	m.s.mu.Lock()
	visible := map[int64]bool{}
	for _, sh := range m.s.shares {
		if (sh.UserID != nil && *sh.UserID == userID) || (sh.GroupID != nil && m.s.isMember(*sh.GroupID, userID)) {
			visible[sh.ImageID] = true
		}
	}
	m.s.mu.Unlock()
	return m.filter(func(img *models.Image) bool { return img.OwnerID != userID && visible[img.ID] }), nil
}

func (m *MemoryImages) ListSharedWithGroup(ctx context.Context, groupID int64) ([]*models.Image, error) {
	m.s.mu.Lock()
	shared := map[int64]bool{}
	for _, sh := range m.s.shares {
		if sh.GroupID != nil && *sh.GroupID == groupID {
			shared[sh.ImageID] = true
		}
	}
	m.s.mu.Unlock()
	return m.filter(func(img *models.Image) bool { return shared[img.ID] }), nil
}

func (m *MemoryImages) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for nid, n := range m.s.notifications {
		if n.ImageID != nil && *n.ImageID == id {
			delete(m.s.notifications, nid)
		}
	}
	for sid, sh := range m.s.shares {
		if sh.ImageID == id {
			delete(m.s.shares, sid)
		}
	}
	delete(m.s.images, id)
	return nil
}

// filter returns matching images, most recent first.
func (m *MemoryImages) filter(keep func(*models.Image) bool) []*models.Image {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	images := []*models.Image{}
	for _, img := range m.s.images {
		if keep(img) {
			c := *img
			images = append(images, &c)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		if !images[i].UploadedAt.Equal(images[j].UploadedAt) {
			return images[i].UploadedAt.After(images[j].UploadedAt)
		}
		return images[i].ID > images[j].ID
	})
	return images
}

// MemoryShares implements the share store.
type MemoryShares struct{ s *MemoryStore }

func (m *MemoryShares) Create(ctx context.Context, share *models.ImageShare) error {
	if (share.UserID == nil) == (share.GroupID == nil) {
		return errors.New("share must name exactly one of user or group")
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	share.ID = m.s.id()
	share.SharedAt = m.s.Clock()
	c := *share
	m.s.shares[share.ID] = &c
	return nil
}

func (m *MemoryShares) ListByImage(ctx context.Context, imageID int64) ([]*models.ImageShare, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	shares := []*models.ImageShare{}
	for _, sh := range m.s.shares {
		if sh.ImageID == imageID {
			c := *sh
			shares = append(shares, &c)
		}
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].ID < shares[j].ID })
	return shares, nil
}

func (m *MemoryShares) HasUserShare(ctx context.Context, imageID, userID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sh := range m.s.shares {
		if sh.ImageID == imageID && sh.UserID != nil && *sh.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryShares) HasGroupShareForMember(ctx context.Context, imageID, userID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sh := range m.s.shares {
		if sh.ImageID == imageID && sh.GroupID != nil && m.s.isMember(*sh.GroupID, userID) {
			return true, nil
		}
	}
	return false, nil
}

// MemoryFriendships implements the friendship store.
type MemoryFriendships struct{ s *MemoryStore }

func (m *MemoryFriendships) Create(ctx context.Context, f *models.Friendship) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.friendships {
		if existing.Involves(f.RequesterID) && existing.Involves(f.AddresseeID) {
			return repository.ErrDuplicate
		}
	}
	f.ID = m.s.id()
	f.CreatedAt = m.s.Clock()
	c := *f
	m.s.friendships[f.ID] = &c
	return nil
}

func (m *MemoryFriendships) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	f, ok := m.s.friendships[id]
	if !ok {
		return nil, nil
	}
	c := *f
	return &c, nil
}

func (m *MemoryFriendships) GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, f := range m.s.friendships {
		if (f.RequesterID == userA && f.AddresseeID == userB) || (f.RequesterID == userB && f.AddresseeID == userA) {
			c := *f
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryFriendships) ListAccepted(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	return m.filter(func(f *models.Friendship) bool {
		return f.Involves(userID) && f.Status == models.FriendshipAccepted
	}), nil
}

func (m *MemoryFriendships) ListPendingFor(ctx context.Context, addresseeID int64) ([]*models.Friendship, error) {
	return m.filter(func(f *models.Friendship) bool {
		return f.AddresseeID == addresseeID && f.Status == models.FriendshipPending
	}), nil
}

func (m *MemoryFriendships) Respond(ctx context.Context, id int64, status models.FriendshipStatus) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	f, ok := m.s.friendships[id]
	if !ok || f.Status != models.FriendshipPending {
		return false, nil
	}
	f.Status = status
	return true, nil
}

func (m *MemoryFriendships) filter(keep func(*models.Friendship) bool) []*models.Friendship {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*models.Friendship{}
	for _, f := range m.s.friendships {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MemoryGroups implements the group store.
type MemoryGroups struct{ s *MemoryStore }

func (m *MemoryGroups) Create(ctx context.Context, group *models.Group) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	group.ID = m.s.id()
	group.CreatedAt = m.s.Clock()
	c := *group
	m.s.groups[group.ID] = &c

	creator := models.NewGroupMembership(group.ID, group.CreatedBy)
	creator.ID = m.s.id()
	creator.JoinedAt = group.CreatedAt
	m.s.memberships[creator.ID] = creator
	return nil
}

func (m *MemoryGroups) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	g, ok := m.s.groups[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *MemoryGroups) ListByMember(ctx context.Context, userID int64) ([]*models.Group, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	groups := []*models.Group{}
	for _, g := range m.s.groups {
		if m.s.isMember(g.ID, userID) {
			c := *g
			groups = append(groups, &c)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID > groups[j].ID })
	return groups, nil
}

func (m *MemoryGroups) AddMember(ctx context.Context, membership *models.GroupMembership) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.isMember(membership.GroupID, membership.UserID) {
		return repository.ErrDuplicate
	}
	membership.ID = m.s.id()
	membership.JoinedAt = m.s.Clock()
	c := *membership
	m.s.memberships[membership.ID] = &c
	return nil
}

func (m *MemoryGroups) RemoveMember(ctx context.Context, groupID, userID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, mem := range m.s.memberships {
		if mem.GroupID == groupID && mem.UserID == userID {
			delete(m.s.memberships, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryGroups) ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMembership, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	members := []*models.GroupMembership{}
	for _, mem := range m.s.memberships {
		if mem.GroupID == groupID {
			c := *mem
			members = append(members, &c)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (m *MemoryGroups) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.isMember(groupID, userID), nil
}

// MemoryNotifications implements the notification store.
type MemoryNotifications struct{ s *MemoryStore }

func (m *MemoryNotifications) Create(ctx context.Context, n *models.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.FailNotifications {
		return ErrInjected
	}
	n.ID = m.s.id()
	n.IsRead = false
	n.CreatedAt = m.s.Clock()
	c := *n
	m.s.notifications[n.ID] = &c
	return nil
}

func (m *MemoryNotifications) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n, ok := m.s.notifications[id]
	if !ok {
		return nil, nil
	}
	c := *n
	return &c, nil
}

func (m *MemoryNotifications) ListByRecipient(ctx context.Context, userID int64) ([]*models.Notification, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range m.s.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryNotifications) CountUnread(ctx context.Context, userID int64) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	count := 0
	for _, n := range m.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryNotifications) MarkRead(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if n, ok := m.s.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (m *MemoryNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var updated int64
	for _, n := range m.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}
