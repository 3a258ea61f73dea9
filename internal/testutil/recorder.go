package testutil

import (
	"context"
	"sync"

	"photoshare-backend/internal/models"
)

// Recorder captures live notification events and pushes.
type Recorder struct {
	mu     sync.Mutex
	Events map[int64][]*models.NotificationWithDetails
	Pushes map[string][]string
}

func NewRecorder() *Recorder {
	return &Recorder{
		Events: map[int64][]*models.NotificationWithDetails{},
		Pushes: map[string][]string{},
	}
}

// Publish records an event for recipientID.
func (r *Recorder) Publish(ctx context.Context, recipientID int64, n *models.NotificationWithDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events[recipientID] = append(r.Events[recipientID], n)
	return nil
}

// Push records an alert body for a device token.
func (r *Recorder) Push(ctx context.Context, deviceToken string, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pushes[deviceToken] = append(r.Pushes[deviceToken], n.Content)
	return nil
}

// EventCount returns how many events reached recipientID.
func (r *Recorder) EventCount(recipientID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Events[recipientID])
}
