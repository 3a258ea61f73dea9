package services

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNsConfig holds the token-based APNs credentials
type APNsConfig struct {
	KeyPath    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsPusher delivers notifications to iOS devices
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher loads the .p8 signing key and builds a token client
func NewAPNsPusher(cfg APNsConfig) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: cfg.Topic}, nil
}

// Push sends the notification content as an alert
func (p *APNsPusher) Push(ctx context.Context, deviceToken string, n *models.Notification) error {
	res, err := p.client.PushWithContext(ctx, buildPush(p.topic, deviceToken, n))
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

func buildPush(topic, deviceToken string, n *models.Notification) *apns2.Notification {
	p := payload.NewPayload().
		AlertBody(n.Content).
		Sound("default").
		Custom("type", string(n.Type)).
		Custom("notificationId", n.ID)
	if n.ImageID != nil {
		p = p.Custom("imageId", *n.ImageID)
	}
	if n.GroupID != nil {
		p = p.Custom("groupId", *n.GroupID)
	}

	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Payload:     p,
	}
}
