package services

import (
	"context"
	"encoding/json"
	"fmt"

	"photoshare-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// relayEnvelope is the payload published on the redis channel
type relayEnvelope struct {
	RecipientID  int64                           `json:"recipientId"`
	Notification *models.NotificationWithDetails `json:"notification"`
}

// RedisRelay fans notifications out through a redis channel so that every
// server instance can deliver to the connections it holds.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *WSHub
}

// NewRedisRelay creates a relay publishing on channel and delivering into hub
func NewRedisRelay(client *redis.Client, channel string, hub *WSHub) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, hub: hub}
}

// Publish sends the notification to every instance, including this one
func (r *RedisRelay) Publish(ctx context.Context, recipientID int64, n *models.NotificationWithDetails) error {
	payload, err := json.Marshal(relayEnvelope{RecipientID: recipientID, Notification: n})
	if err != nil {
		return fmt.Errorf("failed to marshal relay message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Run forwards channel messages into the local hub until ctx is done
func (r *RedisRelay) Run(ctx context.Context) error {
	pubSub := r.client.Subscribe(ctx, r.channel)
	defer pubSub.Close()

	if _, err := pubSub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	log.Info().Str("channel", r.channel).Msg("Notification relay subscribed")

	messages := pubSub.Channel(redis.WithChannelSize(250))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.Notification == nil {
		log.Warn().Err(err).Str("channel", r.channel).Msg("Dropping malformed relay message")
		return
	}
	if err := r.hub.Publish(ctx, env.RecipientID, env.Notification); err != nil {
		log.Warn().Err(err).Int64("recipient_id", env.RecipientID).Msg("Failed to deliver relayed notification")
	}
}
