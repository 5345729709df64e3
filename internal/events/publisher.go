// Package events publishes pipeline events to Redis pub/sub so other
// services (inbox, scheduler, live dashboards) can react to stage changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel names.
const (
	ChannelStageChanged = "EVENT_STAGE_CHANGED"
	ChannelJobClosed    = "EVENT_JOB_CLOSED"
)

// Publisher sends a JSON-encoded payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher publishes on a Redis client.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher wraps rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	return p.rdb.Publish(ctx, channel, body).Err()
}

// Nop drops every event. Used when no Redis URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// StageChanged is the payload of ChannelStageChanged.
type StageChanged struct {
	Type          string `json:"type"`
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	From          string `json:"from"`
	To            string `json:"to"`
	SuggestAction string `json:"suggestAction,omitempty"`
}

// JobClosed is the payload of ChannelJobClosed.
type JobClosed struct {
	Type      string `json:"type"`
	JobID     string `json:"jobId"`
	Headcount int    `json:"headcount"`
	Hired     int    `json:"hired"`
}
