// Package messaging defines the broker abstraction used to fan out
// domain events, with a Redis pub/sub implementation underneath.
package messaging

import (
	"context"
)

// Broker publishes and consumes JSON messages on named channels.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope every published event uses.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Channels the platform publishes on.
const (
	ChannelNotificationCreated = "notification.created"
)
