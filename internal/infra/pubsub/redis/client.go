// Package redis mirrors broadcast events onto a Redis pub/sub channel so
// other processes can follow the live stream. Nothing is stored.
package redis

import (
	"context"

	"github.com/gabapcia/txalert/internal/broadcast"

	redis "github.com/redis/go-redis/v9"
)

type client struct {
	conn    *redis.Client
	channel string
}

var _ broadcast.Relay = (*client)(nil)

// Publish sends payload to the configured channel.
func (c *client) Publish(ctx context.Context, payload []byte) error {
	return c.conn.Publish(ctx, c.channel, string(payload)).Err()
}

func (c *client) Close() error {
	return c.conn.Close()
}

func newClient(conn *redis.Client, channel string) *client {
	return &client{
		conn:    conn,
		channel: channel,
	}
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, addr, username, password string, db int, channel string) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return newClient(conn, channel), nil
}
