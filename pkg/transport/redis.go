package transport

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisSubscriber struct {
	client *redis.Client
	pubsub *redis.PubSub
}

var _ Subscriber = (*RedisSubscriber)(nil)

func NewRedisSubscriber(ctx context.Context, addr, channel string) (*RedisSubscriber, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pubsub := client.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so nothing published after
	// we return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to subscribe to %q on %s", channel, addr)
	}
	return &RedisSubscriber{
		client: client,
		pubsub: pubsub,
	}, nil
}

func (s *RedisSubscriber) Next(ctx context.Context) ([]byte, error) {
	msg, err := s.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "redis receive failed")
	}
	return []byte(msg.Payload), nil
}

func (s *RedisSubscriber) Close() error {
	err := s.pubsub.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// RedisPublisher publishes payloads on a single channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", addr)
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}, nil
}

// Publish returns the number of subscribers that received the payload.
func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) (int64, error) {
	n, err := p.client.Publish(ctx, p.channel, payload).Result()
	return n, errors.Wrap(err, "redis publish failed")
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
