package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps publishing and subscribing on separate connections; a
// connection in subscribe mode cannot issue PUBLISH.
type RedisClients struct {
	Publisher  *redis.Client
	Subscriber *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	const op = "database.NewRedisClients"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse url: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	publisher := redis.NewClient(opt)
	if err := publisher.Ping(ctx).Err(); err != nil {
		publisher.Close()
		return nil, fmt.Errorf("%s: ping publisher: %w", op, err)
	}

	subOpt := *opt
	subscriber := redis.NewClient(&subOpt)
	if err := subscriber.Ping(ctx).Err(); err != nil {
		publisher.Close()
		subscriber.Close()
		return nil, fmt.Errorf("%s: ping subscriber: %w", op, err)
	}

	return &RedisClients{
		Publisher:  publisher,
		Subscriber: subscriber,
	}, nil
}

func (r *RedisClients) Close() {
	r.Publisher.Close()
	r.Subscriber.Close()
}
