package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "motionline"

// RedisPublisher stores one JSON document per property track.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to url (redis://...) and verifies the connection.
func NewRedisPublisher(ctx context.Context, url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisPublisher{client: client}, nil
}

// NewRedisPublisherWithClient wraps an already configured client.
func NewRedisPublisherWithClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// TrackKey is motionline:<animation>:<layer>:<trackId>.
func TrackKey(animationID, layerID, trackID string) string {
	return strings.Join([]string{keyPrefix, animationID, layerID, trackID}, ":")
}

// Publish writes every track of p in one MULTI/EXEC.
func (r *RedisPublisher) Publish(ctx context.Context, p Payload) error {
	if p.Empty() {
		return nil
	}
	docs := make(map[string][]byte, len(p.Tracks))
	for _, t := range p.Tracks {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal track %s: %w", t.TrackID, err)
		}
		docs[TrackKey(p.AnimationID, p.LayerID, t.TrackID)] = b
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, b := range docs {
			pipe.Set(ctx, k, b, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %d tracks: %w", len(docs), err)
	}
	return nil
}

// Fetch reads back one published track.
func (r *RedisPublisher) Fetch(ctx context.Context, animationID, layerID, trackID string) (TrackPayload, error) {
	s, err := r.client.Get(ctx, TrackKey(animationID, layerID, trackID)).Result()
	if err != nil {
		if err == redis.Nil {
			return TrackPayload{}, fmt.Errorf("track not published: %s", trackID)
		}
		return TrackPayload{}, fmt.Errorf("failed to get track: %w", err)
	}
	var t TrackPayload
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return TrackPayload{}, fmt.Errorf("failed to unmarshal track: %w", err)
	}
	return t, nil
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
