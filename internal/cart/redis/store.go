package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

const keyPrefix = "cart:"

// Store keeps one JSON cart snapshot per shopper session in Redis. Snapshots
// expire after the configured TTL so abandoned carts clean themselves up.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{Client: client, TTL: ttl, Logger: log}
}

// Load fetches the session's cart lines. A missing key or a snapshot that no
// longer decodes (old schema, corrupt write) both come back as an empty
// cart, never an error the shopper would see.
func (s *Store) Load(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	raw, err := s.Client.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.Logger.Warn("CART", fmt.Sprintf("discarding undecodable cart snapshot for session %s: %v", sessionID, err))
		return nil, nil
	}
	return lines, nil
}

// Save writes the full snapshot, replacing whatever was stored before.
// Saving the same snapshot twice is a no-op, so retries are safe.
func (s *Store) Save(ctx context.Context, sessionID string, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := s.Client.Set(ctx, keyPrefix+sessionID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete removes the session's snapshot. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
