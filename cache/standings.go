package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openbracket/tournament-engine/models"
)

// StandingsCache keeps computed standings in Redis so repeated display
// queries do not recompute them from the full match list. Every mutation of
// a tournament's graph invalidates all of its entries.
type StandingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStandingsCache(client *redis.Client, ttl time.Duration) *StandingsCache {
	return &StandingsCache{client: client, ttl: ttl}
}

func standingsKey(tournamentID string, groupID *string) string {
	if groupID != nil {
		return fmt.Sprintf("standings:%s:group:%s", tournamentID, *groupID)
	}
	return fmt.Sprintf("standings:%s:overall", tournamentID)
}

// Get returns the cached standings and whether they were present. Cache
// errors other than a miss are returned so callers can log them; callers
// always fall back to recomputing.
func (c *StandingsCache) Get(ctx context.Context, tournamentID string, groupID *string) ([]models.GroupStanding, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, standingsKey(tournamentID, groupID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var standings []models.GroupStanding
	if err := json.Unmarshal(raw, &standings); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached standings: %w", err)
	}
	return standings, true, nil
}

func (c *StandingsCache) Set(ctx context.Context, tournamentID string, groupID *string, standings []models.GroupStanding) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}
	return c.client.Set(ctx, standingsKey(tournamentID, groupID), raw, c.ttl).Err()
}

// Invalidate drops every standings entry of the tournament, overall and
// per-group alike.
func (c *StandingsCache) Invalidate(ctx context.Context, tournamentID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	pattern := fmt.Sprintf("standings:%s:*", tournamentID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
