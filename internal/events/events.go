package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
)

// Publisher fans out live-update events over redis pub/sub, one
// channel per workspace, so every connected frontend of a workspace
// sees changes without polling.
type Publisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewPublisher(cfg config.Config, log zerolog.Logger) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &Publisher{rdb: rdb, log: log}
}

func (p *Publisher) Close() error { return p.rdb.Close() }

func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Event is what subscribers receive: which entity changed and how.
type Event struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

func channelFor(workspaceID int64) string {
	return fmt.Sprintf("workspace.%d", workspaceID)
}

// Publish is fire-and-forget: a dropped live update only delays the
// frontend until its next refetch, so failures are logged, not
// propagated.
func (p *Publisher) Publish(ctx context.Context, workspaceID int64, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.log.Error().Err(err).Msg("event marshal failed")
		return
	}
	if err := p.rdb.Publish(ctx, channelFor(workspaceID), body).Err(); err != nil {
		p.log.Warn().Err(err).Int64("workspace", workspaceID).Msg("event publish failed")
	}
}
