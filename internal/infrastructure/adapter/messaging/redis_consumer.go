// Package messaging implements the inbound trusted row import channel
// using go-redis/v9.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	usecaseport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/redis/go-redis/v9"
)

// popTimeout bounds each blocking pop so consumer shutdown is prompt
const popTimeout = 5 * time.Second

// Config holds connection parameters for the import consumer
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// ImportConsumer drains trusted row import requests from a Redis list and
// feeds them to the transaction use case. Delivery is at-least-once; the
// caller reference dedup inside the use case makes redelivery harmless.
type ImportConsumer struct {
	rdb    *redis.Client
	queue  string
	uc     usecaseport.TrnUseCase
	logger coreport.Logger
}

// NewImportConsumer connects to Redis, pings it to verify connectivity and
// returns the consumer
func NewImportConsumer(ctx context.Context, cfg Config, uc usecaseport.TrnUseCase, logger coreport.Logger) (*ImportConsumer, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &ImportConsumer{
		rdb:    rdb,
		queue:  cfg.Queue,
		uc:     uc,
		logger: logger,
	}, nil
}

// Run consumes import requests until the context is cancelled. Malformed
// payloads and rejected rows are logged and dropped; the loop never stops
// on a bad message.
func (c *ImportConsumer) Run(ctx context.Context) {
	c.logger.Info("Import consumer started", map[string]any{
		"queue": c.queue,
	})

	for {
		if ctx.Err() != nil {
			c.logger.Info("Import consumer stopped", nil)
			return
		}

		result, err := c.rdb.BRPop(ctx, popTimeout, c.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // queue empty, poll again
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Import consumer stopped", nil)
				return
			}
			c.logger.Error("Failed to pop import request", map[string]any{
				"queue": c.queue,
				"error": err.Error(),
			})
			time.Sleep(time.Second)
			continue
		}

		// BRPOP returns [key, value]
		if len(result) != 2 {
			continue
		}
		c.handle(ctx, []byte(result[1]))
	}
}

func (c *ImportConsumer) handle(ctx context.Context, payload []byte) {
	var req usecaseport.TrustedTrnImportRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.logger.Error("Dropping malformed import payload", map[string]any{
			"queue": c.queue,
			"error": err.Error(),
		})
		return
	}

	trn, err := c.uc.ImportRow(ctx, req)
	if err != nil {
		c.logger.Error("Import row rejected", map[string]any{
			"portfolio": req.Portfolio,
			"format":    req.ImportFormat,
			"error":     err.Error(),
		})
		return
	}
	if trn == nil {
		// Replayed row, already recorded.
		return
	}

	c.logger.Info("Imported transaction row", map[string]any{
		"trn_id":    trn.ID,
		"portfolio": req.Portfolio,
		"trn_type":  string(trn.TrnType),
	})
}

// Close closes the Redis connection
func (c *ImportConsumer) Close() error {
	return c.rdb.Close()
}
