package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/ledger-service/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const balanceKeyPrefix = "ledger:balance:"

func NewClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return rdb, nil
}

// BalanceCache keeps committed balances in redis for the read path. It is a
// best-effort layer: every miss or redis error falls through to the store,
// and a nil cache disables caching entirely.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

func (c *BalanceCache) Get(ctx context.Context, accountID string) (decimal.Decimal, bool) {
	if c == nil || c.client == nil {
		return decimal.Zero, false
	}

	raw, err := c.client.Get(ctx, balanceKeyPrefix+accountID).Result()
	if err != nil {
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}

func (c *BalanceCache) Set(ctx context.Context, accountID string, balance decimal.Decimal) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Set(ctx, balanceKeyPrefix+accountID, balance.StringFixed(2), c.ttl).Err(); err != nil {
		logger.Error("balance cache set failed", err, logger.Fields{
			"accountId": accountID,
		})
	}
}

func (c *BalanceCache) Invalidate(ctx context.Context, accountIDs ...string) {
	if c == nil || c.client == nil || len(accountIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, balanceKeyPrefix+id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error("balance cache invalidate failed", err, logger.Fields{
			"accountIds": accountIDs,
		})
	}
}
