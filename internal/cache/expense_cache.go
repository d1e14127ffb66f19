package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ExpenseCacheTTL = 1 * time.Hour

type ExpenseCache struct {
	client *redis.Client
}

func NewExpenseCache(client *redis.Client) *ExpenseCache {
	return &ExpenseCache{client: client}
}

// Get returns the cached payload, or nil on a miss.
func (c *ExpenseCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Set stores the value under key with the standard TTL.
func (c *ExpenseCache) Set(ctx context.Context, key string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, ExpenseCacheTTL).Err()
}

// InvalidateUser drops every cached entry belonging to a user. Called after
// any mutation so stale lists or records are never served.
func (c *ExpenseCache) InvalidateUser(ctx context.Context, userID string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("expense:%s:*", userID), 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	keys = append(keys, UserExpensesKey(userID))
	return c.client.Del(ctx, keys...).Err()
}

// ExpenseKey builds the cache key for a single expense record.
func ExpenseKey(userID, expenseID string) string {
	return fmt.Sprintf("expense:%s:%s", userID, expenseID)
}

// UserExpensesKey builds the cache key for a user's unfiltered expense list.
func UserExpensesKey(userID string) string {
	return fmt.Sprintf("expenses:user:%s", userID)
}
