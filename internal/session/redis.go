package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis under session:<sid> with a TTL, so
// expiry is Redis' job.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects and pings before handing the store out.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func key(sid string) string {
	return "session:" + sid
}

func (s *RedisStore) Save(ctx context.Context, sid string, userID int64, ttl time.Duration) error {
	return s.client.Set(ctx, key(sid), strconv.FormatInt(userID, 10), ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, sid string) (int64, bool, error) {
	v, err := s.client.Get(ctx, key(sid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, key(sid)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
