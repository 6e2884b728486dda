package confirmation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "confirmation_code:"

// RedisStore keeps confirmation codes in Redis with a server-side TTL, so
// expiry needs no background sweeper of our own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Issue(ctx context.Context, username string) (string, error) {
	code := generateCode()
	hash, err := hashCode(code)
	if err != nil {
		return "", err
	}

	// SET overwrites any previous code for the username and resets the TTL.
	if err := s.client.Set(ctx, keyPrefix+username, hash, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}
	return code, nil
}

func (s *RedisStore) Verify(ctx context.Context, username string, code string) (bool, error) {
	hash, err := s.client.Get(ctx, keyPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		// Never issued or already expired.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load confirmation code: %w", err)
	}
	return compareCode(hash, code), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
