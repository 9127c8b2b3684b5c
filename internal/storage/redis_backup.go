package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"liveeditor/internal/domain"
)

// RedisBackupStore implements domain.BackupStore on Redis. Each record is a
// JSON string; a per-tenant set indexes the keys. No TTL is set.
type RedisBackupStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBackupStore connects to redisURL and verifies the connection.
func NewRedisBackupStore(redisURL string) (*RedisBackupStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisBackupStoreWithClient(client), nil
}

// NewRedisBackupStoreWithClient creates a store from an existing client.
func NewRedisBackupStoreWithClient(client *redis.Client) *RedisBackupStore {
	return &RedisBackupStore{client: client, prefix: "liveeditor:"}
}

func (s *RedisBackupStore) Close() error {
	return s.client.Close()
}

func (s *RedisBackupStore) recordKey(tenantID, key string) string {
	return s.prefix + tenantID + ":backup:" + key
}

func (s *RedisBackupStore) indexKey(tenantID string) string {
	return s.prefix + tenantID + ":backups"
}

func (s *RedisBackupStore) GetBackup(ctx context.Context, tenantID, key string) (*domain.ThemeSnapshot, error) {
	raw, err := s.client.Get(ctx, s.recordKey(tenantID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", key, err)
	}
	snap := &domain.ThemeSnapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", key, err)
	}
	return snap, nil
}

func (s *RedisBackupStore) PutBackup(ctx context.Context, tenantID string, snap *domain.ThemeSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode backup %s: %w", snap.Key, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(tenantID, snap.Key), raw, 0)
		pipe.SAdd(ctx, s.indexKey(tenantID), snap.Key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put backup %s: %w", snap.Key, err)
	}
	return nil
}

func (s *RedisBackupStore) DeleteBackup(ctx context.Context, tenantID, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(tenantID, key))
		pipe.SRem(ctx, s.indexKey(tenantID), key)
		return nil
	})
	return err
}

// ListBackups returns the tenant's backup keys ordered by theme number.
func (s *RedisBackupStore) ListBackups(ctx context.Context, tenantID string) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	sort.Slice(keys, func(i, j int) bool {
		return backupTheme(keys[i]) < backupTheme(keys[j])
	})
	return keys, nil
}

func backupTheme(key string) int {
	var n int
	if _, err := fmt.Sscanf(key, "Theme%dBackup", &n); err != nil {
		return 0
	}
	return n
}

var _ domain.BackupStore = (*RedisBackupStore)(nil)
