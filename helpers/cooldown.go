package helpers

import (
	"time"

	"github.com/Seklfreak/Warden/cache"
	"github.com/go-redis/redis"
)

// NameAlertStore persists the last time a username alert was sent per user.
// Entries are only ever overwritten, never deleted.
type NameAlertStore interface {
	LastAlert(userID string) (time.Time, bool, error)
	SetLastAlert(userID string, sentAt time.Time) error
}

const nameAlertKeyPrefix = "warden:filter:name-alert:"

// RedisNameAlertStore stores alert timestamps as unix seconds in redis
type RedisNameAlertStore struct{}

func (s *RedisNameAlertStore) LastAlert(userID string) (time.Time, bool, error) {
	seconds, err := cache.GetRedisClient().Get(nameAlertKeyPrefix + userID).Int64()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	return time.Unix(seconds, 0).UTC(), true, nil
}

func (s *RedisNameAlertStore) SetLastAlert(userID string, sentAt time.Time) error {
	return cache.GetRedisClient().Set(nameAlertKeyPrefix+userID, sentAt.UTC().Unix(), 0).Err()
}
