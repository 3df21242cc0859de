package cache

import (
	"errors"
	"sync"

	"github.com/go-redis/cache"
	"github.com/go-redis/redis"
	"github.com/vmihailenco/msgpack"
)

var (
	redisClient *redis.Client
	redisMutex  sync.RWMutex
	cacheCodec  *cache.Codec
)

func SetRedisClient(s *redis.Client) {
	redisMutex.Lock()
	redisClient = s

	cacheCodec = &cache.Codec{
		Redis: redisClient,
		Marshal: func(v interface{}) ([]byte, error) {
			return msgpack.Marshal(v)
		},
		Unmarshal: func(b []byte, v interface{}) error {
			return msgpack.Unmarshal(b, v)
		},
	}

	redisMutex.Unlock()
}

func GetRedisClient() *redis.Client {
	redisMutex.RLock()
	defer redisMutex.RUnlock()

	if redisClient == nil {
		panic(errors.New("tried to get redis client before cache#SetRedisClient() was called"))
	}

	return redisClient
}

// GetRedisCacheCodec returns the msgpack codec on top of the redis client,
// used for caching resolved invite lookups.
func GetRedisCacheCodec() *cache.Codec {
	redisMutex.RLock()
	defer redisMutex.RUnlock()

	if cacheCodec == nil || cacheCodec.Redis == nil {
		panic(errors.New("tried to get redis cache codec before cache#SetRedisClient() was called"))
	}

	return cacheCodec
}
