package db

import (
	"context"

	"CursorAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when no Redis address is configured.
var RDB *redis.Client

// InitRedis принимает адрес явно (а не через os.Getenv). An empty address disables Redis.
func InitRedis(addr string) {
	if addr == "" {
		logger.Warn("redis_disabled", nil)
		RDB = nil
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func PingRedis(ctx context.Context) error {
	if RDB == nil {
		return nil
	}
	return RDB.Ping(ctx).Err()
}

func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}
