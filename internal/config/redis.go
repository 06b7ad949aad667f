package config

import (
	"sync"
	"time"
)

// RedisConfig backs the in-flight guard. An empty URL disables it.
type RedisConfig struct {
	URL         string        `env:"REDIS_URL"`
	InflightTTL time.Duration `env:"INFLIGHT_TTL" envDefault:"5m"`
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = &RedisConfig{}
		parse(redisConfig, "redis")
	})
	return redisConfig
}
