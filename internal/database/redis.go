package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const leaderboardKey = "leaderboard:points"

func InitRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	_, err := Redis.Ping(Ctx).Result()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis; leaderboard and caching disabled")
	} else {
		logger.Info().Msg("Connected to Redis successfully")
	}
}

// redisAvailable guards every redis call so a missing redis degrades the
// leaderboard and caches instead of the whole server.
func redisAvailable() bool {
	if Redis == nil {
		return false
	}
	return Redis.Ping(Ctx).Err() == nil
}

// Token revocation

func BlacklistToken(jti string, ttl time.Duration) error {
	if !redisAvailable() {
		return nil
	}
	return Redis.Set(Ctx, "token_blacklist:"+jti, "1", ttl).Err()
}

func IsTokenBlacklisted(jti string) bool {
	if jti == "" || !redisAvailable() {
		return false
	}
	exists, err := Redis.Exists(Ctx, "token_blacklist:"+jti).Result()
	return err == nil && exists > 0
}

// Leaderboard (sorted set keyed by player ID, score = total points)

func LeaderboardAddPoints(playerID string, points int) error {
	if !redisAvailable() {
		return nil
	}
	return Redis.ZIncrBy(Ctx, leaderboardKey, float64(points), playerID).Err()
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

func LeaderboardTop(n int) ([]LeaderboardEntry, error) {
	if !redisAvailable() {
		return nil, nil
	}
	members, err := Redis.ZRevRangeWithScores(Ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(members))
	for i, m := range members {
		id, _ := m.Member.(string)
		entries = append(entries, LeaderboardEntry{
			PlayerID: id,
			Points:   int(m.Score),
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// Caching

func CacheSet(key string, value interface{}, expiration time.Duration) error {
	if !redisAvailable() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Redis.Set(Ctx, key, data, expiration).Err()
}

func CacheGet(key string, dest interface{}) error {
	if !redisAvailable() {
		return redis.Nil
	}
	val, err := Redis.Get(Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func CacheInvalidate(keys ...string) {
	if !redisAvailable() || len(keys) == 0 {
		return
	}
	Redis.Del(Ctx, keys...)
}
