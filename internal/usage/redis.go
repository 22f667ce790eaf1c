package usage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const redisKeyPrefix = "farescout:usage:"

// periods expire on their own well after the month ends
const redisPeriodTTL = 62 * 24 * time.Hour

var incrementIfBelow = redis.NewScript(`
local c = tonumber(redis.call('GET', KEYS[1]) or '0')
if c >= tonumber(ARGV[1]) then
	return {c, 0}
end
c = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return {c, 1}
`)

// RedisStore keeps counts in Redis; the check-and-increment runs as a Lua
// script so several processes can share one cap.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Count(ctx context.Context, period string) (int, error) {
	n, err := s.client.Get(ctx, redisKeyPrefix+period).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "redis: get %s", period)
	}
	return n, nil
}

func (s *RedisStore) IncrementIfBelow(ctx context.Context, period string, limit int) (int, bool, error) {
	res, err := incrementIfBelow.Run(ctx, s.client,
		[]string{redisKeyPrefix + period},
		limit, int(redisPeriodTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return 0, false, eris.Wrapf(err, "redis: increment %s", period)
	}
	if len(res) != 2 {
		return 0, false, eris.Errorf("redis: unexpected script reply %v", res)
	}
	return int(res[0]), res[1] == 1, nil
}

// Prune is a no-op; stale periods expire via TTL.
func (s *RedisStore) Prune(context.Context, string) error {
	return nil
}

// Close leaves the client open; it is shared with the response cache and
// closed by whoever created it.
func (s *RedisStore) Close() error {
	return nil
}
