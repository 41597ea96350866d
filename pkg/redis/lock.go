package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token, so an expired
// lock that someone else re-took is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a claim on a key that lasts until Release or until its TTL runs out.
type Lock struct {
	client *Client
	key    string
	token  string
}

// TryLock claims name for ttl with SET NX. ok is false when another holder has it.
func (c *Client) TryLock(ctx context.Context, name string, ttl time.Duration) (lock *Lock, ok bool, err error) {
	key := c.Key("lock", name)
	token := uuid.New().String()

	ok, err = c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		c.logger.WithContext(ctx).Debugf("lock %s is held elsewhere", key)
		return nil, false, nil
	}

	c.logger.WithContext(ctx).Debugf("acquired lock %s for %v", key, ttl)
	return &Lock{client: c, key: key, token: token}, true, nil
}

func (l *Lock) Key() string {
	return l.key
}

// Release gives the lock up early.
func (l *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client.rdb, []string{l.key}, l.token).Err()
}
