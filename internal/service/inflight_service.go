package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInflight = errors.New("operation already in progress")

// InflightGuard serializes long-running pipeline operations per user.
type InflightGuard interface {
	Acquire(ctx context.Context, operation string, userID uuid.UUID) (release func(), err error)
}

// RedisInflightGuard holds a SET NX lock per operation and user. The TTL
// frees the slot if a process dies mid-operation.
type RedisInflightGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisInflightGuard(client *redis.Client, ttl time.Duration) *RedisInflightGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisInflightGuard{client: client, ttl: ttl}
}

func inflightKey(operation string, userID uuid.UUID) string {
	return fmt.Sprintf("skillbridge:inflight:%s:%s", operation, userID)
}

func (g *RedisInflightGuard) Acquire(ctx context.Context, operation string, userID uuid.UUID) (func(), error) {
	key := inflightKey(operation, userID)
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire inflight lock: %w", err)
	}
	if !ok {
		return nil, ErrInflight
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// Only delete our own token; an expired lock may have been re-taken.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, g.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				slog.Warn("release inflight lock failed", slog.String("key", key), slog.Any("error", err))
			}
		})
	}, nil
}

// keepAlive pushes the lock expiry forward while the operation runs, so a
// slow backend cannot outlive the TTL and let a duplicate in.
func (g *RedisInflightGuard) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			n, err := refreshScript.Run(ctx, g.client, []string{key}, token, g.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				slog.Warn("refresh inflight lock failed", slog.String("key", key), slog.Any("error", err))
				continue
			}
			if n == 0 {
				slog.Warn("inflight lock lost", slog.String("key", key))
				return
			}
		}
	}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// LocalInflightGuard is the in-process guard used when Redis is not
// configured.
type LocalInflightGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalInflightGuard() *LocalInflightGuard {
	return &LocalInflightGuard{held: make(map[string]struct{})}
}

func (g *LocalInflightGuard) Acquire(_ context.Context, operation string, userID uuid.UUID) (func(), error) {
	key := inflightKey(operation, userID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, ErrInflight
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}
