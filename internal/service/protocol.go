package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/supportbox/internal/domain"
)

const (
	protocolStart = 1000
	protocolKey   = "triage:protocol_seq"
)

// ProtocolGenerator hands out human-facing ticket protocol ids.
type ProtocolGenerator interface {
	Next(ctx context.Context) (string, error)
}

func formatProtocol(n int64) string {
	return fmt.Sprintf("%s%d", domain.ProtocolPrefix, n)
}

// nextProtocolScript lifts the counter to the floor before incrementing, so a
// flushed or lagging key never hands out a number that was already issued.
var nextProtocolScript = redis.NewScript(`
local floor = tonumber(ARGV[1])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current < floor then
	redis.call('SET', KEYS[1], floor)
end
return redis.call('INCR', KEYS[1])
`)

// RedisProtocolGenerator uses one shared key so every replica draws from the
// same sequence. The key holds the last issued number.
type RedisProtocolGenerator struct {
	client redis.Scripter
	floor  atomic.Int64
}

// NewRedisProtocolGenerator constructs generator.
func NewRedisProtocolGenerator(client redis.Scripter) *RedisProtocolGenerator {
	g := &RedisProtocolGenerator{client: client}
	g.floor.Store(protocolStart - 1)
	return g
}

// RaiseFloor guarantees every later id is above n. Call it at startup with
// the highest protocol number already stored.
func (g *RedisProtocolGenerator) RaiseFloor(n int64) {
	for {
		current := g.floor.Load()
		if n <= current || g.floor.CompareAndSwap(current, n) {
			return
		}
	}
}

// Next returns REQ-1000 for the first call on an empty store.
func (g *RedisProtocolGenerator) Next(ctx context.Context) (string, error) {
	n, err := nextProtocolScript.Run(ctx, g.client, []string{protocolKey}, g.floor.Load()).Int64()
	if err != nil {
		return "", fmt.Errorf("next protocol: %w", err)
	}
	g.RaiseFloor(n)
	return formatProtocol(n), nil
}

// PostgresProtocolGenerator reads ticket_protocol_seq.
type PostgresProtocolGenerator struct {
	pool *pgxpool.Pool
}

// NewPostgresProtocolGenerator constructs generator.
func NewPostgresProtocolGenerator(pool *pgxpool.Pool) *PostgresProtocolGenerator {
	return &PostgresProtocolGenerator{pool: pool}
}

func (g *PostgresProtocolGenerator) Next(ctx context.Context) (string, error) {
	var n int64
	if err := g.pool.QueryRow(ctx, `SELECT nextval('ticket_protocol_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next protocol: %w", err)
	}
	return formatProtocol(n), nil
}

// CounterProtocolGenerator is process-local and restarts at 1000.
type CounterProtocolGenerator struct {
	next atomic.Int64
}

// NewCounterProtocolGenerator constructs generator.
func NewCounterProtocolGenerator() *CounterProtocolGenerator {
	g := &CounterProtocolGenerator{}
	g.next.Store(protocolStart - 1)
	return g
}

func (g *CounterProtocolGenerator) Next(context.Context) (string, error) {
	return formatProtocol(g.next.Add(1)), nil
}
