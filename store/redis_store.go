// Package store persists game records in Redis and publishes a change event
// per write that alters a record.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"sports-home-automation/game"
)

const (
	DefaultChangeStream = "games.changes"
	DefaultChangeGroup  = "score-processor"
	DefaultRetention    = 7 * 24 * time.Hour
)

// putScript stores the new image and appends an old/new pair to the change
// stream in one step. Identical writes are dropped so the stream only carries
// real mutations.
//
// KEYS[1] record key, KEYS[2] stream; ARGV[1] new image, ARGV[2] ttl seconds,
// ARGV[3] game id.
var putScript = redis.NewScript(`
local old = redis.call('GET', KEYS[1])
if old == ARGV[1] then
  return 0
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'EX', ttl)
else
  redis.call('SET', KEYS[1], ARGV[1])
end
if old then
  redis.call('XADD', KEYS[2], '*', 'game_id', ARGV[3], 'old', old, 'new', ARGV[1])
else
  redis.call('XADD', KEYS[2], '*', 'game_id', ARGV[3], 'new', ARGV[1])
end
return 1
`)

// RedisStore keeps one JSON record per game.
type RedisStore struct {
	client    *redis.Client
	stream    string
	retention time.Duration
	logger    *slog.Logger
}

// NewRedisStore returns a store writing change events to stream. Records
// expire after retention; zero keeps them forever.
func NewRedisStore(client *redis.Client, stream string, retention time.Duration, logger *slog.Logger) *RedisStore {
	if stream == "" {
		stream = DefaultChangeStream
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, stream: stream, retention: retention, logger: logger}
}

func recordKey(gameID string) string {
	return "game:" + gameID
}

// Put overwrites the record at its game ID. It reports whether the write
// changed anything (and so emitted a change event).
func (s *RedisStore) Put(ctx context.Context, rec game.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	data, err := sonic.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling game %s: %w", rec.GameID, err)
	}

	changed, err := putScript.Run(ctx, s.client,
		[]string{recordKey(rec.GameID), s.stream},
		string(data), int64(s.retention/time.Second), rec.GameID,
	).Int()
	if err != nil {
		return false, fmt.Errorf("writing game %s: %w", rec.GameID, err)
	}
	if changed == 1 {
		s.logger.Info("Game record written", "gameID", rec.GameID, "record", rec.String())
	}
	return changed == 1, nil
}

// Get returns the stored record, if any.
func (s *RedisStore) Get(ctx context.Context, gameID string) (game.Record, bool, error) {
	data, err := s.client.Get(ctx, recordKey(gameID)).Bytes()
	if err == redis.Nil {
		return game.Record{}, false, nil
	}
	if err != nil {
		return game.Record{}, false, fmt.Errorf("reading game %s: %w", gameID, err)
	}

	var rec game.Record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return game.Record{}, false, fmt.Errorf("decoding game %s: %w", gameID, err)
	}
	return rec, true, nil
}
