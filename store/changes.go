package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sports-home-automation/game"
)

// ErrInvalidChange marks a change event that is missing its images or carries
// an unreadable one.
var ErrInvalidChange = crerr.New("invalid change event")

func IsInvalidChange(err error) bool {
	return crerr.Is(err, ErrInvalidChange)
}

// Change is one mutation of a stored record. Old is nil on first insert.
type Change struct {
	ID     string
	GameID string
	Old    *game.Record
	New    *game.Record
}

// ParseChange decodes a stream message into a Change.
func ParseChange(msg redis.XMessage) (Change, error) {
	change := Change{ID: msg.ID}

	newRaw, ok := msg.Values["new"].(string)
	if !ok || newRaw == "" {
		return Change{}, fmt.Errorf("%w: message %s has no new image", ErrInvalidChange, msg.ID)
	}
	newRec, err := decodeImage(newRaw)
	if err != nil {
		return Change{}, fmt.Errorf("%w: message %s new image: %v", ErrInvalidChange, msg.ID, err)
	}
	change.New = newRec

	if oldRaw, ok := msg.Values["old"].(string); ok && oldRaw != "" {
		oldRec, err := decodeImage(oldRaw)
		if err != nil {
			return Change{}, fmt.Errorf("%w: message %s old image: %v", ErrInvalidChange, msg.ID, err)
		}
		change.Old = oldRec
	}

	change.GameID, _ = msg.Values["game_id"].(string)
	if change.GameID == "" {
		change.GameID = newRec.GameID
	}
	if change.GameID != newRec.GameID {
		return Change{}, fmt.Errorf("%w: message %s is for %s but carries %s", ErrInvalidChange, msg.ID, change.GameID, newRec.GameID)
	}
	return change, nil
}

func decodeImage(raw string) (*game.Record, error) {
	var rec game.Record
	if err := sonic.UnmarshalString(raw, &rec); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ChangeHandler reacts to one change. Returning an error leaves the message
// pending; Consume hands it over again on its next replay.
type ChangeHandler func(ctx context.Context, change Change) error

// ChangeStream reads change events through a consumer group.
type ChangeStream struct {
	client      *redis.Client
	stream      string
	group       string
	consumer    string
	block       time.Duration
	replayEvery time.Duration
	logger      *slog.Logger
}

// DefaultReplayInterval is how often Consume re-reads this consumer's pending
// entries, retrying changes whose handler failed.
const DefaultReplayInterval = 15 * time.Second

func NewChangeStream(client *redis.Client, stream, group string, logger *slog.Logger) *ChangeStream {
	if stream == "" {
		stream = DefaultChangeStream
	}
	if group == "" {
		group = DefaultChangeGroup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeStream{
		client:      client,
		stream:      stream,
		group:       group,
		consumer:    "processor-" + uuid.NewString(),
		block:       time.Second,
		replayEvery: DefaultReplayInterval,
		logger:      logger,
	}
}

// Consumer is this reader's name within the group.
func (s *ChangeStream) Consumer() string { return s.consumer }

// EnsureGroup creates the consumer group (and stream) when missing.
func (s *ChangeStream) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Consume replays this consumer's pending messages, then blocks reading new
// ones until ctx is done. Pending messages are replayed again every
// replayEvery, so a change whose handler failed is retried without a restart.
func (s *ChangeStream) Consume(ctx context.Context, handle ChangeHandler) error {
	if err := s.EnsureGroup(ctx); err != nil {
		return err
	}
	s.replayPending(ctx, handle)
	lastReplay := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.replayEvery > 0 && time.Since(lastReplay) >= s.replayEvery {
			s.replayPending(ctx, handle)
			lastReplay = time.Now()
		}
		if _, err := s.ReadBatch(ctx, ">", handle); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("Error reading change stream", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

func (s *ChangeStream) replayPending(ctx context.Context, handle ChangeHandler) {
	read, err := s.ReadBatch(ctx, "0", handle)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Replaying pending changes failed", "error", err)
		}
		return
	}
	if read > 0 {
		s.logger.Info("Replayed pending changes", "count", read)
	}
}

// ReadBatch reads up to ten messages starting at id (">" for new, "0" for
// pending) and hands each to handle. Malformed messages are logged, acked and
// skipped. It returns how many messages were read.
func (s *ChangeStream) ReadBatch(ctx context.Context, id string, handle ChangeHandler) (int, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, id},
		Count:    10,
		Block:    s.block,
	}).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading from stream: %w", err)
	}

	read := 0
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			read++
			change, err := ParseChange(msg)
			if err != nil {
				s.logger.Warn("Skipping malformed change", "messageID", msg.ID, "error", err)
				s.ack(ctx, msg.ID)
				continue
			}
			if err := handle(ctx, change); err != nil {
				s.logger.Error("Change handler failed", "messageID", msg.ID, "gameID", change.GameID, "error", err)
				continue
			}
			s.ack(ctx, msg.ID)
		}
	}
	return read, nil
}

func (s *ChangeStream) ack(ctx context.Context, id string) {
	if err := s.client.XAck(ctx, s.stream, s.group, id).Err(); err != nil {
		s.logger.Error("Failed to ack change", "messageID", id, "error", err)
	}
}
