package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTopRejectsUnknownWindow(t *testing.T) {
	s := NewService(nil, zerolog.Nop(), ServiceOptions{})

	_, err := s.Top(context.Background(), "hourly", 10)
	assert.Error(t, err)
}

func TestWindowBuckets(t *testing.T) {
	now := time.Now().UTC()

	assert.Equal(t, now.Format("2006-01-02"), windowBucket(WindowDaily))

	year, week := now.ISOWeek()
	assert.Equal(t, fmt.Sprintf("%d-w%02d", year, week), windowBucket(WindowWeekly))

	assert.Equal(t, "all", windowBucket(WindowAllTime))
}

func TestWindowTTLs(t *testing.T) {
	assert.Equal(t, 48*time.Hour, windowTTL(WindowDaily))
	assert.Equal(t, 14*24*time.Hour, windowTTL(WindowWeekly))
	assert.Zero(t, windowTTL(WindowAllTime), "all-time scores never expire")
}

func TestAssembleEntry(t *testing.T) {
	ctx := context.Background()

	name := redis.NewStringCmd(ctx)
	name.SetVal("Alice")
	wins := redis.NewStringCmd(ctx)
	wins.SetVal("3")
	games := redis.NewStringCmd(ctx)
	games.SetVal("7")

	entry := assembleEntry("p1", 42, name, wins, games)
	assert.Equal(t, Entry{PlayerID: "p1", DisplayName: "Alice", Score: 42, Wins: 3, Games: 7}, entry)
}

func TestAssembleEntryToleratesMissingDetails(t *testing.T) {
	ctx := context.Background()

	name := redis.NewStringCmd(ctx)
	name.SetErr(redis.Nil)
	wins := redis.NewStringCmd(ctx)
	wins.SetErr(redis.Nil)
	games := redis.NewStringCmd(ctx)
	games.SetVal("not-a-number")

	entry := assembleEntry("p2", 10, name, wins, games)
	assert.Equal(t, Entry{PlayerID: "p2", Score: 10}, entry, "missing or bad hash fields keep their zero values")
}

func TestKeySchema(t *testing.T) {
	s := NewService(nil, zerolog.Nop(), ServiceOptions{RedisKeyPrefix: "test"})

	assert.Equal(t, "test:all_time:all", s.scoreKey(WindowAllTime))
	assert.Equal(t, "test:all_time:all:wins", s.statKey(WindowAllTime, "wins"))
	assert.Equal(t, "test:names", s.nameKey())
}
