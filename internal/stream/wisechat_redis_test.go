package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream(t *testing.T) (*RedisStream, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStream(client, "test-group", zerolog.Nop()), client
}

func TestCreateGroup_Idempotent(t *testing.T) {
	s, _ := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))
	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))
}

func TestConsume_DeliversWithoutAckAndDropsGarbage(t *testing.T) {
	s, client := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))

	// an entry without a decodable "data" field
	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamAlerts,
		Values: map[string]any{"data": "{not json"},
	}).Err())

	_, err := s.Publish(ctx, StreamAlerts, &Job{ID: "job-1", Type: JobChatAlert, Payload: []byte(`{"chat_id":1}`), CreatedAt: time.Now()})
	require.NoError(t, err)

	got := make(chan Entry, 4)
	go s.Consume(ctx, StreamAlerts, "c1", 50*time.Millisecond, func(_ context.Context, e Entry) {
		got <- e
	})

	var entry Entry
	select {
	case entry = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no entry delivered")
	}
	assert.Equal(t, "job-1", entry.Job.ID)
	assert.Equal(t, JobChatAlert, entry.Job.Type)
	assert.JSONEq(t, `{"chat_id":1}`, string(entry.Job.Payload))

	// the garbage entry was acked, the delivered one is still pending
	assert.Eventually(t, func() bool {
		n, err := s.Pending(ctx, StreamAlerts)
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Ack(ctx, StreamAlerts, entry.StreamID))
	n, err := s.Pending(ctx, StreamAlerts)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestReclaim_ClaimsOtherConsumersEntries(t *testing.T) {
	s, client := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))
	_, err := s.Publish(ctx, StreamAlerts, &Job{ID: "job-1", Type: JobChatAlert, Payload: []byte(`{}`)})
	require.NoError(t, err)
	readAs(t, client, "crashed")

	var got []Entry
	n, err := s.Reclaim(ctx, StreamAlerts, "c2", ReclaimConfig{MinIdle: 0, MaxDeliveries: 5}, func(_ context.Context, e Entry) {
		got = append(got, e)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, got, 1)
	assert.Equal(t, "job-1", got[0].Job.ID)

	pending, err := client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: StreamAlerts, Group: "test-group", Start: "-", End: "+", Count: 10,
	}).Result()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].Consumer, "claimed entry stays pending until acked")
}

func TestReclaim_LeavesRecentEntries(t *testing.T) {
	s, client := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))
	_, err := s.Publish(ctx, StreamAlerts, &Job{ID: "job-1", Type: JobChatAlert, Payload: []byte(`{}`)})
	require.NoError(t, err)
	readAs(t, client, "busy")

	n, err := s.Reclaim(ctx, StreamAlerts, "c2", ReclaimConfig{MinIdle: time.Hour, MaxDeliveries: 5}, func(_ context.Context, e Entry) {
		t.Errorf("unexpected entry %s", e.StreamID)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReclaim_DeadLettersOverDeliveredEntries(t *testing.T) {
	s, client := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, s.CreateGroup(ctx, StreamAlerts))
	_, err := s.Publish(ctx, StreamAlerts, &Job{ID: "job-1", Type: JobChatAlert, Payload: []byte(`{}`)})
	require.NoError(t, err)
	readAs(t, client, "crashed")

	n, err := s.Reclaim(ctx, StreamAlerts, "c2", ReclaimConfig{MinIdle: 0, MaxDeliveries: 1}, func(_ context.Context, e Entry) {
		t.Errorf("unexpected entry %s", e.StreamID)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	pending, err := s.Pending(ctx, StreamAlerts)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)

	dead, err := client.XRange(ctx, StreamAlerts+DeadLetterSuffix, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].Values["data"], `"job-1"`)
}

// readAs delivers every new entry to consumer without acking.
func readAs(t *testing.T, client *redis.Client, consumer string) {
	t.Helper()
	_, err := client.XReadGroup(context.Background(), &redis.XReadGroupArgs{
		Group:    "test-group",
		Consumer: consumer,
		Streams:  []string{StreamAlerts, ">"},
		Count:    10,
		Block:    -1,
	}).Result()
	require.NoError(t, err)
}
