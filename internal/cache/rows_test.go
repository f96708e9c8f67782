package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storepulse/store-uptime-worker/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeKVStore is an in-memory KVStore for tests
type fakeKVStore struct {
	data    map[string]string
	setErr  error
	getErr  error
	setCall int
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{data: make(map[string]string)}
}

func (f *fakeKVStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

func (f *fakeKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

var testRefTime = time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

func testRow() report.Row {
	return report.Row{
		StoreID:          "s1",
		UptimeLastHour:   42.5,
		UptimeLastDay:    20,
		UptimeLastWeek:   150.25,
		DowntimeLastHour: 17.5,
		DowntimeLastDay:  4,
		DowntimeLastWeek: 17.75,
	}
}

func TestRowCache_PutThenGet(t *testing.T) {
	kv := newFakeKVStore()
	c := NewRowCache(kv, time.Hour, zap.NewNop())

	c.Put(context.Background(), "s1", testRefTime, testRow())

	got, ok := c.Get(context.Background(), "s1", testRefTime)
	require.True(t, ok)
	assert.Equal(t, testRow(), got)
}

func TestRowCache_MissOnUnknownKey(t *testing.T) {
	c := NewRowCache(newFakeKVStore(), time.Hour, zap.NewNop())

	_, ok := c.Get(context.Background(), "absent", testRefTime)
	assert.False(t, ok)
}

func TestRowCache_KeyIncludesReferenceTime(t *testing.T) {
	kv := newFakeKVStore()
	c := NewRowCache(kv, time.Hour, zap.NewNop())

	c.Put(context.Background(), "s1", testRefTime, testRow())

	// A different reference instant is a different cache entry.
	_, ok := c.Get(context.Background(), "s1", testRefTime.Add(time.Minute))
	assert.False(t, ok)
}

func TestRowCache_ReadErrorDegradesToMiss(t *testing.T) {
	kv := newFakeKVStore()
	kv.getErr = errors.New("connection refused")
	c := NewRowCache(kv, time.Hour, zap.NewNop())

	_, ok := c.Get(context.Background(), "s1", testRefTime)
	assert.False(t, ok)
}

func TestRowCache_WriteErrorIsSwallowed(t *testing.T) {
	kv := newFakeKVStore()
	kv.setErr = errors.New("connection refused")
	c := NewRowCache(kv, time.Hour, zap.NewNop())

	c.Put(context.Background(), "s1", testRefTime, testRow())
	assert.Equal(t, 1, kv.setCall)
}

func TestRowCache_MalformedEntryIsIgnored(t *testing.T) {
	kv := newFakeKVStore()
	c := NewRowCache(kv, time.Hour, zap.NewNop())

	kv.data[rowKey("s1", testRefTime)] = "{not valid json"

	_, ok := c.Get(context.Background(), "s1", testRefTime)
	assert.False(t, ok)
}

func TestRowCache_NilCacheIsNoop(t *testing.T) {
	var c *RowCache

	c.Put(context.Background(), "s1", testRefTime, testRow())
	_, ok := c.Get(context.Background(), "s1", testRefTime)
	assert.False(t, ok)
}
