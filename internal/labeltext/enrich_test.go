package labeltext

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-platform/internal/labelrules"
)

type mockS3 struct {
	puts map[string][]byte
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func labelServer(t *testing.T, calls *atomic.Int64, sections Sections) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("name") == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(sections)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnricherFetchesParsesAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := labelServer(t, &calls, Sections{
		Dosing:   "Take every 12 hours after meals.",
		Warnings: "Avoid grapefruit juice while taking this medication.",
	})

	rdb := testRedis(t)
	store := &mockS3{}
	e := NewEnricher(
		NewClient(srv.URL, nil),
		NewCache(rdb, time.Hour),
		NewArchive(store, "label-archive", nil),
		nil, nil,
	)

	rule := e.Rules(context.Background(), "Simvastatin")
	assert.Equal(t, labelrules.FoodAfter, rule.Food)
	assert.Equal(t, 12.0, rule.MinIntervalHours)
	assert.Contains(t, rule.Avoid, "grapefruit")

	// Second call is served from cache.
	e.Rules(context.Background(), "Simvastatin")
	assert.Equal(t, int64(1), calls.Load())

	// Raw document archived once.
	require.Len(t, store.puts, 1)
	for key := range store.puts {
		assert.Contains(t, key, "labels/v1/simvastatin/")
	}
}

func TestEnricherUnconfiguredProvider(t *testing.T) {
	e := NewEnricher(NewClient("", nil), nil, nil, nil, nil)

	rule := e.Rules(context.Background(), "metformin")
	assert.Equal(t, labelrules.FoodNone, rule.Food)
	assert.Zero(t, rule.MinIntervalHours)
	assert.Empty(t, rule.Avoid)
}

func TestEnricherProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	e := NewEnricher(NewClient(srv.URL, nil), nil, nil, nil, nil)
	rule := e.Rules(context.Background(), "metformin")
	assert.Equal(t, labelrules.FoodNone, rule.Food)
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such label", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, nil).Fetch(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(testRedis(t), time.Hour)
	want := &Sections{Dosing: "once daily"}

	require.NoError(t, c.Put(context.Background(), "Metformin", want))

	got, err := c.Get(context.Background(), "metformin") // case-insensitive key
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Dosing, got.Dosing)
}

func TestCacheMiss(t *testing.T) {
	got, err := NewCache(testRedis(t), time.Hour).Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArchiveDisabledIsNoop(t *testing.T) {
	a := NewArchive(nil, "", nil)
	assert.False(t, a.Enabled())
	assert.NoError(t, a.Store(context.Background(), "metformin", &Sections{}))
}
