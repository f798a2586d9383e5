package tickets

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTicketRepo is an in-memory stand-in for the cas_tickets repository.
type fakeTicketRepo struct {
	mu   sync.Mutex
	rows map[string]fakeRow
}

type fakeRow struct {
	payload   []byte
	expiresAt time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{rows: map[string]fakeRow{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, id string, payload []byte, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id] = fakeRow{payload: payload, expiresAt: expiresAt}
	return nil
}

func (f *fakeTicketRepo) Find(_ context.Context, id string, now time.Time) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || !row.expiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	return row.payload, nil
}

func (f *fakeTicketRepo) Take(_ context.Context, id string, now time.Time) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	delete(f.rows, id)
	if !ok || !row.expiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	return row.payload, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeTicketRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, row := range f.rows {
		if !row.expiresAt.After(now) {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func storages(t *testing.T) map[string]Storage {
	_, client := newTestRedis(t)
	return map[string]Storage{
		"memory":   NewMemoryStorage(time.Minute),
		"redis":    NewRedisStorage(client),
		"postgres": NewPostgresStorage(newFakeTicketRepo()),
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "TGT-1-missing")
			assert.ErrorIs(t, err, common.ErrorNotFound)
			_, err = s.Take(ctx, "TGT-1-missing")
			assert.ErrorIs(t, err, common.ErrorNotFound)
			assert.NoError(t, s.Delete(ctx, "TGT-1-missing"))

			require.NoError(t, s.Put(ctx, "ST-1-a", []byte("value"), time.Minute))
			got, err := s.Get(ctx, "ST-1-a")
			require.NoError(t, err)
			assert.Equal(t, []byte("value"), got)

			got, err = s.Take(ctx, "ST-1-a")
			require.NoError(t, err)
			assert.Equal(t, []byte("value"), got)
			_, err = s.Take(ctx, "ST-1-a")
			assert.ErrorIs(t, err, common.ErrorNotFound, "take is single use")

			require.NoError(t, s.Put(ctx, "TGT-2-a", []byte("v"), time.Minute))
			require.NoError(t, s.Delete(ctx, "TGT-2-a"))
			_, err = s.Get(ctx, "TGT-2-a")
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestStorage_TakeIsExclusive(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, "ST-9-race", []byte("v"), time.Minute))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := s.Take(ctx, "ST-9-race"); err == nil {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestRedisStorage_ExpiryAndUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStorage(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ST-1-a", []byte("v"), 10*time.Second))
	assert.True(t, mr.Exists(redisKeyPrefix+"ST-1-a"))
	mr.FastForward(11 * time.Second)
	_, err := s.Get(ctx, "ST-1-a")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mr.Close()
	_, err = s.Get(ctx, "ST-1-a")
	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.ErrorIs(t, s.Put(ctx, "ST-2-a", []byte("v"), time.Second), common.ErrUnavailable)
}

func TestMemoryStorage_Expiry(t *testing.T) {
	s := NewMemoryStorage(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ST-1-a", []byte("v"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, err := s.Get(ctx, "ST-1-a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Take(ctx, "ST-1-a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresStorage_Purge(t *testing.T) {
	repo := newFakeTicketRepo()
	s := NewPostgresStorage(repo)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ST-1-a", []byte("v"), time.Second))
	require.NoError(t, s.Put(ctx, "TGT-1-a", []byte("v"), time.Hour))

	now = now.Add(2 * time.Second)
	_, err := s.Get(ctx, "ST-1-a")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, repo.rows, 1)
}
