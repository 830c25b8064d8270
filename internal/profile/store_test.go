package profile

import (
	"context"
	"testing"
	"time"

	"github.com/alkarmah/storefront/pkg/config"
	"github.com/alkarmah/storefront/pkg/db"
	"github.com/alkarmah/storefront/pkg/db/models"
	"github.com/alkarmah/storefront/pkg/migrate"
	"github.com/alkarmah/storefront/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) ProfileKey(device string) string {
	return "sf:profile:" + device
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := Profile{Name: "Ali", Mobile: "55501234"}
	require.NoError(t, store.Save(ctx, first))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	second := Profile{Name: "Ali Hassan", Email: "ali@example.com", ImageURI: "https://img/ali.jpg"}
	require.NoError(t, store.Save(ctx, second))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStoreNeverExpires(t *testing.T) {
	kv := &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
	store, err := NewRedisStore(kv, "phone-1")
	require.NoError(t, err)

	exerciseStore(t, store)
	assert.Equal(t, time.Duration(0), kv.ttls["sf:profile:phone-1"])
}

func TestDBStoreKeepsCreatedAt(t *testing.T) {
	conn, err := db.Open(sqlite.Open("file::memory:"))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migrate.Up(context.Background(), sqlDB, config.DBDriverSQLite))

	store, err := NewDBStore(db.Wrap(conn, config.DBDriverSQLite), "phone-1")
	require.NoError(t, err)
	clock := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	exerciseStore(t, store)

	clock = clock.Add(time.Hour)
	require.NoError(t, store.Save(context.Background(), Profile{Name: "Later"}))

	var row models.DeviceProfile
	require.NoError(t, conn.Where("device = ?", "phone-1").First(&row).Error)
	assert.True(t, row.CreatedAt.Equal(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, row.UpdatedAt.Equal(clock))

	var count int64
	require.NoError(t, conn.Model(&models.DeviceProfile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
