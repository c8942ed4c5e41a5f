package memory

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreUnknownDriver(t *testing.T) {
	_, err := NewStore(Driver("postgres"))
	assert.ErrorIs(t, err, ErrInvalidDriver)
}

func TestNewStoreFileRequiresDir(t *testing.T) {
	_, err := NewStore(DriverFile)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewStoreRedisRequiresClient(t *testing.T) {
	_, err := NewStore(DriverRedis)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewStoreSQLiteRequiresPath(t *testing.T) {
	_, err := NewStore(DriverSQLite)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore(DriverMemory)
	require.NoError(t, err)
	defer store.Close()

	_, source, err := store.Load(context.Background(), "anyone")
	require.NoError(t, err)
	assert.Equal(t, SourceDefaultNew, source)
}

func TestNewStoreFileWithInjectedFs(t *testing.T) {
	store, err := NewStore(DriverFile,
		WithFs(afero.NewMemMapFs()),
		WithDir("/tmp/records"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), NewRecord("u1")))
	_, source, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceStored, source)
}
