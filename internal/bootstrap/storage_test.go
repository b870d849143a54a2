package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/roombooking/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
equipment:
  - {id: 1, name: projector}
rooms:
  - {id: 101, building: Main, number: "101", capacity: 10, price: 50, equipment: [1]}
users:
  - {id: 1, username: alice, email: alice@example.com}
`), 0o600))

	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Storage.SeedFile = seed
	cfg.Retry.MaxAttempts = 2

	storage, err := OpenStorage(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer storage.Close()

	room, err := storage.Catalog.GetRoom(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), room.PriceCents)

	ok, err := storage.Users.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenStorage_MissingSeed(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Storage.SeedFile = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := OpenStorage(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
