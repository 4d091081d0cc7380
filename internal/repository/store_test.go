package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/config"
	"sweetshop/internal/model"
)

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DBDriver: "sqlite", DBDSN: filepath.Join(t.TempDir(), "store.db")}

	store, err := OpenStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)

	sweet := &model.Sweet{Name: "Fudge", Category: "Fudge", Price: decimal.NewFromInt(3), Quantity: 1}
	require.NoError(t, store.Sweets.Create(ctx, sweet))
	require.NoError(t, store.Close())

	cfg.ResetDB = true
	store, err = OpenStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	all, err := store.Sweets.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{DBDriver: "oracle"}, zerolog.Nop())
	assert.Error(t, err)
}
