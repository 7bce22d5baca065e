package database

import (
	"context"
	"testing"

	"inkpress/internal/config"
	"inkpress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN_DefaultsSSLMode(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "ink"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ink sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestOpenSQLite_MigratesSchema(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
	assert.True(t, db.Migrator().HasTable(&models.PostTag{}))
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "Slug"))
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_like_user_post"))
	assert.NoError(t, Ping(context.Background(), db))
}

func TestConfigurePool(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	assert.NoError(t, configurePool(db))
}
