package client

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/repositories/credentials"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CredentialRoundTrip(t *testing.T) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := credentials.NewSQLiteRepository(db)

	_, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	exp := time.Unix(1_900_000_000, 0)
	in := models.Credential{Value: "tok", ExpiresAt: exp, Secure: true, SameSite: http.SameSiteLaxMode}
	require.NoError(t, repo.Save(ctx, in))

	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tok", got.Value)
	assert.True(t, got.ExpiresAt.Equal(exp))
	assert.True(t, got.Secure)
	assert.Equal(t, http.SameSiteLaxMode, got.SameSite)

	require.NoError(t, repo.Delete(ctx))
	_, found, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitDatabase_CredentialSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "client.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, credentials.NewSQLiteRepository(db).Save(ctx, models.Credential{
		Value:     "persisted",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	got, found, err := credentials.NewSQLiteRepository(db).Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "persisted", got.Value)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db))
	first, err := goose.GetDBVersionContext(ctx, db)
	require.NoError(t, err)
	assert.Positive(t, first)

	require.NoError(t, RunMigrations(ctx, db))
	second, err := goose.GetDBVersionContext(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInitDatabase_BadPath(t *testing.T) {
	_, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "client.db"))
	require.Error(t, err)
}
