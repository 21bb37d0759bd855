package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

func TestCredentialRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	cred := model.Credential{
		Token:     "abc",
		Workspace: &model.Workspace{ID: "7", Name: "Main outlet"},
	}
	require.NoError(t, repo.Save(ctx, cred))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestCredentialRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestCredentialRepo_SaveOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Credential{Token: "old"}))
	require.NoError(t, repo.Save(ctx, model.Credential{Token: "new"}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Token)
	assert.Nil(t, got.Workspace)
}

func TestCredentialRepo_ValueIsEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Credential{Token: "super-secret-token"}))

	var raw string
	err := db.Reader.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = 'session'`).Scan(&raw)
	require.NoError(t, err)
	assert.NotContains(t, raw, "super-secret-token")
}

func TestCredentialRepo_WrongKeyFailsToDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey()).Save(ctx, model.Credential{Token: "abc"}))

	otherKey := make([]byte, 32)
	_, err := NewCredentialRepo(db, otherKey).Load(ctx)
	assert.Error(t, err)
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Credential{Token: "abc"}))
	require.NoError(t, repo.Delete(ctx))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	assert.NoError(t, repo.Delete(ctx), "deleting a missing credential should not error")
}

func TestCredentialRepo_NoKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	err := repo.Save(ctx, model.Credential{Token: "abc"})
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	assert.NoError(t, repo.Delete(ctx))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
