package sqlite

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestSessionRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey(), nil)
	ctx := context.Background()

	err := repo.Save(ctx, model.Session{Token: "tok-abc", Username: "admin"})
	require.NoError(t, err)

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Session{Token: "tok-abc", Username: "admin"}, s)
}

func TestSessionRepo_LoadEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey(), nil)

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestSessionRepo_SaveOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey(), nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Session{Token: "old", Username: "a"}))
	require.NoError(t, repo.Save(ctx, model.Session{Token: "new", Username: "b"}))

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", s.Token)
	assert.Equal(t, "b", s.Username)
}

func TestSessionRepo_Clear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey(), nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Session{Token: "tok", Username: "admin"}))
	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Session{}, s)
}

func TestSessionRepo_ValuesEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey(), nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Session{Token: "tok-plain", Username: "admin"}))

	var stored string
	var encrypted bool
	err := db.Reader.QueryRowContext(ctx,
		`SELECT value, encrypted FROM session_values WHERE name = ?`, driven.SessionKeyToken,
	).Scan(&stored, &encrypted)
	require.NoError(t, err)
	assert.True(t, encrypted)
	assert.NotContains(t, stored, "tok-plain")
}

func TestSessionRepo_NoKeyStoresPlainAndWarns(t *testing.T) {
	db := setupTestDB(t)
	var logs bytes.Buffer
	repo := NewSessionRepo(db, nil, slog.New(slog.NewTextHandler(&logs, nil)))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Session{Token: "tok", Username: "admin"}))
	assert.Contains(t, logs.String(), "unencrypted")

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
}

func TestSessionRepo_EncryptedRowWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewSessionRepo(db, testKey(), nil).Save(ctx, model.Session{Token: "tok", Username: "admin"}))

	_, err := NewSessionRepo(db, nil, nil).Load(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestSessionRepo_WrongKeyFailsToDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewSessionRepo(db, testKey(), nil).Save(ctx, model.Session{Token: "tok", Username: "admin"}))

	other := bytes.Repeat([]byte{0x07}, 32)
	_, err := NewSessionRepo(db, other, nil).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}
