package user

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestAddAndGet(t *testing.T) {
	store := newTestStore(t)

	added, err := store.Add("alice", "s3cret", true, []string{"admin"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.AuthBcrypt, added.AuthMethod)
	assert.NotEmpty(t, added.Hash)
	assert.Empty(t, added.Password)

	got, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.True(t, got.HasRole("admin"))
}

func TestAddDuplicate(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("alice", "one", true, nil, "")
	require.NoError(t, err)
	_, err = store.Add("alice", "two", true, nil, "")
	assert.ErrorIs(t, err, ErrExists)
}

func TestAddUnknownMethod(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("bob", "pw", true, nil, "rot13")
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticateBcrypt(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add("alice", "s3cret", true, nil, "")
	require.NoError(t, err)

	u, err := store.Authenticate("alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)

	_, err = store.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateCleartext(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add("demo", "1234", true, nil, models.AuthCleartext)
	require.NoError(t, err)

	_, err = store.Authenticate("demo", "1234")
	assert.NoError(t, err)

	_, err = store.Authenticate("demo", "4321")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveOrMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add("sleeper", "pw", false, nil, "")
	require.NoError(t, err)

	_, err = store.Authenticate("sleeper", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate("ghost", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add("alice", "pw", true, nil, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete("alice"))
	_, err = store.Get("alice")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete("alice"), ErrNotFound)
}

func TestEnsureDemoUser(t *testing.T) {
	store := newTestStore(t)

	created, err := store.EnsureDemoUser()
	require.NoError(t, err)
	assert.True(t, created)

	u, err := store.Authenticate(DemoUser, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, models.AuthCleartext, u.AuthMethod)

	created, err = store.EnsureDemoUser()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureDemoUserSkipsPopulatedStore(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add("alice", "pw", true, nil, "")
	require.NoError(t, err)

	created, err := store.EnsureDemoUser()
	require.NoError(t, err)
	assert.False(t, created)

	_, err = store.Get(DemoUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistsAcrossStores(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.Add("alice", "pw", true, []string{"admin"}, "")
	require.NoError(t, err)

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	u, err := reopened.Get("alice")
	require.NoError(t, err)
	assert.True(t, u.HasRole("admin"))
}

func TestCorruptUserFileRefused(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o600))

	_, err := NewStore(dir)
	assert.Error(t, err)
}
