package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquidolado/aqui/internal/client/storage"
)

type fakeAuth struct {
	loginFn    func(ctx context.Context, email, password string) (*Credentials, error)
	registerFn func(ctx context.Context, name, email, password, whatsapp string) (*Credentials, error)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*Credentials, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password, whatsapp string) (*Credentials, error) {
	return f.registerFn(ctx, name, email, password, whatsapp)
}

type fakeProfile struct {
	calls    atomic.Int32
	verified bool
	err      error
}

func (f *fakeProfile) FetchEmailVerified(ctx context.Context) (bool, error) {
	f.calls.Add(1)
	return f.verified, f.err
}

func verifiedCreds() *Credentials {
	return &Credentials{
		Token:         "tok-1",
		User:          User{ID: 7, Email: "ana@example.com", Name: "Ana"},
		EmailVerified: true,
	}
}

func TestLoginPersistsWriteThrough(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		assert.Equal(t, "ana@example.com", email)
		return verifiedCreds(), nil
	}}
	store := NewStore(st, auth, nil, nil)

	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))

	token, ok, err := st.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	raw, ok, err := st.Get(ctx, storage.KeyAuthState)
	require.NoError(t, err)
	require.True(t, ok)

	var rec struct {
		Token         string `json:"token"`
		User          *User  `json:"user"`
		EmailVerified *bool  `json:"emailVerified"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, "tok-1", rec.Token)
	require.NotNil(t, rec.User)
	assert.Equal(t, int64(7), rec.User.ID)
	require.NotNil(t, rec.EmailVerified)
	assert.True(t, *rec.EmailVerified)
}

func TestLoginFailureLeavesStoreAnonymous(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		return nil, errors.New("invalid login/password")
	}}
	store := NewStore(st, auth, nil, nil)

	require.Error(t, store.Login(ctx, "ana@example.com", "wrong"))
	assert.False(t, store.IsAuthenticated())

	_, ok, err := st.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutThenHydrateIsAnonymous(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		return verifiedCreds(), nil
	}}
	store := NewStore(st, auth, nil, nil)

	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))
	require.NoError(t, store.Logout(ctx))
	// Idempotent.
	require.NoError(t, store.Logout(ctx))

	fresh := NewStore(st, auth, nil, nil)
	require.NoError(t, fresh.Hydrate(ctx))
	assert.False(t, fresh.IsAuthenticated())
	assert.Nil(t, fresh.Current().User)
}

func TestHydrateTokenSlotWinsOverRecord(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, storage.KeyToken, "slot-token"))
	require.NoError(t, st.Set(ctx, storage.KeyAuthState,
		`{"token":"record-token","user":{"id":7,"email":"ana@example.com","name":"Ana"},"emailVerified":true}`))

	store := NewStore(st, nil, nil, nil)
	require.NoError(t, store.Hydrate(ctx))

	got := store.Current()
	assert.Equal(t, "slot-token", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ana", got.User.Name)
}

func TestHydrateFallsBackToRecordToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, storage.KeyAuthState,
		`{"token":"record-token","user":{"id":7,"email":"ana@example.com","name":"Ana"},"emailVerified":true}`))

	store := NewStore(st, nil, nil, nil)
	require.NoError(t, store.Hydrate(ctx))
	assert.Equal(t, "record-token", store.Token(ctx))
}

func TestHydrateCorruptRecordKeepsTokenSlot(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, storage.KeyToken, "slot-token"))
	require.NoError(t, st.Set(ctx, storage.KeyAuthState, "{not json"))

	store := NewStore(st, nil, nil, nil)
	require.NoError(t, store.Hydrate(ctx))

	got := store.Current()
	assert.Equal(t, "slot-token", got.Token)
	assert.Nil(t, got.User)
}

func TestUpdateUserShallowMergePersists(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		return verifiedCreds(), nil
	}}
	store := NewStore(st, auth, nil, nil)
	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))

	require.NoError(t, store.UpdateUser(ctx, "Ana Maria", ""))

	got := store.Current()
	assert.Equal(t, "Ana Maria", got.User.Name)
	assert.Equal(t, "ana@example.com", got.User.Email)

	fresh := NewStore(st, nil, nil, nil)
	require.NoError(t, fresh.Hydrate(ctx))
	assert.Equal(t, "Ana Maria", fresh.Current().User.Name)
}

func TestUpdateUserNoOpWhenAnonymous(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st, nil, nil, nil)

	require.NoError(t, store.UpdateUser(ctx, "Ana", ""))

	_, ok, err := st.Get(ctx, storage.KeyAuthState)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconciliationFlipsUnverifiedFlag(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		creds := verifiedCreds()
		creds.EmailVerified = false
		return creds, nil
	}}
	profile := &fakeProfile{verified: true}
	store := NewStore(st, auth, profile, nil)

	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))
	store.Wait()

	got := store.Current()
	require.NotNil(t, got.EmailVerified)
	assert.True(t, *got.EmailVerified)
	assert.Equal(t, int32(1), profile.calls.Load())

	// Persisted too.
	fresh := NewStore(st, nil, nil, nil)
	require.NoError(t, fresh.Hydrate(ctx))
	require.NotNil(t, fresh.Current().EmailVerified)
	assert.True(t, *fresh.Current().EmailVerified)
}

func TestReconciliationRunsOncePerTransition(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		creds := verifiedCreds()
		creds.EmailVerified = false
		return creds, nil
	}}
	profile := &fakeProfile{verified: false}
	store := NewStore(st, auth, profile, nil)

	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))
	store.Wait()
	assert.Equal(t, int32(1), profile.calls.Load())

	// Still unverified, but no second check until the state changes again.
	store.maybeReconcile(ctx)
	store.Wait()
	assert.Equal(t, int32(1), profile.calls.Load())

	// An explicit transition back to unverified re-arms the check.
	require.NoError(t, store.SetEmailVerified(ctx, false))
	store.Wait()
	assert.Equal(t, int32(2), profile.calls.Load())
}

func TestReconciliationSkippedWhenVerified(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	auth := &fakeAuth{loginFn: func(ctx context.Context, email, password string) (*Credentials, error) {
		return verifiedCreds(), nil
	}}
	profile := &fakeProfile{verified: true}
	store := NewStore(st, auth, profile, nil)

	require.NoError(t, store.Login(ctx, "ana@example.com", "secret"))
	store.Wait()
	assert.Equal(t, int32(0), profile.calls.Load())
}
