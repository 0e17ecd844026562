// Package session is the client's single source of truth for "is anyone
// logged in, and who". Every mutation writes through to persistent storage
// in the same call, so the in-memory state and the stored record never
// drift apart.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aquidolado/aqui/internal/client/storage"
	"github.com/aquidolado/aqui/internal/logging"
)

// User is the locally held identity of the signed-in user.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the in-memory session state. EmailVerified is a tri-state:
// nil means unknown (e.g. hydrated from a record that predates the flag).
type Session struct {
	Token         string
	User          *User
	EmailVerified *bool
}

// Credentials is what a successful login/register yields.
type Credentials struct {
	Token         string
	User          User
	EmailVerified bool
}

// Authenticator performs the auth API calls on behalf of the store.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, name, email, password, whatsapp string) (*Credentials, error)
}

// ProfileFetcher loads the current profile; used by the one-shot
// email-verification reconciliation.
type ProfileFetcher interface {
	FetchEmailVerified(ctx context.Context) (bool, error)
}

// record is the serialized shape persisted under storage.KeyAuthState.
type record struct {
	Token         string `json:"token"`
	User          *User  `json:"user"`
	EmailVerified *bool  `json:"emailVerified"`
}

// Store holds and persists the session.
type Store struct {
	mu      sync.Mutex
	storage storage.Store
	auth    Authenticator
	profile ProfileFetcher
	logger  logging.Logger

	session Session
	// reconciled marks that the one-shot verification check already ran
	// for the current unverified state; reset on every state transition
	// that could change the answer.
	reconciled bool
	wg         sync.WaitGroup
}

func NewStore(st storage.Store, auth Authenticator, profile ProfileFetcher, logger logging.Logger) *Store {
	return &Store{storage: st, auth: auth, profile: profile, logger: logger}
}

// Hydrate restores the session at process start from both the dedicated
// token slot and the serialized record. The token slot wins when the two
// disagree, tolerating a partial clear that removed one but not the other.
func (s *Store) Hydrate(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	raw, hasRecord, err := s.storage.Get(ctx, storage.KeyAuthState)
	if err != nil {
		return fmt.Errorf("failed to read session record: %w", err)
	}

	var rec record
	if hasRecord {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			// A corrupt record is treated as absent; the token slot may
			// still carry a usable session.
			rec = record{}
		}
	}

	s.mu.Lock()
	s.session = Session{User: rec.User, EmailVerified: rec.EmailVerified}
	switch {
	case hasToken && token != "":
		s.session.Token = token
	case rec.Token != "":
		s.session.Token = rec.Token
	}
	s.reconciled = false
	s.mu.Unlock()

	s.maybeReconcile(ctx)
	return nil
}

// Login authenticates and atomically persists the new session. API
// failures propagate unchanged; the store stays logged out.
func (s *Store) Login(ctx context.Context, email, password string) error {
	creds, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, creds)
}

// Register creates an account and persists the resulting session.
func (s *Store) Register(ctx context.Context, name, email, password, whatsapp string) error {
	creds, err := s.auth.Register(ctx, name, email, password, whatsapp)
	if err != nil {
		return err
	}
	return s.establish(ctx, creds)
}

// Logout clears the token, the persisted record, and the in-memory state.
// Safe to call when already logged out.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, storage.KeyToken); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, storage.KeyAuthState); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = Session{}
	s.reconciled = false
	s.mu.Unlock()
	return nil
}

// UpdateUser shallow-merges the given fields into the current identity and
// re-persists. No-op when logged out.
func (s *Store) UpdateUser(ctx context.Context, name, email string) error {
	s.mu.Lock()
	if s.session.User == nil {
		s.mu.Unlock()
		return nil
	}
	if name != "" {
		s.session.User.Name = name
	}
	if email != "" {
		s.session.User.Email = email
	}
	s.mu.Unlock()
	return s.persist(ctx)
}

// SetEmailVerified updates the flag and re-persists.
func (s *Store) SetEmailVerified(ctx context.Context, verified bool) error {
	s.mu.Lock()
	s.session.EmailVerified = &verified
	s.reconciled = false
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.maybeReconcile(ctx)
	return nil
}

// Token returns the current bearer token, "" when logged out.
func (s *Store) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// Current returns a copy of the session state.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Session{Token: s.session.Token}
	if s.session.User != nil {
		u := *s.session.User
		out.User = &u
	}
	if s.session.EmailVerified != nil {
		v := *s.session.EmailVerified
		out.EmailVerified = &v
	}
	return out
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token != ""
}

// --- internals ---

func (s *Store) establish(ctx context.Context, creds *Credentials) error {
	s.mu.Lock()
	user := creds.User
	verified := creds.EmailVerified
	s.session = Session{Token: creds.Token, User: &user, EmailVerified: &verified}
	s.reconciled = false
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.maybeReconcile(ctx)
	return nil
}

// persist writes both the token slot and the serialized record.
func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	rec := record{Token: s.session.Token, User: s.session.User, EmailVerified: s.session.EmailVerified}
	s.mu.Unlock()

	if err := s.storage.Set(ctx, storage.KeyToken, rec.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyAuthState, string(raw)); err != nil {
		return fmt.Errorf("failed to persist session record: %w", err)
	}
	return nil
}

// Wait blocks until any in-flight reconciliation finishes.
func (s *Store) Wait() {
	s.wg.Wait()
}

// maybeReconcile starts the one-shot verification check in the background:
// when the session has a token, a user, and a locally unverified email, ask
// the server once and flip the flag if it disagrees. One check per state
// transition, never polled.
func (s *Store) maybeReconcile(ctx context.Context) {
	s.mu.Lock()
	needed := s.profile != nil &&
		s.session.Token != "" &&
		s.session.User != nil &&
		s.session.EmailVerified != nil && !*s.session.EmailVerified &&
		!s.reconciled
	if needed {
		s.reconciled = true
	}
	s.mu.Unlock()
	if !needed {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reconcile(ctx)
	}()
}

func (s *Store) reconcile(ctx context.Context) {
	verified, err := s.profile.FetchEmailVerified(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug(ctx, "verification check failed", "error", err)
		}
		return
	}
	if !verified {
		return
	}

	s.mu.Lock()
	v := true
	s.session.EmailVerified = &v
	s.mu.Unlock()
	if err := s.persist(ctx); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "failed to persist verification flag", "error", err)
	}
}
