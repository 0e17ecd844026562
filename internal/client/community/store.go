// Package community tracks which communities the user belongs to and which
// one is currently active. The active choice survives restarts and is
// revalidated against the membership list on every refresh.
package community

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aquidolado/aqui/internal/client/storage"
)

// Community is the client-side view of a joined community.
type Community struct {
	ID          int64
	Name        string
	AccessCode  string
	IsAdmin     bool
	MemberCount int
}

// Lister fetches the user's memberships from the server.
type Lister interface {
	ListMine(ctx context.Context) ([]Community, error)
}

// Store holds the membership list and the active selection.
type Store struct {
	mu      sync.Mutex
	storage storage.Store
	lister  Lister

	list     []Community
	activeID int64
}

func NewStore(st storage.Store, lister Lister) *Store {
	return &Store{storage: st, lister: lister}
}

// Hydrate restores the persisted active community id. The id is not
// validated here; the next Refresh reconciles it against the real list.
func (s *Store) Hydrate(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, storage.KeyActiveCommunityID)
	if err != nil {
		return fmt.Errorf("failed to read active community: %w", err)
	}
	if !ok {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Stale or corrupt value; drop it.
		return s.storage.Delete(ctx, storage.KeyActiveCommunityID)
	}

	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	return nil
}

// Refresh fetches the membership list, stores it, and reconciles the
// active selection: an active id that is no longer in the list falls back
// to the first community, or to nothing when the list is empty. The
// reconciliation runs on every refresh, not only the first. Returns the
// fetched list so callers can render it without a second read.
func (s *Store) Refresh(ctx context.Context) ([]Community, error) {
	list, err := s.lister.ListMine(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.list = list
	want := s.activeID
	if !containsID(list, want) {
		if len(list) > 0 {
			want = list[0].ID
		} else {
			want = 0
		}
		s.activeID = want
	}
	s.mu.Unlock()

	if err := s.persistActive(ctx, want); err != nil {
		return nil, err
	}

	out := make([]Community, len(list))
	copy(out, list)
	return out, nil
}

// SetActive records the selection and persists it immediately. The id is
// deliberately not validated against the cached list: joining a community
// selects it before any refresh has seen it.
func (s *Store) SetActive(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	return s.persistActive(ctx, id)
}

// Clear drops the list and the active selection; called on logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.list = nil
	s.activeID = 0
	s.mu.Unlock()
	return s.storage.Delete(ctx, storage.KeyActiveCommunityID)
}

// ActiveID returns the selected community id, false when none is active.
func (s *Store) ActiveID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != 0
}

// Active resolves the selected community against the cached list, so the
// returned value always matches an entry of the last refresh.
func (s *Store) Active() (Community, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.list {
		if c.ID == s.activeID {
			return c, true
		}
	}
	return Community{}, false
}

// Communities returns a copy of the cached membership list.
func (s *Store) Communities() []Community {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Community, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) persistActive(ctx context.Context, id int64) error {
	if id == 0 {
		return s.storage.Delete(ctx, storage.KeyActiveCommunityID)
	}
	return s.storage.Set(ctx, storage.KeyActiveCommunityID, strconv.FormatInt(id, 10))
}

func containsID(list []Community, id int64) bool {
	if id == 0 {
		return false
	}
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}
