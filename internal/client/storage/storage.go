// Package storage is the client's persisted key-value store. Each key is
// independent; removing one never touches the others, which the session
// hydration logic relies on.
package storage

import "context"

// Storage keys. Kept stable across releases so an upgraded client can read
// a previous session.
const (
	KeyToken             = "aqui.token"
	KeyAuthState         = "aqui.authState"
	KeyActiveCommunityID = "aqui.activeCommunityId"
)

// Store is a string key-value store. Get reports ok=false for a missing
// key; Delete of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
