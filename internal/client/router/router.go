// Package router decides, for any navigation, whether to render the
// requested page or redirect to login, the community gate, or the picker.
// The decision is a pure function of the current session and community
// snapshots so it can never chain redirects.
package router

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/community"
)

// Well-known paths.
const (
	PathIndex    = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathGate     = "/gate"
	PathPicker   = "/communities/pick"
	PathFeed     = "/feed"
)

// ActionKind says what the caller should do with a Decide result.
type ActionKind int

const (
	// Render the requested page as-is.
	Render ActionKind = iota
	// Redirect to Action.Target.
	Redirect
	// ResolveAd means the requested page is an ad detail the guard cannot
	// clear from local state; call ResolveAdDeepLink before rendering.
	ResolveAd
)

// Action is a routing decision.
type Action struct {
	Kind   ActionKind
	Target string
	// From carries the originally requested path on a login redirect so
	// login can return the user there.
	From string
	// Reason is a human-readable explanation attached to gate redirects.
	Reason string
	// AutoSelect is a community id the caller must activate before
	// following Target (index route with exactly one membership).
	AutoSelect int64
	// AdID is set on ResolveAd actions.
	AdID int64
}

// SessionState is the slice of the session store the guard reads.
type SessionState interface {
	IsAuthenticated() bool
}

// CommunityState is the slice of the community store the guard reads and,
// for deep links, writes.
type CommunityState interface {
	Communities() []community.Community
	ActiveID() (int64, bool)
	SetActive(ctx context.Context, id int64) error
}

// AdResolver fetches an ad to learn which community it belongs to.
type AdResolver interface {
	ResolveAdCommunity(ctx context.Context, adID int64) (int64, error)
}

// Guard evaluates navigations against the injected state.
type Guard struct {
	session SessionState
	comms   CommunityState
	ads     AdResolver
}

func NewGuard(session SessionState, comms CommunityState, ads AdResolver) *Guard {
	return &Guard{session: session, comms: comms, ads: ads}
}

// Decide maps a requested path (including query) to an action. Redirects
// are always exactly one level deep: every branch targets a terminal page,
// never another guarded decision point.
func (g *Guard) Decide(path string) Action {
	if isPublic(path) {
		return Action{Kind: Render, Target: path}
	}
	if !g.session.IsAuthenticated() {
		return Action{Kind: Redirect, Target: PathLogin, From: path}
	}

	if path == PathIndex {
		return g.decideIndex()
	}

	if adID, ok := parseAdPath(path); ok {
		if g.memberConfirmed() {
			return Action{Kind: Render, Target: path}
		}
		return Action{Kind: ResolveAd, Target: path, AdID: adID}
	}

	if path == PathGate || path == PathPicker {
		return Action{Kind: Render, Target: path}
	}

	list := g.comms.Communities()
	if len(list) == 0 {
		return Action{Kind: Redirect, Target: PathGate, Reason: "join or create a community to get started"}
	}
	if _, ok := g.comms.ActiveID(); !ok {
		return Action{Kind: Redirect, Target: PathGate, Reason: "choose a community first"}
	}
	return Action{Kind: Render, Target: path}
}

// decideIndex resolves the landing state once: zero communities go to the
// gate, exactly one is auto-selected into the feed, several with no choice
// yet go to the picker.
func (g *Guard) decideIndex() Action {
	list := g.comms.Communities()
	switch {
	case len(list) == 0:
		return Action{Kind: Redirect, Target: PathGate, Reason: "join or create a community to get started"}
	case len(list) == 1:
		return Action{Kind: Redirect, Target: PathFeed, AutoSelect: list[0].ID}
	default:
		if _, ok := g.comms.ActiveID(); ok {
			return Action{Kind: Redirect, Target: PathFeed}
		}
		return Action{Kind: Redirect, Target: PathPicker}
	}
}

// ResolveAdDeepLink clears an ad detail navigation that local state could
// not: it fetches the ad, and on success adopts the ad's community as the
// active one. A 403 or 404 means the user cannot see that ad; the redirect
// carries a specific reason instead of the generic gate message. The
// result is discarded when ctx was cancelled while the fetch was in
// flight, so a stale lookup never changes the selection after the user has
// navigated elsewhere.
func (g *Guard) ResolveAdDeepLink(ctx context.Context, adID int64) (Action, error) {
	communityID, err := g.ads.ResolveAdCommunity(ctx, adID)
	if ctx.Err() != nil {
		return Action{}, ctx.Err()
	}
	if err != nil {
		if api.IsStatus(err, http.StatusForbidden) || api.IsStatus(err, http.StatusNotFound) {
			return Action{
				Kind:   Redirect,
				Target: PathGate,
				Reason: "this ad belongs to a community you are not a member of",
			}, nil
		}
		return Action{}, err
	}

	if err := g.comms.SetActive(ctx, communityID); err != nil {
		return Action{}, err
	}
	return Action{Kind: Render, Target: "/ads/" + strconv.FormatInt(adID, 10)}, nil
}

// memberConfirmed reports whether the active community is present in the
// cached membership list, i.e. the guard can clear a community-scoped page
// without asking the server.
func (g *Guard) memberConfirmed() bool {
	id, ok := g.comms.ActiveID()
	if !ok {
		return false
	}
	for _, c := range g.comms.Communities() {
		if c.ID == id {
			return true
		}
	}
	return false
}

func isPublic(path string) bool {
	p := stripQuery(path)
	return p == PathLogin || p == PathRegister || strings.HasPrefix(p, "/verify-email") || strings.HasPrefix(p, "/reset-password")
}

func parseAdPath(path string) (int64, bool) {
	p := stripQuery(path)
	rest, ok := strings.CutPrefix(p, "/ads/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
