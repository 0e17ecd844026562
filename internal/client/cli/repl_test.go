package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	if name == s.failOn {
		return errors.New("boom")
	}
	return nil
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) Register(ctx context.Context) error { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error    { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error   { return s.record("logout") }
func (s *stubExec) WhoAmI(ctx context.Context) error   { return s.record("whoami") }

func (s *stubExec) ResendVerification(ctx context.Context) error { return s.record("resend") }

func (s *stubExec) ListCommunities(ctx context.Context) error { return s.record("communities") }
func (s *stubExec) CreateCommunity(ctx context.Context) error { return s.record("create") }

func (s *stubExec) JoinCommunity(ctx context.Context, code string) error {
	return s.record("join:" + code)
}

func (s *stubExec) SwitchCommunity(ctx context.Context, arg string) error {
	return s.record("switch:" + arg)
}

func (s *stubExec) ShowFeed(ctx context.Context) error { return s.record("feed") }
func (s *stubExec) NextPage(ctx context.Context) error { return s.record("next") }
func (s *stubExec) MyAds(ctx context.Context) error    { return s.record("myads") }

func (s *stubExec) SetTab(ctx context.Context, tab string) error { return s.record("tab:" + tab) }

func (s *stubExec) Search(ctx context.Context, query string) error {
	return s.record("search:" + query)
}

func (s *stubExec) ShowAd(ctx context.Context, arg string) error { return s.record("ad:" + arg) }

func (s *stubExec) ContactSeller(ctx context.Context, arg string) error {
	return s.record("contact:" + arg)
}

func (s *stubExec) ShareAd(ctx context.Context, arg string) error { return s.record("share:" + arg) }

func (s *stubExec) ReportAd(ctx context.Context, arg string) error {
	return s.record("report:" + arg)
}

func runScript(t *testing.T, exec *stubExec, script string) []string {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			printed = append(printed, v.(string))
		}
		return 0, nil
	}
	defer func() { printlnFn = orig }()

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader(script)))
	return printed
}

func TestREPLDispatch(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runScript(t, exec, strings.Join([]string{
		"communities",
		"join ABCD2345",
		"switch 7",
		"feed",
		"tab rent",
		"search sofá usado",
		"next",
		"ad 42",
		"contact 42",
		"myads",
		"logout",
		"exit",
	}, "\n"))

	assert.Equal(t, []string{
		"communities",
		"join:ABCD2345",
		"switch:7",
		"feed",
		"tab:rent",
		"search:sofá usado",
		"next",
		"ad:42",
		"contact:42",
		"myads",
		"logout",
	}, exec.calls)
}

func TestREPLUnknownCommand(t *testing.T) {
	exec := &stubExec{}
	printed := runScript(t, exec, "dance\nexit")

	assert.Empty(t, exec.calls)
	assert.Contains(t, printed, "Unknown command: dance")
}

func TestREPLSurfacesHandlerErrors(t *testing.T) {
	exec := &stubExec{loggedIn: true, failOn: "feed"}
	printed := runScript(t, exec, "feed\nexit")

	assert.Contains(t, printed, "Error: boom")
}

func TestREPLHelpDependsOnLoginState(t *testing.T) {
	printedOut := runScript(t, &stubExec{loggedIn: false}, "help\nexit")
	joined := strings.Join(printedOut, "\n")
	assert.Contains(t, joined, "register, login")
	assert.NotContains(t, joined, "myads")

	printedIn := runScript(t, &stubExec{loggedIn: true}, "help\nexit")
	assert.Contains(t, strings.Join(printedIn, "\n"), "myads")
}

func TestREPLStopsOnEOF(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "login")
	assert.Equal(t, []string{"login"}, exec.calls)
}
