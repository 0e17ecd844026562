package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aquidolado/aqui/internal/client/router"
)

// promptFns are indirections over the interactive helpers, swappable in
// tests.
var (
	getText     = promptText
	getPassword = promptPassword
)

func (a *App) Register(ctx context.Context) error {
	a.location = router.PathRegister
	defer func() { a.location = router.PathIndex }()

	name, err := getText(a.reader, "Your name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	whatsapp, err := getText(a.reader, "WhatsApp number (optional)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, name, email, password, whatsapp); err != nil {
		return err
	}
	fmt.Println("Welcome! Check your inbox to verify your email.")
	return a.afterLogin(ctx)
}

func (a *App) Login(ctx context.Context) error {
	a.location = router.PathLogin
	defer func() { a.location = router.PathIndex }()

	email, err := getText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	return a.afterLogin(ctx)
}

// afterLogin refreshes memberships and lands the user where the index
// route would.
func (a *App) afterLogin(ctx context.Context) error {
	if _, err := a.comms.Refresh(ctx); err != nil {
		return err
	}
	a.landing(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	if err := a.comms.Clear(ctx); err != nil {
		return err
	}
	a.location = router.PathLogin
	fmt.Println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Current()
	if s.User == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	verified := "unverified"
	if s.EmailVerified != nil && *s.EmailVerified {
		verified = "verified"
	}
	fmt.Printf("%s <%s> (%s)\n", s.User.Name, s.User.Email, verified)
	return nil
}

// ResendVerification asks the server to send the verification mail again.
// The call carries the extended timeout; the server delivers synchronously.
func (a *App) ResendVerification(ctx context.Context) error {
	s := a.session.Current()
	if s.User == nil {
		fmt.Println("Login first.")
		return nil
	}
	if s.EmailVerified != nil && *s.EmailVerified {
		fmt.Println("Your email is already verified.")
		return nil
	}
	if err := a.auth.ResendVerification(ctx); err != nil {
		return err
	}
	fmt.Println("Verification mail sent. Check your inbox.")
	return nil
}

func (a *App) status() string {
	s := a.session.Current()
	if s.User == nil {
		return ""
	}
	out := "(" + s.User.Name
	if c, ok := a.comms.Active(); ok {
		out += " @ " + c.Name
	}
	return out + ")"
}

// landing resolves the index route once and tells the user where they are,
// mirroring the single-redirect rule of the web client.
func (a *App) landing(ctx context.Context) {
	action := a.guard.Decide(router.PathIndex)
	switch action.Target {
	case router.PathLogin:
		fmt.Println("Please login or register to continue.")
	case router.PathGate:
		fmt.Println("Join a community with 'join <code>' or create one with 'create'.")
	case router.PathPicker:
		fmt.Println("Pick a community with 'switch <id>' ('communities' lists them).")
	case router.PathFeed:
		if action.AutoSelect != 0 {
			_ = a.comms.SetActive(ctx, action.AutoSelect)
		}
		if c, ok := a.comms.Active(); ok {
			fmt.Printf("You are in %s. Type 'feed' to browse ads.\n", c.Name)
		}
	}
	a.location = action.Target
}
