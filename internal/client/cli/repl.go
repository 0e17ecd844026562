package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL dispatches to. The
// real App satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ResendVerification(ctx context.Context) error
	ListCommunities(ctx context.Context) error
	JoinCommunity(ctx context.Context, code string) error
	CreateCommunity(ctx context.Context) error
	SwitchCommunity(ctx context.Context, arg string) error
	ShowFeed(ctx context.Context) error
	SetTab(ctx context.Context, tab string) error
	Search(ctx context.Context, query string) error
	NextPage(ctx context.Context) error
	ShowAd(ctx context.Context, arg string) error
	ContactSeller(ctx context.Context, arg string) error
	ShareAd(ctx context.Context, arg string) error
	MyAds(ctx context.Context) error
	ReportAd(ctx context.Context, arg string) error
}

// runREPL reads lines from the scanner, dispatches the first token as a
// command, and loops until EOF or "exit"/"quit". Handler errors are shown
// once; the loop never retries anything.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("aqui %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Commands: communities, join <code>, create, switch <id>, feed, tab <type|all>, search <text>, next, ad <id>, contact <id>, share <id>, myads, report <id>, whoami, resend, logout, exit")
			} else {
				printlnFn("Commands: register, login, exit")
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "resend":
			err = a.ResendVerification(ctx)
		case "communities":
			err = a.ListCommunities(ctx)
		case "join":
			err = a.JoinCommunity(ctx, arg)
		case "create":
			err = a.CreateCommunity(ctx)
		case "switch":
			err = a.SwitchCommunity(ctx, arg)
		case "feed":
			err = a.ShowFeed(ctx)
		case "tab":
			err = a.SetTab(ctx, arg)
		case "search":
			err = a.Search(ctx, arg)
		case "next":
			err = a.NextPage(ctx)
		case "ad":
			err = a.ShowAd(ctx, arg)
		case "contact":
			err = a.ContactSeller(ctx, arg)
		case "share":
			err = a.ShareAd(ctx, arg)
		case "myads":
			err = a.MyAds(ctx)
		case "report":
			err = a.ReportAd(ctx, arg)
		case "exit", "quit":
			printlnFn("Até logo!")
			return
		default:
			printlnFn("Unknown command: " + cmd)
		}
		if err != nil {
			printlnFn("Error: " + err.Error())
		}
	}
}
