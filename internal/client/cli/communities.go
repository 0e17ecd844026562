package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aquidolado/aqui/internal/client/whatsapp"
)

func (a *App) ListCommunities(ctx context.Context) error {
	list, err := a.comms.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("You are not in any community yet. Use 'join <code>' or 'create'.")
		return nil
	}

	activeID, _ := a.comms.ActiveID()
	for _, c := range list {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		role := ""
		if c.IsAdmin {
			role = " (admin)"
		}
		fmt.Printf("%s %d  %s%s\n", marker, c.ID, c.Name, role)
	}
	return nil
}

func (a *App) JoinCommunity(ctx context.Context, code string) error {
	if code == "" {
		var err error
		if code, err = getText(a.reader, "Access code", os.Stdout); err != nil {
			return err
		}
	}

	res, err := a.communities.JoinByCode(ctx, code)
	if err != nil {
		return err
	}
	if res.JoinPending {
		fmt.Printf("%s is private; your request is waiting for an admin.\n", res.Name)
		return nil
	}

	if err := a.comms.SetActive(ctx, res.ID); err != nil {
		return err
	}
	if _, err := a.comms.Refresh(ctx); err != nil {
		return err
	}
	fmt.Printf("Joined %s.\n", res.Name)
	return nil
}

func (a *App) CreateCommunity(ctx context.Context) error {
	name, err := getText(a.reader, "Community name", os.Stdout)
	if err != nil {
		return err
	}
	private, err := getText(a.reader, "Private? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	postal, err := getText(a.reader, "Postal code (optional)", os.Stdout)
	if err != nil {
		return err
	}

	isPrivate := strings.EqualFold(private, "y") || strings.EqualFold(private, "yes")
	res, err := a.communities.Create(ctx, name, isPrivate, postal)
	if err != nil {
		return err
	}

	if err := a.comms.SetActive(ctx, res.ID); err != nil {
		return err
	}
	if _, err := a.comms.Refresh(ctx); err != nil {
		return err
	}

	fmt.Printf("Created %s. Access code: %s\n", res.Name, res.AccessCode)
	fmt.Println("Share it: " + whatsapp.InviteLink(res.Name, res.AccessCode))
	return nil
}

func (a *App) SwitchCommunity(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return errors.New("usage: switch <community id>")
	}
	if err := a.comms.SetActive(ctx, id); err != nil {
		return err
	}
	if c, ok := a.comms.Active(); ok {
		fmt.Printf("Switched to %s.\n", c.Name)
	} else {
		fmt.Println("Switched. Run 'communities' to refresh names.")
	}
	return nil
}
