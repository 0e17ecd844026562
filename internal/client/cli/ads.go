package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aquidolado/aqui/internal/client/router"
	"github.com/aquidolado/aqui/internal/client/whatsapp"
)

func parseAdID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("usage: <command> <ad id>")
	}
	return id, nil
}

// ShowAd renders an ad's detail, following the deep-link rule: when local
// state cannot confirm membership of the ad's community, the ad is
// resolved first and its community adopted.
func (a *App) ShowAd(ctx context.Context, arg string) error {
	id, err := parseAdID(arg)
	if err != nil {
		return err
	}

	action := a.guard.Decide("/ads/" + strconv.FormatInt(id, 10))
	switch action.Kind {
	case router.Redirect:
		fmt.Println(action.Reason)
		a.location = action.Target
		return nil
	case router.ResolveAd:
		resolved, err := a.guard.ResolveAdDeepLink(ctx, id)
		if err != nil {
			return err
		}
		if resolved.Kind == router.Redirect {
			fmt.Println(resolved.Reason)
			a.location = resolved.Target
			return nil
		}
	}

	ad, err := a.ads.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] %s%s\n", ad.Type, ad.Title, formatPrice(ad.Price))
	if ad.Description != "" {
		fmt.Println(ad.Description)
	}
	fmt.Printf("by %s, %s\n", ad.UserName, ad.CreatedAt.Format("02/01/2006"))
	if ad.Type == "RECOMMENDATION" {
		fmt.Printf("rating %.1f (%d votes)\n", ad.AverageRating, ad.RatingCount)
	}
	for _, u := range ad.ImageURLs {
		fmt.Println("  " + u)
	}
	fmt.Println("'contact " + arg + "' opens a WhatsApp chat with the seller")
	return nil
}

// ContactSeller prints the WhatsApp link for an ad and records the click.
// The metrics call is best effort; the link is shown regardless.
func (a *App) ContactSeller(ctx context.Context, arg string) error {
	id, err := parseAdID(arg)
	if err != nil {
		return err
	}

	ad, err := a.ads.Get(ctx, id)
	if err != nil {
		return err
	}

	phone := ad.UserWhatsapp
	message := whatsapp.ContactMessageForAd(ad.Title)
	if ad.Type == "RECOMMENDATION" && ad.RecommendedContact != "" {
		phone = ad.RecommendedContact
	}

	link, err := whatsapp.ContactLink(phone, message)
	if err != nil {
		if errors.Is(err, whatsapp.ErrNoPhoneDigits) {
			return errors.New("this ad has no valid contact number")
		}
		return err
	}

	a.metrics.ContactClick(ctx, ad.ID, ad.CommunityID)
	fmt.Println(link)
	return nil
}

func (a *App) ShareAd(ctx context.Context, arg string) error {
	id, err := parseAdID(arg)
	if err != nil {
		return err
	}

	ad, err := a.ads.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Println(whatsapp.ShareAdLink(ad.Title, a.config.ServerURL+"/ads/"+arg))
	a.metrics.Event(ctx, "AD_SHARE", &ad.CommunityID)
	return nil
}

func (a *App) MyAds(ctx context.Context) error {
	page, err := a.ads.ListMine(ctx, 0, 0)
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		fmt.Println("You have no ads.")
		return nil
	}
	for _, ad := range page.Content {
		fmt.Printf("%5d  [%s/%s] %s%s\n", ad.ID, ad.Type, ad.Status, ad.Title, formatPrice(ad.Price))
	}
	return nil
}

func (a *App) ReportAd(ctx context.Context, arg string) error {
	id, err := parseAdID(arg)
	if err != nil {
		return err
	}

	reason, err := getText(a.reader, "Reason (SPAM, SCAM, OFFENSIVE, PROHIBITED_ITEM, OTHER)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.metrics.ReportAd(ctx, id, strings.ToUpper(strings.TrimSpace(reason))); err != nil {
		return err
	}
	fmt.Println("Report sent. Thank you.")
	return nil
}
