package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aquidolado/aqui/internal/client/router"
)

var adTabs = map[string][]string{
	"all":            nil,
	"sale":           {"SALE_TRADE"},
	"rent":           {"RENT"},
	"service":        {"SERVICE"},
	"donation":       {"DONATION"},
	"recommendation": {"RECOMMENDATION"},
}

// gateCheck runs the routing guard for a feed-scoped command and reports
// whether the command may proceed.
func (a *App) gateCheck(path string) bool {
	action := a.guard.Decide(path)
	if action.Kind == router.Redirect {
		if action.Reason != "" {
			fmt.Println(action.Reason)
		} else if action.Target == router.PathLogin {
			fmt.Println("Please login first.")
		}
		a.location = action.Target
		return false
	}
	return true
}

func (a *App) ShowFeed(ctx context.Context) error {
	if !a.gateCheck(router.PathFeed) {
		return nil
	}
	id, _ := a.comms.ActiveID()
	a.feed.SetCommunity(ctx, id)
	a.feed.Wait()
	return a.renderFeed()
}

func (a *App) SetTab(ctx context.Context, tab string) error {
	types, ok := adTabs[strings.ToLower(tab)]
	if !ok {
		return fmt.Errorf("unknown tab %q (all, sale, rent, service, donation, recommendation)", tab)
	}
	a.feed.SetTypes(ctx, types)
	// A discrete command has no further keystrokes coming; skip the
	// remaining debounce so the render reflects the new tab.
	a.feed.Flush(ctx)
	a.feed.Wait()
	return a.renderFeed()
}

func (a *App) Search(ctx context.Context, query string) error {
	a.feed.SetSearch(ctx, query)
	a.feed.Flush(ctx)
	a.feed.Wait()
	return a.renderFeed()
}

func (a *App) NextPage(ctx context.Context) error {
	a.feed.NextPage(ctx)
	a.feed.Wait()
	return a.renderFeed()
}

func (a *App) renderFeed() error {
	if err := a.feed.Err(); err != nil {
		return err
	}
	res := a.feed.Current()
	if res == nil || len(res.Ads) == 0 {
		fmt.Println("No ads here yet.")
		return nil
	}

	for _, ad := range res.Ads {
		fmt.Printf("%5d  [%s] %s%s - %s\n", ad.ID, ad.Type, ad.Title, formatPrice(ad.Price), ad.OwnerName)
	}
	fmt.Printf("page %d/%d (%d ads)", res.Page+1, res.TotalPages, res.TotalElements)
	if !res.Last {
		fmt.Print(" - 'next' for more")
	}
	fmt.Println()
	return nil
}

// formatPrice renders a price in cents as reais, empty for priceless ads.
func formatPrice(cents *int64) string {
	if cents == nil {
		return ""
	}
	return fmt.Sprintf(" R$ %d,%02d", *cents/100, *cents%100)
}
