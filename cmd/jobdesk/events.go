package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/nav"
	"github.com/amishk599/jobdesk/internal/swr"
	"github.com/amishk599/jobdesk/internal/tui"
	"github.com/amishk599/jobdesk/internal/view"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Career fairs, webinars and workshops",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE:  runEventsList,
}

var eventsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsShow,
}

var eventsRegisterCmd = &cobra.Command{
	Use:   "register ID",
	Short: "Register for an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsRegister,
}

var eventsUnregisterCmd = &cobra.Command{
	Use:   "unregister ID",
	Short: "Cancel an event registration",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsUnregister,
}

var eventsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse events interactively",
	RunE:  runEventsBrowse,
}

func init() {
	pageFlags(eventsListCmd, eventsBrowseCmd)
	eventsCmd.AddCommand(eventsListCmd, eventsShowCmd, eventsRegisterCmd, eventsUnregisterCmd, eventsBrowseCmd)
	rootCmd.AddCommand(eventsCmd)
}

func (a *app) listEvents(ctx context.Context, q api.PageQuery) (model.Page[model.Event], error) {
	return swr.Get(ctx, a.cache, "events?"+q.Values().Encode(), func(ctx context.Context) (model.Page[model.Event], error) {
		return a.events.List(ctx, q)
	})
}

func runEventsList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	page, err := a.listEvents(cmd.Context(), a.pageQuery())
	if err != nil {
		a.fail("failed to load events", err)
	}
	view.Events(cmd.OutOrStdout(), page.Items)
	if len(page.Items) > 0 {
		view.Page(cmd.OutOrStdout(), page)
	}
	return nil
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	e, err := a.events.Get(cmd.Context(), args[0])
	if err != nil {
		a.fail("failed to load event", err)
	}
	view.Event(cmd.OutOrStdout(), e)
	return nil
}

// register signs the user up for e, refusing full events locally.
func (a *app) register(ctx context.Context, e model.Event) (model.Event, error) {
	if e.IsRegistered {
		return e, nil
	}
	if e.Full() {
		return e, fmt.Errorf("%w: %s is fully booked", model.ErrValidation, e.Title)
	}
	if err := a.events.Register(ctx, e.ID); err != nil {
		return e, fmt.Errorf("register for %s: %w", e.Title, err)
	}
	e.IsRegistered = true
	e.RegisteredCount++
	a.cache.Invalidate("events")
	return e, nil
}

func runEventsRegister(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()
	ctx := cmd.Context()

	e, err := a.events.Get(ctx, args[0])
	if err != nil {
		a.fail("failed to load event", err)
	}
	if e.IsRegistered {
		fmt.Fprintf(cmd.OutOrStdout(), "You are already registered for %s\n", e.Title)
		return nil
	}
	if e, err = a.register(ctx, e); err != nil {
		a.fail("registration failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered for %s on %s\n", e.Title, e.StartsAt.Local().Format("Jan 2, 2006 15:04"))
	return nil
}

func runEventsUnregister(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	if err := a.events.Unregister(cmd.Context(), args[0]); err != nil {
		a.fail("failed to cancel registration", err)
	}
	a.cache.Invalidate("events")
	fmt.Fprintf(cmd.OutOrStdout(), "Cancelled registration for event %s\n", args[0])
	return nil
}

func runEventsBrowse(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd, discardLogger())
	defer a.Close()
	ctx := cmd.Context()

	open := ""
	for {
		page, err := tui.RunLoader(ctx, "Loading events", func(ctx context.Context) (model.Page[model.Event], error) {
			return a.listEvents(ctx, a.pageQuery())
		})
		if err != nil {
			if errors.Is(err, tui.ErrCancelled) {
				return nil
			}
			a.fail("failed to load events", err)
		}

		res, err := tui.RunList(ctx, tui.List[model.Event]{
			Title: fmt.Sprintf("Events · %d total", page.Total),
			Empty: view.NoEvents,
			Items: page.Items,
			ID:    func(e model.Event) string { return e.ID },
			Row:   eventRow,
			Detail: func(e model.Event) string {
				var b strings.Builder
				view.Event(&b, e)
				return b.String()
			},
			Actions: []tui.Action[model.Event]{
				{Key: "r", Help: "register", Run: a.registerAction},
			},
			Open: open,
		})
		if err != nil {
			a.fail("events screen failed", err)
		}
		if res.Redirect == "" {
			return nil
		}
		if !a.loginInteractive(ctx, "") {
			return nil
		}
		open = routeID(nav.ReturnURL(res.Redirect), nav.Events)
		a.cache.Invalidate("events")
	}
}

func eventRow(e model.Event) (string, string) {
	title := e.Title
	if e.IsRegistered {
		title = "✓ " + title
	}
	where := e.Location
	if e.IsOnline {
		where = "Online"
	}
	return title, e.StartsAt.Local().Format("Jan 2, 2006 15:04") + " · " + orNA(where)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func (a *app) registerAction(ctx context.Context, e model.Event) (tui.Outcome[model.Event], error) {
	if redirect := nav.RequireLogin(a.session, nav.Event(e.ID)); redirect != "" {
		return tui.Outcome[model.Event]{Item: e, Redirect: redirect}, nil
	}
	if e.IsRegistered {
		return tui.Outcome[model.Event]{Item: e, Status: "Already registered"}, nil
	}
	e, err := a.register(ctx, e)
	if err != nil {
		return tui.Outcome[model.Event]{}, err
	}
	return tui.Outcome[model.Event]{Item: e, Status: "Registered"}, nil
}
