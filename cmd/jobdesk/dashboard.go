package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/dashboard"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/tui"
	"github.com/amishk599/jobdesk/internal/view"
)

var dashboardTUI bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the home screen for your role",
	Long: "Job seekers see their applications, saved jobs and events; employers their postings " +
		"and applicants; admins user counts and companies awaiting verification.",
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardTUI, "tui", false, "open in a scrollable full-screen view")
	rootCmd.AddCommand(dashboardCmd)
}

// renderDashboard loads the summary for user's role and writes it to w.
func (a *app) renderDashboard(ctx context.Context, user model.User, w io.Writer) error {
	svc := dashboard.New(a.applications, a.jobs, a.events, a.companies, a.users)
	fmt.Fprintf(w, "Welcome back, %s\n\n", user.FullName())
	switch user.Role {
	case model.RoleEmployer:
		sum, err := svc.Employer(ctx, user)
		if err != nil {
			return err
		}
		view.EmployerDashboard(w, sum)
	case model.RoleAdmin:
		sum, err := svc.Admin(ctx)
		if err != nil {
			return err
		}
		view.AdminDashboard(w, sum)
	default:
		sum, err := svc.Seeker(ctx)
		if err != nil {
			return err
		}
		view.SeekerDashboard(w, sum)
	}
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !dashboardTUI {
		logger := setupLogger(debug)
		a := mustApp(cmd, logger)
		defer a.Close()
		user := a.requireLogin()
		if err := a.renderDashboard(cmd.Context(), user, cmd.OutOrStdout()); err != nil {
			a.fail("failed to load dashboard", err)
		}
		return nil
	}

	a := mustApp(cmd, discardLogger())
	defer a.Close()
	user := a.requireLogin()
	ctx := cmd.Context()

	content, err := tui.RunLoader(ctx, "Loading dashboard", func(ctx context.Context) (string, error) {
		var b strings.Builder
		err := a.renderDashboard(ctx, user, &b)
		return b.String(), err
	})
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		a.fail("failed to load dashboard", err)
	}
	if err := tui.RunPager(ctx, user.Role.Label()+" dashboard", content); err != nil {
		a.fail("dashboard screen failed", err)
	}
	return nil
}
