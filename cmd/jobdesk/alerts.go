package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/alerts"
	"github.com/amishk599/jobdesk/internal/config"
	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/ratelimit"
	"github.com/amishk599/jobdesk/internal/scheduler"
	"github.com/amishk599/jobdesk/internal/store"
)

var alertsDryRun bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Notifications for saved job searches",
}

var alertsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll saved searches until interrupted",
	Long:  "Polls every enabled search on alerts.interval and notifies about new matches; blocks until SIGINT/SIGTERM.",
	RunE:  runAlertsRun,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll saved searches once and exit",
	Long:  "One-shot poll. With --dry-run every current match is sent and nothing is marked as seen.",
	RunE:  runAlertsCheck,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the configured searches",
	RunE:  runAlertsList,
}

func init() {
	alertsCheckCmd.Flags().BoolVar(&alertsDryRun, "dry-run", false, "notify every match without touching the seen store")
	alertsCmd.AddCommand(alertsRunCmd, alertsCheckCmd, alertsListCmd)
	rootCmd.AddCommand(alertsCmd)
}

// buildPollers creates one poller per enabled search. All searches share
// one limiter so they never hit the API closer than alerts.min_delay.
func buildPollers(cfg *config.Config, jobs alerts.JobLister, seen model.JobStore, n model.Notifier, logger *slog.Logger) []*alerts.SearchPoller {
	limiter := ratelimit.NewLimiter(cfg.Alerts.MinDelay)
	var pollers []*alerts.SearchPoller
	for _, s := range cfg.Alerts.Enabled() {
		q := s.JobQuery
		if q.Limit <= 0 {
			q.Limit = cfg.UI.PageSize
		}
		fetcher := alerts.NewSearchFetcher(jobs, q, limiter)
		pollers = append(pollers, alerts.NewSearchPoller(s.Name, fetcher, listing.NewFilter(q), seen, n, logger))
	}
	return pollers
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.API.Timeout}
}

func runAlertsRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	logger.Info("alerts starting",
		"interval", a.cfg.Alerts.Interval.String(),
		"min_delay", a.cfg.Alerts.MinDelay.String(),
		"searches", len(a.cfg.Alerts.Enabled()),
	)

	n := setupNotifier(a.cfg, a.httpClient(), logger)
	pollers := buildPollers(a.cfg, a.jobs, a.db, n, logger)
	if len(pollers) == 0 {
		logger.Error("no enabled searches, add some under alerts.searches")
		a.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(pollers, a.db, a.cfg.Alerts.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		a.fail("scheduler error", err)
	}

	logger.Info("goodbye")
	return nil
}

func runAlertsCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	var seen model.JobStore = a.db
	if alertsDryRun {
		logger.Info("dry run: no jobs will be marked as seen")
		seen = store.NewNopStore()
	}

	n := setupNotifier(a.cfg, a.httpClient(), logger)
	pollers := buildPollers(a.cfg, a.jobs, seen, n, logger)
	if len(pollers) == 0 {
		logger.Error("no enabled searches, add some under alerts.searches")
		a.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeded, err := scheduler.NewScheduler(pollers, seen, a.cfg.Alerts.Interval, logger).RunOnce(ctx)
	if err != nil {
		a.fail("check failed", err)
	}
	if seeded {
		logger.Info("seen store seeded, later runs notify about new postings only")
	}
	logger.Info("check complete")
	return nil
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	out := cmd.OutOrStdout()
	if len(cfg.Alerts.Searches) == 0 {
		fmt.Fprintln(out, "No saved searches configured")
		return nil
	}
	fmt.Fprintf(out, "%-20s %-8s %-20s %-16s %-12s %s\n", "Name", "Enabled", "Search", "Location", "Type", "Level")
	for _, s := range cfg.Alerts.Searches {
		fmt.Fprintf(out, "%-20s %-8t %-20s %-16s %-12s %s\n",
			s.Name, s.Enabled, s.Search, s.Location, s.JobType, s.ExperienceLevel)
	}
	return nil
}
