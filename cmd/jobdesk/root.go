package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/config"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/notifier"
	"github.com/amishk599/jobdesk/internal/retry"
	"github.com/amishk599/jobdesk/internal/session"
	"github.com/amishk599/jobdesk/internal/store"
	"github.com/amishk599/jobdesk/internal/swr"
	"github.com/amishk599/jobdesk/internal/view"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobdesk",
	Short: "Job portal client for seekers, employers and admins",
	Long: "jobdesk talks to the job portal API: browse jobs, companies and events, " +
		"manage your profile and applications, and get alerts for saved searches.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBDESK_CONFIG env var or ./jobdesk.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads .env, resolves the config path and parses it.
// Priority: explicit path arg > JOBDESK_CONFIG env var > "./jobdesk.yaml".
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	return config.Load(config.Path(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// discardLogger keeps log lines from tearing full-screen views.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	link := notifier.WebLink(cfg.API.BaseURL)
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, link, logger)
	default:
		return notifier.NewLogNotifier(logger, link)
	}
}

// app holds everything a command needs to talk to the API.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *store.SQLiteStore
	session *session.Session
	cache   *swr.Cache

	auth         *api.AuthService
	users        *api.UserService
	companies    *api.CompanyService
	jobs         *api.JobService
	applications *api.ApplicationService
	events       *api.EventService
	profile      *api.ProfileService
}

// newApp loads config, opens the local store and restores the session.
// Callers must Close it.
func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Debug("config loaded",
		"base_url", cfg.API.BaseURL,
		"session", cfg.Session.Path,
		"searches", len(cfg.Alerts.Searches),
	)

	db, err := store.NewSQLiteStore(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sess := session.New(db, logger)
	if err := sess.Load(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	var doer api.Doer = httpClient
	if cfg.API.Retries > 0 {
		doer = retry.NewRetryDoer(httpClient, cfg.API.Retries, cfg.API.RetryDelay, logger)
	}
	client := api.NewClient(cfg.API.BaseURL, doer, sess, logger)

	return &app{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		session:      sess,
		cache:        swr.New(cfg.UI.RevalidateAfter, logger),
		auth:         api.NewAuthService(client),
		users:        api.NewUserService(client),
		companies:    api.NewCompanyService(client),
		jobs:         api.NewJobService(client),
		applications: api.NewApplicationService(client),
		events:       api.NewEventService(client),
		profile:      api.NewProfileService(client),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
}

// mustApp builds the app or exits.
func mustApp(cmd *cobra.Command, logger *slog.Logger) *app {
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	return a
}

// requireLogin exits with a hint when nobody is signed in.
func (a *app) requireLogin() model.User {
	user, ok := a.session.User()
	if !ok || !a.session.IsLoggedIn() {
		setupLogger(debug).Error("you are not logged in, run `jobdesk login` first")
		a.Close()
		os.Exit(1)
	}
	return user
}

// fail logs err in user-facing form and exits. It logs to stderr even when
// a.logger is discarded, since full-screen views have closed by then.
func (a *app) fail(msg string, err error) {
	logger := setupLogger(debug)
	logger.Debug(msg, "cause", err)
	logger.Error(msg, "error", view.UserMessage(err, err.Error()))
	a.Close()
	os.Exit(1)
}
