package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/ratelimit"
	"github.com/amishk599/jobdesk/internal/signup"
	"github.com/amishk599/jobdesk/internal/tui"
	"github.com/amishk599/jobdesk/internal/view"
)

// Swapped in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var (
	loginEmail string
	loginTUI   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your account",
	Long:  "Sign in with email and password. The session is kept in the local store until you log out.",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long:  "Walks through account details, email verification, mobile verification and password.",
	RunE:  runSignup,
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password EMAIL",
	Short: "Reset a forgotten password with an emailed code",
	Args:  cobra.ExactArgs(1),
	RunE:  runForgotPassword,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().BoolVar(&loginTUI, "tui", false, "use the interactive login screen")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, signupCmd, forgotPasswordCmd)
}

// signIn authenticates and stores the session.
func (a *app) signIn(ctx context.Context, email, password string) error {
	res, err := a.auth.SignIn(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, res.Tokens, res.User); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	a.cache.Invalidate("")
	return nil
}

// loginInteractive shows the login screen and reports whether it succeeded.
func (a *app) loginInteractive(ctx context.Context, email string) bool {
	ok, err := tui.RunLogin(ctx, email, a.signIn)
	if err != nil {
		a.fail("login screen failed", err)
	}
	return ok
}

func runLogin(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	ctx := cmd.Context()

	if loginTUI {
		if !a.loginInteractive(ctx, loginEmail) {
			return nil
		}
	} else {
		in := bufio.NewReader(cmd.InOrStdin())
		email := loginEmail
		if email == "" {
			var err error
			if email, err = prompt(cmd.OutOrStdout(), in, "Email: "); err != nil {
				a.fail("read email", err)
			}
		}
		password, err := promptPassword(cmd.OutOrStdout(), in, "Password: ")
		if err != nil {
			a.fail("read password", err)
		}
		if err := a.signIn(ctx, email, password); err != nil {
			a.fail("login failed", err)
		}
	}

	user, _ := a.session.User()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.FullName(), user.Role.Label())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	ctx := cmd.Context()

	if refresh := a.session.RefreshToken(); refresh != "" {
		if err := a.auth.SignOut(ctx, refresh); err != nil {
			logger.Warn("server sign out failed, clearing local session anyway", "error", err)
		}
	}
	if err := a.session.Logout(ctx); err != nil {
		a.fail("logout failed", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	user, err := a.users.Me(cmd.Context())
	if err != nil {
		a.fail("could not load your account", err)
	}
	if err := a.session.SetUser(cmd.Context(), user); err != nil {
		logger.Warn("could not refresh stored user", "error", err)
	}
	view.User(cmd.OutOrStdout(), user)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd, discardLogger())
	defer a.Close()

	wiz := signup.New(a.auth, a.session, ratelimit.NewLimiter(a.cfg.OTP.ResendCooldown), a.logger)
	done, err := tui.RunSignup(cmd.Context(), wiz)
	if err != nil {
		a.fail("signup failed", err)
	}
	if done {
		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s\n", wiz.User().FullName())
	}
	return nil
}

func runForgotPassword(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	email := strings.ToLower(strings.TrimSpace(args[0]))

	if err := a.auth.ForgotPassword(ctx, email); err != nil {
		a.fail("could not send reset code", err)
	}
	fmt.Fprintf(out, "We sent a reset code to %s.\n", email)

	in := bufio.NewReader(cmd.InOrStdin())
	code, err := prompt(out, in, "Code: ")
	if err != nil {
		a.fail("read code", err)
	}
	password, err := newPassword(out, in)
	if err != nil {
		a.fail("read password", err)
	}
	if err := a.auth.ResetPassword(ctx, email, code, password); err != nil {
		a.fail("password reset failed", err)
	}
	fmt.Fprintln(out, "Password updated. You can now log in.")
	return nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func promptPassword(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return prompt(out, in, label)
	}
	fmt.Fprint(out, label)
	pw, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// newPassword asks twice and checks the password rules.
func newPassword(out io.Writer, in *bufio.Reader) (string, error) {
	pw, err := promptPassword(out, in, "New password: ")
	if err != nil {
		return "", err
	}
	if msg := signup.CheckPassword(pw); msg != "" {
		return "", fmt.Errorf("%w: %s", model.ErrValidation, msg)
	}
	confirm, err := promptPassword(out, in, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", fmt.Errorf("%w: Passwords do not match.", model.ErrValidation)
	}
	return pw, nil
}
