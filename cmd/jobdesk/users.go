package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/view"
)

var usersRole string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts (admin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersListCmd.Flags().StringVar(&usersRole, "role", "", "only this role (job_seeker, employer, admin)")
	pageFlags(usersListCmd)
	usersCmd.AddCommand(usersListCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func (a *app) requireAdmin(action string) model.User {
	user := a.requireLogin()
	if user.Role != model.RoleAdmin {
		a.fail("only admins can "+action, fmt.Errorf("%w: role %s", model.ErrForbidden, user.Role))
	}
	return user
}

func runUsersList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireAdmin("list users")

	role := model.Role(usersRole)
	if role != "" && !role.Valid() {
		a.fail("invalid role", fmt.Errorf("%w: unknown role %q", model.ErrValidation, usersRole))
	}
	page, err := a.users.List(cmd.Context(), api.UserQuery{Role: role, PageQuery: a.pageQuery()})
	if err != nil {
		a.fail("failed to load users", err)
	}
	out := cmd.OutOrStdout()
	view.Users(out, page.Items)
	if len(page.Items) > 0 {
		view.Page(out, page)
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	me := a.requireAdmin("delete users")
	if args[0] == me.ID {
		a.fail("refusing to delete your own account", fmt.Errorf("%w: own account", model.ErrValidation))
	}

	if err := a.users.Delete(cmd.Context(), args[0]); err != nil {
		a.fail("failed to delete user", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
	return nil
}
