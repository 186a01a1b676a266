package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/view"
)

var applicationsJobID string

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Track job applications",
}

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your applications, or a posting's applicants with --job",
	RunE:  runApplicationsList,
}

var applicationsStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move an applicant along the review pipeline (employers)",
	Long: "Move an application to its next status. Allowed moves:\n" +
		"  pending -> reviewed, rejected\n" +
		"  reviewed -> shortlisted, interviewed, rejected\n" +
		"  shortlisted -> interviewed, accepted, rejected\n" +
		"  interviewed -> accepted, rejected",
	Args: cobra.ExactArgs(2),
	RunE: runApplicationsStatus,
}

var applicationsWithdrawCmd = &cobra.Command{
	Use:   "withdraw ID",
	Short: "Withdraw one of your applications",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsWithdraw,
}

func init() {
	applicationsListCmd.Flags().StringVar(&applicationsJobID, "job", "", "list applicants of this job posting")
	applicationsCmd.AddCommand(applicationsListCmd, applicationsStatusCmd, applicationsWithdrawCmd)
	rootCmd.AddCommand(applicationsCmd)
}

func runApplicationsList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()
	ctx := cmd.Context()

	var (
		apps []model.JobApplication
		err  error
	)
	if applicationsJobID != "" {
		apps, err = a.applications.ForJob(ctx, applicationsJobID)
	} else {
		apps, err = a.applications.Mine(ctx)
	}
	if err != nil {
		a.fail("failed to load applications", err)
	}
	view.Applications(cmd.OutOrStdout(), apps)
	return nil
}

func runApplicationsStatus(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("review applications")

	to := model.ApplicationStatus(strings.ToLower(args[1]))
	if !to.Valid() {
		a.fail("unknown status", fmt.Errorf("%w: %q is not a status", model.ErrValidation, args[1]))
	}
	ja, err := a.applications.UpdateStatus(cmd.Context(), args[0], to)
	if err != nil {
		a.fail("failed to update application", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s's application is now %s\n", applicantName(ja.ApplicantName), ja.Status.Label())
	if next := ja.Status.NextStatuses(); len(next) > 0 {
		labels := make([]string, len(next))
		for i, s := range next {
			labels[i] = string(s)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Next: %s\n", strings.Join(labels, ", "))
	}
	return nil
}

func applicantName(s string) string {
	if s == "" {
		return "Applicant"
	}
	return s
}

func runApplicationsWithdraw(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	if err := a.applications.Withdraw(cmd.Context(), args[0]); err != nil {
		a.fail("failed to withdraw application", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Withdrew application %s\n", args[0])
	return nil
}
