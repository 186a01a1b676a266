package main

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/form"
	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/nav"
	"github.com/amishk599/jobdesk/internal/swr"
	"github.com/amishk599/jobdesk/internal/tui"
	"github.com/amishk599/jobdesk/internal/view"
)

var jobQuery struct {
	search   string
	location string
	jobType  string
	level    string
	page     int
	limit    int
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search, save and apply to jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search job postings",
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsSaveCmd = &cobra.Command{
	Use:   "save ID",
	Short: "Bookmark a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsSave,
}

var jobsUnsaveCmd = &cobra.Command{
	Use:   "unsave ID",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsUnsave,
}

var jobsSavedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List bookmarked jobs",
	RunE:  runJobsSaved,
}

var jobsApplyCmd = &cobra.Command{
	Use:   "apply ID",
	Short: "Apply to a job",
	Long:  "Apply with a resume from your profile. Without --resume-id the default resume is used.",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsApply,
}

var jobsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse jobs interactively",
	RunE:  runJobsBrowse,
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Edit one of your postings; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsUpdate,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove one of your postings",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a job for one of your companies (employers)",
	RunE:  runJobsPost,
}

func init() {
	for _, c := range []*cobra.Command{jobsListCmd, jobsBrowseCmd} {
		c.Flags().StringVarP(&jobQuery.search, "search", "s", "", "keywords matched against title, company and skills")
		c.Flags().StringVarP(&jobQuery.location, "location", "l", "", "location, or \"remote\"")
		c.Flags().StringVar(&jobQuery.jobType, "type", "", "job type ("+joinLabels(model.JobTypes)+")")
		c.Flags().StringVar(&jobQuery.level, "level", "", "experience level ("+joinLabels(model.ExperienceLevels)+")")
		c.Flags().IntVar(&jobQuery.page, "page", 1, "page number")
		c.Flags().IntVar(&jobQuery.limit, "limit", 0, "results per page (default: ui.page_size)")
	}
	bindForm(jobsApplyCmd, form.ApplicationForm())
	bindForm(jobsPostCmd, form.JobForm())
	bindForm(jobsUpdateCmd, form.JobForm())

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsSaveCmd, jobsUnsaveCmd, jobsSavedCmd,
		jobsApplyCmd, jobsBrowseCmd, jobsPostCmd, jobsUpdateCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

func joinLabels[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}

// jobQuery builds the search from flags, checking enum values up front.
func (a *app) jobQuery() (listing.JobQuery, error) {
	q := listing.JobQuery{
		Search:          jobQuery.search,
		Location:        jobQuery.location,
		JobType:         model.JobType(jobQuery.jobType),
		ExperienceLevel: model.ExperienceLevel(jobQuery.level),
		Page:            max(jobQuery.page, 1),
		Limit:           jobQuery.limit,
	}
	if q.Limit <= 0 {
		q.Limit = a.cfg.UI.PageSize
	}
	if q.JobType != "" && !q.JobType.Valid() {
		return q, fmt.Errorf("%w: unknown job type %q", model.ErrValidation, jobQuery.jobType)
	}
	if q.ExperienceLevel != "" && !q.ExperienceLevel.Valid() {
		return q, fmt.Errorf("%w: unknown experience level %q", model.ErrValidation, jobQuery.level)
	}
	return q, nil
}

// searchJobs goes through the cache so the browse screen and repeated
// lookups in one run share a response.
func (a *app) searchJobs(ctx context.Context, q listing.JobQuery) (model.Page[model.Job], error) {
	return swr.Get(ctx, a.cache, "jobs?"+q.Values().Encode(), func(ctx context.Context) (model.Page[model.Job], error) {
		return a.jobs.List(ctx, q)
	})
}

func runJobsList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	q, err := a.jobQuery()
	if err != nil {
		a.fail("invalid search", err)
	}
	page, err := a.searchJobs(cmd.Context(), q)
	if err != nil {
		a.fail("failed to load jobs", err)
	}
	out := cmd.OutOrStdout()
	view.Jobs(out, page.Items)
	if len(page.Items) > 0 {
		view.Page(out, page)
	}
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	job, err := a.jobs.Get(cmd.Context(), args[0])
	if err != nil {
		a.fail("failed to load job", err)
	}
	view.Job(cmd.OutOrStdout(), job, time.Now())
	return nil
}

func runJobsSave(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	id := args[0]
	redirect, err := nav.SaveJob(cmd.Context(), a.session, a.jobs, id, nav.Job(id))
	if err != nil {
		a.fail("failed to save job", err)
	}
	if redirect != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Sign in to save jobs: run `jobdesk login`, then `jobdesk jobs save %s`.\n", id)
		return fmt.Errorf("save job %s: %w", id, model.ErrUnauthorized)
	}
	a.cache.Invalidate("jobs")
	fmt.Fprintf(cmd.OutOrStdout(), "Saved job %s\n", id)
	return nil
}

func runJobsUnsave(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	if err := a.jobs.Unsave(cmd.Context(), args[0]); err != nil {
		a.fail("failed to remove bookmark", err)
	}
	a.cache.Invalidate("jobs")
	fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s from saved jobs\n", args[0])
	return nil
}

func runJobsSaved(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	jobs, err := a.jobs.Saved(cmd.Context())
	if err != nil {
		a.fail("failed to load saved jobs", err)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), view.NoSavedJobs)
		return nil
	}
	view.Jobs(cmd.OutOrStdout(), jobs)
	return nil
}

// defaultResume returns the ID of the default resume, or the only one.
func (a *app) defaultResume(ctx context.Context) (string, error) {
	resumes, err := a.profile.ListResumes(ctx)
	if err != nil {
		return "", fmt.Errorf("load resumes: %w", err)
	}
	for _, r := range resumes {
		if r.IsDefault {
			return r.ID, nil
		}
	}
	if len(resumes) == 1 {
		return resumes[0].ID, nil
	}
	return "", nil
}

// apply submits an application, filling in the default resume.
func (a *app) apply(ctx context.Context, jobID string, values form.Values) (model.JobApplication, error) {
	if values["resume_id"] == "" {
		id, err := a.defaultResume(ctx)
		if err != nil {
			return model.JobApplication{}, err
		}
		values["resume_id"] = id
	}
	ctl := form.NewApplicationController(func(ctx context.Context, req api.ApplyRequest) (model.JobApplication, error) {
		return a.applications.Apply(ctx, jobID, req)
	})
	return ctl.Submit(ctx, values)
}

func runJobsApply(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	f := form.ApplicationForm()
	ja, err := a.apply(cmd.Context(), args[0], formValues(cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to apply", err)
	}
	a.cache.Invalidate("applications")
	fmt.Fprintf(cmd.OutOrStdout(), "Applied to %s (application %s, %s)\n",
		orJobID(ja.JobTitle, args[0]), ja.ID, ja.Status.Label())
	return nil
}

func orJobID(title, id string) string {
	if title == "" {
		return "job " + id
	}
	return title
}

func runJobsPost(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("post jobs")

	f := form.JobForm()
	job, err := form.NewJobController(a.jobs.Create).Submit(cmd.Context(), formValues(cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to post job", err)
	}
	a.cache.Invalidate("jobs")
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s (%s)\n", job.Title, job.ID)
	return nil
}

func jobValues(j model.Job) form.Values {
	v := form.Values{
		"title":            j.Title,
		"description":      j.Description,
		"requirements":     j.Requirements,
		"location":         j.Location,
		"job_type":         string(j.JobType),
		"experience_level": string(j.ExperienceLevel),
		"currency":         j.Currency,
		"skills":           strings.Join(j.Skills, ", "),
		"is_remote":        strconv.FormatBool(j.IsRemote),
	}
	if j.SalaryMin > 0 {
		v["salary_min"] = strconv.FormatInt(j.SalaryMin, 10)
	}
	if j.SalaryMax > 0 {
		v["salary_max"] = strconv.FormatInt(j.SalaryMax, 10)
	}
	if j.Deadline != nil {
		v["deadline"] = j.Deadline.String()
	}
	return v
}

func runJobsUpdate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("edit jobs")
	ctx := cmd.Context()
	id := args[0]

	current, err := a.jobs.Get(ctx, id)
	if err != nil {
		a.fail("failed to load job", err)
	}
	f := form.JobForm()
	ctl := form.NewJobController(func(ctx context.Context, j model.Job) (model.Job, error) {
		return a.jobs.Update(ctx, id, j)
	})
	job, err := ctl.Submit(ctx, mergeValues(jobValues(current), cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to update job", err)
	}
	a.cache.Invalidate("jobs")
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", job.Title)
	return nil
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("delete jobs")

	if err := a.jobs.Delete(cmd.Context(), args[0]); err != nil {
		a.fail("failed to delete job", err)
	}
	a.cache.Invalidate("jobs")
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
	return nil
}

func runJobsBrowse(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd, discardLogger())
	defer a.Close()
	ctx := cmd.Context()

	q, err := a.jobQuery()
	if err != nil {
		a.fail("invalid search", err)
	}

	open := ""
	for {
		page, err := tui.RunLoader(ctx, "Loading jobs", func(ctx context.Context) (model.Page[model.Job], error) {
			return a.searchJobs(ctx, q)
		})
		if err != nil {
			if errors.Is(err, tui.ErrCancelled) {
				return nil
			}
			a.fail("failed to load jobs", err)
		}

		res, err := tui.RunList(ctx, a.jobList(page, open))
		if err != nil {
			a.fail("jobs screen failed", err)
		}
		if res.Redirect == "" {
			return nil
		}

		// Signed out: log in, then come back to the job that asked for it.
		if !a.loginInteractive(ctx, "") {
			return nil
		}
		open = routeID(nav.ReturnURL(res.Redirect), nav.Jobs)
		a.cache.Invalidate("jobs")
	}
}

// routeID returns the ID from a detail route under prefix, e.g. "/jobs/42".
func routeID(route, prefix string) string {
	if path.Dir(route) != prefix {
		return ""
	}
	return path.Base(route)
}

func (a *app) jobList(page model.Page[model.Job], open string) tui.List[model.Job] {
	title := "Jobs"
	if page.Total > 0 {
		title = fmt.Sprintf("Jobs · page %d · %d total", max(page.Page, 1), page.Total)
	}
	return tui.List[model.Job]{
		Title: title,
		Empty: view.NoJobs,
		Items: page.Items,
		ID:    func(j model.Job) string { return j.ID },
		Row:   jobRow,
		Detail: func(j model.Job) string {
			var b strings.Builder
			view.Job(&b, j, time.Now())
			return b.String()
		},
		Actions: []tui.Action[model.Job]{
			{Key: "s", Help: "save", Run: a.saveAction},
			{Key: "a", Help: "apply", Run: a.applyAction},
		},
		Open: open,
	}
}

func jobRow(j model.Job) (string, string) {
	title := j.Title
	if j.IsSaved {
		title = "★ " + title
	}
	sub := []string{j.CompanyName}
	if j.Location != "" {
		sub = append(sub, j.Location)
	}
	if t := j.JobType.Label(); t != "" {
		sub = append(sub, t)
	}
	if s := j.SalaryRange(); s != "" {
		sub = append(sub, s)
	}
	return title, strings.Join(sub, " · ")
}

func (a *app) saveAction(ctx context.Context, j model.Job) (tui.Outcome[model.Job], error) {
	redirect, err := nav.SaveJob(ctx, a.session, a.jobs, j.ID, nav.Job(j.ID))
	if err != nil {
		return tui.Outcome[model.Job]{}, err
	}
	if redirect != "" {
		return tui.Outcome[model.Job]{Item: j, Redirect: redirect}, nil
	}
	j.IsSaved = true
	return tui.Outcome[model.Job]{Item: j, Status: "Saved"}, nil
}

func (a *app) applyAction(ctx context.Context, j model.Job) (tui.Outcome[model.Job], error) {
	if redirect := nav.RequireLogin(a.session, nav.Job(j.ID)); redirect != "" {
		return tui.Outcome[model.Job]{Item: j, Redirect: redirect}, nil
	}
	if _, err := a.apply(ctx, j.ID, form.Values{}); err != nil {
		return tui.Outcome[model.Job]{}, err
	}
	j.ApplicantCount++
	return tui.Outcome[model.Job]{Item: j, Status: "Application sent"}, nil
}
