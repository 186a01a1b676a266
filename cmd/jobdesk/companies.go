package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/form"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/swr"
	"github.com/amishk599/jobdesk/internal/tui"
	"github.com/amishk599/jobdesk/internal/view"
)

var (
	listSearch string
	listPage   int
	listLimit  int
)

var companiesCmd = &cobra.Command{
	Use:     "companies",
	Aliases: []string{"company"},
	Short:   "Browse and manage companies",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	RunE:  runCompaniesList,
}

var companiesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a company and its open jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesShow,
}

var companiesBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse companies interactively",
	RunE:  runCompaniesBrowse,
}

var companiesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a company (employers)",
	RunE:  runCompaniesCreate,
}

var companiesUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Edit a company you own; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesUpdate,
}

var companiesLogoCmd = &cobra.Command{
	Use:   "logo ID FILE",
	Short: "Upload a company logo",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompaniesLogo,
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a company you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesDelete,
}

var companiesVerifyCmd = &cobra.Command{
	Use:   "verify ID",
	Short: "Mark a company as verified (admins)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesVerify,
}

// pageFlags adds --search, --page and --limit to list commands.
func pageFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringVarP(&listSearch, "search", "s", "", "search keywords")
		c.Flags().IntVar(&listPage, "page", 1, "page number")
		c.Flags().IntVar(&listLimit, "limit", 0, "results per page (default: ui.page_size)")
	}
}

func (a *app) pageQuery() api.PageQuery {
	q := api.PageQuery{Search: listSearch, Page: max(listPage, 1), Limit: listLimit}
	if q.Limit <= 0 {
		q.Limit = a.cfg.UI.PageSize
	}
	return q
}

func init() {
	pageFlags(companiesListCmd, companiesBrowseCmd)
	bindForm(companiesCreateCmd, form.CompanyForm())
	bindForm(companiesUpdateCmd, form.CompanyForm())
	companiesCmd.AddCommand(companiesListCmd, companiesShowCmd, companiesBrowseCmd, companiesCreateCmd,
		companiesUpdateCmd, companiesLogoCmd, companiesDeleteCmd, companiesVerifyCmd)
	rootCmd.AddCommand(companiesCmd)
}

// listCompanies may answer from an expired cache entry while a refresh runs
// behind it. The cache lives for one process, so only reloads inside the
// browse screen can hit it.
func (a *app) listCompanies(ctx context.Context, q api.PageQuery) (model.Page[model.Company], error) {
	key := "companies?" + q.Values().Encode()
	page, stale, err := swr.GetStale(ctx, a.cache, key, func(ctx context.Context) (model.Page[model.Company], error) {
		return a.companies.List(ctx, q)
	})
	if stale {
		a.logger.Debug("serving stale companies", "key", key)
	}
	return page, err
}

func runCompaniesList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	page, err := a.listCompanies(cmd.Context(), a.pageQuery())
	if err != nil {
		a.fail("failed to load companies", err)
	}
	view.Companies(cmd.OutOrStdout(), page.Items)
	if len(page.Items) > 0 {
		view.Page(cmd.OutOrStdout(), page)
	}
	return nil
}

func runCompaniesShow(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()

	c, jobs, err := a.companyWithJobs(cmd.Context(), args[0])
	if err != nil {
		a.fail("failed to load company", err)
	}
	view.Company(cmd.OutOrStdout(), c, jobs)
	return nil
}

func (a *app) companyWithJobs(ctx context.Context, id string) (model.Company, []model.Job, error) {
	c, err := a.companies.Get(ctx, id)
	if err != nil {
		return c, nil, err
	}
	jobs, err := a.companies.Jobs(ctx, id)
	if err != nil {
		return c, nil, fmt.Errorf("load jobs of %s: %w", c.Name, err)
	}
	return c, jobs, nil
}

func runCompaniesBrowse(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd, discardLogger())
	defer a.Close()
	ctx := cmd.Context()

	q := a.pageQuery()
	page, err := tui.RunLoader(ctx, "Loading companies", func(ctx context.Context) (model.Page[model.Company], error) {
		return a.listCompanies(ctx, q)
	})
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		a.fail("failed to load companies", err)
	}

	_, err = tui.RunList(ctx, tui.List[model.Company]{
		Title: fmt.Sprintf("Companies · %d total", page.Total),
		Empty: view.NoCompanies,
		Items: page.Items,
		ID:    func(c model.Company) string { return c.ID },
		Row:   companyRow,
		Detail: func(c model.Company) string {
			var b strings.Builder
			view.Company(&b, c, nil)
			return b.String()
		},
		Actions: []tui.Action[model.Company]{
			{Key: "o", Help: "open jobs", Run: a.companyJobsAction},
		},
		Reload: func(ctx context.Context) ([]model.Company, error) {
			page, err := a.listCompanies(ctx, q)
			return page.Items, err
		},
	})
	if err != nil {
		a.fail("companies screen failed", err)
	}
	return nil
}

func companyRow(c model.Company) (string, string) {
	title := c.Name
	if c.IsVerified {
		title += " ✓"
	}
	var sub []string
	for _, s := range []string{c.Industry, c.Location, c.Size} {
		if s != "" {
			sub = append(sub, s)
		}
	}
	return title, strings.Join(sub, " · ")
}

// companyJobsAction loads the company's postings into the status line.
func (a *app) companyJobsAction(ctx context.Context, c model.Company) (tui.Outcome[model.Company], error) {
	jobs, err := a.companies.Jobs(ctx, c.ID)
	if err != nil {
		return tui.Outcome[model.Company]{}, err
	}
	if len(jobs) == 0 {
		return tui.Outcome[model.Company]{Item: c, Status: view.NoJobs}, nil
	}
	titles := make([]string, 0, len(jobs))
	for _, j := range jobs {
		titles = append(titles, j.Title)
	}
	return tui.Outcome[model.Company]{Item: c, Status: fmt.Sprintf("%d open: %s", len(jobs), strings.Join(titles, ", "))}, nil
}

func runCompaniesCreate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("register companies")

	f := form.CompanyForm()
	c, err := form.NewCompanyController(a.companies.Create).Submit(cmd.Context(), formValues(cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to create company", err)
	}
	a.cache.Invalidate("companies")
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s). It will be listed as verified once an admin reviews it.\n", c.Name, c.ID)
	return nil
}

func runCompaniesVerify(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireAdmin("verify companies")

	c, err := a.companies.Verify(cmd.Context(), args[0])
	if err != nil {
		a.fail("failed to verify company", err)
	}
	a.cache.Invalidate("companies")
	fmt.Fprintf(cmd.OutOrStdout(), "Verified %s\n", c.Name)
	return nil
}

// requireEmployer exits unless the signed-in user may manage companies and
// postings.
func (a *app) requireEmployer(action string) model.User {
	user := a.requireLogin()
	if user.Role != model.RoleEmployer && user.Role != model.RoleAdmin {
		a.fail("only employers can "+action, fmt.Errorf("%w: role %s", model.ErrForbidden, user.Role))
	}
	return user
}

func companyValues(c model.Company) form.Values {
	v := form.Values{
		"name":        c.Name,
		"description": c.Description,
		"industry":    c.Industry,
		"website":     c.Website,
		"location":    c.Location,
		"size":        c.Size,
	}
	if c.FoundedYear > 0 {
		v["founded_year"] = strconv.Itoa(c.FoundedYear)
	}
	return v
}

func runCompaniesUpdate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("edit companies")
	ctx := cmd.Context()
	id := args[0]

	current, err := a.companies.Get(ctx, id)
	if err != nil {
		a.fail("failed to load company", err)
	}
	f := form.CompanyForm()
	ctl := form.NewCompanyController(func(ctx context.Context, c model.Company) (model.Company, error) {
		return a.companies.Update(ctx, id, c)
	})
	c, err := ctl.Submit(ctx, mergeValues(companyValues(current), cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to update company", err)
	}
	a.cache.Invalidate("companies")
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", c.Name)
	return nil
}

func runCompaniesLogo(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("edit companies")

	f, upload, err := openUpload(args[1])
	if err != nil {
		a.fail("cannot read logo", err)
	}
	defer f.Close()
	c, err := a.companies.UploadLogo(cmd.Context(), args[0], upload)
	if err != nil {
		a.fail("failed to upload logo", err)
	}
	a.cache.Invalidate("companies")
	fmt.Fprintf(cmd.OutOrStdout(), "Logo updated for %s\n", c.Name)
	return nil
}

func runCompaniesDelete(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireEmployer("delete companies")

	if err := a.companies.Delete(cmd.Context(), args[0]); err != nil {
		a.fail("failed to delete company", err)
	}
	a.cache.Invalidate("companies")
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted company %s\n", args[0])
	return nil
}
