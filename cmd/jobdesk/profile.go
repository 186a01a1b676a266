package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/form"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/view"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your full profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit account details; unset flags keep their current value",
	RunE:  runProfileUpdate,
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar FILE",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAvatar,
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE:  runProfilePassword,
}

func init() {
	bindForm(profileUpdateCmd, form.UserForm())

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileAvatarCmd, profilePasswordCmd,
		sectionCmd("education", "Education history", form.EducationForm(),
			func(a *app) *api.Section[model.Education] { return a.profile.Education },
			form.NewEducationController,
			func(e model.Education) string { return e.Degree + " at " + e.Institution }),
		sectionCmd("experience", "Work experience", form.ExperienceForm(),
			func(a *app) *api.Section[model.WorkExperience] { return a.profile.Experience },
			form.NewExperienceController,
			func(e model.WorkExperience) string { return e.Title + " at " + e.Company }),
		sectionCmd("project", "Projects", form.ProjectForm(),
			func(a *app) *api.Section[model.Project] { return a.profile.Projects },
			form.NewProjectController,
			func(p model.Project) string { return p.Title }),
		skillCmd(),
		resumeCmd(),
	)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	p, err := a.profile.Load(cmd.Context())
	if err != nil {
		a.fail("failed to load profile", err)
	}
	view.Profile(cmd.OutOrStdout(), p)
	return nil
}

// userValues prefills the account form so partial updates keep the rest.
func userValues(u model.User) form.Values {
	return form.Values{
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"mobile":          u.Mobile,
		"headline":        u.Headline,
		"location":        u.Location,
		"experience_type": string(u.ExperienceType),
	}
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()
	ctx := cmd.Context()

	current, err := a.users.Me(ctx)
	if err != nil {
		a.fail("could not load your account", err)
	}
	f := form.UserForm()
	user, err := form.NewUserController(a.users.UpdateMe).Submit(ctx, mergeValues(userValues(current), cmd, f))
	if err != nil {
		a.failForm(cmd, f, "failed to update account", err)
	}
	if err := a.session.SetUser(ctx, user); err != nil {
		logger.Warn("could not refresh stored user", "error", err)
	}
	view.User(cmd.OutOrStdout(), user)
	return nil
}

// openUpload opens path for an upload. The caller closes the file.
func openUpload(path string) (*os.File, api.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, api.File{}, fmt.Errorf("open %s: %w", path, err)
	}
	return f, api.File{Name: filepath.Base(path), Reader: f}, nil
}

func runProfileAvatar(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	f, upload, err := openUpload(args[0])
	if err != nil {
		a.fail("cannot read picture", err)
	}
	defer f.Close()
	user, err := a.users.UploadAvatar(cmd.Context(), upload)
	if err != nil {
		a.fail("failed to upload picture", err)
	}
	if err := a.session.SetUser(cmd.Context(), user); err != nil {
		logger.Warn("could not refresh stored user", "error", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Profile picture updated")
	return nil
}

func runProfilePassword(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	a := mustApp(cmd, logger)
	defer a.Close()
	a.requireLogin()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	current, err := promptPassword(out, in, "Current password: ")
	if err != nil {
		a.fail("read password", err)
	}
	next, err := newPassword(out, in)
	if err != nil {
		a.fail("read password", err)
	}
	if err := a.users.ChangePassword(cmd.Context(), current, next); err != nil {
		a.fail("failed to change password", err)
	}
	fmt.Fprintln(out, "Password changed")
	return nil
}

// sectionCmd builds the add/list/delete commands of one profile section.
func sectionCmd[T, In any](
	name, short string,
	f *form.Form,
	section func(*app) *api.Section[T],
	controller func(func(context.Context, T) (T, error)) *form.Controller[In, T],
	describe func(T) string,
) *cobra.Command {
	parent := &cobra.Command{Use: name, Short: short}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			created, err := controller(section(a).Create).Submit(cmd.Context(), formValues(cmd, f))
			if err != nil {
				a.failForm(cmd, f, "failed to add "+name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", describe(created))
			return nil
		},
	}
	bindForm(add, f)

	list := &cobra.Command{
		Use:   "list",
		Short: "List entries with their IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			items, err := section(a).List(cmd.Context())
			if err != nil {
				a.fail("failed to load "+name, err)
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s added yet\n", name)
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%-38s %s\n", entryID(it), describe(it))
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			if err := section(a).Delete(cmd.Context(), args[0]); err != nil {
				a.fail("failed to delete "+name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", name, args[0])
			return nil
		},
	}

	parent.AddCommand(add, list, remove)
	return parent
}

// entryID reads the ID of a profile record.
func entryID(v any) string {
	switch e := v.(type) {
	case model.Education:
		return e.ID
	case model.WorkExperience:
		return e.ID
	case model.Project:
		return e.ID
	}
	return ""
}

func skillCmd() *cobra.Command {
	parent := &cobra.Command{Use: "skill", Aliases: []string{"skills"}, Short: "Skills"}
	f := form.SkillsForm()

	add := &cobra.Command{
		Use:   "add",
		Short: "Add one or more skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			created, err := form.NewSkillsController(a.profile.Skills.Create).Submit(cmd.Context(), formValues(cmd, f))
			for _, s := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", s.Name)
			}
			if err != nil {
				a.failForm(cmd, f, "failed to add skills", err)
			}
			return nil
		},
	}
	bindForm(add, f)

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			if err := a.profile.Skills.Delete(cmd.Context(), args[0]); err != nil {
				a.fail("failed to delete skill", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted skill %s\n", args[0])
			return nil
		},
	}

	parent.AddCommand(add, remove)
	return parent
}

func resumeCmd() *cobra.Command {
	parent := &cobra.Command{Use: "resume", Aliases: []string{"resumes"}, Short: "Resumes used when applying"}
	f := form.ResumeForm()

	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded resumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			resumes, err := a.profile.ListResumes(cmd.Context())
			if err != nil {
				a.fail("failed to load resumes", err)
			}
			if len(resumes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No resumes uploaded yet")
				return nil
			}
			for _, r := range resumes {
				mark := " "
				if r.IsDefault {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-38s %-30s %s\n", mark, r.ID, r.Title, r.FileName)
			}
			return nil
		},
	}

	upload := &cobra.Command{
		Use:   "upload",
		Short: "Upload a resume file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			ctl := form.NewResumeController(func(ctx context.Context, in form.ResumeInput) (model.Resume, error) {
				file, up, err := openUpload(in.Path)
				if err != nil {
					return model.Resume{}, err
				}
				defer file.Close()
				return a.profile.UploadResume(ctx, in.Title, up)
			})
			r, err := ctl.Submit(cmd.Context(), formValues(cmd, f))
			if err != nil {
				a.failForm(cmd, f, "failed to upload resume", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", r.Title, r.ID)
			return nil
		},
	}
	bindForm(upload, f)

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			if err := a.profile.DeleteResume(cmd.Context(), args[0]); err != nil {
				a.fail("failed to delete resume", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted resume %s\n", args[0])
			return nil
		},
	}

	setDefault := &cobra.Command{
		Use:   "default ID",
		Short: "Use a resume by default when applying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(debug)
			a := mustApp(cmd, logger)
			defer a.Close()
			a.requireLogin()

			if err := a.profile.SetDefaultResume(cmd.Context(), args[0]); err != nil {
				a.fail("failed to set default resume", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resume %s is now the default\n", args[0])
			return nil
		},
	}

	parent.AddCommand(list, upload, remove, setDefault)
	return parent
}
