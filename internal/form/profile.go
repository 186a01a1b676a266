package form

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobdesk/internal/model"
)

type EducationInput struct {
	Institution  string `form:"institution" validate:"required,max=200"`
	Degree       string `form:"degree" validate:"required,max=200"`
	FieldOfStudy string `form:"field_of_study" validate:"max=200"`
	Grade        string `form:"grade" validate:"max=50"`
	Description  string `form:"description" validate:"max=2000"`
	StartDate    string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent    bool   `form:"is_current"`
}

func (in EducationInput) Education() model.Education {
	return model.Education{
		Institution:  in.Institution,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		Grade:        in.Grade,
		Description:  in.Description,
		DateRange:    dateRange(in.StartDate, in.EndDate, in.IsCurrent),
	}
}

func EducationForm() *Form {
	return New("Education").
		Register(Field{Name: "institution", Label: "Institution", Required: true}).
		Register(Field{Name: "degree", Label: "Degree", Required: true}).
		Register(Field{Name: "field_of_study", Label: "Field of study"}).
		Register(Field{Name: "grade", Label: "Grade"}).
		Register(Field{Name: "start_date", Label: "Start date", Kind: Date, Required: true, Placeholder: "YYYY-MM-DD"}).
		Register(Field{Name: "is_current", Label: "I currently study here", Kind: Checkbox}).
		Register(Field{Name: "end_date", Label: "End date", Kind: Date, Required: true, Placeholder: "YYYY-MM-DD",
			DisabledWhen: whenChecked("is_current")}).
		Register(Field{Name: "description", Label: "Description", Kind: TextArea})
}

func NewEducationController(submit func(context.Context, model.Education) (model.Education, error)) *Controller[EducationInput, model.Education] {
	return NewController(EducationForm(), func(ctx context.Context, in EducationInput) (model.Education, error) {
		return submit(ctx, in.Education())
	})
}

type ExperienceInput struct {
	Company        string `form:"company" validate:"required,max=200"`
	Title          string `form:"title" validate:"required,max=200"`
	Location       string `form:"location" validate:"max=200"`
	EmploymentType string `form:"employment_type" validate:"omitempty,oneof=full_time part_time contract internship freelance"`
	Description    string `form:"description" validate:"max=5000"`
	StartDate      string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent      bool   `form:"is_current"`
}

func (in ExperienceInput) Experience() model.WorkExperience {
	return model.WorkExperience{
		Company:        in.Company,
		Title:          in.Title,
		Location:       in.Location,
		EmploymentType: in.EmploymentType,
		Description:    in.Description,
		DateRange:      dateRange(in.StartDate, in.EndDate, in.IsCurrent),
	}
}

func ExperienceForm() *Form {
	return New("Work experience").
		Register(Field{Name: "title", Label: "Job title", Required: true}).
		Register(Field{Name: "company", Label: "Company", Required: true}).
		Register(Field{Name: "location", Label: "Location"}).
		Register(Field{Name: "employment_type", Label: "Employment type", Kind: Select,
			Options: []string{"full_time", "part_time", "contract", "internship", "freelance"}}).
		Register(Field{Name: "start_date", Label: "Start date", Kind: Date, Required: true, Placeholder: "YYYY-MM-DD"}).
		Register(Field{Name: "is_current", Label: "I currently work here", Kind: Checkbox}).
		Register(Field{Name: "end_date", Label: "End date", Kind: Date, Required: true, Placeholder: "YYYY-MM-DD",
			DisabledWhen: whenChecked("is_current")}).
		Register(Field{Name: "description", Label: "Description", Kind: TextArea})
}

func NewExperienceController(submit func(context.Context, model.WorkExperience) (model.WorkExperience, error)) *Controller[ExperienceInput, model.WorkExperience] {
	return NewController(ExperienceForm(), func(ctx context.Context, in ExperienceInput) (model.WorkExperience, error) {
		return submit(ctx, in.Experience())
	})
}

type ProjectInput struct {
	Title        string   `form:"title" validate:"required,max=200"`
	Description  string   `form:"description" validate:"max=2000"`
	URL          string   `form:"url" validate:"omitempty,url"`
	Technologies []string `form:"technologies" validate:"dive,max=50"`
	StartDate    string   `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent    bool     `form:"is_current"`
}

func (in ProjectInput) Project() model.Project {
	return model.Project{
		Title:        in.Title,
		Description:  in.Description,
		URL:          in.URL,
		Technologies: in.Technologies,
		DateRange:    dateRange(in.StartDate, in.EndDate, in.IsCurrent),
	}
}

func ProjectForm() *Form {
	return New("Project").
		Register(Field{Name: "title", Label: "Title", Required: true}).
		Register(Field{Name: "url", Label: "Link", Placeholder: "https://"}).
		Register(Field{Name: "technologies", Label: "Technologies", Placeholder: "comma separated"}).
		Register(Field{Name: "start_date", Label: "Start date", Kind: Date, Placeholder: "YYYY-MM-DD"}).
		Register(Field{Name: "is_current", Label: "Ongoing", Kind: Checkbox}).
		Register(Field{Name: "end_date", Label: "End date", Kind: Date, Placeholder: "YYYY-MM-DD",
			DisabledWhen: whenChecked("is_current")}).
		Register(Field{Name: "description", Label: "Description", Kind: TextArea})
}

func NewProjectController(submit func(context.Context, model.Project) (model.Project, error)) *Controller[ProjectInput, model.Project] {
	return NewController(ProjectForm(), func(ctx context.Context, in ProjectInput) (model.Project, error) {
		return submit(ctx, in.Project())
	})
}

// ResumeInput names a local file to upload.
type ResumeInput struct {
	Title string `form:"title" validate:"required,max=100"`
	Path  string `form:"file" validate:"required,file"`
}

func ResumeForm() *Form {
	return New("Resume").
		Register(Field{Name: "title", Label: "Title", Required: true}).
		Register(Field{Name: "file", Label: "File", Kind: File, Required: true, Placeholder: "path/to/resume.pdf"})
}

func NewResumeController(submit func(context.Context, ResumeInput) (model.Resume, error)) *Controller[ResumeInput, model.Resume] {
	return NewController(ResumeForm(), submit)
}

type SkillsInput struct {
	Names []string `form:"skills" validate:"required,dive,max=50"`
	Level string   `form:"level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

func (in SkillsInput) Skills() []model.Skill {
	out := make([]model.Skill, 0, len(in.Names))
	for _, n := range in.Names {
		out = append(out, model.Skill{Name: n, Level: model.SkillLevel(in.Level)})
	}
	return out
}

func SkillsForm() *Form {
	return New("Skills").
		Register(Field{Name: "skills", Label: "Skills", Required: true, Placeholder: "Go, SQL, Docker"}).
		Register(Field{Name: "level", Label: "Level", Kind: Select,
			Options: []string{"beginner", "intermediate", "advanced", "expert"}})
}

// NewSkillsController submits each skill in turn and returns the created ones.
func NewSkillsController(submit func(context.Context, model.Skill) (model.Skill, error)) *Controller[SkillsInput, []model.Skill] {
	return NewController(SkillsForm(), func(ctx context.Context, in SkillsInput) ([]model.Skill, error) {
		var created []model.Skill
		for _, s := range in.Skills() {
			res, err := submit(ctx, s)
			if err != nil {
				return created, err
			}
			created = append(created, res)
		}
		return created, nil
	})
}

func dateRange(start, end string, current bool) model.DateRange {
	r := model.DateRange{IsCurrent: current}
	if d, err := model.ParseDate(start); err == nil {
		r.StartDate = d
	}
	if !current && end != "" {
		if d, err := model.ParseDate(end); err == nil {
			r.EndDate = &d
		}
	}
	return r
}

// checkRange reports end_date when it precedes start_date.
func checkRange(sl validator.StructLevel, start, end string, current bool) {
	if current || start == "" || end == "" {
		return
	}
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return
	}
	e, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "end_date", "EndDate", "after_start", "")
	}
}

func educationRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(EducationInput)
	checkRange(sl, in.StartDate, in.EndDate, in.IsCurrent)
}

func experienceRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(ExperienceInput)
	checkRange(sl, in.StartDate, in.EndDate, in.IsCurrent)
}

func projectRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(ProjectInput)
	checkRange(sl, in.StartDate, in.EndDate, in.IsCurrent)
}
