package form

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/model"
)

type CompanyInput struct {
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
	Industry    string `form:"industry" validate:"max=100"`
	Website     string `form:"website" validate:"omitempty,http_url"`
	Location    string `form:"location" validate:"max=200"`
	Size        string `form:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	FoundedYear string `form:"founded_year" validate:"omitempty,number"`
}

func (in CompanyInput) Company() model.Company {
	year, _ := strconv.Atoi(in.FoundedYear)
	return model.Company{
		Name:        in.Name,
		Description: in.Description,
		Industry:    in.Industry,
		Website:     in.Website,
		Location:    in.Location,
		Size:        in.Size,
		FoundedYear: year,
	}
}

func CompanyForm() *Form {
	return New("Company").
		Register(Field{Name: "name", Label: "Company name", Required: true}).
		Register(Field{Name: "industry", Label: "Industry"}).
		Register(Field{Name: "website", Label: "Website", Placeholder: "https://"}).
		Register(Field{Name: "location", Label: "Headquarters"}).
		Register(Field{Name: "size", Label: "Company size", Kind: Select,
			Options: []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}}).
		Register(Field{Name: "founded_year", Label: "Founded", Kind: Number}).
		Register(Field{Name: "description", Label: "About", Kind: TextArea})
}

func NewCompanyController(submit func(context.Context, model.Company) (model.Company, error)) *Controller[CompanyInput, model.Company] {
	return NewController(CompanyForm(), func(ctx context.Context, in CompanyInput) (model.Company, error) {
		return submit(ctx, in.Company())
	})
}

func companyRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(CompanyInput)
	if in.FoundedYear == "" {
		return
	}
	year, err := strconv.Atoi(in.FoundedYear)
	if err != nil {
		return
	}
	if year < 1800 || year > time.Now().Year() {
		sl.ReportError(in.FoundedYear, "founded_year", "FoundedYear", "founded_year", "")
	}
}

type UserInput struct {
	FirstName      string `form:"first_name" validate:"required,max=100"`
	LastName       string `form:"last_name" validate:"required,max=100"`
	Mobile         string `form:"mobile" validate:"omitempty,e164"`
	Headline       string `form:"headline" validate:"max=200"`
	Location       string `form:"location" validate:"max=200"`
	ExperienceType string `form:"experience_type" validate:"omitempty,oneof=fresher experienced"`
}

func (in UserInput) Request() api.UpdateUserRequest {
	return api.UpdateUserRequest{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Mobile:         in.Mobile,
		Headline:       in.Headline,
		Location:       in.Location,
		ExperienceType: model.ExperienceType(in.ExperienceType),
	}
}

func UserForm() *Form {
	return New("Account").
		Register(Field{Name: "first_name", Label: "First name", Required: true}).
		Register(Field{Name: "last_name", Label: "Last name", Required: true}).
		Register(Field{Name: "mobile", Label: "Mobile", Placeholder: "+14155550123"}).
		Register(Field{Name: "headline", Label: "Headline"}).
		Register(Field{Name: "location", Label: "Location"}).
		Register(Field{Name: "experience_type", Label: "Experience", Kind: Select,
			Options: []string{string(model.ExperienceFresher), string(model.ExperienceExperienced)}})
}

func NewUserController(submit func(context.Context, api.UpdateUserRequest) (model.User, error)) *Controller[UserInput, model.User] {
	return NewController(UserForm(), func(ctx context.Context, in UserInput) (model.User, error) {
		return submit(ctx, in.Request())
	})
}

type JobInput struct {
	Title           string   `form:"title" validate:"required,max=200"`
	Description     string   `form:"description" validate:"required,max=10000"`
	Requirements    string   `form:"requirements" validate:"max=10000"`
	Location        string   `form:"location" validate:"required,max=200"`
	JobType         string   `form:"job_type" validate:"required,oneof=full_time part_time contract internship remote"`
	ExperienceLevel string   `form:"experience_level" validate:"required,oneof=entry mid senior lead"`
	SalaryMin       string   `form:"salary_min" validate:"omitempty,number"`
	SalaryMax       string   `form:"salary_max" validate:"omitempty,number"`
	Currency        string   `form:"currency" validate:"omitempty,len=3,uppercase"`
	Skills          []string `form:"skills" validate:"dive,max=50"`
	IsRemote        bool     `form:"is_remote"`
	Deadline        string   `form:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

func (in JobInput) Job() model.Job {
	lo, _ := strconv.ParseInt(in.SalaryMin, 10, 64)
	hi, _ := strconv.ParseInt(in.SalaryMax, 10, 64)
	job := model.Job{
		Title:           in.Title,
		Description:     in.Description,
		Requirements:    in.Requirements,
		Location:        in.Location,
		JobType:         model.JobType(in.JobType),
		ExperienceLevel: model.ExperienceLevel(in.ExperienceLevel),
		SalaryMin:       lo,
		SalaryMax:       hi,
		Currency:        in.Currency,
		Skills:          in.Skills,
		IsRemote:        in.IsRemote,
	}
	if d, err := model.ParseDate(in.Deadline); err == nil {
		job.Deadline = &d
	}
	return job
}

func JobForm() *Form {
	types := make([]string, len(model.JobTypes))
	for i, t := range model.JobTypes {
		types[i] = string(t)
	}
	levels := make([]string, len(model.ExperienceLevels))
	for i, l := range model.ExperienceLevels {
		levels[i] = string(l)
	}
	return New("Job posting").
		Register(Field{Name: "title", Label: "Title", Required: true}).
		Register(Field{Name: "location", Label: "Location", Required: true}).
		Register(Field{Name: "is_remote", Label: "Remote friendly", Kind: Checkbox}).
		Register(Field{Name: "job_type", Label: "Job type", Kind: Select, Required: true, Options: types}).
		Register(Field{Name: "experience_level", Label: "Experience level", Kind: Select, Required: true, Options: levels}).
		Register(Field{Name: "salary_min", Label: "Minimum salary", Kind: Number}).
		Register(Field{Name: "salary_max", Label: "Maximum salary", Kind: Number}).
		Register(Field{Name: "currency", Label: "Currency", Placeholder: "USD"}).
		Register(Field{Name: "skills", Label: "Skills", Placeholder: "comma separated"}).
		Register(Field{Name: "deadline", Label: "Apply by", Kind: Date, Placeholder: "YYYY-MM-DD"}).
		Register(Field{Name: "description", Label: "Description", Kind: TextArea, Required: true}).
		Register(Field{Name: "requirements", Label: "Requirements", Kind: TextArea})
}

func NewJobController(submit func(context.Context, model.Job) (model.Job, error)) *Controller[JobInput, model.Job] {
	return NewController(JobForm(), func(ctx context.Context, in JobInput) (model.Job, error) {
		return submit(ctx, in.Job())
	})
}

func jobRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(JobInput)
	if in.SalaryMin == "" || in.SalaryMax == "" {
		return
	}
	lo, err1 := strconv.ParseInt(in.SalaryMin, 10, 64)
	hi, err2 := strconv.ParseInt(in.SalaryMax, 10, 64)
	if err1 == nil && err2 == nil && hi < lo {
		sl.ReportError(in.SalaryMax, "salary_max", "SalaryMax", "salary_range", "")
	}
}

type ApplicationInput struct {
	ResumeID    string `form:"resume_id" validate:"max=64"`
	CoverLetter string `form:"cover_letter" validate:"max=5000"`
}

func ApplicationForm() *Form {
	return New("Apply").
		Register(Field{Name: "resume_id", Label: "Resume", Kind: Select}).
		Register(Field{Name: "cover_letter", Label: "Cover letter", Kind: TextArea})
}

func NewApplicationController(submit func(context.Context, api.ApplyRequest) (model.JobApplication, error)) *Controller[ApplicationInput, model.JobApplication] {
	return NewController(ApplicationForm(), func(ctx context.Context, in ApplicationInput) (model.JobApplication, error) {
		return submit(ctx, api.ApplyRequest{ResumeID: in.ResumeID, CoverLetter: in.CoverLetter})
	})
}
