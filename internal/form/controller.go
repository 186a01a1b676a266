package form

import (
	"context"
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate

	strict = bluemonday.StrictPolicy()
)

// getValidator lazily builds the shared validator with the struct rules of
// every entity form. Field errors are reported under their form names.
func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(educationRules, EducationInput{})
		v.RegisterStructValidation(experienceRules, ExperienceInput{})
		v.RegisterStructValidation(projectRules, ProjectInput{})
		v.RegisterStructValidation(companyRules, CompanyInput{})
		v.RegisterStructValidation(jobRules, JobInput{})
		validatorInst = v
	})
	return validatorInst
}

// Controller drives one form: sanitise, check required fields, decode into
// In, validate and hand the result to submit.
type Controller[In, Out any] struct {
	form   *Form
	submit func(context.Context, In) (Out, error)
}

func NewController[In, Out any](f *Form, submit func(context.Context, In) (Out, error)) *Controller[In, Out] {
	return &Controller[In, Out]{form: f, submit: submit}
}

func (c *Controller[In, Out]) Form() *Form {
	return c.form
}

// Validate returns the decoded input, or *Errors describing every failing
// field.
func (c *Controller[In, Out]) Validate(v Values) (In, error) {
	var in In
	active := c.form.Active(sanitize(v))

	errs := &Errors{}
	for _, f := range c.form.fields {
		if !f.Required || f.Kind == Checkbox || !c.form.Enabled(f.Name, v) {
			continue
		}
		if active[f.Name] == "" {
			errs.Add(f.Name, f.Label+" is required")
		}
	}

	decode(active, &in)

	if err := getValidator().Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return in, fmt.Errorf("validate %s: %w", c.form.Title, err)
		}
		for _, fe := range fieldErrs {
			errs.Add(fe.Field(), message(c.form.label(fe.Field()), fe))
		}
	}
	return in, errs.orNil()
}

// Submit validates v and, if it passes, calls the submit function.
func (c *Controller[In, Out]) Submit(ctx context.Context, v Values) (Out, error) {
	in, err := c.Validate(v)
	if err != nil {
		var zero Out
		return zero, err
	}
	return c.submit(ctx, in)
}

// sanitize strips markup from every value and trims whitespace. Entities
// are unescaped again since values are sent as JSON, not HTML.
func sanitize(v Values) Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
	}
	return out
}

// decode copies values into the `form`-tagged fields of dst. Supported field
// kinds are string, bool (checkbox) and []string (comma separated).
func decode(v Values, dst any) {
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := strings.SplitN(rt.Field(i).Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(v[name])
		case reflect.Bool:
			f.SetBool(v.Bool(name))
		case reflect.Slice:
			if f.Type().Elem().Kind() == reflect.String {
				f.Set(reflect.ValueOf(splitList(v[name])))
			}
		}
	}
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "url", "http_url":
		return label + " must be a valid URL"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric", "number":
		return label + " must be a number"
	case "e164":
		return "Enter the mobile number in international format, e.g. +14155550123"
	case "file":
		return label + ": file not found"
	case "after_start":
		return "End date cannot be before start date"
	case "salary_range":
		return "Maximum salary cannot be less than minimum salary"
	case "founded_year":
		return label + " must be a year between 1800 and now"
	case "max_items":
		return fmt.Sprintf("%s: at most %s items", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
