package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amishk599/jobdesk/internal/form"
)

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// bindForm registers one flag per form field.
func bindForm(cmd *cobra.Command, f *form.Form) {
	for _, field := range f.Fields() {
		usage := field.Label
		if len(field.Options) > 0 {
			usage += " (" + strings.Join(field.Options, ", ") + ")"
		}
		if field.Kind == form.Date {
			usage += " (YYYY-MM-DD)"
		}
		if field.Required {
			usage += " [required]"
		}
		if field.Kind == form.Checkbox {
			cmd.Flags().Bool(flagName(field.Name), false, usage)
			continue
		}
		cmd.Flags().String(flagName(field.Name), "", usage)
	}
}

// formValues collects the flags the user set into raw form input.
func formValues(cmd *cobra.Command, f *form.Form) form.Values {
	v := form.Values{}
	for _, field := range f.Fields() {
		fl := cmd.Flags().Lookup(flagName(field.Name))
		if fl == nil || !fl.Changed {
			continue
		}
		v[field.Name] = flagValue(fl)
	}
	return v
}

// mergeValues overlays the flags the user set on base, for edits that keep
// unset fields.
func mergeValues(base form.Values, cmd *cobra.Command, f *form.Form) form.Values {
	for k, v := range formValues(cmd, f) {
		base[k] = v
	}
	return base
}

func flagValue(fl *pflag.Flag) string {
	if fl.Value.Type() == "bool" {
		b, _ := strconv.ParseBool(fl.Value.String())
		return strconv.FormatBool(b)
	}
	return fl.Value.String()
}

// printFormErrors lists validation failures per field.
func printFormErrors(cmd *cobra.Command, f *form.Form, errs *form.Errors) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%s: please fix the following\n", f.Title)
	for _, name := range errs.Fields() {
		fmt.Fprintf(w, "  --%-18s %s\n", flagName(name), errs.Get(name))
	}
}

// failForm reports validation errors field by field and anything else like
// fail.
func (a *app) failForm(cmd *cobra.Command, f *form.Form, msg string, err error) {
	var errs *form.Errors
	if errors.As(err, &errs) {
		printFormErrors(cmd, f, errs)
		a.Close()
		os.Exit(1)
	}
	a.fail(msg, err)
}
