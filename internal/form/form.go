// Package form holds the declarative field registrations of every entity
// form and a generic controller that turns raw input into a validated
// request payload.
package form

import (
	"strings"
)

// Kind tells a renderer which input to draw.
type Kind int

const (
	Text Kind = iota
	TextArea
	Date
	Checkbox
	Select
	Number
	File
)

// Values is raw user input keyed by field name.
type Values map[string]string

// Bool reads a checkbox value.
func (v Values) Bool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(v[name])) {
	case "1", "true", "on", "yes", "y":
		return true
	}
	return false
}

// Field is one registered input.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	Options     []string
	Placeholder string
	// DisabledWhen, if set, disables the field for the given input. A
	// disabled field is neither required nor submitted.
	DisabledWhen func(Values) bool
}

// Form is an ordered set of fields.
type Form struct {
	Title  string
	fields []Field
	index  map[string]int
}

func New(title string) *Form {
	return &Form{Title: title, index: make(map[string]int)}
}

// Register adds a field. Registering a name twice replaces the earlier field.
func (f *Form) Register(field Field) *Form {
	if field.Label == "" {
		field.Label = field.Name
	}
	if i, ok := f.index[field.Name]; ok {
		f.fields[i] = field
		return f
	}
	f.index[field.Name] = len(f.fields)
	f.fields = append(f.fields, field)
	return f
}

func (f *Form) Fields() []Field {
	return f.fields
}

func (f *Form) Field(name string) (Field, bool) {
	i, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[i], true
}

// Enabled reports whether name is an active field for v.
func (f *Form) Enabled(name string, v Values) bool {
	field, ok := f.Field(name)
	if !ok {
		return false
	}
	return field.DisabledWhen == nil || !field.DisabledWhen(v)
}

// Active returns v restricted to registered, enabled fields.
func (f *Form) Active(v Values) Values {
	out := make(Values, len(v))
	for _, field := range f.fields {
		if !f.Enabled(field.Name, v) {
			continue
		}
		if val, ok := v[field.Name]; ok {
			out[field.Name] = val
		}
	}
	return out
}

func (f *Form) label(name string) string {
	if field, ok := f.Field(name); ok {
		return field.Label
	}
	return name
}

// whenChecked disables a field while the named checkbox is ticked.
func whenChecked(name string) func(Values) bool {
	return func(v Values) bool { return v.Bool(name) }
}

// splitList parses a comma separated input into trimmed, non-empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
