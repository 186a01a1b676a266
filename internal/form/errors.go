package form

import (
	"strings"

	"github.com/amishk599/jobdesk/internal/model"
)

// Errors collects per-field validation messages. It matches
// model.ErrValidation with errors.Is.
type Errors struct {
	messages map[string]string
	order    []string
}

// Add records msg for field unless the field already has one.
func (e *Errors) Add(field, msg string) {
	if e.messages == nil {
		e.messages = make(map[string]string)
	}
	if _, ok := e.messages[field]; ok {
		return
	}
	e.messages[field] = msg
	e.order = append(e.order, field)
}

// Get returns the message for field, or "".
func (e *Errors) Get(field string) string {
	return e.messages[field]
}

// Fields lists the failing fields in the order they were reported.
func (e *Errors) Fields() []string {
	return e.order
}

func (e *Errors) Len() int {
	return len(e.order)
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.messages[f])
	}
	return strings.Join(msgs, "; ")
}

func (e *Errors) Is(target error) bool {
	return target == model.ErrValidation
}

// orNil returns e as an error only if it holds messages.
func (e *Errors) orNil() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}
