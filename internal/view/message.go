package view

import (
	"context"
	"errors"
	"strings"

	"github.com/amishk599/jobdesk/internal/model"
)

// UserMessage turns err into text fit for the screen. Validation failures
// and server messages are shown as they are; anything else falls back.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, model.ErrValidation) {
		return strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond. Please try again."
	case errors.Is(err, model.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, model.ErrForbidden):
		return "You don't have permission to do that."
	}
	return fallback
}
