package api

import (
	"context"
	"fmt"

	"github.com/amishk599/jobdesk/internal/model"
)

type ApplicationService struct {
	c *Client
}

func NewApplicationService(c *Client) *ApplicationService {
	return &ApplicationService{c: c}
}

// ApplyRequest is a job seeker's application.
type ApplyRequest struct {
	ResumeID    string `json:"resume_id,omitempty"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

func (s *ApplicationService) Apply(ctx context.Context, jobID string, req ApplyRequest) (model.JobApplication, error) {
	return post[model.JobApplication](ctx, s.c, pathf("/jobs/%s/apply", jobID), req)
}

// Mine lists the signed-in job seeker's applications.
func (s *ApplicationService) Mine(ctx context.Context) ([]model.JobApplication, error) {
	return get[[]model.JobApplication](ctx, s.c, "/applications/me", nil)
}

// ForJob lists the applicants of one of the employer's jobs.
func (s *ApplicationService) ForJob(ctx context.Context, jobID string) ([]model.JobApplication, error) {
	return get[[]model.JobApplication](ctx, s.c, pathf("/jobs/%s/applications", jobID), nil)
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) (model.JobApplication, error) {
	if !status.Valid() {
		return model.JobApplication{}, fmt.Errorf("%w: unknown application status %q", model.ErrValidation, status)
	}
	body := map[string]model.ApplicationStatus{"status": status}
	return put[model.JobApplication](ctx, s.c, pathf("/applications/%s/status", id), body)
}

func (s *ApplicationService) Withdraw(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/applications/%s", id))
}
