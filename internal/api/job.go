package api

import (
	"context"
	"net/http"

	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
)

type JobService struct {
	c *Client
}

func NewJobService(c *Client) *JobService {
	return &JobService{c: c}
}

func (s *JobService) List(ctx context.Context, q listing.JobQuery) (model.Page[model.Job], error) {
	return get[model.Page[model.Job]](ctx, s.c, "/jobs", q.Values())
}

func (s *JobService) Get(ctx context.Context, id string) (model.Job, error) {
	return get[model.Job](ctx, s.c, pathf("/jobs/%s", id), nil)
}

func (s *JobService) Create(ctx context.Context, j model.Job) (model.Job, error) {
	return post[model.Job](ctx, s.c, "/jobs", j)
}

func (s *JobService) Update(ctx context.Context, id string, j model.Job) (model.Job, error) {
	return put[model.Job](ctx, s.c, pathf("/jobs/%s", id), j)
}

func (s *JobService) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/jobs/%s", id))
}

func (s *JobService) Save(ctx context.Context, id string) error {
	return exec(ctx, s.c, http.MethodPost, pathf("/jobs/%s/save", id), nil)
}

func (s *JobService) Unsave(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/jobs/%s/save", id))
}

func (s *JobService) Saved(ctx context.Context) ([]model.Job, error) {
	return get[[]model.Job](ctx, s.c, "/jobs/saved", nil)
}
