package api

import (
	"context"

	"github.com/amishk599/jobdesk/internal/model"
)

type CompanyService struct {
	c *Client
}

func NewCompanyService(c *Client) *CompanyService {
	return &CompanyService{c: c}
}

func (s *CompanyService) List(ctx context.Context, q PageQuery) (model.Page[model.Company], error) {
	return get[model.Page[model.Company]](ctx, s.c, "/companies", q.Values())
}

func (s *CompanyService) Get(ctx context.Context, id string) (model.Company, error) {
	return get[model.Company](ctx, s.c, pathf("/companies/%s", id), nil)
}

func (s *CompanyService) Create(ctx context.Context, c model.Company) (model.Company, error) {
	return post[model.Company](ctx, s.c, "/companies", c)
}

func (s *CompanyService) Update(ctx context.Context, id string, c model.Company) (model.Company, error) {
	return put[model.Company](ctx, s.c, pathf("/companies/%s", id), c)
}

func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/companies/%s", id))
}

func (s *CompanyService) UploadLogo(ctx context.Context, id string, f File) (model.Company, error) {
	return upload[model.Company](ctx, s.c, pathf("/companies/%s/logo", id), "file", f, nil)
}

// Verify marks a company as verified. Admin only.
func (s *CompanyService) Verify(ctx context.Context, id string) (model.Company, error) {
	return post[model.Company](ctx, s.c, pathf("/companies/%s/verify", id), nil)
}

// Jobs lists the open positions of one company.
func (s *CompanyService) Jobs(ctx context.Context, id string) ([]model.Job, error) {
	return get[[]model.Job](ctx, s.c, pathf("/companies/%s/jobs", id), nil)
}
