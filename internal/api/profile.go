package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobdesk/internal/model"
)

// Section is CRUD over one list of profile entries.
type Section[T any] struct {
	c    *Client
	path string
}

func newSection[T any](c *Client, path string) *Section[T] {
	return &Section[T]{c: c, path: path}
}

func (s *Section[T]) List(ctx context.Context) ([]T, error) {
	return get[[]T](ctx, s.c, s.path, nil)
}

func (s *Section[T]) Create(ctx context.Context, v T) (T, error) {
	normalize(&v)
	return post[T](ctx, s.c, s.path, v)
}

func (s *Section[T]) Update(ctx context.Context, id string, v T) (T, error) {
	normalize(&v)
	return put[T](ctx, s.c, s.path+pathf("/%s", id), v)
}

func (s *Section[T]) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, s.path+pathf("/%s", id))
}

// normalize drops the end date of entries marked current.
func normalize(v any) {
	if n, ok := v.(interface{ Normalize() }); ok {
		n.Normalize()
	}
}

type ProfileService struct {
	Education  *Section[model.Education]
	Experience *Section[model.WorkExperience]
	Projects   *Section[model.Project]
	Skills     *Section[model.Skill]

	c *Client
}

func NewProfileService(c *Client) *ProfileService {
	return &ProfileService{
		Education:  newSection[model.Education](c, "/profile/education"),
		Experience: newSection[model.WorkExperience](c, "/profile/experience"),
		Projects:   newSection[model.Project](c, "/profile/project"),
		Skills:     newSection[model.Skill](c, "/profile/skill"),
		c:          c,
	}
}

func (s *ProfileService) ListResumes(ctx context.Context) ([]model.Resume, error) {
	return get[[]model.Resume](ctx, s.c, "/profile/resume", nil)
}

func (s *ProfileService) UploadResume(ctx context.Context, title string, f File) (model.Resume, error) {
	return upload[model.Resume](ctx, s.c, "/profile/resume", "file", f, map[string]string{"title": title})
}

func (s *ProfileService) DeleteResume(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/profile/resume/%s", id))
}

func (s *ProfileService) SetDefaultResume(ctx context.Context, id string) error {
	return exec(ctx, s.c, http.MethodPut, pathf("/profile/resume/%s/default", id), nil)
}

// Load fetches every profile section for the signed-in user.
func (s *ProfileService) Load(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	var err error
	if p.User, err = get[model.User](ctx, s.c, "/users/me", nil); err != nil {
		return p, fmt.Errorf("load user: %w", err)
	}
	if p.Education, err = s.Education.List(ctx); err != nil {
		return p, fmt.Errorf("load education: %w", err)
	}
	if p.Experience, err = s.Experience.List(ctx); err != nil {
		return p, fmt.Errorf("load experience: %w", err)
	}
	if p.Projects, err = s.Projects.List(ctx); err != nil {
		return p, fmt.Errorf("load projects: %w", err)
	}
	if p.Skills, err = s.Skills.List(ctx); err != nil {
		return p, fmt.Errorf("load skills: %w", err)
	}
	if p.Resumes, err = s.ListResumes(ctx); err != nil {
		return p, fmt.Errorf("load resumes: %w", err)
	}
	return p, nil
}
