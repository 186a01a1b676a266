package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/amishk599/jobdesk/internal/model"
)

type UserService struct {
	c *Client
}

func NewUserService(c *Client) *UserService {
	return &UserService{c: c}
}

// UpdateUserRequest carries the editable account fields.
type UpdateUserRequest struct {
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	Mobile         string               `json:"mobile,omitempty"`
	Headline       string               `json:"headline,omitempty"`
	Location       string               `json:"location,omitempty"`
	ExperienceType model.ExperienceType `json:"experience_type,omitempty"`
}

// UserQuery filters the admin user list.
type UserQuery struct {
	Role model.Role
	PageQuery
}

func (q UserQuery) Values() url.Values {
	v := q.PageQuery.Values()
	if q.Role != "" {
		v.Set("role", string(q.Role))
	}
	return v
}

func (s *UserService) Me(ctx context.Context) (model.User, error) {
	return get[model.User](ctx, s.c, "/users/me", nil)
}

func (s *UserService) UpdateMe(ctx context.Context, req UpdateUserRequest) (model.User, error) {
	return put[model.User](ctx, s.c, "/users/me", req)
}

func (s *UserService) UploadAvatar(ctx context.Context, f File) (model.User, error) {
	return upload[model.User](ctx, s.c, "/users/me/avatar", "file", f, nil)
}

func (s *UserService) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return exec(ctx, s.c, http.MethodPut, "/users/me/password", body)
}

// List is admin only.
func (s *UserService) List(ctx context.Context, q UserQuery) (model.Page[model.User], error) {
	return get[model.Page[model.User]](ctx, s.c, "/users", q.Values())
}

// Delete is admin only.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/users/%s", id))
}
