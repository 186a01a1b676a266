package api

import (
	"context"
	"net/http"

	"github.com/amishk599/jobdesk/internal/model"
)

type EventService struct {
	c *Client
}

func NewEventService(c *Client) *EventService {
	return &EventService{c: c}
}

func (s *EventService) List(ctx context.Context, q PageQuery) (model.Page[model.Event], error) {
	return get[model.Page[model.Event]](ctx, s.c, "/events", q.Values())
}

func (s *EventService) Get(ctx context.Context, id string) (model.Event, error) {
	return get[model.Event](ctx, s.c, pathf("/events/%s", id), nil)
}

func (s *EventService) Register(ctx context.Context, id string) error {
	return exec(ctx, s.c, http.MethodPost, pathf("/events/%s/register", id), nil)
}

func (s *EventService) Unregister(ctx context.Context, id string) error {
	return del(ctx, s.c, pathf("/events/%s/register", id))
}
