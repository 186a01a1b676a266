package api

import (
	"net/url"
	"strconv"
)

// Query builds query strings, dropping empty values so the server applies its
// defaults. Encoding sorts by key.
type Query struct {
	v url.Values
}

func NewQuery() *Query {
	return &Query{v: url.Values{}}
}

func (q *Query) Set(key, value string) *Query {
	if value != "" {
		q.v.Set(key, value)
	}
	return q
}

func (q *Query) SetInt(key string, n int) *Query {
	if n > 0 {
		q.v.Set(key, strconv.Itoa(n))
	}
	return q
}

func (q *Query) Values() url.Values {
	return q.v
}

func (q *Query) Encode() string {
	return q.v.Encode()
}

// PageQuery is the common search/page/limit triple of list endpoints.
type PageQuery struct {
	Search string
	Page   int
	Limit  int
}

func (p PageQuery) Values() url.Values {
	return NewQuery().
		Set("search", p.Search).
		SetInt("page", p.Page).
		SetInt("limit", p.Limit).
		Values()
}
