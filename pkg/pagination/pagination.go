// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads page parameters and builds the list metadata of
// the ops API list endpoints (run history, competitor registry).
package pagination

import (
	"net/http"

	"github.com/taibuivan/channelscope/pkg/convert"
)

// # Limits

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// # Request Parameters

// Params is a 1-indexed page of Limit items.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads "page" and "limit". Unparseable or non-positive values
// take the defaults and a limit above [MaxLimit] is clamped to it.
func FromRequest(request *http.Request) Params {
	values := request.URL.Query()

	page := convert.ToIntD(values.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := convert.ToIntD(values.Get("limit"), DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset is the number of items before the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Bounds returns the half-open window of the page over total in-memory items.
// A page past the end yields an empty window.
func (p Params) Bounds(total int) (start, end int) {
	start = min(p.Offset(), total)
	end = min(start+max(p.Limit, 0), total)
	return start, end
}

// Meta describes the page within total items.
func (p Params) Meta(total int) Meta {
	return NewMeta(p.Page, p.Limit, total)
}

// # Response Metadata

// Meta is the "meta" object of a paginated response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives TotalPages from total and limit.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}
