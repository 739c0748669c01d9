package models

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is the page size the dashboard starts with when none is given.
const DefaultPageSize = 10

// PagedResult is the envelope every paginated list endpoint returns.
// Count is the total across all pages and does not depend on the page size.
type PagedResult[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// SinglePage wraps a bare sequence into a one-page envelope with no navigation.
func SinglePage[T any](items []T) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Count:   len(items),
		Results: items,
	}
}

// HasNext reports whether the server announced a next page.
// The "next" control is enabled exactly when this is true.
func (p PagedResult[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether the server announced a previous page.
func (p PagedResult[T]) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}

// LastPage returns the index of the last page for count items split in pages of
// pageSize (1-based); zero items give zero pages. A non-positive pageSize falls
// back to DefaultPageSize.
func LastPage(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// PageLen returns how many results the given 1-based page holds.
func PageLen(count, pageSize, page int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	last := LastPage(count, pageSize)
	if page < 1 || page > last {
		return 0
	}
	if page < last {
		return pageSize
	}
	return count - (last-1)*pageSize
}

// Page holds the pagination part shared by every list filter.
// Zero values mean "not set" and are left out of the request.
type Page struct {
	Page     int
	PageSize int
	Search   string
}

func (p Page) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// UserFilters selects a page of users. Search matches name, email or phone on the server.
type UserFilters struct {
	Page
}

// Values returns the normalized query parameters.
func (f UserFilters) Values() url.Values { return f.values() }

// RechargeFilters selects a page of recharges. Search matches the payment reference.
type RechargeFilters struct {
	Page
}

// Values returns the normalized query parameters.
func (f RechargeFilters) Values() url.Values { return f.values() }

// PlatformFilters selects platforms, optionally restricted to enabled or disabled ones.
type PlatformFilters struct {
	Page
	Enable *bool
}

// Values returns the normalized query parameters.
func (f PlatformFilters) Values() url.Values {
	v := f.values()
	if f.Enable != nil {
		v.Set("enable", strconv.FormatBool(*f.Enable))
	}
	return v
}
