package view

import (
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ListPage is the common part of every table page.
type ListPage struct {
	Path       string
	State      listview.QueryState
	Options    listview.Options
	Pagination shared.Pagination
	Error      string
}

// NewListPage builds the table chrome for path.
func NewListPage(path string, state listview.QueryState, opts listview.Options, total int, fetchErr string) ListPage {
	return ListPage{
		Path:       path,
		State:      state,
		Options:    opts,
		Pagination: shared.NewPagination(state.Page, state.PageSize, total),
		Error:      fetchErr,
	}
}

// Link is path with the current state encoded.
func (p ListPage) Link() string {
	return p.Path + "?" + p.State.Encode()
}

// PageLink points at another page.
func (p ListPage) PageLink(page int) string {
	return p.Path + "?" + p.State.PageQuery(page)
}

// SizeLink points at the first page with another page size.
func (p ListPage) SizeLink(size int) string {
	return p.Path + "?" + p.State.SizeQuery(size)
}

// SortHeader is one clickable column heading.
type SortHeader struct {
	Label     string
	Href      string
	Active    bool
	Direction listview.SortDirection
}

// NewSortHeader builds the heading for field.
func NewSortHeader(p ListPage, field, label string) SortHeader {
	return SortHeader{
		Label:     label,
		Href:      p.Path + "?" + p.State.SortQuery(field),
		Active:    p.State.SortField == field,
		Direction: p.State.SortDirection,
	}
}

// IntentRedirect consumes intent parameters from the request URL. When any
// are present it returns the canonical table URL with the intent folded into
// the state and the intent parameters removed.
func IntentRedirect(r *http.Request, keys listview.IntentKeys, opts listview.Options) (string, bool) {
	src := listview.NewQueryIntent(r.URL.Query(), keys)
	if !src.Pending() {
		return "", false
	}
	in, _ := src.Take()
	rest := src.Remaining()
	state := listview.ParseState(rest, opts).Absorb(in)
	for _, k := range listview.StateKeys(opts) {
		rest.Del(k)
	}
	for k, v := range state.Values() {
		rest[k] = v
	}
	return r.URL.Path + "?" + rest.Encode(), true
}
