// Package listview holds the query state, fetch scheduling and mutation
// flow shared by every paginated table screen.
package listview

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// SortDirection orders a column ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

var (
	ErrUnknownFilter    = errors.New("listview: unknown filter")
	ErrUnknownSortField = errors.New("listview: unknown sort field")
	ErrInvalidPage      = errors.New("listview: page must not be negative")
	ErrInvalidPageSize  = errors.New("listview: page size not allowed")
)

// DefaultPageSizes are the page sizes offered by every table.
var DefaultPageSizes = []int{10, 25, 50}

// Options describe the columns and filters one screen understands.
type Options struct {
	PageSizes        []int
	DefaultPageSize  int
	SortFields       []string
	DefaultSort      string
	DefaultDirection SortDirection
	Filters          []string
}

func (o Options) pageSizes() []int {
	if len(o.PageSizes) == 0 {
		return DefaultPageSizes
	}
	return o.PageSizes
}

// Validate reports configuration mistakes.
func (o Options) Validate() error {
	if len(o.SortFields) == 0 {
		return errors.New("listview: at least one sort field required")
	}
	if o.DefaultSort != "" && !slices.Contains(o.SortFields, o.DefaultSort) {
		return fmt.Errorf("%w: default %q", ErrUnknownSortField, o.DefaultSort)
	}
	if o.DefaultPageSize != 0 && !slices.Contains(o.pageSizes(), o.DefaultPageSize) {
		return fmt.Errorf("%w: default %d", ErrInvalidPageSize, o.DefaultPageSize)
	}
	return nil
}

// Initial returns the state a freshly mounted screen starts from.
func (o Options) Initial() QueryState {
	size := o.DefaultPageSize
	if size == 0 {
		size = o.pageSizes()[0]
	}
	field := o.DefaultSort
	if field == "" && len(o.SortFields) > 0 {
		field = o.SortFields[0]
	}
	dir := o.DefaultDirection
	if dir == "" {
		dir = Ascending
	}
	return QueryState{PageSize: size, SortField: field, SortDirection: dir}
}

// PageSizeChoices exposes the allowed sizes for rendering.
func (o Options) PageSizeChoices() []int {
	return slices.Clone(o.pageSizes())
}

func (o Options) checkFilter(name string) error {
	if !slices.Contains(o.Filters, name) {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return nil
}

func (o Options) checkSortField(field string) error {
	if !slices.Contains(o.SortFields, field) {
		return fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
	return nil
}

func (o Options) checkPageSize(size int) error {
	if !slices.Contains(o.pageSizes(), size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	return nil
}

// QueryState is the full description of what one table is showing.
// Page is zero based.
type QueryState struct {
	Page          int
	PageSize      int
	SortField     string
	SortDirection SortDirection
	Search        string
	Filters       map[string]string
	EntityID      string
}

// Filter returns the value of a structured filter, empty when unset.
func (q QueryState) Filter(name string) string {
	return q.Filters[name]
}

// WithFilter sets or clears (empty value) a filter and returns to the first page.
func (q QueryState) WithFilter(name, value string) QueryState {
	next := q.clone()
	if value == "" {
		delete(next.Filters, name)
	} else {
		next.Filters[name] = value
	}
	next.Page = 0
	return next
}

// WithSearch replaces the free-text term and returns to the first page.
func (q QueryState) WithSearch(term string) QueryState {
	next := q.clone()
	next.Search = term
	next.Page = 0
	return next
}

// WithEntityID replaces the exact identifier filter and returns to the first page.
func (q QueryState) WithEntityID(id string) QueryState {
	next := q.clone()
	next.EntityID = strings.TrimSpace(id)
	next.Page = 0
	return next
}

// WithSort toggles the direction when field is already active and keeps the page.
// A different field is sorted ascending from the first page.
func (q QueryState) WithSort(field string) QueryState {
	next := q.clone()
	if field == q.SortField {
		next.SortDirection = q.SortDirection.Toggle()
		return next
	}
	next.SortField = field
	next.SortDirection = Ascending
	next.Page = 0
	return next
}

// WithPage moves to page without touching anything else.
func (q QueryState) WithPage(page int) QueryState {
	next := q.clone()
	next.Page = page
	return next
}

// WithPageSize changes the page size and returns to the first page.
func (q QueryState) WithPageSize(size int) QueryState {
	next := q.clone()
	next.PageSize = size
	next.Page = 0
	return next
}

// Absorb seeds the state from a navigation intent. Seeded values override
// whatever was set before.
func (q QueryState) Absorb(in Intent) QueryState {
	next := q.clone()
	if in.EntityID != "" {
		next.EntityID = strings.TrimSpace(in.EntityID)
	}
	if in.Search != "" {
		next.Search = in.Search
	}
	for name, value := range in.Filters {
		if value == "" {
			delete(next.Filters, name)
			continue
		}
		next.Filters[name] = value
	}
	next.Page = 0
	return next
}

// Offset is the index of the first row on the current page.
func (q QueryState) Offset() int {
	return q.Page * q.PageSize
}

// Equal compares two states field by field.
func (q QueryState) Equal(other QueryState) bool {
	if q.Page != other.Page || q.PageSize != other.PageSize ||
		q.SortField != other.SortField || q.SortDirection != other.SortDirection ||
		q.Search != other.Search || q.EntityID != other.EntityID {
		return false
	}
	if len(q.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range q.Filters {
		if ov, ok := other.Filters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (q QueryState) clone() QueryState {
	next := q
	next.Filters = make(map[string]string, len(q.Filters))
	maps.Copy(next.Filters, q.Filters)
	return next
}

// Query string keys used by Values and ParseState.
const (
	keyPage   = "page"
	keySize   = "size"
	keySort   = "sort"
	keyDir    = "dir"
	keySearch = "q"
	keyID     = "id"
)

// Values encodes the state for a page URL.
func (q QueryState) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set(keyPage, strconv.Itoa(q.Page))
	}
	values.Set(keySize, strconv.Itoa(q.PageSize))
	values.Set(keySort, q.SortField)
	values.Set(keyDir, string(q.SortDirection))
	if q.Search != "" {
		values.Set(keySearch, q.Search)
	}
	if q.EntityID != "" {
		values.Set(keyID, q.EntityID)
	}
	names := make([]string, 0, len(q.Filters))
	for name := range q.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values.Set(name, q.Filters[name])
	}
	return values
}

// StateKeys lists every query parameter Values may write for opts.
func StateKeys(opts Options) []string {
	keys := []string{keyPage, keySize, keySort, keyDir, keySearch, keyID}
	return append(keys, opts.Filters...)
}

// Encode is Values().Encode().
func (q QueryState) Encode() string {
	return q.Values().Encode()
}

// SortQuery is the encoded state after clicking the header of field.
func (q QueryState) SortQuery(field string) string {
	return q.WithSort(field).Encode()
}

// PageQuery is the encoded state for another page.
func (q QueryState) PageQuery(page int) string {
	return q.WithPage(page).Encode()
}

// SizeQuery is the encoded state for another page size.
func (q QueryState) SizeQuery(size int) string {
	return q.WithPageSize(size).Encode()
}

// ParseState decodes a page URL. Unknown or malformed values fall back to the defaults.
func ParseState(values url.Values, opts Options) QueryState {
	q := opts.Initial()
	q.Filters = map[string]string{}
	if field := values.Get(keySort); field != "" && opts.checkSortField(field) == nil {
		q.SortField = field
		q.SortDirection = Ascending
	}
	switch SortDirection(values.Get(keyDir)) {
	case Ascending:
		q.SortDirection = Ascending
	case Descending:
		q.SortDirection = Descending
	}
	if size, err := strconv.Atoi(values.Get(keySize)); err == nil && opts.checkPageSize(size) == nil {
		q.PageSize = size
	}
	if page, err := strconv.Atoi(values.Get(keyPage)); err == nil && page > 0 {
		q.Page = page
	}
	q.Search = strings.TrimSpace(values.Get(keySearch))
	q.EntityID = strings.TrimSpace(values.Get(keyID))
	for _, name := range opts.Filters {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			q.Filters[name] = v
		}
	}
	return q
}
