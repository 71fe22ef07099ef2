package netsync

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// QueryParams carries the standard list parameters of every backend module:
// pagination (page, page_size), ordering (leading "-" means descending),
// search, the is_active filter, and module-specific filters.
type QueryParams struct {
	Page     int
	PageSize int
	Ordering string
	Search   string
	IsActive *bool
	Filters  map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets the page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithOrdering sets the ordering field; prefix with "-" for descending.
func (q *QueryParams) WithOrdering(field string) *QueryParams {
	q.Ordering = field

	return q
}

// WithSearch sets the free-text search term.
func (q *QueryParams) WithSearch(term string) *QueryParams {
	q.Search = term

	return q
}

// WithIsActive filters by active state.
func (q *QueryParams) WithIsActive(active bool) *QueryParams {
	q.IsActive = &active

	return q
}

// WithFilter appends values to a module-specific filter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// ToValues converts the params to URL query values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}

	if q.Ordering != "" {
		values.Set("ordering", q.Ordering)
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if q.IsActive != nil {
		values.Set("is_active", strconv.FormatBool(*q.IsActive))
	}

	for key, vals := range q.Filters {
		values.Set(key, strings.Join(vals, ","))
	}

	return values
}

// CanonicalMap flattens the params into a deterministic map for cache key
// construction. Identical params always serialize identically.
func (q *QueryParams) CanonicalMap() map[string]string {
	if q == nil {
		return nil
	}

	flat := make(map[string]string)

	for key, vals := range q.ToValues() {
		sorted := append([]string(nil), vals...)
		sort.Strings(sorted)
		flat[key] = strings.Join(sorted, ",")
	}

	if len(flat) == 0 {
		return nil
	}

	return flat
}
