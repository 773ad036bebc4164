package listing

import (
	"net/url"
	"strconv"
)

// RequestQuery is the minimal query sent to the data source. Page and Limit
// are always set; Filters only carries non-empty values, keyed by request
// parameter name.
type RequestQuery struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// Offset returns the zero-based offset of the first row of the page
func (q RequestQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Filter returns a filter value, or "" when the filter is not set
func (q RequestQuery) Filter(name string) string {
	return q.Filters[name]
}

// Values encodes the query as request parameters
func (q RequestQuery) Values() url.Values {
	values := url.Values{}
	for name, value := range q.Filters {
		values.Set(name, value)
	}
	values.Set(ParamPage, strconv.Itoa(q.Page))
	values.Set(ParamLimit, strconv.Itoa(q.Limit))
	return values
}

// BuildQuery maps criteria to the request query, dropping empty filters
func BuildQuery(v View, c Criteria) RequestQuery {
	q := RequestQuery{
		Page:    c.Page,
		Limit:   c.Limit,
		Filters: make(map[string]string, 3),
	}

	if c.Search != "" {
		q.Filters[ParamSearch] = c.Search
	}
	if c.Type != "" {
		q.Filters[v.TypeParamName()] = c.Type
	}
	if c.Role != "" {
		q.Filters[v.RoleParamName()] = c.Role
	}

	return q
}

// EncodeURL maps criteria to page URL parameters. Besides empty filters it
// drops every value equal to its default, so Parse(EncodeURL(c)) == c.
func EncodeURL(v View, c Criteria) url.Values {
	values := url.Values{}

	if c.Search != "" {
		values.Set(ParamSearch, c.Search)
	}
	if c.Type != "" && c.Type != v.DefaultType {
		values.Set(v.TypeParamName(), c.Type)
	}
	if c.Role != "" {
		values.Set(v.RoleParamName(), c.Role)
	}
	if c.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(c.Page))
	}
	if c.Limit != v.DefaultLimit {
		values.Set(ParamLimit, strconv.Itoa(c.Limit))
	}

	return values
}
