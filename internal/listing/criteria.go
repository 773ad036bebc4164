// Package listing holds the filter, paging and query state of a list view and
// keeps it in sync with the page URL.
package listing

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// URL and request parameter names shared by every view
const (
	ParamSearch = "search"
	ParamPage   = "page"
	ParamLimit  = "limit"

	defaultTypeParam = "type"
	defaultRoleParam = "role"
)

var validate = validator.New()

// Criteria is the current search, filter and paging state of one list view
type Criteria struct {
	Search string
	Type   string
	Role   string
	Page   int
	Limit  int
}

// View describes one list view: which filters it accepts and its paging defaults.
// An empty Types or Roles slice disables that filter.
type View struct {
	Name         string   `validate:"required"`
	TypeParam    string   `validate:"omitempty,alphanum"`
	RoleParam    string   `validate:"omitempty,alphanum"`
	Types        []string `validate:"dive,required"`
	DefaultType  string
	Roles        []string `validate:"dive,required"`
	DefaultLimit int      `validate:"gte=1"`
	MaxLimit     int      `validate:"omitempty,gtefield=DefaultLimit"`
}

// Validate checks the view definition itself
func (v View) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid view %q: %w", v.Name, err)
	}
	if v.DefaultType != "" && !slices.Contains(v.Types, v.DefaultType) {
		return fmt.Errorf("invalid view %q: %w", v.Name, errors.New("default type is not one of the view types"))
	}
	return nil
}

// TypeParamName returns the URL parameter carrying the type filter
func (v View) TypeParamName() string {
	if v.TypeParam == "" {
		return defaultTypeParam
	}
	return v.TypeParam
}

// RoleParamName returns the URL parameter carrying the role filter
func (v View) RoleParamName() string {
	if v.RoleParam == "" {
		return defaultRoleParam
	}
	return v.RoleParam
}

// Defaults returns the criteria of a view with nothing selected
func (v View) Defaults() Criteria {
	return Criteria{
		Type:  v.DefaultType,
		Page:  1,
		Limit: v.DefaultLimit,
	}
}

// Parse reads criteria from URL query values. Malformed or unknown values
// fall back to the view defaults; it never fails.
func Parse(v View, values url.Values) Criteria {
	c := v.Defaults()

	c.Search = strings.TrimSpace(values.Get(ParamSearch))
	c.Type = v.normalizeType(values.Get(v.TypeParamName()))
	c.Role = v.normalizeRole(values.Get(v.RoleParamName()))

	if n, ok := parsePositive(values.Get(ParamPage)); ok {
		c.Page = n
	}
	if n, ok := parsePositive(values.Get(ParamLimit)); ok {
		c.Limit = v.normalizeLimit(n)
	}

	return c
}

// Normalize applies the same fallbacks as Parse to an existing Criteria
func (v View) Normalize(c Criteria) Criteria {
	c.Search = strings.TrimSpace(c.Search)
	c.Type = v.normalizeType(c.Type)
	c.Role = v.normalizeRole(c.Role)
	c.Page = normalizePage(c.Page)
	c.Limit = v.normalizeLimit(c.Limit)
	return c
}

func (v View) normalizeType(value string) string {
	value = strings.TrimSpace(value)
	if len(v.Types) == 0 {
		return v.DefaultType
	}
	if slices.Contains(v.Types, value) {
		return value
	}
	return v.DefaultType
}

func (v View) normalizeRole(value string) string {
	value = strings.TrimSpace(value)
	if slices.Contains(v.Roles, value) {
		return value
	}
	return ""
}

func (v View) normalizeLimit(n int) int {
	tag := "min=1"
	if v.MaxLimit > 0 {
		tag = fmt.Sprintf("min=1,max=%d", v.MaxLimit)
	}
	if err := validate.Var(n, tag); err != nil {
		return v.DefaultLimit
	}
	return n
}

func normalizePage(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func parsePositive(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if err := validate.Var(n, "min=1"); err != nil {
		return 0, false
	}
	return n, true
}
