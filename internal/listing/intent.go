package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Intent parameters sent by the table controls
const (
	ParamOp    = "op"
	ParamQ     = "q"
	ParamField = "field"
	ParamValue = "value"
)

// Table control operations
const (
	OpRefresh = "refresh"
	OpSearch  = "search"
	OpClear   = "clear"
	OpFilter  = "filter"
	OpPage    = "page"
)

// ParseIntent turns the parameters of a table control request into a Patch.
// Unknown operations and fields yield an empty patch.
func ParseIntent(v View, values url.Values) Patch {
	switch strings.TrimSpace(values.Get(ParamOp)) {
	case OpSearch:
		q := values.Get(ParamQ)
		return Patch{Search: &q}
	case OpClear:
		empty := ""
		return Patch{Search: &empty}
	case OpFilter:
		field := values.Get(ParamField)
		value := values.Get(ParamValue)
		switch field {
		case v.TypeParamName():
			return Patch{Type: &value}
		case v.RoleParamName():
			return Patch{Role: &value}
		}
	case OpPage:
		if n, err := strconv.Atoi(values.Get(ParamPage)); err == nil {
			return Patch{Page: &n}
		}
	}
	return Patch{}
}

// IntentValues encodes a table control request for op
func IntentValues(op string, kv ...string) url.Values {
	values := url.Values{ParamOp: {op}}
	for i := 0; i+1 < len(kv); i += 2 {
		values.Set(kv[i], kv[i+1])
	}
	return values
}
