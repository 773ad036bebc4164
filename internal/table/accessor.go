package table

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

type accessorKind uint8

const (
	accessorUnset accessorKind = iota
	accessorPath
	accessorFunc
)

// Accessor reads a column value out of a row. It is either a dotted field
// path or a function; build one with Path or Func.
type Accessor[T any] struct {
	kind accessorKind
	path []string
	fn   func(T) any
}

// Path reads a dotted path such as "author.name". Struct fields match their
// json name first, then their Go name case-insensitively; maps with string
// keys are indexed directly.
func Path[T any](path string) Accessor[T] {
	return Accessor[T]{kind: accessorPath, path: strings.Split(path, ".")}
}

// Func reads a value by calling fn with the row
func Func[T any](fn func(T) any) Accessor[T] {
	return Accessor[T]{kind: accessorFunc, fn: fn}
}

// Resolve returns the column value of row as display text. Missing or nil
// intermediate values resolve to "".
func (a Accessor[T]) Resolve(row T) string {
	switch a.kind {
	case accessorPath:
		v, ok := walk(reflect.ValueOf(row), a.path)
		if !ok {
			return ""
		}
		return stringify(v)
	case accessorFunc:
		if a.fn == nil {
			return ""
		}
		return stringify(a.fn(row))
	case accessorUnset:
		return ""
	default:
		panic(fmt.Sprintf("table: unknown accessor kind %d", a.kind))
	}
}

func walk(v reflect.Value, path []string) (any, bool) {
	for _, key := range path {
		v = indirect(v)
		if !v.IsValid() {
			return nil, false
		}

		switch v.Kind() {
		case reflect.Struct:
			field, ok := fieldByKey(v, key)
			if !ok {
				return nil, false
			}
			v = field
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			item := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
			if !item.IsValid() {
				return nil, false
			}
			v = item
		default:
			return nil, false
		}
	}

	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldByKey(v reflect.Value, key string) (reflect.Value, bool) {
	fields := reflect.VisibleFields(v.Type())

	match := func(f reflect.StructField) bool {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name == key
	}
	for pass := 0; pass < 2; pass++ {
		for _, f := range fields {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			if pass == 0 && !match(f) {
				continue
			}
			if pass == 1 && !strings.EqualFold(f.Name, key) {
				continue
			}
			field, err := v.FieldByIndexErr(f.Index)
			if err != nil {
				// nil embedded pointer
				return reflect.Value{}, false
			}
			return field, true
		}
	}
	return reflect.Value{}, false
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
