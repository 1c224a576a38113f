package client

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"time"

	"github.com/google/go-querystring/query"
)

// EncodeQuery serializes q into a URL query string.
//
// q may be nil, url.Values, map[string]string, map[string]any, or a struct
// (or pointer to struct) tagged for go-querystring. Nil values, nil pointers
// and empty strings are left out of the result.
func EncodeQuery(q any) (string, error) {
	switch v := q.(type) {
	case nil:
		return "", nil
	case url.Values:
		return v.Encode(), nil
	case map[string]string:
		values := url.Values{}
		for k, s := range v {
			if s != "" {
				values.Set(k, s)
			}
		}
		return values.Encode(), nil
	case map[string]any:
		return encodeMap(v), nil
	}

	rv := reflect.ValueOf(q)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return "", nil
	}
	values, err := query.Values(q)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	return values.Encode(), nil
}

func encodeMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		rv, ok := deref(m[k])
		if !ok {
			continue
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				if ev, ok := deref(rv.Index(i).Interface()); ok {
					values.Add(k, formatValue(ev))
				}
			}
			continue
		}
		values.Set(k, formatValue(rv))
	}
	return values.Encode()
}

// deref follows pointers and reports false for values that must be omitted.
func deref(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String && rv.Len() == 0 {
		return reflect.Value{}, false
	}
	if z, ok := rv.Interface().(interface{ IsZero() bool }); ok && z.IsZero() {
		return reflect.Value{}, false
	}
	return rv, true
}

func formatValue(rv reflect.Value) string {
	if t, ok := rv.Interface().(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(rv.Interface())
}
