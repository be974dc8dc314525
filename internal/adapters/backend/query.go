package backend

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Query is an insertion-ordered query string builder. Set drops nil,
// nil-pointer and empty-string values so optional filters vanish from the URL.
type Query struct {
	keys []string
	vals map[string]string
}

func NewQuery() *Query { return &Query{vals: map[string]string{}} }

func (q *Query) Set(key string, v any) *Query {
	s, ok := stringify(v)
	if !ok || s == "" {
		return q
	}
	if _, seen := q.vals[key]; !seen {
		q.keys = append(q.keys, key)
	}
	q.vals[key] = s
	return q
}

// Get returns the retained value for key.
func (q *Query) Get(key string) (string, bool) {
	v, ok := q.vals[key]
	return v, ok
}

func (q *Query) Len() int { return len(q.keys) }

// Encode renders "?k=v&..." or "" when nothing was retained.
func (q *Query) Encode() string {
	if q == nil || len(q.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range q.keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.vals[k]))
	}
	return b.String()
}

func stringify(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return fmt.Sprint(rv.Interface()), true
}
