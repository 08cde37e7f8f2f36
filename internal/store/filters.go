package store

import (
	"fmt"
	"net/url"
	"strings"
)

// Helpers for the store's "operator.value" filter convention. They build
// parameter values only; encoding is left to url.Values.

// Eq builds an equality filter value, e.g. Eq("42") -> "eq.42".
func Eq(value string) string {
	return "eq." + value
}

// OrEq builds an or=() disjunction of equality filters on one field,
// e.g. OrEq("id", "a", "b") -> "(id.eq.a,id.eq.b)".
func OrEq(field string, values ...string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = field + ".eq." + v
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// OrILike builds an or=() disjunction of case-insensitive substring filters,
// e.g. OrILike("term", "title", "content") ->
// "(title.ilike.%term%,content.ilike.%term%)".
func OrILike(term string, fields ...string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ".ilike.%" + term + "%"
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Desc builds a descending order value, e.g. Desc("updated_at") ->
// "updated_at.desc".
func Desc(column string) string {
	return column + ".desc"
}

// Asc builds an ascending order value.
func Asc(column string) string {
	return column + ".asc"
}

// Params is a convenience constructor for a query parameter set.
func Params(pairs ...string) url.Values {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("store.Params: odd number of arguments (%d)", len(pairs)))
	}
	v := url.Values{}
	for i := 0; i < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}
