// Package query renders typed filter predicates into the repository
// service's query-phrase syntax.
package query

import (
	"fmt"
	"strings"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpStartsWith Operator = "startsWith"
	OpLike       Operator = "like"
	OpIn         Operator = "in"
	OpEq         Operator = "eq"
	OpContains   Operator = "contains"
	OpNe         Operator = "ne"
)

// BuildFilter renders a filter phrase of the form "op(key,values)".
//
// It returns "" (the no-filter sentinel) when values is nil, an empty string,
// or an empty slice. String values are single-quoted; a slice of strings is
// rendered as a quoted comma-joined list; a slice of non-strings is rendered
// comma-joined inside one pair of quotes; scalar non-strings are rendered
// unquoted.
func BuildFilter(op Operator, key string, values any) string {
	flat, ok := flatten(values)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s(%s,%s)", op, key, flat)
}

func flatten(values any) (string, bool) {
	switch v := values.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return "'" + v + "'", true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return "'" + strings.Join(v, "','") + "'", true
	case []int:
		if len(v) == 0 {
			return "", false
		}
		return "'" + joinScalars(v) + "'", true
	case []int64:
		if len(v) == 0 {
			return "", false
		}
		return "'" + joinScalars(v) + "'", true
	case []bool:
		if len(v) == 0 {
			return "", false
		}
		return "'" + joinScalars(v) + "'", true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func joinScalars[T any](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ",")
}
