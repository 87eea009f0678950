// Package filter evaluates field/operator/value predicates against in-memory
// leads and todos.
//
// Two evaluators exist and are kept separate on purpose. Apply is the general
// one used by list views. TodoFilter is the todo list's own evaluator: it
// treats leadId as "belongs to the active lead" when an active lead is set,
// compares strings case-insensitively and understands dates.
package filter

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Operator is a comparison applied by an Option.
type Operator string

const (
	OpEqual    Operator = "="
	OpContains Operator = "contains"
	OpGTE      Operator = ">="
	OpLTE      Operator = "<="
)

// Operators lists every supported operator in display order.
var Operators = []Operator{OpEqual, OpContains, OpGTE, OpLTE}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case OpEqual, OpContains, OpGTE, OpLTE:
		return true
	}
	return false
}

// Option is a single predicate. Value is a string, a number or a []string.
type Option struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// String renders the option for status lines and filter chips.
func (o Option) String() string {
	switch v := Normalize(o.Value).(type) {
	case []string:
		return fmt.Sprintf("%s %s [%s]", o.Field, o.Operator, strings.Join(v, ", "))
	case float64:
		return fmt.Sprintf("%s %s %s", o.Field, o.Operator, strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Sprintf("%s %s %v", o.Field, o.Operator, v)
	}
}

// Fielder resolves a field by name. ok is false for unknown fields.
type Fielder interface {
	Field(name string) (value any, ok bool)
}

// Apply returns the items passing every option. An empty option list returns
// items unchanged. The input slice is never modified.
func Apply[T Fielder](items []T, opts []Option) []T {
	if len(opts) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Match(item, opts) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether item passes every option.
func Match(item Fielder, opts []Option) bool {
	for _, opt := range opts {
		if !matchOne(item, opt) {
			return false
		}
	}
	return true
}

func matchOne(item Fielder, opt Option) bool {
	raw, ok := item.Field(opt.Field)
	if !ok {
		return false
	}
	field := Normalize(raw)
	value := Normalize(opt.Value)

	if arr, isArr := field.([]string); isArr {
		return anyOf(arr, value, func(a, b any) bool { return reflect.DeepEqual(a, b) })
	}

	switch opt.Operator {
	case OpEqual:
		return reflect.DeepEqual(field, value)
	case OpContains:
		s, isStr := field.(string)
		if !isStr {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(toString(value)))
	case OpGTE, OpLTE:
		n, isNum := field.(float64)
		if !isNum {
			return false
		}
		want, ok := toNumber(value)
		if !ok {
			return false
		}
		if opt.Operator == OpGTE {
			return n >= want
		}
		return n <= want
	}
	return false
}

// anyOf applies array semantics: a value array passes when any element is in
// the field array; a scalar passes when the field array contains it.
func anyOf(field []string, value any, eq func(a, b any) bool) bool {
	wants, isArr := value.([]string)
	if !isArr {
		for _, f := range field {
			if eq(f, value) {
				return true
			}
		}
		return false
	}
	for _, w := range wants {
		for _, f := range field {
			if eq(f, w) {
				return true
			}
		}
	}
	return false
}

// Normalize converts every numeric kind to float64 and string slices (including
// the []any produced by decoding JSON) to []string. Other values are returned
// unchanged.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case []string:
		if x == nil {
			return []string{}
		}
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, toString(Normalize(e)))
		}
		return out
	}
	return v
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, ",")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
