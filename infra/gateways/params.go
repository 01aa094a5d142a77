package gateways

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// toInt64 accepts the numeric shapes a decoded JSON body can carry.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// 1000.0 and 1e3 are still whole amounts.
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return wholeFloat(f)
	case float64:
		return wholeFloat(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func formValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// flatten expands nested objects and arrays into Stripe's bracketed form keys,
// e.g. shipping[address][city].
func flatten(key string, v any, add func(key, value string)) {
	switch x := v.(type) {
	case map[string]any:
		for k, inner := range x {
			flatten(key+"["+k+"]", inner, add)
		}
	case []any:
		for i, inner := range x {
			flatten(key+"["+strconv.Itoa(i)+"]", inner, add)
		}
	default:
		add(key, formValue(v))
	}
}
