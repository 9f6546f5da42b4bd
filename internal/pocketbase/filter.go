// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pocketbase

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// DateLayout is the datetime format PocketBase stores and filters with.
const DateLayout = "2006-01-02 15:04:05.000Z"

// Filter binds params to {:name} placeholders in expr, quoting and escaping
// each value so user input cannot change the expression.
func Filter(expr string, params map[string]any) string {
	if len(params) == 0 {
		return expr
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{:"+name+"}", formatValue(value))
	}
	return strings.NewReplacer(pairs...).Replace(expr)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(val)
	case string:
		return quote(val)
	case time.Time:
		return quote(val.UTC().Format(DateLayout))
	case fmt.Stringer:
		return quote(val.String())
	default:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.String {
			return quote(rv.String())
		}
		data, err := json.Marshal(val)
		if err != nil {
			return quote(fmt.Sprint(val))
		}
		return quote(string(data))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
