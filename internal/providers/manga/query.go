package manga

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is one query parameter. Value is a scalar, a []string serialized as
// repeated name[]=v pairs, or an Object serialized as name[key]=value pairs.
type Param struct {
	Key   string
	Value any
}

// Field is one entry of a nested Object parameter.
type Field struct {
	Key   string
	Value string
}

// Object is an ordered nested parameter such as order[updatedAt]=desc.
type Object []Field

// Params keeps parameters in insertion order.
type Params []Param

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Order builds the order object for a single field.
func Order(field, direction string) Object {
	return Object{{Key: field, Value: direction}}
}

func (params Params) Add(key string, value any) Params {
	return append(params, Param{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (params Params) Get(key string) (any, bool) {
	for _, param := range params {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// Encode serializes the parameters without a leading '?'. Bracket suffixes
// stay literal; values are query-escaped.
func (params Params) Encode() string {
	var builder strings.Builder
	write := func(key, value string) {
		if builder.Len() > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(value))
	}

	for _, param := range params {
		switch value := param.Value.(type) {
		case nil:
			continue
		case []string:
			for _, item := range value {
				write(param.Key+"[]", item)
			}
		case Object:
			for _, field := range value {
				write(param.Key+"["+field.Key+"]", field.Value)
			}
		default:
			write(param.Key, scalarString(value))
		}
	}

	return builder.String()
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
