// Package output produces deterministic JSON for analysis reports.
// Identical report content must encode to byte-identical output so
// reports can be diffed and snapshot-tested: object keys are sorted,
// floats are rounded to six decimal places, and nil fields are omitted.
package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Encode renders v as compact deterministic JSON.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalize(v)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeIndented renders v as indented deterministic JSON, the form
// written to report files.
func EncodeIndented(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(normalize(v)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalize rewrites v into plain maps, slices, and rounded scalars.
// encoding/json sorts map keys, so converting structs to maps is what
// buys the stable key order.
func normalize(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Slice, reflect.Array:
		return normalizeSlice(val)
	case reflect.Struct:
		return normalizeStruct(val)
	case reflect.Float32, reflect.Float64:
		return RoundFloat(val.Float())
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return normalize(val.Interface())
	default:
		return val.Interface()
	}
}

func normalizeMap(val reflect.Value) interface{} {
	if val.IsNil() {
		return nil
	}
	result := make(map[string]interface{}, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		if v := normalize(iter.Value().Interface()); v != nil {
			result[iter.Key().String()] = v
		}
	}
	return result
}

func normalizeSlice(val reflect.Value) interface{} {
	if val.Kind() == reflect.Slice && val.IsNil() {
		return []interface{}{}
	}
	result := make([]interface{}, val.Len())
	for i := range result {
		result[i] = normalize(val.Index(i).Interface())
	}
	return result
}

func normalizeStruct(val reflect.Value) interface{} {
	typ := val.Type()
	result := make(map[string]interface{}, val.NumField())
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty := jsonTag(field.Tag.Get("json"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		v := normalize(val.Field(i).Interface())
		if v == nil || (omitEmpty && isEmpty(v)) {
			continue
		}
		result[name] = v
	}
	return result
}

func jsonTag(tag string) (name string, omitEmpty bool) {
	name, rest, _ := strings.Cut(tag, ",")
	return name, strings.Contains(rest, "omitempty")
}

func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case uint64:
		return val == 0
	case float64:
		return val == 0
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	}
	return false
}
