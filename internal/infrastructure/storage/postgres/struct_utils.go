package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns collects column names from a struct's "db" tags,
// walking embedded structs recursively. Repositories call it once at
// construction, so the reflection walk is not on any hot path.
//
//	columns := ExtractDBColumns[product.Product]()
//	// ["id", "tenant_id", "company_id", "code", "name", "sku", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// typeLayout caches which fields of a struct carry db tags and which
// are embedded, so StructToMap walks tags once per type.
type typeLayout struct {
	tagged   []taggedField
	embedded []int
}

type taggedField struct {
	index int
	col   string
}

var layoutCache sync.Map // map[reflect.Type]*typeLayout

func layoutOf(t reflect.Type) *typeLayout {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := layoutCache.Load(t); ok {
		return cached.(*typeLayout)
	}

	layout := &typeLayout{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				layout.embedded = append(layout.embedded, i)
				continue
			}
			if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
				layout.tagged = append(layout.tagged, taggedField{index: i, col: tag})
			}
		}
	}

	layoutCache.Store(t, layout)
	return layout
}

// StructToMap converts a struct to a column->value map using "db" tags.
// Fields without a tag, or tagged "-", are skipped. Values from
// embedded structs are flattened into the same map.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	layout := layoutOf(rv.Type())
	res := make(map[string]any, len(layout.tagged))
	for _, f := range layout.tagged {
		res[f.col] = rv.Field(f.index).Interface()
	}
	for _, i := range layout.embedded {
		for col, val := range StructToMap(rv.Field(i).Interface()) {
			res[col] = val
		}
	}
	return res
}
