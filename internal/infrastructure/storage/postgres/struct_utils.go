package postgres

import (
	"reflect"
	"sync"
)

// Column mapping is derived from `db` struct tags. Embedded structs
// (entity.Catalog, entity.BaseRecord) are flattened in place; fields
// without a tag, or tagged "-", are skipped.

// ExtractDBColumns returns the column names of T in field declaration
// order. Called once per repository at construction.
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
		f := t.Field(i)
		if f.Anonymous {
			cols = append(cols, columnsOf(f.Type)...)
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// StructToMap runs on every insert and update, so the per-type field
// plan is computed once and cached.

var columnPlans sync.Map // reflect.Type -> *columnPlan

type columnPlan struct {
	tagged   []taggedField
	embedded []int
}

type taggedField struct {
	index  int
	column string
}

func planFor(t reflect.Type) *columnPlan {
	if cached, ok := columnPlans.Load(t); ok {
		return cached.(*columnPlan)
	}

	plan := &columnPlan{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			plan.embedded = append(plan.embedded, i)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		plan.tagged = append(plan.tagged, taggedField{index: i, column: tag})
	}

	columnPlans.Store(t, plan)
	return plan
}

// StructToMap flattens v into a column-to-value map keyed by "db" tags,
// feeding squirrel SetMap/Columns calls in the repositories.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	plan := planFor(rv.Type())

	out := make(map[string]any, len(plan.tagged))
	for _, f := range plan.tagged {
		out[f.column] = rv.Field(f.index).Interface()
	}
	for _, i := range plan.embedded {
		for col, val := range StructToMap(rv.Field(i).Interface()) {
			out[col] = val
		}
	}
	return out
}
