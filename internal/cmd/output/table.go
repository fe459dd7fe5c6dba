package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table is a rendered table. Align holds one alignment per column and may
// be empty.
type Table struct {
	Headers []string
	Rows    [][]string
	Align   []tw.Align
}

// writeTable renders Tabular results directly, structs as property
// tables and struct slices as one row per element. Anything else falls
// back to JSON.
func writeTable(w io.Writer, data any) error {
	var t *Table
	switch v := data.(type) {
	case Table:
		t = &v
	case *Table:
		t = v
	case Tabular:
		headers, rows := v.Rows()
		t = &Table{Headers: headers, Rows: rows}
	default:
		t = reflectTable(data)
	}
	if t == nil {
		return writeJSON(w, data)
	}
	return t.render(w)
}

func (t *Table) render(w io.Writer) error {
	var cfg tablewriter.Config
	if len(t.Align) > 0 {
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: t.Align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: t.Align}
	}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(t.Headers) > 0 {
		table.Header(cells(t.Headers)...)
	}
	for _, row := range t.Rows {
		if err := table.Append(cells(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func cells(s []string) []any {
	out := make([]any, len(s))
	for i, c := range s {
		out[i] = c
	}
	return out
}

// reflectTable builds a table from a struct, a pointer to one or a
// non-empty slice of structs. Unexported fields, fields tagged json:"-"
// and nil pointers are left out.
func reflectTable(data any) *Table {
	v := reflect.Indirect(reflect.ValueOf(data))
	switch {
	case v.Kind() == reflect.Struct:
		t := &Table{Headers: []string{"Property", "Value"}, Align: []tw.Align{tw.AlignLeft, tw.AlignRight}}
		for _, f := range visibleFields(v.Type()) {
			fv := v.Field(f.Index[0])
			if fv.Kind() == reflect.Pointer && fv.IsNil() {
				continue
			}
			t.Rows = append(t.Rows, []string{columnName(f), cell(fv)})
		}
		return t
	case v.Kind() == reflect.Slice && v.Len() > 0 && reflect.Indirect(v.Index(0)).Kind() == reflect.Struct:
		fields := visibleFields(reflect.Indirect(v.Index(0)).Type())
		t := &Table{}
		for _, f := range fields {
			t.Headers = append(t.Headers, columnName(f))
		}
		for i := 0; i < v.Len(); i++ {
			elem := reflect.Indirect(v.Index(i))
			if !elem.IsValid() {
				continue
			}
			row := make([]string, len(fields))
			for j, f := range fields {
				row[j] = cell(elem.Field(f.Index[0]))
			}
			t.Rows = append(t.Rows, row)
		}
		return t
	}
	return nil
}

func visibleFields(typ reflect.Type) []reflect.StructField {
	var out []reflect.StructField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.IsExported() && f.Tag.Get("json") != "-" {
			out = append(out, f)
		}
	}
	return out
}

func cell(v reflect.Value) string {
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return ""
	}
	return fmt.Sprintf("%v", v.Interface())
}

// columnName titles the json tag, or the field name when there is none.
func columnName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
