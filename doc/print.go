package doc

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// A FieldFilter is used to filter fields when printing documentation nodes.
// If it returns false, the field is excluded from the output.
type FieldFilter func(name string, value reflect.Value) bool

// NotNilFilter returns true for all fields that are not nil or zero-value.
// Nil pointers, empty slices, false bools, empty strings and zero line numbers are excluded.
func NotNilFilter(name string, v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer:
		return !v.IsNil()
	case reflect.Slice:
		return v.Len() > 0
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.Len() > 0
	case reflect.Int:
		return name != "Line" || v.Int() != 0
	}
	return true
}

// Fprint prints x to w as an indented tree. A node opens with its kind and
// name, documentation is written one quoted line per row and lists of
// names, types or attributes are written inline. Fields of an embedded
// Declaration are printed as fields of the enclosing Argument.
// If a non-nil FieldFilter f is provided, only fields for which f returns true are printed.
func Fprint(w io.Writer, x any, f FieldFilter) error {
	p := &printer{output: w, filter: f}
	p.print(reflect.ValueOf(x))
	return p.err
}

// Print calls Fprint(os.Stdout, x, NotNilFilter) for debugging convenience.
func Print(x any) error {
	return Fprint(os.Stdout, x, NotNilFilter)
}

var (
	docBlockType = reflect.TypeFor[DocBlock]()
	nodeType     = reflect.TypeFor[Node]()
)

type printer struct {
	output io.Writer
	filter FieldFilter
	indent int
	err    error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.output, format, args...)
}

func (p *printer) print(v reflect.Value) {
	if !v.IsValid() {
		p.printf("nil")
		return
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			p.printf("nil")
			return
		}
		if v.Kind() == reflect.Interface {
			v = v.Elem()
		}
	}

	switch {
	case v.Type() == docBlockType:
		p.printDoc(v.Interface().(DocBlock))
		return
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String:
		p.printInline(v)
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Struct:
		p.printNode(v)

	case reflect.Slice:
		if v.IsNil() {
			p.printf("nil")
			return
		}
		p.printf("len=%d [", v.Len())
		if v.Len() > 0 {
			p.printf("\n")
			p.indent++
			for i := 0; i < v.Len(); i++ {
				p.printIndent()
				p.printf("%d: ", i)
				p.print(v.Index(i))
				p.printf("\n")
			}
			p.indent--
			p.printIndent()
		}
		p.printf("]")

	case reflect.String:
		p.printf("%q", v.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p.printf("%d", v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			p.printf("%s", s.String())
		} else {
			p.printf("%d", v.Uint())
		}

	case reflect.Bool:
		p.printf("%t", v.Bool())

	default:
		p.printf("%v", v.Interface())
	}
}

// printNode prints a struct, or a pointer to one, headed by its type name and,
// for nodes, the entity name.
func (p *printer) printNode(v reflect.Value) {
	header := reflect.Indirect(v).Type().Name()
	if v.Type().Implements(nodeType) {
		if name := v.Interface().(Node).NodeName(); name != "" {
			header += " " + name
		}
	} else if v.CanAddr() && v.Addr().Type().Implements(nodeType) {
		if name := v.Addr().Interface().(Node).NodeName(); name != "" {
			header += " " + name
		}
	}
	v = reflect.Indirect(v)
	p.printf("%s {\n", header)
	p.indent++
	p.printFields(v)
	p.indent--
	p.printIndent()
	p.printf("}")
}

func (p *printer) printFields(v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && fv.Kind() == reflect.Struct {
			p.printFields(fv)
			continue
		}
		if p.filter != nil && !p.filter(field.Name, fv) {
			continue
		}
		p.printIndent()
		p.printf("%s: ", field.Name)
		p.print(fv)
		p.printf("\n")
	}
}

// printDoc writes each documentation line quoted on its own row.
func (p *printer) printDoc(d DocBlock) {
	if d == nil {
		p.printf("nil")
		return
	}
	p.printf("|")
	p.indent++
	for _, line := range d {
		p.printf("\n")
		p.printIndent()
		p.printf("%q", line)
	}
	p.indent--
}

// printInline writes a list of strings such as Params or Attributes on one line.
func (p *printer) printInline(v reflect.Value) {
	if v.IsNil() {
		p.printf("nil")
		return
	}
	items := make([]string, v.Len())
	for i := range items {
		items[i] = v.Index(i).String()
	}
	p.printf("[%s]", strings.Join(items, ", "))
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.printf("  ")
	}
}
